package app

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/view"
)

// Instance is a simulated mounted component.
type Instance struct {
	Component string
	Depth     int
	Slot      string
	Props     view.Props
	Attrs     view.Props

	rendered *view.Rendered
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s@%d/%s", i.Component, i.Depth, i.Slot)
}

// Outlet renders the nested views of every committed route and keeps one
// instance per view alive, the way a host UI would. Instances are reused
// while their view keeps rendering the same record and component.
type Outlet struct {
	root   *view.Node
	logger *slog.Logger

	mu      sync.Mutex
	mounted map[string]*Instance
}

// NewOutlet creates an empty outlet.
func NewOutlet(logger *slog.Logger) *Outlet {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outlet{
		root:    view.NewRoot(),
		logger:  logger,
		mounted: make(map[string]*Instance),
	}
}

// Render mounts r, reusing instances whose view still shows the same
// component and unmounting the rest.
func (o *Outlet) Render(r *route.Route) {
	o.mu.Lock()
	defer o.mu.Unlock()

	seen := make(map[string]bool)
	parent := o.root
	for depth := 0; r != nil && depth < len(r.Matched); depth++ {
		var next *view.Node
		for _, slot := range r.Matched[depth].Slots() {
			rendered := view.New(parent, slot).Render(r)
			if rendered == nil {
				continue
			}
			key := viewKey(depth, slot)
			seen[key] = true
			o.mount(key, rendered)
			if slot == route.DefaultSlot {
				next = rendered.Node
			}
		}
		if next == nil {
			break
		}
		parent = next
	}

	for key, inst := range o.mounted {
		if !seen[key] {
			o.unmountLocked(key, inst)
		}
	}
}

func (o *Outlet) mount(key string, rendered *view.Rendered) {
	name := ComponentName(rendered.Component)
	if inst, ok := o.mounted[key]; ok {
		if inst.rendered.Record == rendered.Record && inst.Component == name {
			inst.Props, inst.Attrs = rendered.Props, rendered.Attrs
			inst.rendered = rendered
			rendered.Prepatch(inst)
			return
		}
		o.unmountLocked(key, inst)
	}

	inst := &Instance{
		Component: name,
		Depth:     rendered.Depth,
		Slot:      rendered.Slot,
		Props:     rendered.Props,
		Attrs:     rendered.Attrs,
		rendered:  rendered,
	}
	rendered.Register(inst)
	o.mounted[key] = inst
	o.logger.Debug("component mounted", "instance", inst.String())
}

func (o *Outlet) unmountLocked(key string, inst *Instance) {
	inst.rendered.Unregister(inst)
	delete(o.mounted, key)
	o.logger.Debug("component unmounted", "instance", inst.String())
}

// Unmount removes every instance.
func (o *Outlet) Unmount() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for key, inst := range o.mounted {
		o.unmountLocked(key, inst)
	}
}

// Mounted returns the live instances ordered by depth, default slot first.
func (o *Outlet) Mounted() []*Instance {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Instance, 0, len(o.mounted))
	for _, inst := range o.mounted {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		if (out[i].Slot == route.DefaultSlot) != (out[j].Slot == route.DefaultSlot) {
			return out[i].Slot == route.DefaultSlot
		}
		return out[i].Slot < out[j].Slot
	})
	return out
}

// Tree renders the mounted instances one per line, indented by depth.
func (o *Outlet) Tree() string {
	var b strings.Builder
	for _, inst := range o.Mounted() {
		b.WriteString(strings.Repeat("  ", inst.Depth))
		b.WriteString(inst.Component)
		if inst.Slot != route.DefaultSlot {
			fmt.Fprintf(&b, " [%s]", inst.Slot)
		}
		if len(inst.Props) > 0 {
			fmt.Fprintf(&b, " %v", map[string]any(inst.Props))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ComponentName names c for display.
func ComponentName(c route.Component) string {
	if l, ok := c.(*route.Lazy); ok {
		if _, loaded := l.Resolved(); !loaded {
			return "<lazy>"
		}
	}
	switch v := route.Underlying(c).(type) {
	case nil:
		return "<unresolved>"
	case *route.Definition:
		return v.String()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", v)
	}
}

func viewKey(depth int, slot string) string {
	return fmt.Sprintf("%d/%s", depth, slot)
}
