package view

import (
	"github.com/vango-dev/navcore/pkg/route"
)

// Props holds the values passed to a rendered component.
type Props map[string]any

// View is a router view placed inside a host node.
type View struct {
	// Parent is the host node the view is rendered in.
	Parent *Node

	// Slot names the record component this view renders.
	Slot string
}

// New places a view named slot inside parent. An empty slot is the
// default slot.
func New(parent *Node, slot string) *View {
	if slot == "" {
		slot = route.DefaultSlot
	}
	return &View{Parent: parent, Slot: slot}
}

// Depth counts the view-rendered ancestors of v up to the navigation root
// and reports whether any of them is a dormant kept-alive node.
func (v *View) Depth() (depth int, inactive bool) {
	for n := v.Parent; n != nil && n.Kind != KindRoot; n = n.Parent {
		if n.Kind == KindView {
			depth++
		}
		if n.dormant() {
			inactive = true
		}
	}
	return depth, inactive
}

// Rendered is the outcome of rendering a View.
type Rendered struct {
	// Component is the component to draw.
	Component route.Component

	// Record is the record rendered, nil when a dormant subtree replays
	// its cached component.
	Record *route.Record

	// Slot is the record component slot.
	Slot string

	// Depth is the position in route.Matched.
	Depth int

	// Props are the resolved props the component declares.
	Props Props

	// Attrs are the resolved props the component does not declare.
	Attrs Props

	// Cached is set when Component came from the keep-alive cache.
	Cached bool

	// Node is the host node of the rendered component. Views nested in
	// the component are placed below it.
	Node *Node
}

// Render selects the component v shows for r. It returns nil when no record
// sits at the view's depth, which also clears the cached component.
func (v *View) Render(r *route.Route) *Rendered {
	depth, inactive := v.Depth()
	node := &Node{Kind: KindView, Parent: v.Parent}

	if inactive {
		c := v.Parent.cached(v.Slot)
		if c == nil {
			return nil
		}
		return &Rendered{Component: c, Slot: v.Slot, Depth: depth, Cached: true, Node: node}
	}

	if r == nil || depth >= len(r.Matched) {
		v.Parent.remember(v.Slot, nil)
		return nil
	}
	rec := r.Matched[depth]
	c := rec.Components[v.Slot]
	v.Parent.remember(v.Slot, c)
	if c == nil {
		return nil
	}

	props, attrs := ResolveProps(r, rec.Props[v.Slot], c)
	return &Rendered{
		Component: c,
		Record:    rec,
		Slot:      v.Slot,
		Depth:     depth,
		Props:     props,
		Attrs:     attrs,
		Node:      node,
	}
}

// Register records inst as the live instance of the rendered slot. It only
// writes when the slot holds a different instance.
func (r *Rendered) Register(inst route.Instance) {
	if r == nil || r.Record == nil || inst == nil {
		return
	}
	r.Record.RegisterInstance(r.Slot, inst, true)
}

// Unregister clears the slot if inst still owns it.
func (r *Rendered) Unregister(inst route.Instance) {
	if r == nil || r.Record == nil || inst == nil {
		return
	}
	r.Record.RegisterInstance(r.Slot, inst, false)
}

// Prepatch registers inst unconditionally, for an instance reused across
// routes.
func (r *Rendered) Prepatch(inst route.Instance) {
	if r == nil || r.Record == nil {
		return
	}
	r.Record.SetInstance(r.Slot, inst)
}

// Init re-registers a kept-alive instance reactivated by a route change.
func (r *Rendered) Init(inst route.Instance, keptAlive bool) {
	if r == nil || r.Record == nil || !keptAlive || inst == nil {
		return
	}
	if cur, ok := r.Record.Instance(r.Slot); ok && cur == inst {
		return
	}
	r.Record.SetInstance(r.Slot, inst)
}

// ResolveProps computes the props strategy p against rt and splits the result
// by what c declares. Keys c does not declare land in attrs. Both maps are
// nil when p passes nothing.
func ResolveProps(rt *route.Route, p route.Props, c route.Component) (props, attrs Props) {
	resolved := p.Resolve(rt)
	if resolved == nil {
		return nil, nil
	}
	declared, _ := route.DeclaredProps(c)
	known := make(map[string]bool, len(declared))
	for _, name := range declared {
		known[name] = true
	}

	props = make(Props, len(resolved))
	attrs = make(Props)
	for k, val := range resolved {
		if known[k] {
			props[k] = val
		} else {
			attrs[k] = val
		}
	}
	return props, attrs
}
