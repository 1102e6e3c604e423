package route

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// In-component hook names.
const (
	HookBeforeRouteEnter  = "beforeRouteEnter"
	HookBeforeRouteUpdate = "beforeRouteUpdate"
	HookBeforeRouteLeave  = "beforeRouteLeave"
)

// Hook is an in-component guard. inst is the live component instance, or nil
// for enter hooks, which run before the instance exists.
type Hook func(inst Instance, to, from *Route, next Next)

// Component is anything a record can render that may carry lifecycle hooks.
type Component interface {
	// Hooks returns the hooks registered under name, in execution order.
	Hooks(name string) []Hook
}

// PropsDeclarer is implemented by components that declare the props they
// accept. Resolved props outside the declaration are passed on as attributes.
type PropsDeclarer interface {
	DeclaredProps() []string
}

// EnterGuarder, UpdateGuarder and LeaveGuarder let plain Go values act as
// components by implementing the hook as a method.
type EnterGuarder interface {
	BeforeRouteEnter(to, from *Route, next Next)
}

type UpdateGuarder interface {
	BeforeRouteUpdate(to, from *Route, next Next)
}

type LeaveGuarder interface {
	BeforeRouteLeave(to, from *Route, next Next)
}

// =============================================================================
// Definition
// =============================================================================

// Definition is the normalized component form.
type Definition struct {
	Name  string
	Props []string

	BeforeRouteEnter  []Hook
	BeforeRouteUpdate []Hook
	BeforeRouteLeave  []Hook

	// Mixins contribute hooks and props ahead of the definition's own.
	Mixins []*Definition
}

// Hooks implements Component.
func (d *Definition) Hooks(name string) []Hook {
	if d == nil {
		return nil
	}
	var hooks []Hook
	for _, m := range d.Mixins {
		hooks = append(hooks, m.Hooks(name)...)
	}
	switch name {
	case HookBeforeRouteEnter:
		hooks = append(hooks, d.BeforeRouteEnter...)
	case HookBeforeRouteUpdate:
		hooks = append(hooks, d.BeforeRouteUpdate...)
	case HookBeforeRouteLeave:
		hooks = append(hooks, d.BeforeRouteLeave...)
	}
	return hooks
}

// DeclaredProps implements PropsDeclarer.
func (d *Definition) DeclaredProps() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]bool)
	var props []string
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				props = append(props, n)
			}
		}
	}
	for _, m := range d.Mixins {
		add(m.DeclaredProps())
	}
	add(d.Props)
	return props
}

func (d *Definition) String() string {
	if d == nil || d.Name == "" {
		return "<anonymous>"
	}
	return d.Name
}

// =============================================================================
// Adapt
// =============================================================================

// Adapt converts a component value into a Component:
//   - a Component is returned as is
//   - a Definition value is taken by pointer
//   - a map[string]any descriptor is decoded into a *Definition
//   - values implementing EnterGuarder, UpdateGuarder or LeaveGuarder expose
//     those methods as hooks
//   - anything else becomes a component without hooks
//
// It fails only for malformed descriptors.
func Adapt(v any) (Component, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case Component:
		return c, nil
	case Definition:
		return &c, nil
	case map[string]any:
		d, err := fromDescriptor(c)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	_, enter := v.(EnterGuarder)
	_, update := v.(UpdateGuarder)
	_, leave := v.(LeaveGuarder)
	if enter || update || leave {
		return &methodComponent{value: v}, nil
	}
	return &plainComponent{value: v}, nil
}

// MustAdapt is Adapt that panics on malformed descriptors.
func MustAdapt(v any) Component {
	c, err := Adapt(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Underlying returns the value c was adapted from, or c itself.
func Underlying(c Component) any {
	if u, ok := c.(interface{ Underlying() any }); ok {
		return u.Underlying()
	}
	return c
}

// DeclaredProps returns the declared props of c and whether c declares any.
func DeclaredProps(c Component) ([]string, bool) {
	if d, ok := c.(PropsDeclarer); ok {
		return d.DeclaredProps(), true
	}
	return nil, false
}

func fromDescriptor(m map[string]any) (*Definition, error) {
	d := &Definition{}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := m[key]
		switch key {
		case "name":
			name, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("component descriptor: name must be a string, got %T", raw)
			}
			d.Name = name
		case "props":
			props, err := toStrings(raw)
			if err != nil {
				return nil, fmt.Errorf("component descriptor: props: %w", err)
			}
			d.Props = props
		case "mixins":
			list, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("component descriptor: mixins must be a list, got %T", raw)
			}
			for i, item := range list {
				mixin, err := toDefinition(item)
				if err != nil {
					return nil, fmt.Errorf("component descriptor: mixin %d: %w", i, err)
				}
				d.Mixins = append(d.Mixins, mixin)
			}
		case HookBeforeRouteEnter, HookBeforeRouteUpdate, HookBeforeRouteLeave:
			hooks, err := toHooks(raw)
			if err != nil {
				return nil, fmt.Errorf("component descriptor: %s: %w", key, err)
			}
			switch key {
			case HookBeforeRouteEnter:
				d.BeforeRouteEnter = hooks
			case HookBeforeRouteUpdate:
				d.BeforeRouteUpdate = hooks
			default:
				d.BeforeRouteLeave = hooks
			}
		}
	}
	return d, nil
}

func toDefinition(v any) (*Definition, error) {
	switch d := v.(type) {
	case *Definition:
		return d, nil
	case Definition:
		return &d, nil
	case map[string]any:
		return fromDescriptor(d)
	}
	return nil, fmt.Errorf("unsupported mixin type %T", v)
}

func toStrings(v any) ([]string, error) {
	switch s := v.(type) {
	case []string:
		return s, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list of strings, got %T", v)
}

func toHooks(v any) ([]Hook, error) {
	switch h := v.(type) {
	case []Hook:
		return h, nil
	case []any:
		var out []Hook
		for _, item := range h {
			hooks, err := toHooks(item)
			if err != nil {
				return nil, err
			}
			out = append(out, hooks...)
		}
		return out, nil
	}
	hook, err := toHook(v)
	if err != nil {
		return nil, err
	}
	return []Hook{hook}, nil
}

func toHook(v any) (Hook, error) {
	switch h := v.(type) {
	case Hook:
		return h, nil
	case func(Instance, *Route, *Route, Next):
		return h, nil
	case Guard:
		return func(_ Instance, to, from *Route, next Next) { h(to, from, next) }, nil
	case func(*Route, *Route, Next):
		return func(_ Instance, to, from *Route, next Next) { h(to, from, next) }, nil
	}
	return nil, fmt.Errorf("unsupported hook type %T", v)
}

type plainComponent struct {
	value any
}

func (p *plainComponent) Hooks(string) []Hook { return nil }
func (p *plainComponent) Underlying() any     { return p.value }

func (p *plainComponent) DeclaredProps() []string {
	if d, ok := p.value.(PropsDeclarer); ok {
		return d.DeclaredProps()
	}
	return nil
}

// methodComponent exposes hook methods. Update and leave hooks prefer the
// live instance's method when the instance implements it.
type methodComponent struct {
	value any
}

func (m *methodComponent) Underlying() any { return m.value }

func (m *methodComponent) DeclaredProps() []string {
	if d, ok := m.value.(PropsDeclarer); ok {
		return d.DeclaredProps()
	}
	return nil
}

func (m *methodComponent) Hooks(name string) []Hook {
	switch name {
	case HookBeforeRouteEnter:
		if g, ok := m.value.(EnterGuarder); ok {
			return []Hook{func(_ Instance, to, from *Route, next Next) {
				g.BeforeRouteEnter(to, from, next)
			}}
		}
	case HookBeforeRouteUpdate:
		if _, ok := m.value.(UpdateGuarder); ok {
			return []Hook{func(inst Instance, to, from *Route, next Next) {
				g, ok := inst.(UpdateGuarder)
				if !ok {
					g = m.value.(UpdateGuarder)
				}
				g.BeforeRouteUpdate(to, from, next)
			}}
		}
	case HookBeforeRouteLeave:
		if _, ok := m.value.(LeaveGuarder); ok {
			return []Hook{func(inst Instance, to, from *Route, next Next) {
				g, ok := inst.(LeaveGuarder)
				if !ok {
					g = m.value.(LeaveGuarder)
				}
				g.BeforeRouteLeave(to, from, next)
			}}
		}
	}
	return nil
}

// =============================================================================
// Lazy
// =============================================================================

// LoadFunc loads a deferred component. The result is passed through Adapt.
type LoadFunc func(ctx context.Context) (any, error)

// Lazy is a component whose definition is loaded on first navigation to a
// record that uses it. Successful loads are cached; failed loads are retried
// on the next navigation. Concurrent resolutions share one load.
type Lazy struct {
	load  LoadFunc
	group singleflight.Group

	mu       sync.RWMutex
	resolved Component
}

// NewLazy returns a Lazy backed by load.
func NewLazy(load LoadFunc) *Lazy {
	return &Lazy{load: load}
}

// Resolved returns the loaded component, if any.
func (l *Lazy) Resolved() (Component, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resolved, l.resolved != nil
}

// Resolve loads the component if it has not been loaded yet. Cancelling ctx
// stops waiting; a load already in flight still completes and is cached for
// later callers.
func (l *Lazy) Resolve(ctx context.Context) (Component, error) {
	if c, ok := l.Resolved(); ok {
		return c, nil
	}
	ch := l.group.DoChan("load", func() (any, error) {
		if c, ok := l.Resolved(); ok {
			return c, nil
		}
		raw, err := l.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c, err := Adapt(raw)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("lazy component resolved to nil")
		}
		l.mu.Lock()
		l.resolved = c
		l.mu.Unlock()
		return c, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Component), nil
	}
}

// Hooks implements Component by delegating to the loaded component.
func (l *Lazy) Hooks(name string) []Hook {
	if c, ok := l.Resolved(); ok {
		return c.Hooks(name)
	}
	return nil
}

// DeclaredProps implements PropsDeclarer once loaded.
func (l *Lazy) DeclaredProps() []string {
	if c, ok := l.Resolved(); ok {
		props, _ := DeclaredProps(c)
		return props
	}
	return nil
}

// Underlying returns the loaded component's underlying value.
func (l *Lazy) Underlying() any {
	if c, ok := l.Resolved(); ok {
		return Underlying(c)
	}
	return nil
}
