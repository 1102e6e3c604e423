package route

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func recordingHook(log *[]string, name string) Hook {
	return func(_ Instance, _, _ *Route, next Next) {
		*log = append(*log, name)
		next(Proceed())
	}
}

func runHooks(hooks []Hook, inst Instance) {
	for _, h := range hooks {
		h(inst, Start, Start, func(Outcome) {})
	}
}

func TestDefinitionHooksMixinsFirst(t *testing.T) {
	var log []string
	def := &Definition{
		BeforeRouteLeave: []Hook{recordingHook(&log, "own")},
		Mixins: []*Definition{
			{BeforeRouteLeave: []Hook{recordingHook(&log, "mixin")}},
		},
	}

	runHooks(def.Hooks(HookBeforeRouteLeave), nil)
	if len(log) != 2 || log[0] != "mixin" || log[1] != "own" {
		t.Errorf("hook order = %v, want [mixin own]", log)
	}
	if hooks := def.Hooks(HookBeforeRouteEnter); len(hooks) != 0 {
		t.Errorf("Hooks(enter) = %d hooks, want 0", len(hooks))
	}
}

func TestAdaptDescriptor(t *testing.T) {
	var log []string
	guard := Guard(func(_, _ *Route, next Next) {
		log = append(log, "guard")
		next(Proceed())
	})
	c, err := Adapt(map[string]any{
		"name":             "profile",
		"props":            []any{"id"},
		"beforeRouteEnter": guard,
		"beforeRouteUpdate": []any{
			recordingHook(&log, "update-1"),
			func(_ Instance, _, _ *Route, next Next) {
				log = append(log, "update-2")
				next(Proceed())
			},
		},
		"mixins": []any{map[string]any{"props": []string{"mixed"}}},
	})
	if err != nil {
		t.Fatalf("Adapt() error = %v", err)
	}

	runHooks(c.Hooks(HookBeforeRouteEnter), nil)
	runHooks(c.Hooks(HookBeforeRouteUpdate), nil)
	want := []string{"guard", "update-1", "update-2"}
	if len(log) != len(want) {
		t.Fatalf("hooks ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("hook %d = %q, want %q", i, log[i], want[i])
		}
	}

	props, ok := DeclaredProps(c)
	if !ok || len(props) != 2 || props[0] != "mixed" || props[1] != "id" {
		t.Errorf("DeclaredProps() = %v, %v; want [mixed id], true", props, ok)
	}
}

func TestAdaptDescriptorErrors(t *testing.T) {
	tests := []struct {
		name string
		desc map[string]any
	}{
		{"bad name", map[string]any{"name": 3}},
		{"bad props", map[string]any{"props": "id"}},
		{"bad hook", map[string]any{"beforeRouteLeave": 42}},
		{"bad mixin", map[string]any{"mixins": []any{"x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Adapt(tt.desc); err == nil {
				t.Error("Adapt() should fail")
			}
		})
	}
}

type methodView struct {
	name  string
	calls *[]string
}

func (m *methodView) BeforeRouteLeave(_, _ *Route, next Next) {
	*m.calls = append(*m.calls, "leave:"+m.name)
	next(Proceed())
}

func TestAdaptMethods(t *testing.T) {
	var calls []string
	proto := &methodView{name: "proto", calls: &calls}
	c := MustAdapt(proto)

	if Underlying(c) != proto {
		t.Error("Underlying() should return the adapted value")
	}
	if hooks := c.Hooks(HookBeforeRouteEnter); len(hooks) != 0 {
		t.Errorf("Hooks(enter) = %d, want 0", len(hooks))
	}

	hooks := c.Hooks(HookBeforeRouteLeave)
	if len(hooks) != 1 {
		t.Fatalf("Hooks(leave) = %d, want 1", len(hooks))
	}
	runHooks(hooks, &methodView{name: "live", calls: &calls})
	runHooks(hooks, "not a view")
	if len(calls) != 2 || calls[0] != "leave:live" || calls[1] != "leave:proto" {
		t.Errorf("calls = %v, want [leave:live leave:proto]", calls)
	}
}

func TestAdaptPlain(t *testing.T) {
	c := MustAdapt("Home")
	if c.Hooks(HookBeforeRouteLeave) != nil {
		t.Error("plain component should have no hooks")
	}
	if Underlying(c) != "Home" {
		t.Errorf("Underlying() = %v, want Home", Underlying(c))
	}
	if c, _ := Adapt(nil); c != nil {
		t.Error("Adapt(nil) should return nil")
	}
}

func TestLazyResolve(t *testing.T) {
	var loads atomic.Int32
	fail := true
	lazy := NewLazy(func(context.Context) (any, error) {
		loads.Add(1)
		if fail {
			return nil, errors.New("chunk failed")
		}
		return &Definition{Name: "users"}, nil
	})

	if _, err := lazy.Resolve(context.Background()); err == nil {
		t.Fatal("Resolve() should fail on first load")
	}
	if _, ok := lazy.Resolved(); ok {
		t.Error("failed load should not be cached")
	}

	fail = false
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lazy.Resolve(context.Background()); err != nil {
				t.Errorf("Resolve() error = %v", err)
			}
		}()
	}
	wg.Wait()

	c, ok := lazy.Resolved()
	if !ok {
		t.Fatal("Resolved() = false after successful load")
	}
	if d, ok := c.(*Definition); !ok || d.Name != "users" {
		t.Errorf("Resolved() = %v, want users definition", c)
	}
	if n := loads.Load(); n < 2 || n > 5 {
		t.Errorf("loads = %d, want between 2 and 5", n)
	}
	if _, err := lazy.Resolve(context.Background()); err != nil {
		t.Errorf("cached Resolve() error = %v", err)
	}
}
