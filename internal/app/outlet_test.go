package app

import (
	"context"
	"testing"

	"github.com/vango-dev/navcore/pkg/matcher"
	"github.com/vango-dev/navcore/pkg/route"
)

type named string

func (n named) String() string { return "named:" + string(n) }

func TestComponentName(t *testing.T) {
	lazy := route.NewLazy(func(context.Context) (any, error) { return &route.Definition{Name: "Later"}, nil })
	tests := []struct {
		name string
		c    route.Component
		want string
	}{
		{"definition", &route.Definition{Name: "Home"}, "Home"},
		{"anonymous", &route.Definition{}, "<anonymous>"},
		{"string", route.MustAdapt("About"), "About"},
		{"stringer", route.MustAdapt(named("x")), "named:x"},
		{"other", route.MustAdapt(42), "int"},
		{"lazy", lazy, "<lazy>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComponentName(tt.c); got != tt.want {
				t.Errorf("ComponentName() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := lazy.Resolve(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := ComponentName(lazy); got != "Later" {
		t.Errorf("ComponentName(resolved) = %q, want Later", got)
	}
}

func TestOutlet_RenderAndUnmount(t *testing.T) {
	m := matcher.MustNew([]matcher.RouteConfig{
		{Path: "/a", Component: "A", Children: []matcher.RouteConfig{
			{Path: "b", Component: "B"},
		}},
		{Path: "/c", Component: "C"},
	})
	o := NewOutlet(quietLogger())

	ab := m.Match(route.Path("/a/b"), route.Start)
	o.Render(ab)
	if got := o.Tree(); got != "A\n  B\n" {
		t.Fatalf("Tree() = %q", got)
	}
	a := o.Mounted()[0]
	if inst, ok := ab.Matched[0].Instance(route.DefaultSlot); !ok || inst != a {
		t.Errorf("record instance = %v, %v, want the mounted A", inst, ok)
	}

	o.Render(m.Match(route.Path("/a"), ab))
	if got := o.Tree(); got != "A\n" {
		t.Fatalf("Tree() = %q, want A", got)
	}
	if o.Mounted()[0] != a {
		t.Error("A was remounted")
	}
	if _, ok := ab.Matched[1].Instance(route.DefaultSlot); ok {
		t.Error("B still registered after unmount")
	}

	o.Render(m.Match(route.Path("/c"), ab))
	if got := o.Tree(); got != "C\n" {
		t.Fatalf("Tree() = %q, want C", got)
	}
	if _, ok := ab.Matched[0].Instance(route.DefaultSlot); ok {
		t.Error("A still registered after unmount")
	}

	o.Unmount()
	if len(o.Mounted()) != 0 {
		t.Errorf("Mounted() = %v after Unmount", o.Mounted())
	}
}
