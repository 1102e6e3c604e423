package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/navcore/pkg/matcher"
	"github.com/vango-dev/navcore/pkg/route"
)

type instance struct {
	name      string
	destroyed bool
}

func (i *instance) BeingDestroyed() bool { return i.destroyed }

func nestedMatcher(t *testing.T) *matcher.Matcher {
	t.Helper()
	m, err := matcher.New([]matcher.RouteConfig{
		{
			Path:      "/user/:id",
			Name:      "user",
			Component: &route.Definition{Name: "User", Props: []string{"id"}},
			Props:     route.PropsParams(true),
			Children: []matcher.RouteConfig{
				{
					Path:      "profile",
					Component: "Profile",
					Components: map[string]any{
						"sidebar": &route.Definition{Name: "Sidebar", Props: []string{"orderId"}},
					},
					NamedProps: map[string]route.Props{
						"sidebar": route.PropsFunc(func(r *route.Route) map[string]any {
							return map[string]any{"orderId": r.Params["id"], "extra": 1}
						}),
					},
				},
			},
		},
		{Path: "/about", Component: "About"},
	})
	if err != nil {
		t.Fatalf("matcher.New() error = %v", err)
	}
	return m
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindRoot, "Root"},
		{KindComponent, "Component"},
		{KindView, "View"},
		{NodeKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDepth(t *testing.T) {
	root := NewRoot()
	if d, _ := New(root, "").Depth(); d != 0 {
		t.Fatalf("top-level depth = %d, want 0", d)
	}

	outer := &Node{Kind: KindView, Parent: root}
	wrapper := outer.Child()
	if d, _ := New(wrapper, "").Depth(); d != 1 {
		t.Fatalf("depth below one view = %d, want 1", d)
	}

	inner := &Node{Kind: KindView, Parent: wrapper}
	if d, _ := New(inner.Child(), "").Depth(); d != 2 {
		t.Fatalf("depth below two views = %d, want 2", d)
	}
}

func TestRender_NestedDepth(t *testing.T) {
	m := nestedMatcher(t)
	r := m.Match(route.Path("/user/7/profile"), route.Start)

	root := NewRoot()
	outer := New(root, "").Render(r)
	if outer == nil || outer.Depth != 0 || outer.Record != r.Matched[0] {
		t.Fatalf("outer render = %+v", outer)
	}
	if diff := cmp.Diff(Props{"id": "7"}, outer.Props); diff != "" {
		t.Errorf("outer props (-want +got):\n%s", diff)
	}
	if len(outer.Attrs) != 0 {
		t.Errorf("outer attrs = %v, want none", outer.Attrs)
	}

	inner := New(outer.Node.Child(), "").Render(r)
	if inner == nil || inner.Depth != 1 || inner.Record != r.Matched[1] {
		t.Fatalf("inner render = %+v", inner)
	}
	if got := route.Underlying(inner.Component); got != "Profile" {
		t.Errorf("inner component = %v, want Profile", got)
	}
	if inner.Props != nil {
		t.Errorf("inner props = %v, want nil", inner.Props)
	}

	sidebar := New(outer.Node, "sidebar").Render(r)
	if sidebar == nil {
		t.Fatal("sidebar did not render")
	}
	if diff := cmp.Diff(Props{"orderId": "7"}, sidebar.Props); diff != "" {
		t.Errorf("sidebar props (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Props{"extra": 1}, sidebar.Attrs); diff != "" {
		t.Errorf("sidebar attrs (-want +got):\n%s", diff)
	}
}

func TestRender_NoRecordClearsCache(t *testing.T) {
	m := nestedMatcher(t)
	root := NewRoot()
	v := New(root, "")

	if got := v.Render(m.Match(route.Path("/about"), route.Start)); got == nil {
		t.Fatal("expected /about to render")
	}
	if root.cached(route.DefaultSlot) == nil {
		t.Fatal("expected component to be cached")
	}
	if got := v.Render(m.Match(route.Path("/missing"), route.Start)); got != nil {
		t.Fatalf("render of unmatched route = %+v, want nil", got)
	}
	if root.cached(route.DefaultSlot) != nil {
		t.Fatal("expected cache to be cleared")
	}
}

func TestRender_DormantKeepAliveReplaysCache(t *testing.T) {
	m := nestedMatcher(t)
	root := NewRoot()
	about := m.Match(route.Path("/about"), route.Start)

	outer := New(root, "").Render(about)
	host := outer.Node.Child()
	host.SetKeepAlive(true)
	inner := New(host, "")
	if inner.Render(about) != nil {
		t.Fatal("/about has no depth 1 record")
	}

	user := m.Match(route.Path("/user/1/profile"), route.Start)
	first := inner.Render(user)
	if first == nil || first.Cached {
		t.Fatalf("first render = %+v", first)
	}

	host.SetInactive(true)
	replay := inner.Render(about)
	if replay == nil || !replay.Cached || replay.Record != nil {
		t.Fatalf("dormant render = %+v, want cached replay", replay)
	}
	if replay.Component != first.Component {
		t.Fatal("dormant render did not reuse the cached component")
	}
}

func TestRendered_InstanceLifecycle(t *testing.T) {
	m := nestedMatcher(t)
	r := m.Match(route.Path("/about"), route.Start)
	rendered := New(NewRoot(), "").Render(r)
	rec := rendered.Record

	a := &instance{name: "a"}
	b := &instance{name: "b"}

	rendered.Register(a)
	if got, _ := rec.Instance(route.DefaultSlot); got != a {
		t.Fatalf("instance = %v, want a", got)
	}

	// replacement registers before the old instance is destroyed
	rendered.Register(b)
	rendered.Unregister(a)
	if got, _ := rec.Instance(route.DefaultSlot); got != b {
		t.Fatalf("instance after stale unregister = %v, want b", got)
	}

	rendered.Unregister(b)
	if _, ok := rec.Instance(route.DefaultSlot); ok {
		t.Fatal("expected slot cleared")
	}

	rendered.Prepatch(a)
	if got, _ := rec.Instance(route.DefaultSlot); got != a {
		t.Fatalf("instance after prepatch = %v, want a", got)
	}

	rendered.Init(b, false)
	if got, _ := rec.Instance(route.DefaultSlot); got != a {
		t.Fatal("Init without keep-alive must not register")
	}
	rendered.Init(b, true)
	if got, _ := rec.Instance(route.DefaultSlot); got != b {
		t.Fatalf("instance after keep-alive init = %v, want b", got)
	}
}

func TestResolveProps(t *testing.T) {
	rt := &route.Route{Path: "/x/1", Params: map[string]string{"id": "1"}}
	declared := &route.Definition{Props: []string{"id", "title"}}

	tests := []struct {
		name      string
		props     route.Props
		component route.Component
		wantProps Props
		wantAttrs Props
	}{
		{"none", route.Props{}, declared, nil, nil},
		{"params disabled", route.PropsParams(false), declared, nil, nil},
		{"params", route.PropsParams(true), declared, Props{"id": "1"}, Props{}},
		{
			"object split",
			route.PropsObject(map[string]any{"title": "T", "class": "c"}),
			declared,
			Props{"title": "T"},
			Props{"class": "c"},
		},
		{
			"undeclared component",
			route.PropsObject(map[string]any{"title": "T"}),
			route.MustAdapt("Plain"),
			Props{},
			Props{"title": "T"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props, attrs := ResolveProps(rt, tt.props, tt.component)
			if diff := cmp.Diff(tt.wantProps, props); diff != "" {
				t.Errorf("props (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantAttrs, attrs); diff != "" {
				t.Errorf("attrs (-want +got):\n%s", diff)
			}
		})
	}
}
