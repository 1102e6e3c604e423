package router

import (
	"context"
	"sort"
	"strings"

	"github.com/vango-dev/navcore/pkg/route"
)

// LinkOptions configures a Link.
type LinkOptions struct {
	// Exact limits the active class to exact matches.
	Exact bool

	// Append resolves a relative target against the full current path.
	Append bool

	// Replace navigates with Replace instead of Push.
	Replace bool

	// ActiveClass overrides the router's link active class.
	ActiveClass string

	// ExactActiveClass overrides the router's link exact active class.
	ExactActiveClass string
}

// LinkOption is a functional option for Link.
type LinkOption func(*LinkOptions)

// Exact applies the active class only when the link is exactly active.
func Exact() LinkOption {
	return func(o *LinkOptions) { o.Exact = true }
}

// Append appends a relative target to the current path.
func Append() LinkOption {
	return func(o *LinkOptions) { o.Append = true }
}

// Replace makes the link replace the current history entry.
func Replace() LinkOption {
	return func(o *LinkOptions) { o.Replace = true }
}

// ActiveClass overrides the active class name.
func ActiveClass(class string) LinkOption {
	return func(o *LinkOptions) { o.ActiveClass = class }
}

// ExactActiveClass overrides the exact active class name.
func ExactActiveClass(class string) LinkOption {
	return func(o *LinkOptions) { o.ExactActiveClass = class }
}

// Link is the resolved state of a navigation link.
type Link struct {
	// Href is the URL to render.
	Href string

	// Location is the normalized target.
	Location route.Location

	// Route is the matched target route.
	Route *route.Route

	// Active is set when the current route includes the target (or equals
	// it, for exact links).
	Active bool

	// ExactActive is set when the current route is the target.
	ExactActive bool

	// Classes maps each configured class name to whether it applies.
	Classes map[string]bool

	router  *Router
	replace bool
}

// Link resolves to against the committed route.
func (r *Router) Link(to route.Location, opts ...LinkOption) *Link {
	options := LinkOptions{
		ActiveClass:      r.config.LinkActiveClass,
		ExactActiveClass: r.config.LinkExactActiveClass,
	}
	for _, opt := range opts {
		opt(&options)
	}

	current := r.Current()
	res := r.Resolve(to, current, options.Append)

	target := res.Route
	if res.Location.Path != "" {
		target = route.New(nil, res.Location, nil)
	}

	exact := route.IsSameRoute(current, target)
	active := exact
	if !options.Exact {
		active = route.IsIncludedRoute(current, target)
	}

	return &Link{
		Href:        res.Href,
		Location:    res.Location,
		Route:       res.Route,
		Active:      active,
		ExactActive: exact,
		Classes: map[string]bool{
			options.ActiveClass:      active,
			options.ExactActiveClass: exact,
		},
		router:  r,
		replace: options.Replace,
	}
}

// Class returns the applied class names, sorted and space separated.
func (l *Link) Class() string {
	var names []string
	for name, on := range l.Classes {
		if on && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

// Follow navigates to the link target.
func (l *Link) Follow(ctx context.Context) (*route.Route, error) {
	if l.replace {
		return l.router.Replace(ctx, l.Location)
	}
	return l.router.Push(ctx, l.Location)
}

// Click describes a pointer activation of a link.
type Click struct {
	MetaKey, AltKey, CtrlKey, ShiftKey bool

	// DefaultPrevented is set when another handler already handled the
	// event.
	DefaultPrevented bool

	// Button is the pressed button, 0 for the primary one.
	Button int

	// Target is the anchor's target attribute.
	Target string
}

// Intercept reports whether a click should be handled as in-app navigation
// rather than left to the host.
func (c Click) Intercept() bool {
	if c.MetaKey || c.AltKey || c.CtrlKey || c.ShiftKey {
		return false
	}
	if c.DefaultPrevented || c.Button != 0 {
		return false
	}
	for _, t := range strings.Fields(strings.ToLower(c.Target)) {
		if t == "_blank" {
			return false
		}
	}
	return true
}

// Handle follows the link when c should be intercepted. It reports whether
// navigation was attempted.
func (l *Link) Handle(ctx context.Context, c Click) (bool, *route.Route, error) {
	if !c.Intercept() {
		return false, nil, nil
	}
	rt, err := l.Follow(ctx)
	return true, rt, err
}
