package router

import (
	"context"
	"log/slog"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/matcher"
	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/routepath"
)

const (
	// DefaultLinkActiveClass is applied to links including the current route.
	DefaultLinkActiveClass = "router-link-active"

	// DefaultLinkExactActiveClass is applied to links on the current route.
	DefaultLinkExactActiveClass = "router-link-exact-active"
)

// Config configures a Router.
type Config struct {
	// Routes is the initial route table.
	Routes []matcher.RouteConfig

	// Base is prefixed to every backend location.
	Base string

	// Backend persists locations. Default: an in-memory stack at "/".
	Backend history.Backend

	// Logger is used for navigation logs. Default: slog.Default().
	Logger *slog.Logger

	// Observers receive transition lifecycle events.
	Observers []history.Observer

	// NextTick defers post-enter callbacks until the host has rendered.
	NextTick func(fn func())

	// LinkActiveClass overrides DefaultLinkActiveClass.
	LinkActiveClass string

	// LinkExactActiveClass overrides DefaultLinkExactActiveClass.
	LinkExactActiveClass string
}

// Router ties a route table to a guarded navigation history.
type Router struct {
	config  Config
	matcher *matcher.Matcher
	history *history.History
	hooks   *history.Hooks
	logger  *slog.Logger
}

// New builds a Router. It fails when the route table is invalid.
func New(config Config) (*Router, error) {
	m, err := matcher.New(config.Routes)
	if err != nil {
		return nil, err
	}
	if config.Backend == nil {
		config.Backend = history.NewMemoryBackend("/")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.LinkActiveClass == "" {
		config.LinkActiveClass = DefaultLinkActiveClass
	}
	if config.LinkExactActiveClass == "" {
		config.LinkExactActiveClass = DefaultLinkExactActiveClass
	}

	hooks := &history.Hooks{}
	opts := []history.Option{
		history.WithLogger(config.Logger),
		history.WithBase(config.Base),
		history.WithHooks(hooks),
		history.WithNextTick(config.NextTick),
	}
	for _, o := range config.Observers {
		opts = append(opts, history.WithObserver(o))
	}

	return &Router{
		config:  config,
		matcher: m,
		history: history.New(m, config.Backend, opts...),
		hooks:   hooks,
		logger:  config.Logger,
	}, nil
}

// Start navigates to the backend's current location, follows backend
// back/forward changes from then on, and waits for the first navigation to
// settle.
func (r *Router) Start(ctx context.Context) (*route.Route, error) {
	done := make(chan outcome, 1)
	r.history.Setup(
		func(rt *route.Route) { done <- outcome{route: rt} },
		func(err error) { done <- outcome{err: err} },
	)
	return r.await(ctx, done, true)
}

// Close stops following the backend and cancels outstanding work.
func (r *Router) Close() {
	r.history.Close()
}

// History returns the underlying navigation history.
func (r *Router) History() *history.History { return r.history }

// Matcher returns the route table.
func (r *Router) Matcher() *matcher.Matcher { return r.matcher }

// Current returns the committed route.
func (r *Router) Current() *route.Route { return r.history.Current() }

// Subscribe registers fn to receive every committed route.
func (r *Router) Subscribe(fn func(*route.Route)) (unsubscribe func()) {
	return r.history.Subscribe(fn)
}

// =============================================================================
// Global guards
// =============================================================================

// BeforeEach registers a global guard run before in-component update guards.
func (r *Router) BeforeEach(g route.Guard) (remove func()) {
	return r.hooks.BeforeEach(g)
}

// BeforeResolve registers a global guard run after every other guard.
func (r *Router) BeforeResolve(g route.Guard) (remove func()) {
	return r.hooks.BeforeResolve(g)
}

// AfterEach registers a hook run after every commit.
func (r *Router) AfterEach(h route.AfterHook) (remove func()) {
	return r.hooks.AfterEach(h)
}

// OnReady calls cb once the first navigation commits, or errCb if it fails
// with a genuine error.
func (r *Router) OnReady(cb func(*route.Route), errCb func(error)) {
	r.history.OnReady(cb, errCb)
}

// OnError registers a callback for genuine navigation errors.
func (r *Router) OnError(cb func(error)) {
	r.history.OnError(cb)
}

// =============================================================================
// Navigation
// =============================================================================

// PushFunc navigates to loc, reporting the outcome through callbacks.
func (r *Router) PushFunc(loc route.Location, onComplete func(*route.Route), onAbort func(error)) {
	r.history.Push(loc, onComplete, onAbort)
}

// ReplaceFunc navigates to loc replacing the current entry, reporting the
// outcome through callbacks.
func (r *Router) ReplaceFunc(loc route.Location, onComplete func(*route.Route), onAbort func(error)) {
	r.history.Replace(loc, onComplete, onAbort)
}

// Push navigates to loc and blocks until it commits or stops. A navigation
// to the current route returns history.ErrDuplicated.
func (r *Router) Push(ctx context.Context, loc route.Location) (*route.Route, error) {
	done := make(chan outcome, 1)
	r.history.Push(loc, completeTo(done), abortTo(done))
	return r.await(ctx, done, false)
}

// Replace is Push without adding a history entry.
func (r *Router) Replace(ctx context.Context, loc route.Location) (*route.Route, error) {
	done := make(chan outcome, 1)
	r.history.Replace(loc, completeTo(done), abortTo(done))
	return r.await(ctx, done, false)
}

// Go moves n entries through the backend history.
func (r *Router) Go(n int) { r.history.Go(n) }

// Back moves one entry back.
func (r *Router) Back() { r.Go(-1) }

// Forward moves one entry forward.
func (r *Router) Forward() { r.Go(1) }

type outcome struct {
	route *route.Route
	err   error
}

func completeTo(ch chan<- outcome) func(*route.Route) {
	return func(rt *route.Route) { ch <- outcome{route: rt} }
}

func abortTo(ch chan<- outcome) func(error) {
	return func(err error) { ch <- outcome{err: err} }
}

// await waits for the outcome of one transition. A nil abort error is the
// duplicate signal: tolerated on start, reported as ErrDuplicated otherwise.
// A done ctx stops waiting but not the navigation.
func (r *Router) await(ctx context.Context, done <-chan outcome, start bool) (*route.Route, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		switch {
		case o.route != nil:
			return o.route, nil
		case o.err == nil && start:
			return r.Current(), nil
		case o.err == nil:
			return nil, history.ErrDuplicated
		}
		return nil, o.err
	}
}

// =============================================================================
// Resolution
// =============================================================================

// Resolved is a target resolved against a route without navigating.
type Resolved struct {
	// Location is the normalized target.
	Location route.Location

	// Route is the matched route.
	Route *route.Route

	// Href is the backend URL of the route.
	Href string
}

// Resolve normalizes to against current (the committed route when nil) and
// matches it. With appendPath, a relative path is appended to the current
// path.
func (r *Router) Resolve(to route.Location, current *route.Route, appendPath bool) Resolved {
	if current == nil {
		current = r.Current()
	}
	loc := matcher.Normalize(to, current, appendPath)
	rt := r.matcher.Match(loc, current)
	full := rt.FullPath
	if rt.RedirectedFrom != "" {
		full = rt.RedirectedFrom
	}
	return Resolved{Location: loc, Route: rt, Href: r.href(full)}
}

// Match matches raw against current without navigating.
func (r *Router) Match(raw route.Location, current *route.Route) *route.Route {
	if current == nil {
		current = r.Current()
	}
	return r.matcher.Match(raw, current)
}

// MatchedComponents returns the components of every slot of every record
// matched by to, or by the current route when to is nil.
func (r *Router) MatchedComponents(to *route.Route) []route.Component {
	if to == nil {
		to = r.Current()
	}
	var out []route.Component
	for _, rec := range to.Matched {
		for _, slot := range rec.Slots() {
			out = append(out, rec.Components[slot])
		}
	}
	return out
}

// AddRoutes extends the route table. When a route is already committed its
// location is navigated to again, so a newly added route can take over.
func (r *Router) AddRoutes(routes []matcher.RouteConfig) error {
	if err := r.matcher.AddRoutes(routes); err != nil {
		return err
	}
	if r.Current() != route.Start {
		loc := routepath.StripBase(r.history.Backend().Location(), r.history.Base())
		r.logger.Debug("routes added, rematching", "location", loc, "count", len(routes))
		r.history.TransitionTo(route.Path(loc), nil, nil)
	}
	return nil
}

func (r *Router) href(fullPath string) string {
	if base := r.history.Base(); base != "" {
		return routepath.CleanPath(base + "/" + fullPath)
	}
	return fullPath
}
