// Package history drives navigation transitions.
//
// A History owns the authoritative current route. TransitionTo matches a
// location, diffs the matched records against the current route, runs the
// guard pipeline and, unless a guard aborts or redirects, commits the new
// route, publishes it and persists it through the Backend.
//
// Pipeline order:
//
//	leave guards (deepest first)
//	global before guards
//	update guards
//	per-record enter guards
//	lazy component resolution
//	in-component enter guards
//	global resolve guards
//
// Only one transition is pending at a time. Starting another supersedes it:
// its abort callback receives ErrCancelled and any later continuation call
// is ignored.
package history

import (
	"context"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/signal"
)

// History is the transition orchestrator. It is safe for concurrent use;
// guard continuations may be called from any goroutine.
type History struct {
	matcher   Matcher
	backend   Backend
	hooks     *Hooks
	logger    *slog.Logger
	observers Observers
	nextTick  func(fn func())
	base      string
	cell      *signal.Cell[*route.Route]

	seq        atomic.Uint64
	pendingGen atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	current     *route.Route
	pending     *transition
	routeCtx    context.Context
	routeCancel context.CancelFunc
	ready       bool
	readyCbs    []func(*route.Route)
	readyErrCbs []func(error)
	errorCbs    []func(error)
	stopListen  func()
}

// New creates a History over matcher and backend. The current route starts
// as route.Start.
func New(matcher Matcher, backend Backend, opts ...Option) *History {
	h := &History{
		matcher:  matcher,
		backend:  backend,
		hooks:    &Hooks{},
		logger:   slog.Default(),
		nextTick: func(fn func()) { fn() },
		current:  route.Start,
		cell:     signal.New(route.Start),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.base = routepath.NormalizeBase(h.base)
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.routeCtx, h.routeCancel = context.WithCancel(h.ctx)
	return h
}

// Hooks returns the global hook registry.
func (h *History) Hooks() *Hooks { return h.hooks }

// Base returns the normalized base path.
func (h *History) Base() string { return h.base }

// Backend returns the history backend.
func (h *History) Backend() Backend { return h.backend }

// Current returns the committed route.
func (h *History) Current() *route.Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Pending returns the route under negotiation, or nil.
func (h *History) Pending() *route.Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return nil
	}
	return h.pending.to
}

// Subscribe calls fn with every committed route.
func (h *History) Subscribe(fn func(*route.Route)) (unsubscribe func()) {
	return h.cell.Subscribe(fn)
}

// OnReady calls cb once the first navigation has committed, or errCb if it
// failed with a genuine error. If the history is already ready, cb runs
// immediately with the current route.
func (h *History) OnReady(cb func(*route.Route), errCb func(error)) {
	h.mu.Lock()
	if h.ready {
		current := h.current
		h.mu.Unlock()
		if cb != nil {
			cb(current)
		}
		return
	}
	if cb != nil {
		h.readyCbs = append(h.readyCbs, cb)
	}
	if errCb != nil {
		h.readyErrCbs = append(h.readyErrCbs, errCb)
	}
	h.mu.Unlock()
}

// OnError registers cb for genuine navigation errors. Without any callback
// registered, such errors are logged.
func (h *History) OnError(cb func(error)) {
	if cb == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errorCbs = append(h.errorCbs, cb)
}

// Setup navigates to the backend's current location and follows its
// back/forward changes from then on.
func (h *History) Setup(onComplete func(*route.Route), onAbort func(error)) {
	stop := h.backend.Listen(func(url string) {
		h.TransitionTo(route.Path(routepath.StripBase(url, h.base)), nil, nil)
	})
	h.mu.Lock()
	if h.stopListen != nil {
		h.stopListen()
	}
	h.stopListen = stop
	h.mu.Unlock()

	h.TransitionTo(route.Path(routepath.StripBase(h.backend.Location(), h.base)), onComplete, onAbort)
}

// Close stops following the backend and cancels outstanding work: pending
// lazy loads and post-enter waiters.
func (h *History) Close() {
	h.mu.Lock()
	stop := h.stopListen
	h.stopListen = nil
	h.mu.Unlock()
	if stop != nil {
		stop()
	}
	h.cancel()
}

// Push navigates to loc and adds a backend entry on success.
func (h *History) Push(loc route.Location, onComplete func(*route.Route), onAbort func(error)) {
	h.TransitionTo(loc, func(r *route.Route) {
		h.backend.Push(h.url(r))
		if onComplete != nil {
			onComplete(r)
		}
	}, onAbort)
}

// Replace navigates to loc and replaces the backend entry on success.
func (h *History) Replace(loc route.Location, onComplete func(*route.Route), onAbort func(error)) {
	h.TransitionTo(loc, func(r *route.Route) {
		h.backend.Replace(h.url(r))
		if onComplete != nil {
			onComplete(r)
		}
	}, onAbort)
}

// Go moves n entries through the backend history. The backend reports the
// new location, which is then navigated to.
func (h *History) Go(n int) {
	h.backend.Go(n)
}

// EnsureURL resyncs the backend location with the current route, pushing a
// new entry when push is set and replacing the current one otherwise.
func (h *History) EnsureURL(push bool) {
	target := h.url(h.Current())
	if h.backend.Location() == target {
		return
	}
	if push {
		h.backend.Push(target)
	} else {
		h.backend.Replace(target)
	}
}

func (h *History) url(r *route.Route) string {
	return routepath.CleanPath(h.base + r.FullPath)
}

// updateRoute makes r current, publishes it and runs the after hooks.
// Panics in after hooks propagate to the caller.
func (h *History) updateRoute(r *route.Route) {
	h.mu.Lock()
	prev := h.current
	h.current = r
	h.routeCancel()
	h.routeCtx, h.routeCancel = context.WithCancel(h.ctx)
	h.mu.Unlock()

	h.cell.Set(r)
	for _, hook := range h.hooks.afterHooks() {
		hook(r, prev)
	}
}

// routeContext returns a context cancelled once r stops being current.
func (h *History) routeContext(r *route.Route) context.Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == r {
		return h.routeCtx
	}
	ctx, cancel := context.WithCancel(h.ctx)
	cancel()
	return ctx
}

func (h *History) markReady(r *route.Route, err error) {
	h.mu.Lock()
	if h.ready {
		h.mu.Unlock()
		return
	}
	h.ready = true
	readyCbs, readyErrCbs := h.readyCbs, h.readyErrCbs
	h.readyCbs, h.readyErrCbs = nil, nil
	h.mu.Unlock()

	if err != nil {
		for _, cb := range readyErrCbs {
			cb(err)
		}
		return
	}
	for _, cb := range readyCbs {
		cb(r)
	}
}

// reportError hands a genuine error to the OnError callbacks, or logs it.
func (h *History) reportError(logger *slog.Logger, err error) {
	h.mu.Lock()
	cbs := make([]func(error), len(h.errorCbs))
	copy(cbs, h.errorCbs)
	h.mu.Unlock()

	if len(cbs) == 0 {
		logger.Error("uncaught error during route navigation", "error", err)
		return
	}
	for _, cb := range cbs {
		cb(err)
	}
}
