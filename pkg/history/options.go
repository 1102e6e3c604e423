package history

import (
	"log/slog"

	"github.com/vango-dev/navcore/pkg/route"
)

// Option configures a History.
type Option func(*History)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver adds a transition observer.
func WithObserver(o Observer) Option {
	return func(h *History) {
		if o != nil {
			h.observers = append(h.observers, o)
		}
	}
}

// WithNextTick sets the function used to defer post-enter callbacks until
// the host has rendered the committed route. Defaults to calling fn
// immediately.
func WithNextTick(tick func(fn func())) Option {
	return func(h *History) {
		if tick != nil {
			h.nextTick = tick
		}
	}
}

// WithBase sets the base path all backend locations are prefixed with.
func WithBase(base string) Option {
	return func(h *History) {
		h.base = base
	}
}

// WithHooks shares a hook registry, typically owned by a router.
func WithHooks(hooks *Hooks) Option {
	return func(h *History) {
		if hooks != nil {
			h.hooks = hooks
		}
	}
}

// Matcher resolves locations to routes.
type Matcher interface {
	Match(raw route.Location, current *route.Route) *route.Route
}
