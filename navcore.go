// Package navcore provides the public API of the navcore navigation engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/navcore"
//
// Usage:
//
//	r, err := navcore.New(navcore.Config{
//	    Routes: []navcore.RouteConfig{
//	        {Path: "/", Name: "home", Component: "Home"},
//	        {Path: "/users/:id:int", Name: "user", Component: "User", Props: navcore.PropsParams(true)},
//	    },
//	})
//	r.BeforeEach(func(to, from *navcore.Route, next navcore.Next) {
//	    next(navcore.Proceed())
//	})
//	_, err = r.Start(ctx)
//	_, err = r.Navigate(ctx, "/users/7")
package navcore

import (
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/matcher"
	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/router"
)

// =============================================================================
// Router (re-export from pkg/router)
// =============================================================================

// Router ties a route table to a guarded navigation history.
type Router = router.Router

// Config configures a Router.
type Config = router.Config

// RouteConfig declares one route of the table.
type RouteConfig = matcher.RouteConfig

// New builds a Router. It fails when the route table is invalid.
func New(config Config) (*Router, error) {
	return router.New(config)
}

// NavigateOption configures Router.Navigate.
type NavigateOption = router.NavigateOption

var (
	WithReplace = router.WithReplace
	WithQuery   = router.WithQuery
	WithParams  = router.WithParams
	WithHash    = router.WithHash
	WithAppend  = router.WithAppend
)

// =============================================================================
// Routes and locations (re-export from pkg/route)
// =============================================================================

type (
	Route      = route.Route
	Location   = route.Location
	Record     = route.Record
	Component  = route.Component
	Definition = route.Definition
	Props      = route.Props
	Guard      = route.Guard
	Hook       = route.Hook
	AfterHook  = route.AfterHook
	Next       = route.Next
	Outcome    = route.Outcome
	Instance   = route.Instance
)

// Start is the route held before the first navigation.
var Start = route.Start

var (
	Path  = route.Path
	Named = route.Named

	PropsObject = route.PropsObject
	PropsFunc   = route.PropsFunc
	PropsParams = route.PropsParams

	NewLazy = route.NewLazy
)

// Guard outcomes.
var (
	Proceed      = route.Proceed
	Abort        = route.Abort
	Fail         = route.Fail
	Redirect     = route.Redirect
	RedirectPath = route.RedirectPath
	Mounted      = route.Mounted
)

// =============================================================================
// History (re-export from pkg/history)
// =============================================================================

type (
	Backend       = history.Backend
	MemoryBackend = history.MemoryBackend
	Observer      = history.Observer
)

var NewMemoryBackend = history.NewMemoryBackend

// Navigation failures. Match them with errors.Is.
var (
	ErrDuplicated          = history.ErrDuplicated
	ErrAborted             = history.ErrAborted
	ErrRedirected          = history.ErrRedirected
	ErrCancelled           = history.ErrCancelled
	ErrComponentResolution = history.ErrComponentResolution
	ErrGuardThrew          = history.ErrGuardThrew
	ErrGuardFailed         = history.ErrGuardFailed
)

// IsNavigationFailure reports whether err is a navigation failure, optionally
// restricted to the given codes.
var IsNavigationFailure = history.IsNavigationFailure
