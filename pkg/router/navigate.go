package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// NavigateOptions configures navigation behavior.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query holds query parameters merged over the path's own query.
	Query route.Query

	// Hash is the fragment to navigate to.
	Hash string

	// Append resolves a relative path without dropping the current path's
	// last segment.
	Append bool
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery adds a query parameter to the navigation URL. Values are
// formatted with %v; repeated calls for one key add values.
func WithQuery(key string, values ...any) NavigateOption {
	return func(o *NavigateOptions) {
		if o.Query == nil {
			o.Query = route.Query{}
		}
		for _, v := range values {
			o.Query[key] = append(o.Query[key], fmt.Sprintf("%v", v))
		}
	}
}

// WithParams adds query parameters to the navigation URL.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		for k, v := range params {
			WithQuery(k, v)(o)
		}
	}
}

// WithHash sets the fragment.
func WithHash(hash string) NavigateOption {
	return func(o *NavigateOptions) {
		o.Hash = hash
	}
}

// WithAppend appends a relative path to the current path.
func WithAppend() NavigateOption {
	return func(o *NavigateOptions) {
		o.Append = true
	}
}

// Location builds the navigation target for path.
func (o NavigateOptions) Location(path string) route.Location {
	return route.Location{
		Path:    path,
		Query:   o.Query,
		Hash:    o.Hash,
		Append:  o.Append,
		Replace: o.Replace,
	}
}

// Navigate validates path, then pushes (or replaces) it and blocks until the
// navigation commits or stops. Paths must be relative to the application:
// schemes, hosts and protocol-relative forms are rejected.
func (r *Router) Navigate(ctx context.Context, path string, opts ...NavigateOption) (*route.Route, error) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	target := path
	if strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		canonical, err := routepath.ValidateNavPath(path)
		if err != nil {
			return nil, err
		}
		target = canonical
	}

	loc := options.Location(target)
	if options.Replace {
		return r.Replace(ctx, loc)
	}
	return r.Push(ctx, loc)
}
