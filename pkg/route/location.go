package route

import "github.com/vango-dev/navcore/pkg/routepath"

// Query maps a query key to its values.
type Query = routepath.Query

// Location is a request to navigate that has not been matched yet.
// Either Path or Name identifies the target.
type Location struct {
	// Path is an absolute or relative path, optionally with ?query and #hash.
	Path string

	// Name targets a named route; Params fill its dynamic segments.
	Name string

	// Params are dynamic segment values.
	Params map[string]string

	// Query is merged over any query embedded in Path.
	Query Query

	// Hash is the fragment, with or without the leading "#".
	Hash string

	// Append resolves a relative Path against the current path without
	// dropping its last segment.
	Append bool

	// Replace asks redirects to replace the history entry instead of pushing.
	Replace bool

	// Normalized marks locations already resolved against a current route.
	Normalized bool
}

// Path returns a Location for a raw path string.
func Path(p string) Location {
	return Location{Path: p}
}

// Named returns a Location targeting a named route.
func Named(name string, params map[string]string) Location {
	return Location{Name: name, Params: params}
}

// IsZero reports whether l names no target at all.
func (l Location) IsZero() bool {
	return l.Path == "" && l.Name == "" && len(l.Params) == 0 &&
		len(l.Query) == 0 && l.Hash == ""
}

// String returns the path form of the location, or the route name when the
// location targets a named route.
func (l Location) String() string {
	if l.Path == "" && l.Name != "" {
		return "name:" + l.Name
	}
	return FullPath(l.Path, l.Query, l.Hash)
}
