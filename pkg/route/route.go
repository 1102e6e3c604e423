package route

import (
	"strings"

	"github.com/vango-dev/navcore/pkg/routepath"
)

// Route is an immutable snapshot of a resolved navigation target.
// Callers must not mutate a Route, its maps, or its Matched slice.
type Route struct {
	// Name is the name of the matched leaf record, if any.
	Name string

	// Path is the resolved path without query or hash.
	Path string

	// Hash is the fragment including its leading "#", or "".
	Hash string

	// Query holds the parsed query parameters.
	Query Query

	// Params holds the captured dynamic segment values.
	Params map[string]string

	// FullPath is Path with query and hash reattached.
	FullPath string

	// Matched is the record chain, root first, leaf last.
	Matched []*Record

	// Meta is the leaf record's meta data.
	Meta map[string]any

	// RedirectedFrom is the full path this route was redirected from, if any.
	RedirectedFrom string
}

// Start is the sentinel "nowhere" route held before the first navigation.
var Start = New(nil, Location{Path: "/"}, nil)

// New builds a Route for the resolved location and its leaf record.
// record may be nil when nothing matched.
func New(record *Record, loc Location, redirectedFrom *Location) *Route {
	r := &Route{
		Name:   loc.Name,
		Path:   loc.Path,
		Hash:   loc.Hash,
		Query:  loc.Query.Clone(),
		Params: cloneParams(loc.Params),
		Meta:   map[string]any{},
	}
	if r.Path == "" {
		r.Path = "/"
	}
	if record != nil {
		if r.Name == "" {
			r.Name = record.Name
		}
		if record.Meta != nil {
			r.Meta = record.Meta
		}
		r.Matched = record.Chain()
	}
	r.FullPath = FullPath(r.Path, r.Query, r.Hash)
	if redirectedFrom != nil {
		r.RedirectedFrom = FullPath(redirectedFrom.Path, redirectedFrom.Query, redirectedFrom.Hash)
	}
	return r
}

// FullPath renders path, query and hash as one string.
func FullPath(path string, query Query, hash string) string {
	if path == "" {
		path = "/"
	}
	return routepath.Join(path, strings.TrimPrefix(routepath.StringifyQuery(query), "?"), hash)
}

// Leaf returns the deepest matched record, or nil.
func (r *Route) Leaf() *Record {
	if r == nil || len(r.Matched) == 0 {
		return nil
	}
	return r.Matched[len(r.Matched)-1]
}

// String returns the route's full path.
func (r *Route) String() string {
	if r == nil {
		return "<nil>"
	}
	return r.FullPath
}

// IsSameRoute reports whether a and b denote the same navigation target.
//
// Routes compare by path (ignoring a trailing slash), hash and query when both
// have a path, otherwise by name, hash, query and params. Matched records are
// not consulted. Start only equals itself.
func IsSameRoute(a, b *Route) bool {
	if b == Start {
		return a == b
	}
	if a == nil || b == nil {
		return false
	}
	if a.Path != "" && b.Path != "" {
		return trimTrailingSlash(a.Path) == trimTrailingSlash(b.Path) &&
			a.Hash == b.Hash &&
			routepath.QueryEqual(a.Query, b.Query)
	}
	if a.Name != "" && b.Name != "" {
		return a.Name == b.Name &&
			a.Hash == b.Hash &&
			routepath.QueryEqual(a.Query, b.Query) &&
			paramsEqual(a.Params, b.Params)
	}
	return false
}

// IsIncludedRoute reports whether current is "inside" target: target's path is
// a segment prefix of current's path (or target's name is one of current's
// matched records), target's hash is empty or equal, and target's query and
// params are subsets of current's.
func IsIncludedRoute(current, target *Route) bool {
	if current == nil || target == nil {
		return false
	}
	within := strings.HasPrefix(withTrailingSlash(current.Path), withTrailingSlash(target.Path))
	if !within && target.Name != "" {
		for _, rec := range current.Matched {
			if rec.Name == target.Name {
				within = true
				break
			}
		}
	}
	return within &&
		(target.Hash == "" || current.Hash == target.Hash) &&
		routepath.QueryIncludes(current.Query, target.Query) &&
		paramsInclude(current.Params, target.Params)
}

func trimTrailingSlash(p string) string {
	if len(p) > 1 {
		return strings.TrimSuffix(p, "/")
	}
	return p
}

func withTrailingSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

func cloneParams(p map[string]string) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func paramsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	return paramsInclude(a, b)
}

func paramsInclude(current, target map[string]string) bool {
	for k, v := range target {
		if cv, ok := current[k]; !ok || cv != v {
			return false
		}
	}
	return true
}
