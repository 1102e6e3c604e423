// Package matcher resolves locations against a nested route table.
//
// Patterns are matched segment by segment in a radix tree: static segments
// first, then ":param" (optionally typed, ":id:int", ":id:uuid"), then a
// trailing "*catchAll". Nested children inherit their parent's path unless
// they start with "/". Records with a redirect are followed when matched.
package matcher

import (
	"fmt"
	"strings"
	"sync"

	naverrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// maxRedirects bounds chains of record redirects.
const maxRedirects = 16

// RouteConfig declares one route table entry.
type RouteConfig struct {
	// Path is the pattern, relative to the parent unless it starts with "/".
	Path string

	// Name is an optional unique name.
	Name string

	// Component renders into the default slot. It is passed through
	// route.Adapt.
	Component any

	// Components renders into named slots.
	Components map[string]any

	// Props is the props strategy for the default slot.
	Props route.Props

	// NamedProps are props strategies for named slots.
	NamedProps map[string]route.Props

	// BeforeEnter is the record's enter guard.
	BeforeEnter route.Guard

	// Redirect is a path (relative to the parent) to redirect to.
	Redirect string

	// RedirectName is a named route to redirect to.
	RedirectName string

	// Meta is copied onto matched routes.
	Meta map[string]any

	// Children are nested routes.
	Children []RouteConfig
}

// Matcher resolves locations to routes. It is safe for concurrent use.
type Matcher struct {
	mu      sync.RWMutex
	root    *node
	records []*route.Record
	names   map[string]*route.Record
}

// New builds a matcher for routes.
func New(routes []RouteConfig) (*Matcher, error) {
	m := &Matcher{
		root:  &node{},
		names: make(map[string]*route.Record),
	}
	if err := m.AddRoutes(routes); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNew is New that panics on an invalid table.
func MustNew(routes []RouteConfig) *Matcher {
	m, err := New(routes)
	if err != nil {
		panic(err)
	}
	return m
}

// AddRoutes adds routes to the table. Either all routes are added or, on
// error, none are.
func (m *Matcher) AddRoutes(routes []RouteConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := &builder{names: make(map[string]*route.Record)}
	for name, rec := range m.names {
		b.names[name] = rec
	}
	for i := range routes {
		if err := b.add(&routes[i], nil); err != nil {
			return err
		}
	}

	for _, e := range b.entries {
		n := m.root.insert(e.segments)
		if n.record == nil {
			n.record = e.record
		}
	}
	for _, e := range b.entries {
		m.records = append(m.records, e.record)
		if e.record.Name != "" {
			m.names[e.record.Name] = e.record
		}
	}
	return nil
}

// Records returns every record in table order (children before parents).
func (m *Matcher) Records() []*route.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*route.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Lookup returns the record registered under name.
func (m *Matcher) Lookup(name string) (*route.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.names[name]
	return rec, ok
}

// Match resolves raw against the table. current seeds relative paths and
// relative params. A location that matches nothing yields a route with no
// matched records.
func (m *Matcher) Match(raw route.Location, current *route.Route) *route.Route {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.match(raw, current, nil, 0)
}

func (m *Matcher) match(raw route.Location, current *route.Route, redirectedFrom *route.Location, depth int) *route.Route {
	loc := Normalize(raw, current, false)

	if loc.Name != "" {
		rec, ok := m.names[loc.Name]
		if !ok {
			return route.New(nil, loc, redirectedFrom)
		}
		params := make(map[string]string, len(loc.Params))
		for k, v := range loc.Params {
			params[k] = v
		}
		if current != nil {
			for _, name := range ParamNames(rec.Path) {
				if _, ok := params[name]; !ok {
					if v, ok := current.Params[name]; ok {
						params[name] = v
					}
				}
			}
		}
		// A missing param leaves the path empty; the route still matches
		// the record.
		loc.Path, _ = FillParams(rec.Path, params)
		loc.Params = params
		return m.create(rec, loc, redirectedFrom, depth)
	}

	if loc.Path != "" {
		params := make(map[string]string)
		if rec, ok := m.root.match(splitPath(loc.Path), params); ok {
			loc.Params = params
			return m.create(rec, loc, redirectedFrom, depth)
		}
	}
	return route.New(nil, loc, redirectedFrom)
}

func (m *Matcher) create(rec *route.Record, loc route.Location, redirectedFrom *route.Location, depth int) *route.Route {
	if rec.Redirect != nil && depth < maxRedirects {
		return m.redirect(rec, loc, depth)
	}
	return route.New(rec, loc, redirectedFrom)
}

func (m *Matcher) redirect(rec *route.Record, loc route.Location, depth int) *route.Route {
	target := *rec.Redirect
	query, hash, params := target.Query, target.Hash, target.Params
	if query == nil {
		query = loc.Query
	}
	if hash == "" {
		hash = loc.Hash
	}
	if params == nil {
		params = loc.Params
	}
	from := loc

	if target.Name != "" {
		if _, ok := m.names[target.Name]; !ok {
			return route.New(nil, loc, nil)
		}
		return m.match(route.Location{Name: target.Name, Params: params, Query: query, Hash: hash}, nil, &from, depth+1)
	}

	if target.Path != "" {
		rawPath, rawQuery, rawHash := routepath.ParsePath(target.Path)
		if rawQuery != "" && target.Query == nil {
			query = routepath.ResolveQuery(rawQuery, nil)
		}
		if rawHash != "" && target.Hash == "" {
			hash = rawHash
		}
		filled, err := FillParams(recordPath(rawPath, rec.Parent), params)
		if err != nil {
			return route.New(nil, loc, nil)
		}
		return m.match(route.Location{Path: filled, Query: query, Hash: hash}, nil, &from, depth+1)
	}

	return route.New(nil, loc, nil)
}

// Normalize resolves raw against current without consulting the table:
// relative paths are resolved against current's path, a params-only location
// reuses current's name (or fills current's leaf pattern), query strings are
// merged and the hash gets its "#" prefix. Named locations pass through.
func Normalize(raw route.Location, current *route.Route, appendPath bool) route.Location {
	if raw.Normalized {
		return raw
	}
	if raw.Name != "" {
		return raw
	}

	if raw.Path == "" && len(raw.Params) > 0 && current != nil {
		next := raw
		next.Normalized = true
		params := make(map[string]string, len(current.Params)+len(raw.Params))
		for k, v := range current.Params {
			params[k] = v
		}
		for k, v := range raw.Params {
			params[k] = v
		}
		if current.Name != "" {
			next.Name = current.Name
			next.Params = params
		} else if leaf := current.Leaf(); leaf != nil {
			next.Path, _ = FillParams(leaf.Path, params)
		}
		return next
	}

	rawPath, rawQuery, rawHash := routepath.ParsePath(raw.Path)
	base := "/"
	if current != nil && current.Path != "" {
		base = current.Path
	}
	path := base
	if rawPath != "" {
		path = routepath.ResolvePath(rawPath, base, appendPath || raw.Append)
	}

	hash := raw.Hash
	if hash == "" {
		hash = rawHash
	}
	if hash != "" && hash[0] != '#' {
		hash = "#" + hash
	}

	return route.Location{
		Path:       path,
		Query:      routepath.ResolveQuery(rawQuery, raw.Query),
		Hash:       hash,
		Replace:    raw.Replace,
		Normalized: true,
	}
}

// =============================================================================
// Table construction
// =============================================================================

type entry struct {
	record   *route.Record
	segments []segment
}

type builder struct {
	entries []entry
	names   map[string]*route.Record
}

func (b *builder) add(cfg *RouteConfig, parent *route.Record) error {
	path := recordPath(cfg.Path, parent)
	segments, err := parsePattern(path)
	if err != nil {
		return err
	}

	rec := &route.Record{
		Path:        path,
		Name:        cfg.Name,
		Parent:      parent,
		BeforeEnter: cfg.BeforeEnter,
		Meta:        cfg.Meta,
		Components:  make(map[string]route.Component),
		Props:       make(map[string]route.Props),
	}
	if rec.Meta == nil {
		rec.Meta = map[string]any{}
	}

	if cfg.Component != nil {
		c, err := route.Adapt(cfg.Component)
		if err != nil {
			return naverrors.New(naverrors.CodeInvalidPattern).
				WithDetail(fmt.Sprintf("component of %q", path)).
				Wrap(err)
		}
		rec.Components[route.DefaultSlot] = c
	}
	for slot, v := range cfg.Components {
		c, err := route.Adapt(v)
		if err != nil {
			return naverrors.New(naverrors.CodeInvalidPattern).
				WithDetail(fmt.Sprintf("component %q of %q", slot, path)).
				Wrap(err)
		}
		if c != nil {
			rec.Components[slot] = c
		}
	}
	if !cfg.Props.IsZero() {
		rec.Props[route.DefaultSlot] = cfg.Props
	}
	for slot, p := range cfg.NamedProps {
		rec.Props[slot] = p
	}

	switch {
	case cfg.RedirectName != "":
		rec.Redirect = &route.Location{Name: cfg.RedirectName}
	case cfg.Redirect != "":
		rec.Redirect = &route.Location{Path: cfg.Redirect}
	}

	if cfg.Name != "" {
		if _, dup := b.names[cfg.Name]; dup {
			return naverrors.Newf(naverrors.CodeDuplicateName, "duplicate route name %q", cfg.Name).
				WithDetail(fmt.Sprintf("route %q", path))
		}
		b.names[cfg.Name] = rec
	}

	for i := range cfg.Children {
		if err := b.add(&cfg.Children[i], rec); err != nil {
			return err
		}
	}

	b.entries = append(b.entries, entry{record: rec, segments: segments})
	return nil
}

// recordPath joins a child pattern onto its parent's path.
func recordPath(path string, parent *route.Record) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if strings.HasPrefix(path, "/") || parent == nil {
		if path == "" {
			return "/"
		}
		return path
	}
	joined := routepath.CleanPath(parent.Path + "/" + path)
	if len(joined) > 1 {
		joined = strings.TrimSuffix(joined, "/")
	}
	return joined
}
