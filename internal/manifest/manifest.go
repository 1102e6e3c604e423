package manifest

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/matcher"
	"github.com/vango-dev/navcore/pkg/route"
)

// Manifest is a declarative route table.
type Manifest struct {
	// Base is an optional path prefix for every location.
	Base string `json:"base,omitempty"`

	// Routes are the top-level routes.
	Routes []Route `json:"routes"`
}

// Route declares one route table entry.
type Route struct {
	Path         string               `json:"path"`
	Name         string               `json:"name,omitempty"`
	Component    *Component           `json:"component,omitempty"`
	Components   map[string]Component `json:"components,omitempty"`
	Props        any                  `json:"props,omitempty"`
	NamedProps   map[string]any       `json:"namedProps,omitempty"`
	BeforeEnter  string               `json:"beforeEnter,omitempty"`
	Redirect     string               `json:"redirect,omitempty"`
	RedirectName string               `json:"redirectName,omitempty"`
	Meta         map[string]any       `json:"meta,omitempty"`
	Children     []Route              `json:"children,omitempty"`
}

// Component declares a component and its in-component guards.
// It decodes from a bare name or an object.
type Component struct {
	Name              string   `json:"name"`
	Props             []string `json:"props,omitempty"`
	Lazy              bool     `json:"lazy,omitempty"`
	BeforeRouteEnter  []string `json:"beforeRouteEnter,omitempty"`
	BeforeRouteUpdate []string `json:"beforeRouteUpdate,omitempty"`
	BeforeRouteLeave  []string `json:"beforeRouteLeave,omitempty"`
}

// UnmarshalJSON accepts a bare component name.
func (c *Component) UnmarshalJSON(data []byte) error {
	var name string
	if err := yaml.Unmarshal(data, &name); err == nil {
		c.Name = name
		return nil
	}
	type plain Component
	return yaml.Unmarshal(data, (*plain)(c))
}

// Parse decodes a YAML or JSON manifest and validates it.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, errors.New(errors.CodeInvalidManifest).Wrap(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks paths, props and guard behaviors.
func (m *Manifest) Validate() error {
	var problems []string
	var walk func(rs []Route, parent string)
	walk = func(rs []Route, parent string) {
		for i, r := range rs {
			where := fmt.Sprintf("%s[%d]", parent, i)
			if r.Path == "" {
				problems = append(problems, where+": path is required")
			} else {
				where = fmt.Sprintf("%s %q", where, r.Path)
			}
			if _, err := props(r.Props); err != nil {
				problems = append(problems, where+": "+err.Error())
			}
			for slot, p := range r.NamedProps {
				if _, err := props(p); err != nil {
					problems = append(problems, fmt.Sprintf("%s: props of %q: %v", where, slot, err))
				}
			}
			if r.BeforeEnter != "" {
				if _, err := ParseBehavior(r.BeforeEnter); err != nil {
					problems = append(problems, where+": beforeEnter: "+err.Error())
				}
			}
			comps := map[string]Component{}
			for slot, c := range r.Components {
				comps[slot] = c
			}
			if r.Component != nil {
				comps[route.DefaultSlot] = *r.Component
			}
			for slot, c := range comps {
				if c.Name == "" {
					problems = append(problems, fmt.Sprintf("%s: component %q has no name", where, slot))
				}
				for _, list := range [][]string{c.BeforeRouteEnter, c.BeforeRouteUpdate, c.BeforeRouteLeave} {
					for _, b := range list {
						if _, err := ParseBehavior(b); err != nil {
							problems = append(problems, fmt.Sprintf("%s: component %q: %v", where, c.Name, err))
						}
					}
				}
			}
			walk(r.Children, where+".children")
		}
	}
	walk(m.Routes, "routes")

	if len(problems) > 0 {
		return errors.New(errors.CodeInvalidManifest).WithDetail(strings.Join(problems, "; "))
	}
	return nil
}

// =============================================================================
// Guard behaviors
// =============================================================================

// BehaviorKind names what a declared guard does.
type BehaviorKind string

const (
	Allow        BehaviorKind = "allow"
	Deny         BehaviorKind = "deny"
	FailWith     BehaviorKind = "fail"
	RedirectTo   BehaviorKind = "redirect"
	PanicWith    BehaviorKind = "panic"
	ProceedLater BehaviorKind = "delay"
)

// BehaviorKinds lists every guard behavior a manifest may declare.
var BehaviorKinds = []BehaviorKind{Allow, Deny, FailWith, RedirectTo, PanicWith, ProceedLater}

// Behavior is a parsed guard behavior.
type Behavior struct {
	Kind  BehaviorKind
	Arg   string
	Delay time.Duration
}

// ParseBehavior parses "kind" or "kind:arg".
func ParseBehavior(s string) (Behavior, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(s), ":")
	b := Behavior{Kind: BehaviorKind(kind), Arg: arg}
	switch b.Kind {
	case Allow, Deny:
	case FailWith, PanicWith:
		if b.Arg == "" {
			b.Arg = string(b.Kind)
		}
	case RedirectTo:
		if b.Arg == "" {
			return b, fmt.Errorf("redirect needs a target")
		}
	case ProceedLater:
		d, err := time.ParseDuration(b.Arg)
		if err != nil {
			return b, fmt.Errorf("delay: %w", err)
		}
		b.Delay = d
	default:
		return b, fmt.Errorf("unknown guard behavior %q", s)
	}
	return b, nil
}

// Answer resolves next according to b.
func (b Behavior) Answer(next route.Next) {
	switch b.Kind {
	case Deny:
		next(route.Abort())
	case FailWith:
		next(route.Fail(stderrors.New(b.Arg)))
	case RedirectTo:
		next(route.RedirectPath(b.Arg))
	case PanicWith:
		panic(b.Arg)
	case ProceedLater:
		time.AfterFunc(b.Delay, func() { next(route.Proceed()) })
	default:
		next(route.Proceed())
	}
}

// Guard returns b as a record or global guard.
func (b Behavior) Guard() route.Guard {
	return func(_, _ *route.Route, next route.Next) { b.Answer(next) }
}

// Hook returns b as an in-component hook.
func (b Behavior) Hook() route.Hook {
	return func(_ route.Instance, _, _ *route.Route, next route.Next) { b.Answer(next) }
}

// =============================================================================
// Route table construction
// =============================================================================

// Loader produces the value behind a lazy component.
type Loader func(ctx context.Context, def *route.Definition) (any, error)

// BuildOptions configures RouteConfigs.
type BuildOptions struct {
	// Loader resolves lazy components. Default: returns the definition.
	Loader Loader
}

// RouteConfigs converts the manifest into matcher route configs. The
// manifest must be valid.
func (m *Manifest) RouteConfigs(opts BuildOptions) ([]matcher.RouteConfig, error) {
	if opts.Loader == nil {
		opts.Loader = func(_ context.Context, def *route.Definition) (any, error) { return def, nil }
	}
	return buildRoutes(m.Routes, opts)
}

func buildRoutes(rs []Route, opts BuildOptions) ([]matcher.RouteConfig, error) {
	out := make([]matcher.RouteConfig, 0, len(rs))
	for _, r := range rs {
		cfg := matcher.RouteConfig{
			Path:         r.Path,
			Name:         r.Name,
			Redirect:     r.Redirect,
			RedirectName: r.RedirectName,
			Meta:         r.Meta,
		}
		if r.Component != nil {
			c, err := component(*r.Component, opts)
			if err != nil {
				return nil, err
			}
			cfg.Component = c
		}
		if len(r.Components) > 0 {
			cfg.Components = make(map[string]any, len(r.Components))
			for slot, c := range r.Components {
				v, err := component(c, opts)
				if err != nil {
					return nil, err
				}
				cfg.Components[slot] = v
			}
		}

		p, err := props(r.Props)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidManifest).WithDetail(r.Path).Wrap(err)
		}
		cfg.Props = p
		if len(r.NamedProps) > 0 {
			cfg.NamedProps = make(map[string]route.Props, len(r.NamedProps))
			for slot, raw := range r.NamedProps {
				np, err := props(raw)
				if err != nil {
					return nil, errors.New(errors.CodeInvalidManifest).WithDetail(r.Path).Wrap(err)
				}
				cfg.NamedProps[slot] = np
			}
		}

		if r.BeforeEnter != "" {
			b, err := ParseBehavior(r.BeforeEnter)
			if err != nil {
				return nil, errors.New(errors.CodeInvalidManifest).WithDetail(r.Path).Wrap(err)
			}
			cfg.BeforeEnter = b.Guard()
		}

		children, err := buildRoutes(r.Children, opts)
		if err != nil {
			return nil, err
		}
		cfg.Children = children
		out = append(out, cfg)
	}
	return out, nil
}

func component(c Component, opts BuildOptions) (any, error) {
	def := &route.Definition{Name: c.Name, Props: c.Props}
	for _, h := range []struct {
		src []string
		dst *[]route.Hook
	}{
		{c.BeforeRouteEnter, &def.BeforeRouteEnter},
		{c.BeforeRouteUpdate, &def.BeforeRouteUpdate},
		{c.BeforeRouteLeave, &def.BeforeRouteLeave},
	} {
		for _, s := range h.src {
			b, err := ParseBehavior(s)
			if err != nil {
				return nil, errors.New(errors.CodeInvalidManifest).WithDetail(c.Name).Wrap(err)
			}
			*h.dst = append(*h.dst, b.Hook())
		}
	}
	if !c.Lazy {
		return def, nil
	}
	load := opts.Loader
	return route.NewLazy(func(ctx context.Context) (any, error) {
		return load(ctx, def)
	}), nil
}

func props(v any) (route.Props, error) {
	switch p := v.(type) {
	case nil:
		return route.Props{}, nil
	case bool:
		return route.PropsParams(p), nil
	case map[string]any:
		return route.PropsObject(p), nil
	}
	return route.Props{}, fmt.Errorf("props must be a boolean or an object, got %T", v)
}
