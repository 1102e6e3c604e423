package route

type propsKind int

const (
	propsNone propsKind = iota
	propsObject
	propsFunc
	propsParams
)

// Props is a record slot's strategy for deriving component props from the
// active route. The zero value passes no props.
type Props struct {
	kind   propsKind
	object map[string]any
	fn     func(*Route) map[string]any
}

// PropsObject passes a fixed set of props.
func PropsObject(m map[string]any) Props {
	return Props{kind: propsObject, object: m}
}

// PropsFunc derives props from the route.
func PropsFunc(fn func(*Route) map[string]any) Props {
	if fn == nil {
		return Props{}
	}
	return Props{kind: propsFunc, fn: fn}
}

// PropsParams passes the route params as props when enabled.
func PropsParams(enabled bool) Props {
	if !enabled {
		return Props{}
	}
	return Props{kind: propsParams}
}

// IsZero reports whether p passes nothing.
func (p Props) IsZero() bool { return p.kind == propsNone }

// Resolve computes the props for r. It returns nil when p passes nothing.
func (p Props) Resolve(r *Route) map[string]any {
	switch p.kind {
	case propsObject:
		out := make(map[string]any, len(p.object))
		for k, v := range p.object {
			out[k] = v
		}
		return out
	case propsFunc:
		return p.fn(r)
	case propsParams:
		if r == nil {
			return nil
		}
		out := make(map[string]any, len(r.Params))
		for k, v := range r.Params {
			out[k] = v
		}
		return out
	}
	return nil
}
