package routepath

import (
	"net/url"
	"sort"
	"strings"
)

// Query maps a query key to its values. A key given once holds a single
// element; repeated keys hold every value in order.
type Query map[string][]string

// Get returns the first value for key, or "".
func (q Query) Get(key string) string {
	if v := q[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Clone returns a copy of q that shares no slices with it.
func (q Query) Clone() Query {
	if q == nil {
		return Query{}
	}
	out := make(Query, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ParseQuery decodes a query string (with or without the leading "?").
// Malformed escapes are kept verbatim rather than rejected.
func ParseQuery(raw string) Query {
	res := Query{}
	raw = strings.TrimLeft(strings.TrimSpace(raw), "?#&")
	if raw == "" {
		return res
	}

	for _, param := range strings.Split(raw, "&") {
		if param == "" {
			continue
		}
		key, val, _ := strings.Cut(strings.ReplaceAll(param, "+", " "), "=")
		key = decode(key)
		res[key] = append(res[key], decode(val))
	}
	return res
}

// StringifyQuery encodes q with keys in sorted order. Keys with an empty
// value are written bare ("?flag"). Returns "" for an empty query and
// "?a=1&b=2" otherwise.
func StringifyQuery(q Query) string {
	if len(q) == 0 {
		return ""
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		vals := q[k]
		if len(vals) == 0 {
			parts = append(parts, encode(k))
			continue
		}
		for _, v := range vals {
			if v == "" {
				parts = append(parts, encode(k))
				continue
			}
			parts = append(parts, encode(k)+"="+encode(v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// ResolveQuery parses raw and overlays extra on top of it.
func ResolveQuery(raw string, extra Query) Query {
	parsed := ParseQuery(raw)
	for k, v := range extra {
		parsed[k] = append([]string(nil), v...)
	}
	return parsed
}

// QueryEqual reports whether a and b hold the same keys with the same values.
// A nil query equals an empty one.
func QueryEqual(a, b Query) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
	}
	return true
}

// QueryIncludes reports whether every key of target is present in current with
// the same values.
func QueryIncludes(current, target Query) bool {
	for k, tv := range target {
		cv, ok := current[k]
		if !ok || len(cv) != len(tv) {
			return false
		}
		for i := range tv {
			if cv[i] != tv[i] {
				return false
			}
		}
	}
	return true
}

func decode(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}

// encode escapes like encodeURIComponent, keeping commas readable.
func encode(s string) string {
	out := url.QueryEscape(s)
	out = strings.ReplaceAll(out, "+", "%20")
	return strings.ReplaceAll(out, "%2C", ",")
}
