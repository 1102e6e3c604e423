package matcher

import (
	"strings"

	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// node is one segment position in the match tree. Static children are
// tried first, then the parameter child, then the catch-all.
type node struct {
	segment string

	// param and catchAll mark dynamic positions; name is the captured key.
	param    bool
	catchAll bool
	name     string
	kind     string

	// record ends at this node, if any.
	record *route.Record

	static  []*node
	dynamic *node
	rest    *node
}

func (n *node) staticChild(segment string) *node {
	for _, child := range n.static {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *node) addStatic(segment string) *node {
	if child := n.staticChild(segment); child != nil {
		return child
	}
	child := &node{segment: segment}
	n.static = append(n.static, child)
	return child
}

// addDynamic returns the parameter child. A node has at most one; later
// patterns reuse the first one's name and type.
func (n *node) addDynamic(name, kind string) *node {
	if n.dynamic == nil {
		n.dynamic = &node{param: true, name: name, kind: kind}
	}
	return n.dynamic
}

func (n *node) addRest(name string) *node {
	if n.rest == nil {
		n.rest = &node{catchAll: true, name: name}
	}
	return n.rest
}

// insert walks (and grows) the tree along segments and returns the node the
// pattern ends at.
func (n *node) insert(segments []segment) *node {
	at := n
	for _, seg := range segments {
		switch seg.kind {
		case segmentCatchAll:
			return at.addRest(seg.name)
		case segmentParam:
			at = at.addDynamic(seg.name, seg.paramType)
		default:
			at = at.addStatic(seg.name)
		}
	}
	return at
}

// match resolves segments to a record, filling params on the way. A branch
// that fails deeper down is abandoned for the next kind of child.
func (n *node) match(segments []string, params map[string]string) (*route.Record, bool) {
	if len(segments) == 0 {
		if n.record != nil {
			return n.record, true
		}
		// A catch-all also matches an empty remainder.
		if r := n.rest; r != nil && r.record != nil {
			params[r.name] = ""
			return r.record, true
		}
		return nil, false
	}

	head, tail := segments[0], segments[1:]

	if child := n.staticChild(head); child != nil {
		if rec, ok := child.match(tail, params); ok {
			return rec, true
		}
	}

	if d := n.dynamic; d != nil {
		if value, err := routepath.DecodeSegment(head, false); err == nil && ValidateParam(value, d.kind) == nil {
			params[d.name] = value
			if rec, ok := d.match(tail, params); ok {
				return rec, true
			}
			delete(params, d.name)
		}
	}

	if r := n.rest; r != nil && r.record != nil {
		if value, err := routepath.DecodeSegment(strings.Join(segments, "/"), true); err == nil {
			params[r.name] = value
			return r.record, true
		}
	}

	return nil, false
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
