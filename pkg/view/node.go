package view

import (
	"sync"

	"github.com/vango-dev/navcore/pkg/route"
)

// NodeKind is the node type discriminator.
type NodeKind uint8

const (
	KindRoot      NodeKind = iota // navigation root
	KindComponent                 // plain host component
	KindView                      // component rendered by a View
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindComponent:
		return "Component"
	case KindView:
		return "View"
	default:
		return "Unknown"
	}
}

// Node is a position in the host component tree.
type Node struct {
	Kind   NodeKind
	Parent *Node

	mu        sync.Mutex
	keepAlive bool
	inactive  bool
	cache     map[string]route.Component
}

// NewRoot creates a navigation root.
func NewRoot() *Node {
	return &Node{Kind: KindRoot}
}

// Child creates a plain host component below n.
func (n *Node) Child() *Node {
	return &Node{Kind: KindComponent, Parent: n}
}

// SetKeepAlive marks n as wrapped in a keep-alive boundary.
func (n *Node) SetKeepAlive(keep bool) {
	n.mu.Lock()
	n.keepAlive = keep
	n.mu.Unlock()
}

// SetInactive toggles the deactivated state of a kept-alive node.
func (n *Node) SetInactive(inactive bool) {
	n.mu.Lock()
	n.inactive = inactive
	n.mu.Unlock()
}

// KeepAlive reports whether n sits in a keep-alive boundary.
func (n *Node) KeepAlive() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.keepAlive
}

// dormant reports whether n is kept alive but currently switched off.
func (n *Node) dormant() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.keepAlive && n.inactive
}

func (n *Node) cached(slot string) route.Component {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cache[slot]
}

func (n *Node) remember(slot string, c route.Component) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if c == nil {
		delete(n.cache, slot)
		return
	}
	if n.cache == nil {
		n.cache = make(map[string]route.Component)
	}
	n.cache[slot] = c
}
