// Package signal provides an explicit subscription cell used to publish the
// active route to the view layer.
package signal

import (
	"sync"
	"sync/atomic"
)

var nextID atomic.Uint64

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Cell holds a value and notifies subscribers on every Set.
// The zero value is ready to use and holds the zero T.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T

	// subs are notified in subscription order.
	subs  []subscriber[T]
	subMu sync.RWMutex
}

// New returns a Cell holding initial.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores v and notifies subscribers synchronously.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
	c.notify(v)
}

// Subscribe registers fn to be called with each new value and returns a
// function removing the subscription. Unsubscribing twice is a no-op.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	id := nextID.Add(1)

	c.subMu.Lock()
	c.subs = append(c.subs, subscriber[T]{id: id, fn: fn})
	c.subMu.Unlock()

	return func() { c.unsubscribe(id) }
}

// Len returns the number of subscribers.
func (c *Cell[T]) Len() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subs)
}

func (c *Cell[T]) unsubscribe(id uint64) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return
		}
	}
}

// notify uses copy-before-notify so subscribers may subscribe or unsubscribe
// from inside their callback.
func (c *Cell[T]) notify(v T) {
	c.subMu.RLock()
	subs := make([]subscriber[T], len(c.subs))
	copy(subs, c.subs)
	c.subMu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}
