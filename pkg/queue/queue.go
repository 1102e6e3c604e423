// Package queue runs a list of asynchronous steps strictly one after another.
//
// Each step receives a continuation. Calling it with halt=false runs the next
// step; calling it with halt=true stops the queue without running done. Only
// the first call of a continuation counts. A step that never calls its
// continuation stalls the queue; that is the caller's responsibility.
package queue

import "sync/atomic"

// Iterator runs one step and calls next exactly once when it is finished.
type Iterator[S any] func(step S, next func(halt bool))

// Run executes steps in order through iterate and calls done after the last
// one. Continuations may be called from any goroutine.
func Run[S any](steps []S, iterate Iterator[S], done func()) {
	var step func(index int)
	step = func(index int) {
		if index >= len(steps) {
			if done != nil {
				done()
			}
			return
		}
		var called atomic.Bool
		iterate(steps[index], func(halt bool) {
			if !called.CompareAndSwap(false, true) {
				return
			}
			if halt {
				return
			}
			step(index + 1)
		})
	}
	step(0)
}
