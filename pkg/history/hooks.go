package history

import (
	"sync"

	"github.com/vango-dev/navcore/pkg/route"
)

// Hooks holds the global navigation hooks of one History. Hooks run in
// registration order. Every registration returns a function removing it.
type Hooks struct {
	mu      sync.RWMutex
	seq     uint64
	before  []entry[route.Guard]
	resolve []entry[route.Guard]
	after   []entry[route.AfterHook]
}

type entry[T any] struct {
	id uint64
	fn T
}

// BeforeEach registers a guard running before in-component update guards.
func (h *Hooks) BeforeEach(g route.Guard) (remove func()) {
	return register(h, &h.before, g)
}

// BeforeResolve registers a guard running after enter guards and lazy
// component resolution.
func (h *Hooks) BeforeResolve(g route.Guard) (remove func()) {
	return register(h, &h.resolve, g)
}

// AfterEach registers a hook observing every committed navigation.
func (h *Hooks) AfterEach(fn route.AfterHook) (remove func()) {
	return register(h, &h.after, fn)
}

func (h *Hooks) beforeGuards() []route.Guard   { return snapshot(h, &h.before) }
func (h *Hooks) resolveGuards() []route.Guard  { return snapshot(h, &h.resolve) }
func (h *Hooks) afterHooks() []route.AfterHook { return snapshot(h, &h.after) }

func register[T any](h *Hooks, list *[]entry[T], fn T) func() {
	h.mu.Lock()
	h.seq++
	id := h.seq
	*list = append(*list, entry[T]{id: id, fn: fn})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, e := range *list {
			if e.id == id {
				*list = append((*list)[:i:i], (*list)[i+1:]...)
				return
			}
		}
	}
}

func snapshot[T any](h *Hooks, list *[]entry[T]) []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]T, len(*list))
	for i, e := range *list {
		out[i] = e.fn
	}
	return out
}
