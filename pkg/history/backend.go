package history

import "sync"

// Backend persists the externally visible location. Locations are full
// paths including the History base.
type Backend interface {
	// Push adds a new entry.
	Push(url string)
	// Replace overwrites the current entry.
	Replace(url string)
	// Go moves n entries through the history. Backends report the resulting
	// location through the Listen callback.
	Go(n int)
	// Location returns the current location.
	Location() string
	// Listen registers fn for location changes not caused by Push or
	// Replace (back/forward). It returns a function removing fn.
	Listen(fn func(url string)) (stop func())
}

// MemoryBackend keeps history entries in memory, like a browser session
// history without a browser.
type MemoryBackend struct {
	mu        sync.Mutex
	stack     []string
	index     int
	listeners map[int]func(string)
	nextID    int
}

// NewMemoryBackend returns a backend whose single entry is initial.
func NewMemoryBackend(initial string) *MemoryBackend {
	if initial == "" {
		initial = "/"
	}
	return &MemoryBackend{
		stack:     []string{initial},
		listeners: make(map[int]func(string)),
	}
}

// Push implements Backend. Entries after the current one are discarded.
func (b *MemoryBackend) Push(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stack = append(b.stack[:b.index+1], url)
	b.index++
}

// Replace implements Backend.
func (b *MemoryBackend) Replace(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stack[b.index] = url
}

// Go implements Backend. Moves outside the stack are ignored.
func (b *MemoryBackend) Go(n int) {
	b.mu.Lock()
	target := b.index + n
	if n == 0 || target < 0 || target >= len(b.stack) {
		b.mu.Unlock()
		return
	}
	b.index = target
	url := b.stack[target]
	listeners := make([]func(string), 0, len(b.listeners))
	for id := 0; id < b.nextID; id++ {
		if fn, ok := b.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(url)
	}
}

// Location implements Backend.
func (b *MemoryBackend) Location() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stack[b.index]
}

// Listen implements Backend.
func (b *MemoryBackend) Listen(fn func(string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Entries returns a copy of the stack and the current index.
func (b *MemoryBackend) Entries() ([]string, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.stack))
	copy(out, b.stack)
	return out, b.index
}
