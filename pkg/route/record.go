package route

import (
	"context"
	"sort"
	"sync"
)

// DefaultSlot is the name of the unnamed view slot.
const DefaultSlot = "default"

// Instance is a live component instance rendering a record slot.
// Instances must be comparable (typically pointers).
type Instance = any

// Destroyer is implemented by instances that can report they are being torn
// down. Such instances are never handed to guard callbacks.
type Destroyer interface {
	BeingDestroyed() bool
}

// Record is one node of the route table.
//
// Every field except the instance registry is fixed once the record is built.
type Record struct {
	// Path is the full path pattern, including ancestors (e.g. "/users/:id").
	Path string

	// Name is the optional unique route name.
	Name string

	// Parent is the enclosing record for nested routes.
	Parent *Record

	// Components maps a view slot to its component definition.
	Components map[string]Component

	// Props maps a view slot to its props strategy.
	Props map[string]Props

	// BeforeEnter is the per-record enter guard.
	BeforeEnter Guard

	// Redirect is a target the matcher redirects to instead of this record.
	Redirect *Location

	// Meta is arbitrary user data.
	Meta map[string]any

	mu        sync.Mutex
	instances map[string]Instance
	changed   chan struct{}
}

// Chain returns the records from the root down to r.
func (r *Record) Chain() []*Record {
	var chain []*Record
	for rec := r; rec != nil; rec = rec.Parent {
		chain = append(chain, rec)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Slots returns the record's view slot names, DefaultSlot first and the rest
// in lexical order.
func (r *Record) Slots() []string {
	slots := make([]string, 0, len(r.Components))
	for name := range r.Components {
		if name != DefaultSlot {
			slots = append(slots, name)
		}
	}
	sort.Strings(slots)
	if _, ok := r.Components[DefaultSlot]; ok {
		slots = append([]string{DefaultSlot}, slots...)
	}
	return slots
}

// Instance returns the instance registered for slot.
func (r *Record) Instance(slot string) (Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[slot]
	return inst, ok
}

// SetInstance unconditionally stores inst for slot. A nil inst clears it.
func (r *Record) SetInstance(slot string, inst Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(slot, inst)
}

// RegisterInstance is called by the view layer on creation (register=true)
// and destruction (register=false) of inst. Registration only writes when the
// slot holds a different instance; unregistration only clears the slot when
// inst is its current owner, so a replacement registered first survives the
// teardown of its predecessor.
func (r *Record) RegisterInstance(slot string, inst Instance, register bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.instances[slot]
	switch {
	case register && (!ok || current != inst):
		r.setLocked(slot, inst)
	case !register && ok && current == inst:
		r.setLocked(slot, nil)
	}
}

// WaitInstance blocks until a usable instance is registered for slot or ctx
// is done. Instances reporting BeingDestroyed are skipped.
func (r *Record) WaitInstance(ctx context.Context, slot string) (Instance, error) {
	for {
		r.mu.Lock()
		inst, ok := r.instances[slot]
		if ok && usable(inst) {
			r.mu.Unlock()
			return inst, nil
		}
		if r.changed == nil {
			r.changed = make(chan struct{})
		}
		changed := r.changed
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-changed:
		}
	}
}

// LiveInstance returns the instance for slot if one is registered and not
// being torn down.
func (r *Record) LiveInstance(slot string) (Instance, bool) {
	inst, ok := r.Instance(slot)
	if !ok || !usable(inst) {
		return nil, false
	}
	return inst, true
}

func (r *Record) setLocked(slot string, inst Instance) {
	if inst == nil {
		delete(r.instances, slot)
	} else {
		if r.instances == nil {
			r.instances = make(map[string]Instance)
		}
		r.instances[slot] = inst
	}
	if r.changed != nil {
		close(r.changed)
		r.changed = nil
	}
}

func usable(inst Instance) bool {
	if inst == nil {
		return false
	}
	if d, ok := inst.(Destroyer); ok && d.BeingDestroyed() {
		return false
	}
	return true
}
