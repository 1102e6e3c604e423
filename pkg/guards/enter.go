package guards

import (
	"context"
	"sync"

	"github.com/vango-dev/navcore/pkg/route"
)

// PostEnter collects the route.Mounted callbacks requested by enter hooks
// during one navigation.
type PostEnter struct {
	mu      sync.Mutex
	pending []func(ctx context.Context)
	waiters sync.WaitGroup
}

// Len returns the number of queued callbacks.
func (p *PostEnter) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Flush delivers every queued callback. Slots that already hold a live
// instance are served immediately; the rest are served from a goroutine once
// an instance is registered. ctx bounds the wait and should be cancelled when
// the navigated route stops being current.
func (p *PostEnter) Flush(ctx context.Context) {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, fn := range pending {
		fn(ctx)
	}
}

// Wait blocks until all goroutines started by Flush have returned.
func (p *PostEnter) Wait() {
	p.waiters.Wait()
}

func (p *PostEnter) add(rec *route.Record, slot string, cb func(route.Instance)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, func(ctx context.Context) {
		if inst, ok := rec.LiveInstance(slot); ok {
			cb(inst)
			return
		}
		p.waiters.Add(1)
		go func() {
			defer p.waiters.Done()
			inst, err := rec.WaitInstance(ctx, slot)
			if err != nil {
				return
			}
			cb(inst)
		}()
	})
}

// Enter returns the enter hooks of activated records, root first. Hooks run
// without an instance; a route.Mounted outcome is queued on post and the
// navigation proceeds.
func Enter(activated []*route.Record, post *PostEnter) []route.Guard {
	return Extract(activated, route.HookBeforeRouteEnter, func(hook route.Hook, rec *route.Record, slot string) route.Guard {
		return func(to, from *route.Route, next route.Next) {
			hook(nil, to, from, func(o route.Outcome) {
				if o.Kind == route.OutcomeMounted {
					if post != nil {
						post.add(rec, slot, o.Mounted)
					}
					next(route.Proceed())
					return
				}
				next(o)
			})
		}
	}, false)
}
