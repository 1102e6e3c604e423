package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/atomic"

	naverrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/guards"
	"github.com/vango-dev/navcore/pkg/queue"
	"github.com/vango-dev/navcore/pkg/route"
)

// transition is one run of the guard pipeline.
type transition struct {
	gen        uint64
	info       TransitionInfo
	to, from   *route.Route
	ctx        context.Context
	cancel     context.CancelFunc
	logger     *slog.Logger
	onComplete func(*route.Route)
	onAbort    func(error)
	settled    atomic.Bool
}

// settle claims the right to report the transition's outcome.
func (t *transition) settle() bool {
	return t.settled.CompareAndSwap(false, true)
}

type step struct {
	phase Phase
	guard route.Guard
}

// TransitionTo navigates to loc. onComplete receives the committed route;
// onAbort receives nil for a duplicate navigation and the failure otherwise.
// Exactly one of them is called, at most once, unless a guard stalls.
func (h *History) TransitionTo(loc route.Location, onComplete func(*route.Route), onAbort func(error)) {
	target := h.matcher.Match(loc, h.Current())
	h.ConfirmTransition(target, func(r *route.Route) {
		h.updateRoute(r)
		if onComplete != nil {
			onComplete(r)
		}
		h.EnsureURL(false)
		h.markReady(r, nil)
	}, func(err error) {
		if onAbort != nil {
			onAbort(err)
		}
		if IsGenuine(err) {
			h.markReady(nil, err)
		}
	})
}

// ConfirmTransition runs the guard pipeline for to against the current route
// and calls onComplete once every guard has allowed it. It does not commit
// the route; that is onComplete's job.
func (h *History) ConfirmTransition(to *route.Route, onComplete func(*route.Route), onAbort func(error)) {
	from := h.Current()
	t := &transition{
		info: TransitionInfo{
			ID:      uuid.NewString(),
			From:    from,
			To:      to,
			Started: time.Now(),
		},
		to:         to,
		from:       from,
		onComplete: onComplete,
		onAbort:    onAbort,
	}
	t.logger = h.logger.With("navigation_id", t.info.ID)

	h.observers.TransitionStarted(t.info)
	t.logger.Debug("navigation started", "from", from.FullPath, "to", to.FullPath)

	if route.IsSameRoute(to, from) && len(to.Matched) == len(from.Matched) {
		h.EnsureURL(false)
		t.settle()
		h.observers.TransitionFinished(t.info, ResultDuplicated, nil)
		t.logger.Debug("navigation duplicated", "to", to.FullPath)
		if onAbort != nil {
			onAbort(nil)
		}
		return
	}

	diff := ResolveQueue(from.Matched, to.Matched)

	t.gen = h.seq.Inc()
	t.ctx, t.cancel = context.WithCancel(h.ctx)
	h.begin(t)

	steps := make([]step, 0, 8)
	for _, g := range guards.Leave(diff.Deactivated) {
		steps = append(steps, step{PhaseLeave, g})
	}
	for _, g := range h.hooks.beforeGuards() {
		steps = append(steps, step{PhaseBefore, g})
	}
	for _, g := range guards.Update(diff.Updated) {
		steps = append(steps, step{PhaseUpdate, g})
	}
	for _, rec := range diff.Activated {
		if rec.BeforeEnter != nil {
			steps = append(steps, step{PhaseEnterConfig, rec.BeforeEnter})
		}
	}
	steps = append(steps, step{PhaseAsync, guards.ResolveAsync(t.ctx, diff.Activated)})

	iterate := func(s step, next func(halt bool)) { h.runStep(t, s, next) }

	queue.Run(steps, iterate, func() {
		post := &guards.PostEnter{}
		var enter []step
		for _, g := range guards.Enter(diff.Activated, post) {
			enter = append(enter, step{PhaseEnter, g})
		}
		for _, g := range h.hooks.resolveGuards() {
			enter = append(enter, step{PhaseResolve, g})
		}
		queue.Run(enter, iterate, func() { h.commit(t, post) })
	})
}

// begin makes t the pending transition, cancelling the one it supersedes.
func (h *History) begin(t *transition) {
	h.mu.Lock()
	prev := h.pending
	h.pending = t
	h.pendingGen.Store(t.gen)
	h.mu.Unlock()

	if prev != nil {
		h.finish(prev, failure(naverrors.CodeCancelled, prev.from.FullPath, prev.to.FullPath))
	}
}

// release clears t as the pending transition. It reports false when t is no
// longer pending.
func (h *History) release(t *transition) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending != t {
		return false
	}
	h.pending = nil
	h.pendingGen.Store(0)
	return true
}

func (h *History) isPending(t *transition) bool {
	return h.pendingGen.Load() == t.gen
}

// runStep runs one guard and maps its outcome onto the pipeline.
func (h *History) runStep(t *transition, s step, next func(halt bool)) {
	if !h.isPending(t) {
		next(true)
		return
	}
	h.observers.GuardStarted(t.info, s.phase)

	var (
		answered atomic.Bool
		mu       sync.Mutex
		inGuard  = true
		held     *route.Outcome
	)
	apply := func(o route.Outcome) {
		if !h.isPending(t) {
			next(true)
			return
		}
		switch o.Kind {
		case route.OutcomeAbort:
			next(true)
			h.EnsureURL(true)
			h.abort(t, failure(naverrors.CodeAborted, t.from.FullPath, t.to.FullPath))
		case route.OutcomeFail:
			next(true)
			h.EnsureURL(true)
			h.abort(t, guardError(o.Err, t))
		case route.OutcomeRedirect:
			next(true)
			h.abort(t, failure(naverrors.CodeRedirected, t.from.FullPath, t.to.FullPath).
				WithDetail("redirected to "+o.Location.String()))
			if o.Location.Replace {
				h.Replace(o.Location, nil, nil)
			} else {
				h.Push(o.Location, nil, nil)
			}
		default:
			next(false)
		}
	}
	// An answer given while the guard is still on the stack is held until
	// the guard returns, so only the guard's own frame is under panics.Try.
	cont := func(o route.Outcome) {
		if !answered.CompareAndSwap(false, true) {
			return
		}
		mu.Lock()
		if inGuard {
			held = &o
			mu.Unlock()
			return
		}
		mu.Unlock()
		apply(o)
	}

	r := panics.Try(func() { s.guard(t.to, t.from, cont) })

	mu.Lock()
	inGuard = false
	answer := held
	mu.Unlock()

	if r != nil {
		if answered.CompareAndSwap(false, true) {
			next(true)
			if h.isPending(t) {
				h.EnsureURL(true)
				h.abort(t, naverrors.New(naverrors.CodeGuardThrew).
					Between(t.from.FullPath, t.to.FullPath).
					WithDetail(fmt.Sprintf("phase %s", s.phase)).
					Wrap(r.AsError()))
			}
			return
		}
		t.logger.Warn("guard panicked after calling its continuation", "phase", s.phase, "panic", r.Value)
	}
	if answer != nil {
		apply(*answer)
	}
}

func guardError(err error, t *transition) error {
	if naverrors.CodeOf(err) != "" {
		return err
	}
	return naverrors.New(naverrors.CodeGuardFailed).Between(t.from.FullPath, t.to.FullPath).Wrap(err)
}

// abort ends the pending transition t with err.
func (h *History) abort(t *transition, err error) {
	if !h.release(t) {
		return
	}
	h.finish(t, err)
}

// finish reports a transition that did not commit.
func (h *History) finish(t *transition, err error) {
	if !t.settle() {
		return
	}
	t.cancel()

	result := resultOf(err)
	h.observers.TransitionFinished(t.info, result, err)
	if IsGenuine(err) {
		t.logger.Debug("navigation failed", "to", t.to.FullPath, "error", err)
		h.reportError(t.logger, err)
	} else {
		t.logger.Debug("navigation stopped", "result", result, "to", t.to.FullPath)
	}
	if t.onAbort != nil {
		t.onAbort(err)
	}
}

// commit completes t after the whole pipeline allowed it.
func (h *History) commit(t *transition, post *guards.PostEnter) {
	if !h.release(t) || !t.settle() {
		return
	}
	t.cancel()

	h.observers.TransitionFinished(t.info, ResultCommitted, nil)
	t.logger.Info("navigation committed",
		"from", t.from.FullPath,
		"to", t.to.FullPath,
		"duration", time.Since(t.info.Started),
	)
	if t.onComplete != nil {
		t.onComplete(t.to)
	}

	if post.Len() > 0 {
		ctx := h.routeContext(t.to)
		h.nextTick(func() { post.Flush(ctx) })
	}
}
