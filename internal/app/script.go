package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/router"
)

// Step kinds understood by Run.
const (
	StepPush    = "push"
	StepReplace = "replace"
	StepGo      = "go"
)

// Step is one scripted navigation.
type Step struct {
	Kind string
	Path string
	N    int
}

// ParseStep parses "/path", "push:/path", "replace:/path", "back",
// "forward" or "go:N".
func ParseStep(s string) (Step, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "back":
		return Step{Kind: StepGo, N: -1}, nil
	case "forward":
		return Step{Kind: StepGo, N: 1}, nil
	}
	kind, arg, ok := strings.Cut(s, ":")
	if !ok || strings.HasPrefix(s, "/") {
		return Step{Kind: StepPush, Path: s}, nil
	}
	switch kind {
	case StepPush, StepReplace:
		if arg == "" {
			return Step{}, fmt.Errorf("step %q needs a path", s)
		}
		return Step{Kind: kind, Path: arg}, nil
	case StepGo:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return Step{}, fmt.Errorf("step %q: %w", s, err)
		}
		return Step{Kind: StepGo, N: n}, nil
	}
	return Step{}, fmt.Errorf("unknown step %q", s)
}

func (s Step) String() string {
	switch {
	case s.Kind == StepGo && s.N == -1:
		return "back"
	case s.Kind == StepGo && s.N == 1:
		return "forward"
	case s.Kind == StepGo:
		return fmt.Sprintf("go:%d", s.N)
	}
	return s.Kind + ":" + s.Path
}

// StepResult reports how a step ended.
type StepResult struct {
	Step   Step
	Result history.Result
	Route  *route.Route
	Err    error
}

// Run executes steps in order against the memory backend. A step that
// fails does not stop the script; only ctx does.
func (a *App) Run(ctx context.Context, steps []Step) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := a.runStep(ctx, step)
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		results = append(results, res)
	}
	return results, nil
}

func (a *App) runStep(ctx context.Context, step Step) StepResult {
	res := StepResult{Step: step}
	switch step.Kind {
	case StepGo:
		mem, ok := a.Backend.(*history.MemoryBackend)
		if !ok {
			res.Err = fmt.Errorf("%s needs the memory backend", step)
			res.Result = history.ResultFailed
			return res
		}
		entries, index := mem.Entries()
		if target := index + step.N; step.N == 0 || target < 0 || target >= len(entries) {
			res.Result = history.ResultAborted
			res.Route = a.Router.Current()
			return res
		}
		w := a.settled.wait(nil)
		a.Router.Go(step.N)
		select {
		case f := <-w.ch:
			res.Result, res.Err = f.result, f.err
		case <-ctx.Done():
			a.settled.cancel(w)
			res.Err = ctx.Err()
		}
	default:
		var opts []router.NavigateOption
		if step.Kind == StepReplace {
			opts = append(opts, router.WithReplace())
		}
		// The transition a redirect starts settles after Navigate returns.
		w := a.settled.wait(func(r history.Result) bool { return r != history.ResultRedirected })
		_, err := a.Router.Navigate(ctx, step.Path, opts...)
		res.Err = err
		res.Result = resultOf(err)
		if res.Result != history.ResultRedirected {
			a.settled.cancel(w)
			break
		}
		select {
		case <-w.ch:
		case <-ctx.Done():
			a.settled.cancel(w)
		}
	}
	res.Route = a.Router.Current()
	return res
}

func resultOf(err error) history.Result {
	switch errors.CodeOf(err) {
	case "":
		if err != nil {
			return history.ResultFailed
		}
		return history.ResultCommitted
	case errors.CodeDuplicated:
		return history.ResultDuplicated
	case errors.CodeAborted:
		return history.ResultAborted
	case errors.CodeRedirected:
		return history.ResultRedirected
	case errors.CodeCancelled:
		return history.ResultCancelled
	}
	return history.ResultFailed
}

// =============================================================================
// Settle observer
// =============================================================================

type finished struct {
	result history.Result
	err    error
}

type waiter struct {
	accept func(history.Result) bool
	ch     chan finished
}

// settleObserver hands finished transitions to waiters.
type settleObserver struct {
	history.NopObserver

	mu      sync.Mutex
	waiters []*waiter
}

// wait registers for the next finished transition whose result passes
// accept. A nil accept takes any result.
func (s *settleObserver) wait(accept func(history.Result) bool) *waiter {
	w := &waiter{accept: accept, ch: make(chan finished, 1)}
	s.mu.Lock()
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()
	return w
}

func (s *settleObserver) cancel(w *waiter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.waiters {
		if cur == w {
			s.waiters = append(s.waiters[:i:i], s.waiters[i+1:]...)
			return
		}
	}
}

func (s *settleObserver) TransitionFinished(_ history.TransitionInfo, result history.Result, err error) {
	s.mu.Lock()
	var ready []*waiter
	kept := s.waiters[:0]
	for _, w := range s.waiters {
		if w.accept == nil || w.accept(result) {
			ready = append(ready, w)
		} else {
			kept = append(kept, w)
		}
	}
	s.waiters = kept
	s.mu.Unlock()
	for _, w := range ready {
		w.ch <- finished{result: result, err: err}
	}
}
