package history

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	naverrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/matcher"
	"github.com/vango-dev/navcore/pkg/route"
)

type result struct {
	mu        sync.Mutex
	route     *route.Route
	err       error
	completed int
	aborted   int
	done      chan struct{}
}

func newResult() *result { return &result{done: make(chan struct{}, 2)} }

func (r *result) complete(rt *route.Route) {
	r.mu.Lock()
	r.route = rt
	r.completed++
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *result) abort(err error) {
	r.mu.Lock()
	r.err = err
	r.aborted++
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *result) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("navigation did not finish")
	}
}

func (r *result) counts() (completed, aborted int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed, r.aborted
}

type countingObserver struct {
	mu       sync.Mutex
	started  int
	phases   []Phase
	finished []Result
}

func (o *countingObserver) TransitionStarted(TransitionInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *countingObserver) GuardStarted(_ TransitionInfo, p Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, p)
}

func (o *countingObserver) TransitionFinished(_ TransitionInfo, r Result, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, r)
}

type testEnv struct {
	h       *History
	backend *MemoryBackend
	matcher *matcher.Matcher
	logs    *bytes.Buffer
	obs     *countingObserver
}

func newEnv(t *testing.T, routes []matcher.RouteConfig, opts ...Option) *testEnv {
	t.Helper()
	m, err := matcher.New(routes)
	if err != nil {
		t.Fatalf("matcher.New() error = %v", err)
	}
	logs := &bytes.Buffer{}
	obs := &countingObserver{}
	backend := NewMemoryBackend("/")
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		WithObserver(obs),
	}, opts...)
	h := New(m, backend, opts...)
	t.Cleanup(h.Close)
	return &testEnv{h: h, backend: backend, matcher: m, logs: logs, obs: obs}
}

func (e *testEnv) transition(loc string) *result {
	r := newResult()
	e.h.TransitionTo(route.Path(loc), r.complete, r.abort)
	return r
}

func (e *testEnv) push(t *testing.T, loc string) *route.Route {
	t.Helper()
	r := newResult()
	e.h.Push(route.Path(loc), r.complete, r.abort)
	r.wait(t)
	if r.err != nil {
		t.Fatalf("Push(%q) aborted: %v", loc, r.err)
	}
	return r.route
}

func flatRoutes() []matcher.RouteConfig {
	return []matcher.RouteConfig{
		{Path: "/", Component: "Home"},
		{Path: "/a", Name: "a", Component: "A"},
		{Path: "/b", Name: "b", Component: "B"},
		{Path: "/login", Component: "Login"},
		{Path: "/admin", Component: "Admin"},
		{Path: "/slow", Component: "Slow"},
		{Path: "/fast", Component: "Fast"},
	}
}

func TestTransitionCommits(t *testing.T) {
	e := newEnv(t, flatRoutes())
	var published []*route.Route
	e.h.Subscribe(func(r *route.Route) { published = append(published, r) })

	r := e.transition("/a")
	if c, a := r.counts(); c != 1 || a != 0 {
		t.Fatalf("completed=%d aborted=%d, want 1/0", c, a)
	}
	if e.h.Current().Path != "/a" {
		t.Errorf("Current() = %s, want /a", e.h.Current())
	}
	if e.h.Pending() != nil {
		t.Error("Pending() should be nil after commit")
	}
	if len(published) != 1 || published[0] != e.h.Current() {
		t.Errorf("published %v, want the committed route once", published)
	}
	if got := e.backend.Location(); got != "/a" {
		t.Errorf("backend location = %q, want /a", got)
	}
}

func TestTransitionDuplicate(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.push(t, "/a")
	before := e.h.Current()

	guardRuns := 0
	e.h.Hooks().BeforeEach(func(_, _ *route.Route, next route.Next) {
		guardRuns++
		next(route.Proceed())
	})

	r := e.transition("/a")
	if c, a := r.counts(); c != 0 || a != 1 {
		t.Fatalf("completed=%d aborted=%d, want 0/1", c, a)
	}
	if r.err != nil {
		t.Errorf("duplicate abort error = %v, want nil", r.err)
	}
	if guardRuns != 0 {
		t.Errorf("guards ran %d times, want 0", guardRuns)
	}
	if e.h.Current() != before {
		t.Error("Current() changed on duplicate navigation")
	}
}

func TestTransitionAbort(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.push(t, "/a")
	before := e.h.Current()

	e.h.Hooks().BeforeEach(func(to, _ *route.Route, next route.Next) {
		if to.Path == "/b" {
			next(route.Abort())
			return
		}
		next(route.Proceed())
	})
	errorCalls := 0
	e.h.OnError(func(error) { errorCalls++ })

	// The backend already moved, as after a back/forward.
	e.backend.Push("/b")
	r := e.transition("/b")

	if c, a := r.counts(); c != 0 || a != 1 {
		t.Fatalf("completed=%d aborted=%d, want 0/1", c, a)
	}
	if !errors.Is(r.err, ErrAborted) {
		t.Errorf("abort error = %v, want ErrAborted", r.err)
	}
	if e.h.Current() != before {
		t.Error("Current() changed after abort")
	}
	if e.h.Pending() != nil {
		t.Error("Pending() should be cleared after abort")
	}
	if got := e.backend.Location(); got != "/a" {
		t.Errorf("backend location = %q, want /a after resync", got)
	}
	if errorCalls != 0 {
		t.Errorf("OnError called %d times for a plain abort", errorCalls)
	}
}

func TestTransitionRedirect(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.push(t, "/a")
	e.h.Hooks().BeforeEach(func(to, _ *route.Route, next route.Next) {
		if to.Path == "/admin" {
			next(route.RedirectPath("/login"))
			return
		}
		next(route.Proceed())
	})
	started := e.obs.started

	r := e.transition("/admin")
	if c, a := r.counts(); c != 0 || a != 1 {
		t.Fatalf("completed=%d aborted=%d, want 0/1", c, a)
	}
	if !errors.Is(r.err, ErrRedirected) {
		t.Errorf("abort error = %v, want ErrRedirected", r.err)
	}
	if got := e.obs.started - started; got != 2 {
		t.Errorf("transitions started = %d, want 2", got)
	}
	if e.h.Current().Path != "/login" {
		t.Errorf("Current() = %s, want /login", e.h.Current())
	}
	entries, idx := e.backend.Entries()
	if entries[idx] != "/login" || entries[idx-1] != "/a" {
		t.Errorf("backend entries = %v (index %d), want /login pushed after /a", entries, idx)
	}
}

func TestTransitionRedirectReplace(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.push(t, "/a")
	e.h.Hooks().BeforeEach(func(to, _ *route.Route, next route.Next) {
		if to.Path == "/admin" {
			next(route.Redirect(route.Location{Path: "/login", Replace: true}))
			return
		}
		next(route.Proceed())
	})

	e.transition("/admin")
	entries, idx := e.backend.Entries()
	if entries[idx] != "/login" || idx != 1 {
		t.Errorf("backend entries = %v (index %d), want /a replaced by /login", entries, idx)
	}
}

func TestTransitionSuperseded(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.push(t, "/a")

	var held route.Next
	e.h.Hooks().BeforeEach(func(to, _ *route.Route, next route.Next) {
		if to.Path == "/slow" {
			held = next
			return
		}
		next(route.Proceed())
	})

	slow := e.transition("/slow")
	if e.h.Pending() == nil || e.h.Pending().Path != "/slow" {
		t.Fatalf("Pending() = %v, want /slow", e.h.Pending())
	}

	fast := e.transition("/fast")
	if c, a := slow.counts(); c != 0 || a != 1 {
		t.Fatalf("slow completed=%d aborted=%d, want 0/1", c, a)
	}
	if !errors.Is(slow.err, ErrCancelled) {
		t.Errorf("slow abort error = %v, want ErrCancelled", slow.err)
	}
	if c, _ := fast.counts(); c != 1 {
		t.Fatalf("fast completed = %d, want 1", c)
	}

	held(route.Proceed())
	held(route.Abort())
	if c, a := slow.counts(); c != 0 || a != 1 {
		t.Errorf("late continuation changed slow: completed=%d aborted=%d", c, a)
	}
	if e.h.Current().Path != "/fast" {
		t.Errorf("Current() = %s, want /fast", e.h.Current())
	}
	if got := e.backend.Location(); got != "/fast" {
		t.Errorf("backend location = %q, want /fast", got)
	}
}

func TestTransitionGuardPanics(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.push(t, "/a")
	e.h.Hooks().BeforeEach(func(to, _ *route.Route, next route.Next) {
		if to.Path == "/b" {
			panic("boom")
		}
		next(route.Proceed())
	})
	var reported []error
	e.h.OnError(func(err error) { reported = append(reported, err) })

	r := e.transition("/b")
	if !IsNavigationFailure(r.err, naverrors.CodeGuardThrew) {
		t.Fatalf("abort error = %v, want %s", r.err, naverrors.CodeGuardThrew)
	}
	if !strings.Contains(r.err.Error(), "boom") {
		t.Errorf("error %q should carry the panic value", r.err)
	}
	if len(reported) != 1 || reported[0] != r.err {
		t.Errorf("OnError got %v, want the abort error once", reported)
	}
	if e.h.Current().Path != "/a" {
		t.Errorf("Current() = %s, want /a", e.h.Current())
	}
}

func TestTransitionCommitPanicsReachCaller(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *testEnv)
		done  func(*route.Route)
	}{
		{
			name: "after hook",
			setup: func(e *testEnv) {
				e.h.Hooks().AfterEach(func(to, _ *route.Route) {
					if to.Path == "/a" {
						panic("after hook failed")
					}
				})
			},
		},
		{
			name:  "complete callback",
			setup: func(*testEnv) {},
			done:  func(*route.Route) { panic("complete callback failed") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, flatRoutes())
			tt.setup(e)

			var recovered any
			func() {
				defer func() { recovered = recover() }()
				e.h.TransitionTo(route.Path("/a"), tt.done, nil)
			}()

			if recovered == nil {
				t.Fatal("panic did not reach the caller")
			}
			if e.h.Current().Path != "/a" {
				t.Errorf("Current() = %s, want /a", e.h.Current())
			}
			if e.h.Pending() != nil {
				t.Error("Pending() should be nil after commit")
			}
			if strings.Contains(e.logs.String(), "guard panicked") {
				t.Errorf("commit panic was logged as a guard panic:\n%s", e.logs.String())
			}
		})
	}
}

func TestTransitionGuardPanicsAfterAnswer(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.h.Hooks().BeforeEach(func(_, _ *route.Route, next route.Next) {
		next(route.Proceed())
		panic("late")
	})

	r := e.transition("/a")
	if c, a := r.counts(); c != 1 || a != 0 {
		t.Fatalf("completed=%d aborted=%d, want 1/0", c, a)
	}
	if got := e.backend.Location(); got != "/a" {
		t.Errorf("backend location = %q, want /a", got)
	}
	if !strings.Contains(e.logs.String(), "guard panicked after calling its continuation") {
		t.Errorf("expected late panic log, got:\n%s", e.logs.String())
	}
}

func TestTransitionFailLogsWithoutObservers(t *testing.T) {
	e := newEnv(t, flatRoutes())
	cause := errors.New("session expired")
	e.h.Hooks().BeforeEach(func(_, _ *route.Route, next route.Next) {
		next(route.Fail(cause))
	})

	r := e.transition("/a")
	if !errors.Is(r.err, ErrGuardFailed) || !errors.Is(r.err, cause) {
		t.Errorf("abort error = %v, want ErrGuardFailed wrapping the cause", r.err)
	}
	if !strings.Contains(e.logs.String(), "uncaught error during route navigation") {
		t.Errorf("expected uncaught error log, got:\n%s", e.logs.String())
	}
}

func TestTransitionPipelineOrder(t *testing.T) {
	var mu sync.Mutex
	var log []string
	record := func(s string) {
		mu.Lock()
		log = append(log, s)
		mu.Unlock()
	}
	hook := func(name string) []route.Hook {
		return []route.Hook{func(_ route.Instance, _, _ *route.Route, next route.Next) {
			record(name)
			next(route.Proceed())
		}}
	}

	leaf := route.NewLazy(func(context.Context) (any, error) {
		record("async")
		return &route.Definition{BeforeRouteEnter: hook("enter:b")}, nil
	})
	routes := []matcher.RouteConfig{{
		Path: "/p",
		Component: &route.Definition{
			BeforeRouteUpdate: hook("update:p"),
			BeforeRouteLeave:  hook("leave:p"),
		},
		Children: []matcher.RouteConfig{
			{Path: "a", Component: &route.Definition{
				BeforeRouteLeave: hook("leave:a"),
			}},
			{Path: "b", Component: leaf, BeforeEnter: func(_, _ *route.Route, next route.Next) {
				record("enter-config:b")
				next(route.Proceed())
			}},
		},
	}}
	e := newEnv(t, routes)
	e.push(t, "/p/a")
	for _, rec := range e.h.Current().Matched {
		rec.SetInstance(route.DefaultSlot, &struct{ path string }{rec.Path})
	}

	e.h.Hooks().BeforeEach(func(_, _ *route.Route, next route.Next) {
		record("before")
		next(route.Proceed())
	})
	e.h.Hooks().BeforeResolve(func(_, _ *route.Route, next route.Next) {
		record("resolve")
		next(route.Proceed())
	})
	e.h.Hooks().AfterEach(func(to, from *route.Route) {
		record("after:" + from.Path + "->" + to.Path)
	})

	r := e.transition("/p/b")
	r.wait(t)
	if r.err != nil {
		t.Fatalf("navigation aborted: %v", r.err)
	}

	want := []string{"leave:a", "before", "update:p", "enter-config:b", "async", "enter:b", "resolve", "after:/p/a->/p/b"}
	mu.Lock()
	defer mu.Unlock()
	if strings.Join(log, ",") != strings.Join(want, ",") {
		t.Errorf("pipeline order\n got: %v\nwant: %v", log, want)
	}
}

func TestTransitionComponentResolutionFails(t *testing.T) {
	lazy := route.NewLazy(func(context.Context) (any, error) {
		return nil, errors.New("chunk 404")
	})
	e := newEnv(t, []matcher.RouteConfig{
		{Path: "/", Component: "Home"},
		{Path: "/lazy", Component: lazy},
	})
	e.push(t, "/")
	reported := make(chan error, 1)
	e.h.OnError(func(err error) { reported <- err })

	r := e.transition("/lazy")
	r.wait(t)
	if !errors.Is(r.err, ErrComponentResolution) {
		t.Errorf("abort error = %v, want ErrComponentResolution", r.err)
	}
	select {
	case err := <-reported:
		if err != r.err {
			t.Errorf("OnError got %v, want %v", err, r.err)
		}
	default:
		t.Error("OnError was not called")
	}
	if e.h.Current().Path != "/" {
		t.Errorf("Current() = %s, want /", e.h.Current())
	}
}

func TestTransitionMountedCallback(t *testing.T) {
	got := make(chan route.Instance, 1)
	routes := []matcher.RouteConfig{
		{Path: "/", Component: "Home"},
		{Path: "/m", Component: &route.Definition{
			BeforeRouteEnter: []route.Hook{func(_ route.Instance, _, _ *route.Route, next route.Next) {
				next(route.Mounted(func(inst route.Instance) { got <- inst }))
			}},
		}},
	}
	var ticks int
	e := newEnv(t, routes, WithNextTick(func(fn func()) {
		ticks++
		fn()
	}))

	e.push(t, "/m")
	if ticks != 1 {
		t.Errorf("next tick ran %d times, want 1", ticks)
	}

	inst := &struct{ name string }{"m"}
	e.h.Current().Leaf().RegisterInstance(route.DefaultSlot, inst, true)
	select {
	case v := <-got:
		if v != inst {
			t.Errorf("callback got %v, want the mounted instance", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mounted callback never ran")
	}
}

func TestOnReady(t *testing.T) {
	e := newEnv(t, flatRoutes())
	var ready []*route.Route
	e.h.OnReady(func(r *route.Route) { ready = append(ready, r) }, func(err error) {
		t.Errorf("ready error callback called with %v", err)
	})

	e.backend.Replace("/b")
	r := newResult()
	e.h.Setup(r.complete, r.abort)
	if len(ready) != 1 || ready[0].Path != "/b" {
		t.Fatalf("ready callbacks got %v, want /b once", ready)
	}

	e.push(t, "/a")
	if len(ready) != 1 {
		t.Errorf("ready callbacks ran %d times, want 1", len(ready))
	}

	var late *route.Route
	e.h.OnReady(func(r *route.Route) { late = r }, nil)
	if late == nil || late.Path != "/a" {
		t.Errorf("OnReady after ready got %v, want /a", late)
	}
}

func TestOnReadyError(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.h.Hooks().BeforeEach(func(_, _ *route.Route, next route.Next) {
		next(route.Fail(errors.New("offline")))
	})
	var readyErr error
	e.h.OnReady(func(*route.Route) { t.Error("ready callback called") }, func(err error) { readyErr = err })
	e.h.OnError(func(error) {})

	e.h.Setup(nil, nil)
	if !errors.Is(readyErr, ErrGuardFailed) {
		t.Errorf("ready error = %v, want ErrGuardFailed", readyErr)
	}
}

func TestHooksRemove(t *testing.T) {
	e := newEnv(t, flatRoutes())
	calls := 0
	remove := e.h.Hooks().AfterEach(func(_, _ *route.Route) { calls++ })

	e.push(t, "/a")
	remove()
	remove()
	e.push(t, "/b")

	if calls != 1 {
		t.Errorf("after hook ran %d times, want 1", calls)
	}
}

func TestGoFollowsBackend(t *testing.T) {
	e := newEnv(t, flatRoutes())
	e.h.Setup(nil, nil)
	e.push(t, "/a")
	e.push(t, "/b")

	e.h.Go(-1)
	if e.h.Current().Path != "/a" {
		t.Errorf("Current() after Go(-1) = %s, want /a", e.h.Current())
	}
	e.h.Go(1)
	if e.h.Current().Path != "/b" {
		t.Errorf("Current() after Go(1) = %s, want /b", e.h.Current())
	}
	e.h.Go(5)
	if e.h.Current().Path != "/b" {
		t.Errorf("Current() after out-of-range Go = %s, want /b", e.h.Current())
	}
}

func TestBase(t *testing.T) {
	e := newEnv(t, flatRoutes(), WithBase("/app/"))
	if e.h.Base() != "/app" {
		t.Errorf("Base() = %q, want /app", e.h.Base())
	}

	e.backend.Replace("/app/b")
	e.h.Setup(nil, nil)
	if e.h.Current().Path != "/b" {
		t.Errorf("Current() = %s, want /b", e.h.Current())
	}

	e.push(t, "/a?x=1")
	if got := e.backend.Location(); got != "/app/a?x=1" {
		t.Errorf("backend location = %q, want /app/a?x=1", got)
	}
}

func TestIsNavigationFailure(t *testing.T) {
	err := failure(naverrors.CodeAborted, "/a", "/b")
	if !IsNavigationFailure(err) {
		t.Error("aborted should be a navigation failure")
	}
	if !IsNavigationFailure(err, naverrors.CodeAborted, naverrors.CodeRedirected) {
		t.Error("code filter should match")
	}
	if IsNavigationFailure(err, naverrors.CodeCancelled) {
		t.Error("code filter should not match")
	}
	if IsNavigationFailure(errors.New("plain")) {
		t.Error("plain errors are not navigation failures")
	}
	if IsNavigationFailure(naverrors.New(naverrors.CodeInvalidConfig)) {
		t.Error("config errors are not navigation failures")
	}

	if IsGenuine(nil) || IsGenuine(err) {
		t.Error("nil and aborted are not genuine")
	}
	if !IsGenuine(errors.New("plain")) || !IsGenuine(naverrors.New(naverrors.CodeGuardThrew)) {
		t.Error("plain errors and GuardThrew are genuine")
	}
}
