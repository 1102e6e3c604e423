package history

import (
	"time"

	"github.com/vango-dev/navcore/pkg/route"
)

// Phase names a stage of the guard pipeline.
type Phase string

const (
	PhaseLeave       Phase = "leave"
	PhaseBefore      Phase = "before"
	PhaseUpdate      Phase = "update"
	PhaseEnterConfig Phase = "enter-config"
	PhaseAsync       Phase = "async"
	PhaseEnter       Phase = "enter"
	PhaseResolve     Phase = "resolve"
)

// Result is how a transition ended.
type Result string

const (
	ResultCommitted  Result = "committed"
	ResultDuplicated Result = "duplicated"
	ResultAborted    Result = "aborted"
	ResultRedirected Result = "redirected"
	ResultCancelled  Result = "cancelled"
	ResultFailed     Result = "failed"
)

// TransitionInfo describes one transition to observers.
type TransitionInfo struct {
	ID      string
	From    *route.Route
	To      *route.Route
	Started time.Time
}

// Observer receives transition lifecycle events. Implementations must be
// safe for concurrent use and must not block.
type Observer interface {
	TransitionStarted(info TransitionInfo)
	GuardStarted(info TransitionInfo, phase Phase)
	TransitionFinished(info TransitionInfo, result Result, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) TransitionStarted(TransitionInfo)                 {}
func (NopObserver) GuardStarted(TransitionInfo, Phase)               {}
func (NopObserver) TransitionFinished(TransitionInfo, Result, error) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) TransitionStarted(info TransitionInfo) {
	for _, obs := range o {
		obs.TransitionStarted(info)
	}
}

func (o Observers) GuardStarted(info TransitionInfo, phase Phase) {
	for _, obs := range o {
		obs.GuardStarted(info, phase)
	}
}

func (o Observers) TransitionFinished(info TransitionInfo, result Result, err error) {
	for _, obs := range o {
		obs.TransitionFinished(info, result, err)
	}
}

func resultOf(err error) Result {
	switch {
	case err == nil:
		return ResultCommitted
	case IsNavigationFailure(err, ErrDuplicated.Code):
		return ResultDuplicated
	case IsNavigationFailure(err, ErrAborted.Code):
		return ResultAborted
	case IsNavigationFailure(err, ErrRedirected.Code):
		return ResultRedirected
	case IsNavigationFailure(err, ErrCancelled.Code):
		return ResultCancelled
	}
	return ResultFailed
}
