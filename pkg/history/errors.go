package history

import (
	stderrors "errors"
	"slices"

	naverrors "github.com/vango-dev/navcore/internal/errors"
)

// Navigation failure sentinels. Match them with errors.Is; the errors passed
// to abort callbacks carry the same code plus the routes involved.
var (
	ErrDuplicated          = naverrors.New(naverrors.CodeDuplicated)
	ErrAborted             = naverrors.New(naverrors.CodeAborted)
	ErrRedirected          = naverrors.New(naverrors.CodeRedirected)
	ErrCancelled           = naverrors.New(naverrors.CodeCancelled)
	ErrComponentResolution = naverrors.New(naverrors.CodeComponentResolution)
	ErrGuardThrew          = naverrors.New(naverrors.CodeGuardThrew)
	ErrGuardFailed         = naverrors.New(naverrors.CodeGuardFailed)
)

var failureCodes = []string{
	naverrors.CodeDuplicated,
	naverrors.CodeAborted,
	naverrors.CodeRedirected,
	naverrors.CodeCancelled,
	naverrors.CodeComponentResolution,
	naverrors.CodeGuardThrew,
	naverrors.CodeGuardFailed,
}

// IsNavigationFailure reports whether err is a navigation failure. With codes
// given, the failure must carry one of them.
func IsNavigationFailure(err error, codes ...string) bool {
	var ne *naverrors.NavError
	if !stderrors.As(err, &ne) || !slices.Contains(failureCodes, ne.Code) {
		return false
	}
	return len(codes) == 0 || slices.Contains(codes, ne.Code)
}

// IsGenuine reports whether err is a real failure rather than a navigation
// that was vetoed, redirected, cancelled or a duplicate. Genuine errors reach
// OnError observers.
func IsGenuine(err error) bool {
	if err == nil {
		return false
	}
	switch naverrors.CodeOf(err) {
	case naverrors.CodeDuplicated, naverrors.CodeAborted,
		naverrors.CodeRedirected, naverrors.CodeCancelled:
		return false
	}
	return true
}

func failure(code string, from, to string) *naverrors.NavError {
	return naverrors.New(code).Between(from, to)
}
