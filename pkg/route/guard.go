package route

// Guard is a navigation guard. It must call next exactly once; later calls
// are ignored and a guard that never calls next stalls the navigation.
type Guard func(to, from *Route, next Next)

// Next is the single-use continuation handed to guards.
type Next func(Outcome)

// AfterHook observes a committed navigation. It cannot influence it.
type AfterHook func(to, from *Route)

// OutcomeKind classifies a guard decision.
type OutcomeKind int

const (
	// OutcomeProceed continues with the next guard.
	OutcomeProceed OutcomeKind = iota
	// OutcomeAbort vetoes the navigation without an error.
	OutcomeAbort
	// OutcomeFail aborts the navigation with an error.
	OutcomeFail
	// OutcomeRedirect aborts the navigation and starts a new one.
	OutcomeRedirect
	// OutcomeMounted proceeds and schedules a callback for the instance
	// created by the navigation. Only enter guards may use it.
	OutcomeMounted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeProceed:
		return "proceed"
	case OutcomeAbort:
		return "abort"
	case OutcomeFail:
		return "fail"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeMounted:
		return "mounted"
	}
	return "unknown"
}

// Outcome is the value a guard passes to its continuation.
type Outcome struct {
	Kind     OutcomeKind
	Err      error
	Location Location
	Mounted  func(Instance)
}

// Proceed lets the navigation continue.
func Proceed() Outcome { return Outcome{Kind: OutcomeProceed} }

// Abort vetoes the navigation.
func Abort() Outcome { return Outcome{Kind: OutcomeAbort} }

// Fail aborts the navigation with err. A nil err is treated as Abort.
func Fail(err error) Outcome {
	if err == nil {
		return Abort()
	}
	return Outcome{Kind: OutcomeFail, Err: err}
}

// Redirect aborts the navigation and navigates to loc instead.
// loc.Replace selects replace over push.
func Redirect(loc Location) Outcome {
	return Outcome{Kind: OutcomeRedirect, Location: loc}
}

// RedirectPath is Redirect for a plain path.
func RedirectPath(path string) Outcome {
	return Redirect(Path(path))
}

// Mounted proceeds and arranges for fn to receive the component instance once
// it has been created.
func Mounted(fn func(Instance)) Outcome {
	if fn == nil {
		return Proceed()
	}
	return Outcome{Kind: OutcomeMounted, Mounted: fn}
}

// Halts reports whether the outcome stops the pipeline.
func (o Outcome) Halts() bool {
	return o.Kind == OutcomeAbort || o.Kind == OutcomeFail || o.Kind == OutcomeRedirect
}
