package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// Navigation failure codes.
const (
	CodeDuplicated          = "N001"
	CodeAborted             = "N002"
	CodeRedirected          = "N003"
	CodeCancelled           = "N004"
	CodeComponentResolution = "N005"
	CodeGuardThrew          = "N006"
	CodeGuardFailed         = "N007"
)

// Matcher and configuration codes.
const (
	CodeInvalidPattern   = "M001"
	CodeDuplicateName    = "M002"
	CodeUnknownName      = "M003"
	CodeMissingParam     = "M004"
	CodeInvalidConfig    = "C001"
	CodeInvalidManifest  = "C002"
	CodeManifestUnloaded = "C003"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Navigation outcomes (N001-N004)
	// ============================================

	CodeDuplicated: {
		Category: CategoryNavigation,
		Message:  "Navigation to the current location",
		Detail:   "The target resolves to the active route with the same number of matched records. Nothing was run and the URL was resynced.",
	},
	CodeAborted: {
		Category: CategoryNavigation,
		Message:  "Navigation aborted by a guard",
		Detail:   "A guard called its continuation with Abort(). The active route is unchanged and the URL was restored.",
	},
	CodeRedirected: {
		Category: CategoryNavigation,
		Message:  "Navigation redirected by a guard",
		Detail:   "A guard called its continuation with a redirect target. A new navigation was started for that target.",
	},
	CodeCancelled: {
		Category: CategoryNavigation,
		Message:  "Navigation cancelled by a newer navigation",
		Detail:   "Another navigation started before this one finished. Later continuations of this navigation are ignored.",
	},

	// ============================================
	// Genuine failures (N005-N007)
	// ============================================

	CodeComponentResolution: {
		Category: CategoryComponent,
		Message:  "Failed to resolve deferred component",
		Detail:   "A lazy component referenced by an entered record returned an error while loading.",
	},
	CodeGuardThrew: {
		Category: CategoryGuard,
		Message:  "Guard panicked",
		Detail:   "A guard panicked while it was running. The panic was recovered and the navigation aborted.",
	},
	CodeGuardFailed: {
		Category: CategoryGuard,
		Message:  "Guard failed",
		Detail:   "A guard called its continuation with Fail(err). The navigation aborted.",
	},

	// ============================================
	// Matcher (M001-M004)
	// ============================================

	CodeInvalidPattern: {
		Category: CategoryMatcher,
		Message:  "Invalid route pattern",
		Detail:   "Route paths are slash separated segments; dynamic segments are written :name, :name:type or *name (last segment only).",
	},
	CodeDuplicateName: {
		Category: CategoryMatcher,
		Message:  "Duplicate route name",
		Detail:   "Route names must be unique across the route table.",
	},
	CodeUnknownName: {
		Category: CategoryMatcher,
		Message:  "Named route does not exist",
	},
	CodeMissingParam: {
		Category: CategoryMatcher,
		Message:  "Missing required route param",
	},

	// ============================================
	// Config (C001-C003)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeInvalidManifest: {
		Category: CategoryConfig,
		Message:  "Invalid route manifest",
	},
	CodeManifestUnloaded: {
		Category: CategoryConfig,
		Message:  "Route manifest could not be loaded",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
