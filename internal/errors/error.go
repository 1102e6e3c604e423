package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryNavigation Category = "navigation"
	CategoryGuard      Category = "guard"
	CategoryComponent  Category = "component"
	CategoryMatcher    Category = "matcher"
	CategoryConfig     Category = "config"
)

// NavError is a structured navigation failure.
type NavError struct {
	// Code is a unique error identifier (e.g., "N002").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// From is the full path of the route being left, if known.
	From string

	// To is the full path of the route being navigated to, if known.
	To string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *NavError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.From != "" || e.To != "" {
		msg = fmt.Sprintf("%s (from %q to %q)", msg, e.From, e.To)
	}
	if e.Wrapped != nil {
		msg = msg + ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *NavError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a NavError with the same code.
func (e *NavError) Is(target error) bool {
	t, ok := target.(*NavError)
	if !ok || t == nil {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// Between records the source and target paths of the failed navigation.
func (e *NavError) Between(from, to string) *NavError {
	e.From = from
	e.To = to
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *NavError) WithDetail(d string) *NavError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *NavError) Wrap(err error) *NavError {
	e.Wrapped = err
	return e
}

// New creates a NavError from a registered error code.
func New(code string) *NavError {
	template, ok := registry[code]
	if !ok {
		return &NavError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &NavError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new NavError with a registered code and a formatted message.
func Newf(code string, format string, args ...any) *NavError {
	e := New(code)
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// FromError wraps a standard error in a NavError.
// Errors that already carry a NavError in their chain are returned as that NavError.
func FromError(err error, code string) *NavError {
	if err == nil {
		return nil
	}
	var ne *NavError
	if stderrors.As(err, &ne) {
		return ne
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first NavError in err's chain, or "".
func CodeOf(err error) string {
	var ne *NavError
	if stderrors.As(err, &ne) {
		return ne.Code
	}
	return ""
}
