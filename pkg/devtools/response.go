package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	naverrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// Response is the envelope of every devtools JSON answer.
type Response[T any] struct {
	// Data is the response payload.
	Data T `json:"data,omitempty"`

	// Error describes why the request did not succeed.
	Error *ErrorBody `json:"error,omitempty"`

	// Meta contains optional metadata.
	Meta map[string]any `json:"meta,omitempty"`

	// StatusCode is the HTTP status code for this response.
	// Not included in JSON output.
	StatusCode int `json:"-"`
}

// ErrorBody is the JSON form of an error.
type ErrorBody struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// OK creates a 200 OK response with the given data.
func OK[T any](data T) *Response[T] {
	return &Response[T]{Data: data, StatusCode: http.StatusOK}
}

// Fail creates an error response. Navigation failures that are not genuine
// errors map to 409, invalid paths to 400, timeouts to 504 and the rest
// to 500.
func Fail(err error) *Response[any] {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, routepath.ErrInvalidPath),
		errors.Is(err, routepath.ErrBackslashInPath),
		errors.Is(err, routepath.ErrNullByteInPath),
		errors.Is(err, routepath.ErrInvalidPercentEscape),
		errors.Is(err, routepath.ErrPathEscapesRoot),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case history.IsNavigationFailure(err,
		naverrors.CodeDuplicated, naverrors.CodeAborted,
		naverrors.CodeRedirected, naverrors.CodeCancelled):
		status = http.StatusConflict
	}
	return &Response[any]{
		Error:      &ErrorBody{Code: naverrors.CodeOf(err), Message: err.Error()},
		StatusCode: status,
	}
}

// WithMeta adds metadata to the response.
func (r *Response[T]) WithMeta(key string, value any) *Response[T] {
	if r.Meta == nil {
		r.Meta = make(map[string]any)
	}
	r.Meta[key] = value
	return r
}

// Write writes the response to an http.ResponseWriter.
func (r *Response[T]) Write(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.StatusCode)

	if r.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewEncoder(w).Encode(r)
}
