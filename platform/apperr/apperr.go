// Package apperr provides standardized typed errors for the application.
// Domain services and the webapp client core return these typed errors; the
// HTTP layer maps server-side kinds to status codes, and the webapp session
// surfaces client-side kinds (network, timeout, rejected) to view listeners.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindConflict indicates a conflict with existing state (e.g., out of stock).
	KindConflict
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
	// KindNetwork indicates a remote request that could not complete.
	KindNetwork
	// KindTimeout indicates a remote request that exceeded its deadline.
	KindTimeout
	// KindRejected indicates the backend answered success:false with a reason.
	KindRejected
	// KindInvariant indicates a caller violated a component's state machine.
	KindInvariant
)

// Error is a typed error with a Kind for classification.
type Error struct {
	Kind    Kind
	Message string
	Op      string // Operation that failed (optional)
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
// Client-side kinds map to gateway-style statuses for completeness.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest, KindRejected:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindInternal, KindInvariant:
		return http.StatusInternalServerError
	case KindNetwork:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadRequest
	}
}

// New creates a new typed error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new typed error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// Network creates a network failure error wrapping the transport cause.
func Network(message string, err error) *Error {
	return Wrap(KindNetwork, message, err)
}

// Timeout creates a timeout error wrapping the transport cause.
func Timeout(message string, err error) *Error {
	return Wrap(KindTimeout, message, err)
}

// Rejected creates an error for a backend success:false response.
func Rejected(message string) *Error {
	return New(KindRejected, message)
}

// Invariant creates an error for a violated state machine precondition.
func Invariant(message string) *Error {
	return New(KindInvariant, message)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// Reason extracts the human-readable message from an error, falling back to
// Error() for non-typed errors. Used when surfacing failures to listeners.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	return err.Error()
}
