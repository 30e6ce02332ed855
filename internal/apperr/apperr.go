// Package apperr defines the typed errors services return and the HTTP layer renders.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

// Error kinds, from least to most severe for the client.
const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// String returns the label used in logs and span attributes.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a domain error carrying a Kind.
type Error struct {
	Kind    Kind
	Message string
	Op      string
	Err     error
	Details any
}

// Error renders "op: message: cause", omitting empty parts. Clients never see
// it; respond.Fail writes Message only.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WithOp sets the failing operation name.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails attaches response details, e.g. per-field validation messages.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// New returns an error of kind with a client-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap is New with a cause attached.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation reports malformed input (400).
func Validation(message string) *Error { return New(KindValidation, message) }

// Unauthorized reports missing or bad credentials (401).
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// Forbidden reports an authenticated caller lacking a role (403).
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound reports a missing resource (404).
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict reports a uniqueness violation (409).
func Conflict(message string) *Error { return New(KindConflict, message) }

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
