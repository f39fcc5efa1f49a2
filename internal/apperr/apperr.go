// Package apperr defines the client-facing error kinds and maps lower-level
// failures onto them.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessable
)

func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// GenericMessage is shown for every internal error.
const GenericMessage = "Something went wrong!"

// Error is an error safe to render to clients. Err, when set, is the cause
// and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func BadRequest(msg string) *Error    { return New(KindBadRequest, msg) }
func Unauthorized(msg string) *Error  { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error     { return New(KindForbidden, msg) }
func NotFound(msg string) *Error      { return New(KindNotFound, msg) }
func Conflict(msg string) *Error      { return New(KindConflict, msg) }
func Unprocessable(msg string) *Error { return New(KindUnprocessable, msg) }

// Internal wraps cause behind the generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: GenericMessage, Err: cause}
}

// As extracts an *Error from err. Anything else is reported as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
