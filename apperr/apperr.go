package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so the HTTP layer can map it to a
// status code without inspecting message text.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindAccessDenied
	KindStateConflict
	KindOverpayment
)

// Error carries a client-safe message plus an HTTP status. Internal details
// belong in the wrapped cause, which is logged but never serialized.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func AccessDenied(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAccessDenied, Message: fmt.Sprintf(format, args...)}
}

func StateConflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...)}
}

// Overpayment is a state conflict on the payment ledger; kept as its own kind
// because the invoice endpoints report it as 400, not 409.
func Overpayment(format string, args ...interface{}) *Error {
	return &Error{Kind: KindOverpayment, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an internal cause to e for logging.
func Wrap(e *Error, cause error) *Error {
	e.cause = cause
	return e
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
