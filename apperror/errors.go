package apperror

import (
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindExpired
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExpired:
		return "expired"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Status is the HTTP status a handler answers with for this kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindExpired:
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

// Error carries a caller-visible message. The cause, if any, is for logs only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Cause() error  { return e.cause }
func (e *Error) Unwrap() error { return e.cause }

func Validation(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }
func Expired(msg string) error      { return &Error{Kind: KindExpired, Message: msg} }
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(err error, msg string) error {
	return &Error{Kind: KindConflict, Message: msg, cause: err}
}

func Unexpected(err error, msg string) error {
	if err != nil {
		err = errors.WithStack(err)
	}
	return &Error{Kind: KindUnexpected, Message: msg, cause: err}
}

var ErrForbidden = Forbidden("Forbidden")

// KindOf reports the kind of err; anything that is not an *Error is unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message is the text safe to show to API callers.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "An internal error occurred"
}
