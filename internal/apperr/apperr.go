// Package apperr defines the error taxonomy shared by every component.
// Domain packages declare sentinel *Error values; the HTTP layer turns them
// into a status code and a stable machine-readable code.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindForbidden
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// Status is the default HTTP status for the kind. Conflicts surface as 400
// because clients of this API treat duplicates and full duels as bad requests.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Status: kind.Status()}
}

// WithStatus returns a copy of e reporting status instead of the kind default.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

func (e *Error) Error() string {
	return e.Message
}

// As returns the first *Error in err's chain, starting from the outermost wrapper.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Validation builds an ad-hoc validation error with a caller-facing message.
func Validation(message string) *Error {
	return New(KindValidation, "VALIDATION_ERROR", message)
}
