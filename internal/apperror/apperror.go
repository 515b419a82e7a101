// Package apperror defines the error kinds shared across services,
// middleware and handlers, and their mapping onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication failures. All of them answer 401 on the wire so a caller
// cannot probe which part of a credential was wrong, but they stay
// distinct internally because each implies a different client remedy.
var (
	ErrMissingToken     = errors.New("authorization is missing")
	ErrMalformedToken   = errors.New("invalid token format")
	ErrInvalidSignature = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrUnauthenticated  = errors.New("not authenticated")
)

// Authorization and request failures.
var (
	ErrForbidden     = errors.New("access denied: insufficient permissions")
	ErrConflict      = errors.New("already exists")
	ErrValidation    = errors.New("invalid request")
	ErrNotFound      = errors.New("not found")
	ErrBadSectionRef = errors.New("invalid section reference")
	ErrStorage       = errors.New("storage failure")
)

// SectionRefError reports a section id that does not exist. It wraps
// ErrBadSectionRef so callers can match the kind while the message names
// the offending id.
type SectionRefError struct {
	ID uint
}

func (e *SectionRefError) Error() string {
	return fmt.Sprintf("section %d does not exist", e.ID)
}

func (e *SectionRefError) Unwrap() error { return ErrBadSectionRef }

// E returns an error whose message is msg and which matches kind under
// errors.Is. Services use it to attach context without leaking the
// sentinel's generic wording into responses.
func E(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// HTTPStatus maps an error kind to its response status code. Unknown
// errors are treated as storage-layer faults.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrMalformedToken),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrBadSectionRef):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
