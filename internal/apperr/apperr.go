// Package apperr carries the error taxonomy shared by every domain package:
// each error has a kind, and the transport layer maps kinds to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// Validation: missing or malformed input.
	Validation Kind = iota
	// NotFound: the referenced row does not exist.
	NotFound
	// State: the operation is not valid for the current state,
	// e.g. editing a paid order or re-reviewing a reviewed request.
	State
	// Auth: missing or invalid bearer credential.
	Auth
	// Permission: valid identity, insufficient permission flag.
	Permission
	// Upstream: database, email or other collaborator failure.
	Upstream
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying error reachable via errors.Is/As while
// presenting message as the caller-facing text.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, or Upstream when err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Upstream
}

// Is lets callers test kinds without unwrapping manually.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps err to the HTTP status the transport layer should write.
func Status(err error) int {
	switch KindOf(err) {
	case Validation, State:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Auth:
		return http.StatusUnauthorized
	case Permission:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing text for err. Upstream failures get a
// generic message so internal details never leak to the client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Upstream {
		return e.Message
	}
	return "internal server error"
}
