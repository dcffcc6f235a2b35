package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is a generic sentinel for uniqueness violations.
	ErrConflict = errors.New("conflict")
)

// Error carries the HTTP status and a stable machine-readable code alongside
// the underlying cause.
type Error struct {
	Status int
	Code   string
	// Message is safe to show to clients. Empty falls back to Err.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func newKind(status int, code, msg string, kind error) *Error {
	return &Error{Status: status, Code: code, Message: msg, Err: fmt.Errorf("%s: %w", msg, kind)}
}

func NotFound(code, msg string) *Error {
	return newKind(http.StatusNotFound, code, msg, ErrNotFound)
}

func Unauthenticated(code, msg string) *Error {
	return newKind(http.StatusUnauthorized, code, msg, ErrUnauthorized)
}

func Validation(code, msg string) *Error {
	return newKind(http.StatusBadRequest, code, msg, ErrInvalidArgument)
}

// Unprocessable is a field-level validation failure (422).
func Unprocessable(code, msg string) *Error {
	return newKind(http.StatusUnprocessableEntity, code, msg, ErrInvalidArgument)
}

func Conflict(code, msg string) *Error {
	return newKind(http.StatusConflict, code, msg, ErrConflict)
}

// StatusOf resolves the HTTP status and code for any error. Errors that are
// not *Error map to 500/internal_error.
func StatusOf(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal_error"
}

// MessageOf returns the client-facing text for err. Internal errors never
// leak their cause.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ae.Message
		}
		if ae.Status >= http.StatusInternalServerError {
			return http.StatusText(ae.Status)
		}
		return ae.Error()
	}
	status, _ := StatusOf(err)
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
