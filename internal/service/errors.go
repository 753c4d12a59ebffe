package service

import (
	"errors"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

// Error carries a client-facing message; Kind is one of the sentinels above.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Cause }

func badRequest(msg string) error { return &Error{Kind: ErrBadRequest, Message: msg} }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func unauthorized(msg string, cause error) error {
	return &Error{Kind: ErrUnauthorized, Message: msg, Cause: cause}
}

func internal(msg string, cause error) error {
	return &Error{Kind: ErrInternal, Message: msg, Cause: cause}
}

// Message returns the client-facing text of err, or fallback for foreign errors.
func Message(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
