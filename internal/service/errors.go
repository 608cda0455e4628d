package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Message returns the client-facing text of a service error: the detail for
// validation errors and a fixed phrase for the others.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return detail(err, ErrValidation)
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConflict):
		return detail(err, ErrConflict)
	case errors.Is(err, ErrNotFound):
		return detail(err, ErrNotFound)
	default:
		return "internal server error"
	}
}

func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
