package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown issue identifiers.
	ErrNotFound = errors.New("issue not found")
	// ErrInvalidStatus is returned when a status outside the authority-settable set is requested.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrNotResolved is returned when feedback is given on an issue that is not solved.
	ErrNotResolved = errors.New("issue is not solved")
)

// ValidationError reports a missing or malformed intake field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// PersistenceError wraps an Issue Store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
