package models

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a tender, bid or evaluation that does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError is a client-correctable input problem.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

// StorageError wraps a persistence-layer failure. The underlying detail is
// kept for logs but never shown to clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
