// Package apperr defines the error kinds shared by all components.
// Handlers map each kind to an HTTP status; everything else is a 500.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or empty required field.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a duplicate unique key.
	ErrConflict = errors.New("conflict")
	// ErrUnauthenticated marks failed credential verification.
	ErrUnauthenticated = errors.New("invalid credentials")
	// ErrNotFound marks a lookup for a row that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a storage-layer fault (connectivity, bad state).
	ErrStorage = errors.New("storage failure")
)

// Storage wraps err as a storage fault, keeping the original chain intact.
func Storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

