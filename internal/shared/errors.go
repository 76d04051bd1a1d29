package shared

import "errors"

var (
	// ErrNotFound indicates the referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates invalid or missing input; nothing was written.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the operation is blocked by another document.
	ErrConflict = errors.New("conflict")
)
