package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrPoolExhausted means no eligible item remains for a session. It is a
	// stop signal, not a failure.
	ErrPoolExhausted = errors.New("item pool exhausted")
	// ErrStaleSession means the session row changed under us. Callers re-read
	// and retry.
	ErrStaleSession = errors.New("stale session version")
	// ErrIllegalTransition means an operation was attempted on a session in a
	// state that does not permit it.
	ErrIllegalTransition = errors.New("illegal session transition")
)

// ValidationError reports out-of-range item parameters or invalid session
// config. Nothing is persisted when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
