// Package apperr defines the error kinds shared by Hangar's domain packages.
//
// Callers wrap a kind with context using fmt.Errorf("pkg: ...: %w", kind) and
// test for it with errors.Is. The HTTP layer maps kinds to status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or invalid field or reference.
	ErrValidation = errors.New("validation failed")

	// ErrStateTransition marks a disallowed report state change.
	ErrStateTransition = errors.New("invalid state transition")

	// ErrNotFound marks an operation on a nonexistent entity.
	ErrNotFound = errors.New("not found")

	// ErrInactiveReport marks a mutation of a report that no longer accepts updates.
	ErrInactiveReport = errors.New("report not active")

	// ErrConfiguration marks a missing or malformed configuration value.
	ErrConfiguration = errors.New("invalid configuration")
)

// TransitionError describes a rejected state change. It matches
// ErrStateTransition under errors.Is.
type TransitionError struct {
	ID   string
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition for %s from %q to %q", e.ID, e.From, e.To)
}

// Is reports whether target is ErrStateTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrStateTransition
}

// IsClientError reports whether err is caused by the request rather than by
// the system, i.e. whether it should surface as a rejected request.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrStateTransition) ||
		errors.Is(err, ErrInactiveReport)
}
