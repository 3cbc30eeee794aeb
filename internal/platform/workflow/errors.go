package workflow

import "errors"

var (
	// ErrInvalidPriority is returned when a priority score falls outside 1-5.
	ErrInvalidPriority = errors.New("priority score must be between 1 and 5")

	// ErrInvalidTransition is returned when a requested status is not
	// reachable from the entry's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyClosed is returned when a mutation targets an entry whose
	// status is terminal.
	ErrAlreadyClosed = errors.New("entry is closed")

	// ErrResourceNotFound is returned when an assignment target does not
	// resolve in the staff directory.
	ErrResourceNotFound = errors.New("staff resource not found")

	// ErrConcurrentModification is returned when a compare-and-set update
	// loses to a concurrent transition. Callers should re-read and retry.
	ErrConcurrentModification = errors.New("entry was modified concurrently")
)
