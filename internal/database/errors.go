package database

import "errors"

var (
	// ErrSlotConflict means the requested date/slot is already consumed by
	// an advance or confirm reservation. Returned both by the optimistic
	// pre-check and by the write-time constraint inside the create
	// transaction, which is the final authority.
	ErrSlotConflict = errors.New("time slot already booked")

	// ErrNotFound means the reservation or gallery does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrentModification means a version-checked update lost the race.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	ErrPastDate   = errors.New("reservation date is in the past")
	ErrDateTooFar = errors.New("reservation date is too far in the future")
)
