package service

import "errors"

var (
	// ErrIncompleteInput means a required reservation field is missing.
	ErrIncompleteInput = errors.New("required reservation fields are missing")

	// ErrInvalidSlot means the requested time slot is not one of day,
	// night or full.
	ErrInvalidSlot = errors.New("invalid time slot")

	// ErrInvalidStatus means the requested status is unknown.
	ErrInvalidStatus = errors.New("invalid reservation status")

	// ErrInvalidTransition means the status change is not allowed from
	// the reservation's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrEmptyPatch means an update request changed nothing.
	ErrEmptyPatch = errors.New("update request contains no changes")

	// ErrConflictingPatch means one update tried to move the
	// reservation and change its status or reply at the same time.
	ErrConflictingPatch = errors.New("move and status change cannot be combined")

	// ErrTooManySubmissions means the client exceeded the submission
	// throttle window.
	ErrTooManySubmissions = errors.New("too many reservation submissions")
)
