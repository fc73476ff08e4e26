package models

const (
	StatusPending   = "pending"
	StatusAdvance   = "advance"
	StatusConfirm   = "confirm"
	StatusDone      = "done"
	StatusCancelled = "cancelled"
)

const (
	SlotDay   = "day"
	SlotNight = "night"
	SlotFull  = "full"
)

const (
	ColorNone   = "none"
	ColorYellow = "yellow"
	ColorPink   = "pink"
	ColorRed    = "red"
)

const (
	// DateFormat is the canonical day-precision format in storage and the API.
	DateFormat = "2006-01-02"

	// WorkerQueueSize is the sync worker channel capacity.
	WorkerQueueSize = 1000

	// SubmitLimitCount is how many reservation submissions one client may make per window.
	SubmitLimitCount = 10

	// SubmitLimitWindow is the submission throttle window in seconds.
	SubmitLimitWindow = 60 * 60
)

// SlotConsuming reports whether a status occupies its time slot for
// availability purposes. Pending reservations are visible but never block;
// cancelled and done never block.
func SlotConsuming(status string) bool {
	return status == StatusAdvance || status == StatusConfirm
}

// ValidStatus reports whether the status belongs to the known vocabulary.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusAdvance, StatusConfirm, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// ValidSlot reports whether the slot is one of day, night, full.
func ValidSlot(slot string) bool {
	switch slot {
	case SlotDay, SlotNight, SlotFull:
		return true
	}
	return false
}
