// Package availability derives bookable time slots and calendar colors for
// a single date from the reservations that overlap it. It holds no state:
// every caller passes the working set in and gets a fresh derivation back,
// so the booking form, the calendar view and the validator can never drift
// apart.
package availability

import (
	"errors"

	"venuebook/internal/models"
)

// Blocking messages surfaced to users when a slot cannot be offered.
const (
	MsgFullDayBooked = "The full day is booked for this date. Please choose another day."
	MsgBothBooked    = "Both the day and night slots are booked for this date. Please choose another day."
	MsgOneRemaining  = "This date has an existing reservation for either the day or night. Please choose the remaining available slot."
)

// ErrInvariantViolation reports a reservation set that the store should
// never have produced: a full-day booking coexisting with another
// slot-consuming booking, or two slot-consuming bookings on the same slot.
var ErrInvariantViolation = errors.New("slot exclusivity invariant violated")

// Result is the outcome of Compute for one date.
type Result struct {
	FreeSlots []string
	Message   string
}

// Free reports whether the given slot may still be booked.
func (r Result) Free(slot string) bool {
	for _, s := range r.FreeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Compute returns the bookable slots for a date given the reservations on
// it, in any order. Only advance/confirm reservations consume slots.
// Invalid sets (two fulls, full plus day) degrade to "nothing free" rather
// than failing; CheckInvariant exposes the violation separately.
func Compute(reservations []models.Reservation) Result {
	day, night, full := consumedSlots(reservations)

	switch {
	case full:
		return Result{FreeSlots: []string{}, Message: MsgFullDayBooked}
	case day && night:
		return Result{FreeSlots: []string{}, Message: MsgBothBooked}
	case day:
		return Result{FreeSlots: []string{models.SlotNight}, Message: MsgOneRemaining}
	case night:
		return Result{FreeSlots: []string{models.SlotDay}, Message: MsgOneRemaining}
	default:
		return Result{FreeSlots: []string{models.SlotDay, models.SlotNight, models.SlotFull}}
	}
}

// ClassifyColor summarizes a date's booking density. Escalation is
// monotonic over the accumulated slot set, so the answer does not depend
// on the order reservations were made or listed: once both halves of the
// day (or a full-day booking) are taken the color is red and stays red.
func ClassifyColor(reservations []models.Reservation) string {
	day, night, full := consumedSlots(reservations)

	switch {
	case full, day && night:
		return models.ColorRed
	case day:
		return models.ColorYellow
	case night:
		return models.ColorPink
	default:
		return models.ColorNone
	}
}

// CheckInvariant verifies the slot-exclusivity rule over the
// slot-consuming subset. The engine keeps answering in degraded mode when
// this fails; callers log and report it.
func CheckInvariant(reservations []models.Reservation) error {
	seen := make(map[string]int, 3)
	for _, r := range reservations {
		if !models.SlotConsuming(r.Status) {
			continue
		}
		seen[r.Slot]++
	}

	if seen[models.SlotFull] > 0 && (len(seen) > 1 || seen[models.SlotFull] > 1) {
		return ErrInvariantViolation
	}
	for _, n := range seen {
		if n > 1 {
			return ErrInvariantViolation
		}
	}
	return nil
}

func consumedSlots(reservations []models.Reservation) (day, night, full bool) {
	for _, r := range reservations {
		if !models.SlotConsuming(r.Status) {
			continue
		}
		switch r.Slot {
		case models.SlotDay:
			day = true
		case models.SlotNight:
			night = true
		case models.SlotFull:
			full = true
		}
	}
	return day, night, full
}
