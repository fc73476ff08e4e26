package models

import "time"

type Reservation struct {
	ID             int64     `json:"id"`
	GuestName      string    `json:"guest_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Date           time.Time `json:"date"`
	Slot           string    `json:"slot"` // day, night, full
	Event          string    `json:"event"`
	GuestCount     int64     `json:"guest_count"`
	Buffet         string    `json:"buffet"`
	BuffetPrice    float64   `json:"buffet_price"`
	TotalPrice     float64   `json:"total_price"`
	AdvancePayment float64   `json:"advance_payment"`
	DuePayment     float64   `json:"due_payment"`
	Status         string    `json:"status"` // pending, advance, confirm, done, cancelled
	Note           string    `json:"note"`
	ReplyNote      string    `json:"reply_note"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int64     `json:"version"`
}

// ReservationPatch carries the fields an update may touch. Nil means
// "leave unchanged". Date and Slot changes are only admitted after the
// service re-checks availability without the reservation being edited.
type ReservationPatch struct {
	Status    *string    `json:"status,omitempty"`
	ReplyNote *string    `json:"reply_note,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	Slot      *string    `json:"slot,omitempty"`
}

// DateAvailability is derived on every query and never persisted.
type DateAvailability struct {
	Date      time.Time `json:"date"`
	FreeSlots []string  `json:"free_slots"`
	Message   string    `json:"message,omitempty"`
	Color     string    `json:"color"`
}
