package events

import (
	"encoding/json"
	"testing"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	handler := func(event *Event) error {
		received = event
		callCount++
		return nil
	}

	bus.Subscribe(EventReservationCreated, handler)

	payload := ReservationEventPayload{ReservationID: 7, Date: "2026-10-01", Slot: "day", Status: "pending"}
	err := bus.PublishJSON(EventReservationCreated, payload)
	if err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	if received.Type != EventReservationCreated {
		t.Errorf("expected type %s, got %s", EventReservationCreated, received.Type)
	}

	var decoded ReservationEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if decoded.ReservationID != 7 || decoded.Slot != "day" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	bus.Publish(&Event{Type: "unknown"})
	err := bus.PublishJSON("unknown", nil)
	if err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}
}

func TestStatusEventType(t *testing.T) {
	cases := map[string]string{
		"pending":   EventReservationCreated,
		"advance":   EventReservationAdvance,
		"confirm":   EventReservationConfirmed,
		"cancelled": EventReservationCancelled,
		"done":      EventReservationCompleted,
		"bogus":     "",
	}
	for status, want := range cases {
		if got := StatusEventType(status); got != want {
			t.Errorf("StatusEventType(%q) = %q, want %q", status, got, want)
		}
	}
}
