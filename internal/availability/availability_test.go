package availability

import (
	"math/rand"
	"testing"
	"time"

	"venuebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func res(slot, status string) models.Reservation {
	return models.Reservation{
		GuestName: "Guest",
		Date:      time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Slot:      slot,
		Status:    status,
	}
}

func TestCompute_EmptyDate(t *testing.T) {
	result := Compute(nil)

	assert.ElementsMatch(t, []string{models.SlotDay, models.SlotNight, models.SlotFull}, result.FreeSlots)
	assert.Empty(t, result.Message)
}

func TestCompute_FullDayBooked(t *testing.T) {
	result := Compute([]models.Reservation{res(models.SlotFull, models.StatusConfirm)})

	assert.Empty(t, result.FreeSlots)
	assert.Equal(t, MsgFullDayBooked, result.Message)
	assert.False(t, result.Free(models.SlotDay))
}

func TestCompute_FullDayBlocksRegardlessOfOthers(t *testing.T) {
	// Extra non-consuming reservations must not change the answer.
	result := Compute([]models.Reservation{
		res(models.SlotDay, models.StatusPending),
		res(models.SlotFull, models.StatusAdvance),
		res(models.SlotNight, models.StatusCancelled),
	})

	assert.Empty(t, result.FreeSlots)
	assert.Equal(t, MsgFullDayBooked, result.Message)
}

func TestCompute_OneSlotTaken(t *testing.T) {
	result := Compute([]models.Reservation{res(models.SlotDay, models.StatusConfirm)})
	assert.Equal(t, []string{models.SlotNight}, result.FreeSlots)
	assert.Equal(t, MsgOneRemaining, result.Message)

	result = Compute([]models.Reservation{res(models.SlotNight, models.StatusAdvance)})
	assert.Equal(t, []string{models.SlotDay}, result.FreeSlots)
	assert.Equal(t, MsgOneRemaining, result.Message)
}

func TestCompute_BothSlotsTaken(t *testing.T) {
	result := Compute([]models.Reservation{
		res(models.SlotDay, models.StatusConfirm),
		res(models.SlotNight, models.StatusAdvance),
	})

	assert.Empty(t, result.FreeSlots)
	assert.Equal(t, MsgBothBooked, result.Message)
}

func TestCompute_PendingNeverBlocks(t *testing.T) {
	result := Compute([]models.Reservation{res(models.SlotFull, models.StatusPending)})

	assert.ElementsMatch(t, []string{models.SlotDay, models.SlotNight, models.SlotFull}, result.FreeSlots)
	assert.Empty(t, result.Message)
}

func TestCompute_CancelledAndDoneNeverBlock(t *testing.T) {
	result := Compute([]models.Reservation{
		res(models.SlotFull, models.StatusCancelled),
		res(models.SlotDay, models.StatusDone),
	})

	assert.ElementsMatch(t, []string{models.SlotDay, models.SlotNight, models.SlotFull}, result.FreeSlots)
}

func TestCompute_Idempotent(t *testing.T) {
	input := []models.Reservation{
		res(models.SlotDay, models.StatusConfirm),
		res(models.SlotNight, models.StatusPending),
	}

	first := Compute(input)
	second := Compute(input)

	assert.Equal(t, first, second)
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	input := []models.Reservation{
		res(models.SlotNight, models.StatusAdvance),
		res(models.SlotDay, models.StatusPending),
	}
	snapshot := make([]models.Reservation, len(input))
	copy(snapshot, input)

	_ = Compute(input)
	_ = ClassifyColor(input)

	assert.Equal(t, snapshot, input)
}

func TestCompute_DegradedOnInvalidSet(t *testing.T) {
	// Two full-day bookings violate the invariant; the engine still
	// reports nothing free instead of failing.
	input := []models.Reservation{
		res(models.SlotFull, models.StatusConfirm),
		res(models.SlotFull, models.StatusAdvance),
	}

	result := Compute(input)
	assert.Empty(t, result.FreeSlots)
	assert.Equal(t, models.ColorRed, ClassifyColor(input))
	assert.ErrorIs(t, CheckInvariant(input), ErrInvariantViolation)
}

func TestClassifyColor(t *testing.T) {
	tests := []struct {
		name  string
		input []models.Reservation
		want  string
	}{
		{"empty", nil, models.ColorNone},
		{"day only", []models.Reservation{res(models.SlotDay, models.StatusConfirm)}, models.ColorYellow},
		{"night only", []models.Reservation{res(models.SlotNight, models.StatusConfirm)}, models.ColorPink},
		{"full", []models.Reservation{res(models.SlotFull, models.StatusAdvance)}, models.ColorRed},
		{"day and night", []models.Reservation{
			res(models.SlotDay, models.StatusConfirm),
			res(models.SlotNight, models.StatusAdvance),
		}, models.ColorRed},
		{"pending full ignored", []models.Reservation{res(models.SlotFull, models.StatusPending)}, models.ColorNone},
		{"day booked after night escalates", []models.Reservation{
			res(models.SlotNight, models.StatusConfirm),
			res(models.SlotDay, models.StatusConfirm),
		}, models.ColorRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyColor(tt.input))
		})
	}
}

func TestClassifyColor_PermutationInvariant(t *testing.T) {
	input := []models.Reservation{
		res(models.SlotDay, models.StatusConfirm),
		res(models.SlotNight, models.StatusAdvance),
		res(models.SlotFull, models.StatusPending),
		res(models.SlotDay, models.StatusCancelled),
	}

	want := ClassifyColor(input)
	require.Equal(t, models.ColorRed, want)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.Reservation, len(input))
		copy(shuffled, input)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, ClassifyColor(shuffled))
	}
}

func TestCheckInvariant(t *testing.T) {
	assert.NoError(t, CheckInvariant(nil))
	assert.NoError(t, CheckInvariant([]models.Reservation{
		res(models.SlotDay, models.StatusConfirm),
		res(models.SlotNight, models.StatusAdvance),
	}))
	// Pending duplicates are allowed; they consume nothing.
	assert.NoError(t, CheckInvariant([]models.Reservation{
		res(models.SlotFull, models.StatusPending),
		res(models.SlotFull, models.StatusPending),
	}))

	assert.ErrorIs(t, CheckInvariant([]models.Reservation{
		res(models.SlotFull, models.StatusConfirm),
		res(models.SlotDay, models.StatusAdvance),
	}), ErrInvariantViolation)
	assert.ErrorIs(t, CheckInvariant([]models.Reservation{
		res(models.SlotNight, models.StatusConfirm),
		res(models.SlotNight, models.StatusConfirm),
	}), ErrInvariantViolation)
}
