package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/database"
	"venuebook/internal/domain"
	"venuebook/internal/events"
	"venuebook/internal/logging"
	"venuebook/internal/metrics"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
)

// statusTransitions lists the statuses a reservation may move to from
// each current status. Done is terminal; cancelled may be reopened.
var statusTransitions = map[string][]string{
	models.StatusPending:   {models.StatusAdvance, models.StatusConfirm, models.StatusCancelled},
	models.StatusAdvance:   {models.StatusConfirm, models.StatusDone, models.StatusCancelled},
	models.StatusConfirm:   {models.StatusDone, models.StatusCancelled},
	models.StatusCancelled: {models.StatusPending},
	models.StatusDone:      {},
}

type ReservationService struct {
	store          domain.ReservationStore
	eventBus       domain.EventPublisher
	syncWorker     domain.SyncWorker
	throttle       domain.ThrottleRepository
	maxBookingDays int
	submitLimit    int
	submitWindow   time.Duration
	logger         *zerolog.Logger
}

func NewReservationService(store domain.ReservationStore, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, throttle domain.ThrottleRepository, maxBookingDays, submitLimit, submitWindowSeconds int, logger *zerolog.Logger) *ReservationService {
	if maxBookingDays <= 0 {
		maxBookingDays = 365
	}
	if submitLimit <= 0 {
		submitLimit = models.SubmitLimitCount
	}
	if submitWindowSeconds <= 0 {
		submitWindowSeconds = models.SubmitLimitWindow
	}
	return &ReservationService{
		store:          store,
		eventBus:       eventBus,
		syncWorker:     syncWorker,
		throttle:       throttle,
		maxBookingDays: maxBookingDays,
		submitLimit:    submitLimit,
		submitWindow:   time.Duration(submitWindowSeconds) * time.Second,
		logger:         logger,
	}
}

func (s *ReservationService) ValidateReservationDate(date time.Time) error {
	if date.Before(time.Now().AddDate(0, 0, -1)) {
		return database.ErrPastDate
	}

	maxDate := time.Now().AddDate(0, 0, s.maxBookingDays)
	if date.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

// ValidateDraft checks a submission before it touches the store.
func (s *ReservationService) ValidateDraft(r *models.Reservation) error {
	r.GuestName = strings.TrimSpace(r.GuestName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)

	if r.GuestName == "" || r.Email == "" || r.Phone == "" || r.Date.IsZero() || r.Slot == "" {
		return ErrIncompleteInput
	}
	if !models.ValidSlot(r.Slot) {
		return ErrInvalidSlot
	}
	if r.Status != "" && !models.ValidStatus(r.Status) {
		return ErrInvalidStatus
	}
	return s.ValidateReservationDate(r.Date)
}

// CreateReservation admits a submission: throttle, field validation,
// availability pre-check, then the locked insert. The store's locked
// insert remains the final authority under races.
func (s *ReservationService) CreateReservation(ctx context.Context, r *models.Reservation, clientKey string) error {
	if s.throttle != nil && clientKey != "" {
		allowed, err := s.throttle.Allow(ctx, clientKey, s.submitLimit, s.submitWindow)
		if err != nil {
			s.logger.Error().Err(err).Str("client", clientKey).Msg("submission throttle check failed")
		} else if !allowed {
			metrics.IncReservationOutcome("throttled")
			return ErrTooManySubmissions
		}
	}

	if err := s.ValidateDraft(r); err != nil {
		metrics.IncReservationOutcome("rejected")
		return err
	}
	if r.Status == "" {
		r.Status = models.StatusPending
	}

	// The booking form only offers free slots, so a taken slot is
	// rejected here no matter the requested status.
	existing, err := s.store.GetReservationsByDate(ctx, r.Date)
	if err != nil {
		metrics.IncReservationOutcome("error")
		return err
	}
	if !availability.Compute(existing).Free(r.Slot) {
		metrics.IncReservationOutcome("conflict")
		return database.ErrSlotConflict
	}

	if err := s.store.CreateReservationWithLock(ctx, r); err != nil {
		if errors.Is(err, database.ErrSlotConflict) {
			metrics.IncReservationOutcome("conflict")
		} else {
			metrics.IncReservationOutcome("error")
		}
		return err
	}

	metrics.IncReservationOutcome("created")
	s.publishEvent(events.EventReservationCreated, *r)
	s.enqueueSync(ctx, *r, "upsert")

	return nil
}

// GetAvailability derives the slot picture for one date. It is computed
// from stored reservations on every call and never cached.
func (s *ReservationService) GetAvailability(ctx context.Context, date time.Time) (*models.DateAvailability, error) {
	reservations, err := s.store.GetReservationsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	s.checkInvariant(date, reservations)

	result := availability.Compute(reservations)
	return &models.DateAvailability{
		Date:      date,
		FreeSlots: result.FreeSlots,
		Message:   result.Message,
		Color:     availability.ClassifyColor(reservations),
	}, nil
}

// CalendarColors maps each date in [start, end] to its display color.
// Dates without slot-consuming reservations are omitted.
func (s *ReservationService) CalendarColors(ctx context.Context, start, end time.Time) (map[string]string, error) {
	daily, err := s.store.GetDailyReservations(ctx, start, end)
	if err != nil {
		return nil, err
	}

	colors := make(map[string]string, len(daily))
	for day, reservations := range daily {
		date, err := time.Parse(models.DateFormat, day)
		if err == nil {
			s.checkInvariant(date, reservations)
		}
		if color := availability.ClassifyColor(reservations); color != models.ColorNone {
			colors[day] = color
		}
	}
	return colors, nil
}

// UpdateReservation applies a staff edit. A patch either moves the
// reservation (date and/or slot) or changes status/reply, not both in
// one call.
func (s *ReservationService) UpdateReservation(ctx context.Context, id, version int64, patch models.ReservationPatch) error {
	if patch.Date != nil || patch.Slot != nil {
		if patch.Status != nil || patch.ReplyNote != nil {
			return ErrConflictingPatch
		}
		return s.moveReservation(ctx, id, version, patch.Date, patch.Slot)
	}

	switch {
	case patch.Status != nil && patch.ReplyNote != nil:
		return s.Reply(ctx, id, version, *patch.Status, *patch.ReplyNote)
	case patch.Status != nil:
		return s.UpdateStatus(ctx, id, version, *patch.Status)
	case patch.ReplyNote != nil:
		current, err := s.store.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		return s.Reply(ctx, id, version, current.Status, *patch.ReplyNote)
	}

	return ErrEmptyPatch
}

// UpdateStatus moves a reservation through its lifecycle with optimistic
// locking. Entering a slot-consuming status re-checks availability first.
func (s *ReservationService) UpdateStatus(ctx context.Context, id, version int64, status string) error {
	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validateTransition(current.Status, status); err != nil {
		return err
	}

	if models.SlotConsuming(status) && !models.SlotConsuming(current.Status) {
		if err := s.checkSlotFree(ctx, current.Date, current.Slot, id); err != nil {
			return err
		}
	}

	if err := s.store.UpdateReservationStatusWithVersion(ctx, id, version, status); err != nil {
		return err
	}

	s.afterStatusChange(ctx, id, status)
	return nil
}

// Reply records the staff reply note, optionally moving status in the
// same version-checked write.
func (s *ReservationService) Reply(ctx context.Context, id, version int64, status, replyNote string) error {
	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return err
	}

	if status != current.Status {
		if err := s.validateTransition(current.Status, status); err != nil {
			return err
		}
		if models.SlotConsuming(status) && !models.SlotConsuming(current.Status) {
			if err := s.checkSlotFree(ctx, current.Date, current.Slot, id); err != nil {
				return err
			}
		}
	}

	if err := s.store.UpdateReservationReplyWithVersion(ctx, id, version, status, replyNote); err != nil {
		return err
	}

	updated, err := s.store.GetReservation(ctx, id)
	if err == nil {
		s.publishEvent(events.EventReservationReplied, *updated)
		s.enqueueSync(ctx, *updated, "update_status")
	}
	return nil
}

func (s *ReservationService) moveReservation(ctx context.Context, id, version int64, date *time.Time, slot *string) error {
	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return err
	}

	newDate := current.Date
	if date != nil {
		newDate = *date
	}
	newSlot := current.Slot
	if slot != nil {
		newSlot = *slot
	}

	if !models.ValidSlot(newSlot) {
		return ErrInvalidSlot
	}
	if err := s.ValidateReservationDate(newDate); err != nil {
		return err
	}

	// The store re-checks the target inside the transaction; this is
	// the cheap early rejection.
	if models.SlotConsuming(current.Status) {
		if err := s.checkSlotFree(ctx, newDate, newSlot, id); err != nil {
			return err
		}
	}

	if err := s.store.UpdateReservationDateSlotWithVersion(ctx, id, version, newDate, newSlot); err != nil {
		return err
	}

	updated, err := s.store.GetReservation(ctx, id)
	if err == nil {
		s.publishEvent(events.EventReservationMoved, *updated)
		s.enqueueSync(ctx, *updated, "upsert")
	}
	return nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

func (s *ReservationService) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	return s.store.ListReservations(ctx)
}

func (s *ReservationService) GetReservationsByDate(ctx context.Context, date time.Time) ([]models.Reservation, error) {
	return s.store.GetReservationsByDate(ctx, date)
}

func (s *ReservationService) GetReservationsByDateRange(ctx context.Context, start, end time.Time) ([]models.Reservation, error) {
	return s.store.GetReservationsByDateRange(ctx, start, end)
}

func (s *ReservationService) GetDailyReservations(ctx context.Context, start, end time.Time) (map[string][]models.Reservation, error) {
	return s.store.GetDailyReservations(ctx, start, end)
}

func (s *ReservationService) DeleteReservation(ctx context.Context, id int64) error {
	return s.store.DeleteReservation(ctx, id)
}

func (s *ReservationService) validateTransition(from, to string) error {
	if !models.ValidStatus(to) {
		return ErrInvalidStatus
	}
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// checkSlotFree rejects a slot unless it is free on the date when the
// reservation with excludeID is left out of the picture.
func (s *ReservationService) checkSlotFree(ctx context.Context, date time.Time, slot string, excludeID int64) error {
	reservations, err := s.store.GetReservationsByDate(ctx, date)
	if err != nil {
		return err
	}

	others := reservations[:0:0]
	for _, r := range reservations {
		if r.ID != excludeID {
			others = append(others, r)
		}
	}

	if !availability.Compute(others).Free(slot) {
		return database.ErrSlotConflict
	}
	return nil
}

func (s *ReservationService) checkInvariant(date time.Time, reservations []models.Reservation) {
	if err := availability.CheckInvariant(reservations); err != nil {
		metrics.IncInvariantViolation()
		s.logger.Error().
			Str("date", date.Format(models.DateFormat)).
			Msg("stored reservations break slot exclusivity, availability degraded to none")
	}
}

func (s *ReservationService) afterStatusChange(ctx context.Context, id int64, status string) {
	updated, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return
	}

	if eventType := events.StatusEventType(status); eventType != "" {
		s.publishEvent(eventType, *updated)
	}
	s.enqueueSync(ctx, *updated, "update_status")
}

func (s *ReservationService) publishEvent(eventType string, r models.Reservation) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		GuestName:     r.GuestName,
		Email:         r.Email,
		Date:          r.Date.Format(models.DateFormat),
		Slot:          r.Slot,
		Status:        r.Status,
		ReplyNote:     r.ReplyNote,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		log := logging.WithReservation(s.logger, r.ID, payload.Date, r.Slot)
		log.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

func (s *ReservationService) enqueueSync(ctx context.Context, r models.Reservation, taskType string) {
	if s.syncWorker == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = r.Status
	}

	if err := s.syncWorker.EnqueueTask(ctx, taskType, r.ID, &r, status); err != nil {
		log := logging.WithReservation(s.logger, r.ID, r.Date.Format(models.DateFormat), r.Slot)
		log.Error().Err(err).Str("task", taskType).Msg("sheets enqueue error")
	}
}
