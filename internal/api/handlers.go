package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"venuebook/internal/database"
	"venuebook/internal/metrics"
	"venuebook/internal/models"
	"venuebook/internal/service"
)

// createReservationRequest mirrors the booking form fields.
type createReservationRequest struct {
	GuestName      string  `json:"guest_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Date           string  `json:"date"`
	Slot           string  `json:"slot"`
	Event          string  `json:"event"`
	GuestCount     int64   `json:"guest_count"`
	Buffet         string  `json:"buffet"`
	BuffetPrice    float64 `json:"buffet_price"`
	TotalPrice     float64 `json:"total_price"`
	AdvancePayment float64 `json:"advance_payment"`
	DuePayment     float64 `json:"due_payment"`
	Note           string  `json:"note"`
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("availability")

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := s.reservations.GetAvailability(r.Context(), date)
	if err != nil {
		s.log.Error().Err(err).Msg("availability query failed")
		writeError(w, http.StatusInternalServerError, "failed to compute availability")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":       date.Format(models.DateFormat),
		"free_slots": info.FreeSlots,
		"message":    info.Message,
		"color":      info.Color,
	})
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("calendar")

	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not precede start")
		return
	}

	colors, err := s.reservations.CalendarColors(r.Context(), start, end)
	if err != nil {
		s.log.Error().Err(err).Msg("calendar query failed")
		writeError(w, http.StatusInternalServerError, "failed to compute calendar")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"colors": colors})
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("reservations_list")
		s.listReservations(w, r)
	case http.MethodPost:
		metrics.IncHTTP("reservations_create")
		s.createReservation(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listReservations(w http.ResponseWriter, r *http.Request) {
	dateRaw := strings.TrimSpace(r.URL.Query().Get("date"))
	startRaw := strings.TrimSpace(r.URL.Query().Get("start"))
	endRaw := strings.TrimSpace(r.URL.Query().Get("end"))

	var (
		reservations []models.Reservation
		err          error
	)
	if dateRaw != "" {
		date, perr := parseDateParam(r, "date")
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		reservations, err = s.reservations.GetReservationsByDate(r.Context(), date)
	} else if startRaw != "" || endRaw != "" {
		start, perr := parseDateParam(r, "start")
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		end, perr := parseDateParam(r, "end")
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		reservations, err = s.reservations.GetReservationsByDateRange(r.Context(), start, end)
	} else {
		reservations, err = s.reservations.ListReservations(r.Context())
	}
	if err != nil {
		s.log.Error().Err(err).Msg("list reservations failed")
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *HTTPServer) createReservation(w http.ResponseWriter, r *http.Request) {
	var body createReservationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var date time.Time
	if raw := strings.TrimSpace(body.Date); raw != "" {
		parsed, err := time.Parse(models.DateFormat, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	reservation := &models.Reservation{
		GuestName:      body.GuestName,
		Email:          body.Email,
		Phone:          body.Phone,
		Date:           date,
		Slot:           strings.TrimSpace(body.Slot),
		Event:          strings.TrimSpace(body.Event),
		GuestCount:     body.GuestCount,
		Buffet:         body.Buffet,
		BuffetPrice:    body.BuffetPrice,
		TotalPrice:     body.TotalPrice,
		AdvancePayment: body.AdvancePayment,
		DuePayment:     body.DuePayment,
		Note:           body.Note,
	}

	// Throttle key: the submitting client, best identified by email.
	clientKey := strings.ToLower(strings.TrimSpace(body.Email))
	if clientKey == "" {
		clientKey = s.auth.clientKey(r)
	}

	if err := s.reservations.CreateReservation(r.Context(), reservation, clientKey); err != nil {
		if errors.Is(err, database.ErrSlotConflict) {
			s.writeSlotConflict(w, r, date)
			return
		}
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/reservations/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("reservations_get")
		s.getReservation(w, r, id)
	case http.MethodPut:
		metrics.IncHTTP("reservations_update")
		s.updateReservation(w, r, id)
	case http.MethodDelete:
		metrics.IncHTTP("reservations_delete")
		s.deleteReservation(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) getReservation(w http.ResponseWriter, r *http.Request, id int64) {
	reservation, err := s.reservations.GetReservation(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

type updateReservationRequest struct {
	Version   int64   `json:"version"`
	Status    *string `json:"status,omitempty"`
	ReplyNote *string `json:"reply_note,omitempty"`
	Date      *string `json:"date,omitempty"`
	Slot      *string `json:"slot,omitempty"`
}

func (s *HTTPServer) updateReservation(w http.ResponseWriter, r *http.Request, id int64) {
	var body updateReservationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Version <= 0 {
		writeError(w, http.StatusBadRequest, "version is required")
		return
	}

	patch := models.ReservationPatch{
		Status:    body.Status,
		ReplyNote: body.ReplyNote,
		Slot:      body.Slot,
	}
	if body.Date != nil {
		parsed, err := time.Parse(models.DateFormat, strings.TrimSpace(*body.Date))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		patch.Date = &parsed
	}

	if err := s.reservations.UpdateReservation(r.Context(), id, body.Version, patch); err != nil {
		s.writeServiceError(w, err)
		return
	}

	updated, err := s.reservations.GetReservation(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) deleteReservation(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.reservations.DeleteReservation(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("reservations_export")

	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not precede start")
		return
	}

	daily, err := s.reservations.GetDailyReservations(r.Context(), start, end)
	if err != nil {
		s.log.Error().Err(err).Msg("export query failed")
		writeError(w, http.StatusInternalServerError, "failed to load reservations")
		return
	}

	path, err := s.exporter.ExportReservations(daily, start, end)
	if err != nil {
		s.log.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"reservations.xlsx\"")
	http.ServeFile(w, r, path)
}

// writeSlotConflict answers a failed create with the blocking message and
// whatever slots remain free, so the form can offer alternatives.
func (s *HTTPServer) writeSlotConflict(w http.ResponseWriter, r *http.Request, date time.Time) {
	body := map[string]any{"error": "time slot is not available"}
	if info, err := s.reservations.GetAvailability(r.Context(), date); err == nil {
		body["message"] = info.Message
		body["free_slots"] = info.FreeSlots
	}
	writeJSON(w, http.StatusConflict, body)
}

// writeServiceError maps service and store errors onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrSlotConflict):
		writeError(w, http.StatusConflict, "time slot is not available")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "reservation was modified concurrently; reload and retry")
	case errors.Is(err, database.ErrPastDate):
		writeError(w, http.StatusBadRequest, "date is in the past")
	case errors.Is(err, database.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, "date is too far ahead")
	case errors.Is(err, service.ErrIncompleteInput),
		errors.Is(err, service.ErrInvalidSlot),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrEmptyPatch),
		errors.Is(err, service.ErrConflictingPatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTooManySubmissions):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		// Anything unrecognized here is a failed store round trip;
		// validation failures all carry sentinels above.
		s.log.Error().Err(err).Msg("storage error")
		writeError(w, http.StatusServiceUnavailable, "storage unavailable, try again later")
	}
}
