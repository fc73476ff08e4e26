package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"venuebook/internal/config"
	"venuebook/internal/export"
	"venuebook/internal/metrics"
	"venuebook/internal/models"
	"venuebook/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the reservation API consumed by the booking form
// and the staff dashboard.
type HTTPServer struct {
	cfg          config.APIConfig
	reservations *service.ReservationService
	galleries    *service.GalleryService
	exporter     *export.Exporter
	eventTypes   []models.EventType
	server       *http.Server
	auth         *HTTPAuth
	log          zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, reservations *service.ReservationService, galleries *service.GalleryService, exporter *export.Exporter, eventTypes []models.EventType, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		reservations: reservations,
		galleries:    galleries,
		exporter:     exporter,
		eventTypes:   eventTypes,
		auth:         NewHTTPAuth(cfg),
		log:          logger.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/calendar", srv.handleCalendar)
	mux.HandleFunc("/api/v1/events", srv.handleEventTypes)
	mux.HandleFunc("/api/v1/reservations/export", srv.handleExport)
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationByID)
	mux.HandleFunc("/api/v1/galleries", srv.handleGalleries)
	mux.HandleFunc("/api/v1/galleries/", srv.handleGalleryByID)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleEventTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("events")

	active := make([]models.EventType, 0, len(s.eventTypes))
	for _, et := range s.eventTypes {
		if et.IsActive {
			active = append(active, et)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": active})
}

const requestIDHeader = "x-request-id"

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	date, err := time.Parse(models.DateFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format; expected YYYY-MM-DD", name)
	}
	return date, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
