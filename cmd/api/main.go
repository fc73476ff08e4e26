package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"venuebook/internal/api"
	"venuebook/internal/config"
	"venuebook/internal/database"
	"venuebook/internal/domain"
	"venuebook/internal/events"
	"venuebook/internal/export"
	"venuebook/internal/logging"
	"venuebook/internal/metrics"
	"venuebook/internal/models"
	"venuebook/internal/repository"
	"venuebook/internal/service"
	"venuebook/internal/sheets"
	"venuebook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	yamlv2 "gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	eventTypes, err := loadEventTypes(&logger)
	if err != nil {
		return err
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	var syncWorker domain.SyncWorker
	if sheetsService != nil {
		sheetsWorker := worker.NewSyncWorker(db, sheetsService, redisClient, worker.DefaultRetryPolicy(), &logger)
		go sheetsWorker.Start(ctx)
		syncWorker = sheetsWorker
	}

	eventBus := events.NewEventBus()
	subscribeAuditLog(eventBus, &logger)

	throttle := initThrottle(redisClient, &logger)

	reservationService := service.NewReservationService(
		db, eventBus, syncWorker, throttle,
		cfg.Booking.MaxBookingDays, cfg.Booking.SubmitLimitCount, cfg.Booking.SubmitLimitWindow,
		&logger,
	)
	galleryService := service.NewGalleryService(db, &logger)
	exporter := export.NewExporter(cfg.Exports.Path, &logger)

	httpServer := api.NewHTTPServer(cfg.API, reservationService, galleryService, exporter, eventTypes, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadEventTypes(logger *zerolog.Logger) ([]models.EventType, error) {
	eventsPath := os.Getenv("EVENTS_PATH")
	if eventsPath == "" {
		eventsPath = "configs/events.yaml"
	}
	data, err := os.ReadFile(eventsPath)
	if err != nil {
		logger.Error().Err(err).Str("events_path", eventsPath).Msg("read event types")
		return nil, err
	}

	var catalog struct {
		Events []models.EventType `yaml:"events"`
	}
	if err := yamlv2.Unmarshal(data, &catalog); err != nil {
		logger.Error().Err(err).Str("events_path", eventsPath).Msg("parse event types")
		return nil, err
	}

	if err := config.ValidateEventTypes(catalog.Events); err != nil {
		logger.Error().Err(err).Msg("event types validation failed")
		return nil, err
	}

	return catalog.Events, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("create exports directory")
		return err
	}
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initThrottle wires the submission limiter: redis-backed when redis is
// up, in-memory otherwise, with failover between the two.
func initThrottle(redisClient *redis.Client, logger *zerolog.Logger) domain.ThrottleRepository {
	fallback := repository.NewMemoryThrottleRepository()
	if redisClient == nil {
		return fallback
	}
	primary := repository.NewRedisThrottleRepository(redisClient)
	return repository.NewFailoverThrottleRepository(primary, fallback, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *sheets.Service {
	if cfg.Google.CredentialsFile == "" || cfg.Google.ReservationSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := sheets.NewService(cfg.Google.CredentialsFile, cfg.Google.ReservationSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets connection test failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

// subscribeAuditLog writes every reservation lifecycle event to the log.
func subscribeAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(ev *events.Event) error {
		var payload events.ReservationEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		logger.Info().
			Str("event", ev.Type).
			Int64("reservation_id", payload.ReservationID).
			Str("date", payload.Date).
			Str("slot", payload.Slot).
			Str("status", payload.Status).
			Msg("reservation event")
		return nil
	}

	for _, eventType := range []string{
		events.EventReservationCreated,
		events.EventReservationAdvance,
		events.EventReservationConfirmed,
		events.EventReservationCancelled,
		events.EventReservationCompleted,
		events.EventReservationMoved,
		events.EventReservationReplied,
	} {
		bus.Subscribe(eventType, handler)
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
