package domain

import (
	"context"
	"time"

	"venuebook/internal/models"
)

// ReservationStore is the persistence boundary for reservations. The
// store, not the service pre-check, is the final authority on slot
// uniqueness: CreateReservationWithLock must reject (date, slot)
// collisions for slot-consuming statuses atomically.
type ReservationStore interface {
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	GetReservationsByDate(ctx context.Context, date time.Time) ([]models.Reservation, error)
	GetReservationsByDateRange(ctx context.Context, start, end time.Time) ([]models.Reservation, error)
	GetDailyReservations(ctx context.Context, start, end time.Time) (map[string][]models.Reservation, error)
	CreateReservation(ctx context.Context, r *models.Reservation) error
	CreateReservationWithLock(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatusWithVersion(ctx context.Context, id, version int64, status string) error
	UpdateReservationReplyWithVersion(ctx context.Context, id, version int64, status, replyNote string) error
	UpdateReservationDateSlotWithVersion(ctx context.Context, id, version int64, date time.Time, slot string) error
	DeleteReservation(ctx context.Context, id int64) error
}

type GalleryStore interface {
	CreateGallery(ctx context.Context, g *models.Gallery) error
	ListGalleries(ctx context.Context) ([]models.Gallery, error)
	GetGallery(ctx context.Context, id int64) (*models.Gallery, error)
	AddGalleryItems(ctx context.Context, galleryID int64, items []models.GalleryItem) error
	DeleteGalleryItem(ctx context.Context, galleryID, itemID int64) error
	DeleteGallery(ctx context.Context, id int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker queues reservation changes for the external sheet mirror.
type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, reservationID int64, reservation *models.Reservation, status string) error
}

// SheetsWriter mirrors reservations into a spreadsheet for the venue staff.
type SheetsWriter interface {
	UpsertReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, reservationID int64, status string) error
	ReplaceReservationsSheet(ctx context.Context, reservations []models.Reservation) error
}

// ThrottleRepository counts reservation submissions per client so one
// caller cannot flood the booking form. Allow reports whether the call is
// within limit for the window.
type ThrottleRepository interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
