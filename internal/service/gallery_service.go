package service

import (
	"context"
	"strings"

	"venuebook/internal/domain"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
)

// GalleryService manages the venue's public photo galleries. Items are
// URL references; files themselves are hosted elsewhere.
type GalleryService struct {
	store  domain.GalleryStore
	logger *zerolog.Logger
}

func NewGalleryService(store domain.GalleryStore, logger *zerolog.Logger) *GalleryService {
	return &GalleryService{store: store, logger: logger}
}

func (s *GalleryService) CreateGallery(ctx context.Context, g *models.Gallery) error {
	g.Title = strings.TrimSpace(g.Title)
	if g.Title == "" {
		return ErrIncompleteInput
	}
	return s.store.CreateGallery(ctx, g)
}

func (s *GalleryService) ListGalleries(ctx context.Context) ([]models.Gallery, error) {
	return s.store.ListGalleries(ctx)
}

func (s *GalleryService) GetGallery(ctx context.Context, id int64) (*models.Gallery, error) {
	return s.store.GetGallery(ctx, id)
}

func (s *GalleryService) AddItems(ctx context.Context, galleryID int64, items []models.GalleryItem) error {
	valid := items[:0:0]
	for _, item := range items {
		item.URL = strings.TrimSpace(item.URL)
		if item.URL == "" {
			return ErrIncompleteInput
		}
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		return ErrEmptyPatch
	}
	return s.store.AddGalleryItems(ctx, galleryID, valid)
}

func (s *GalleryService) RemoveItem(ctx context.Context, galleryID, itemID int64) error {
	return s.store.DeleteGalleryItem(ctx, galleryID, itemID)
}

func (s *GalleryService) DeleteGallery(ctx context.Context, id int64) error {
	s.logger.Info().Int64("gallery_id", id).Msg("deleting gallery")
	return s.store.DeleteGallery(ctx, id)
}
