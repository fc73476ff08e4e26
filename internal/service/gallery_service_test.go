package service

import (
	"context"
	"io"
	"testing"

	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGalleryStore struct {
	mock.Mock
}

func (m *mockGalleryStore) CreateGallery(ctx context.Context, g *models.Gallery) error {
	return m.Called(ctx, g).Error(0)
}
func (m *mockGalleryStore) ListGalleries(ctx context.Context) ([]models.Gallery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Gallery), args.Error(1)
}
func (m *mockGalleryStore) GetGallery(ctx context.Context, id int64) (*models.Gallery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gallery), args.Error(1)
}
func (m *mockGalleryStore) AddGalleryItems(ctx context.Context, galleryID int64, items []models.GalleryItem) error {
	return m.Called(ctx, galleryID, items).Error(0)
}
func (m *mockGalleryStore) DeleteGalleryItem(ctx context.Context, galleryID, itemID int64) error {
	return m.Called(ctx, galleryID, itemID).Error(0)
}
func (m *mockGalleryStore) DeleteGallery(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newGalleryService(store *mockGalleryStore) *GalleryService {
	logger := zerolog.New(io.Discard)
	return NewGalleryService(store, &logger)
}

func TestGalleryServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := new(mockGalleryStore)
		svc := newGalleryService(store)

		g := &models.Gallery{Title: "  Wedding Hall  "}
		store.On("CreateGallery", ctx, g).Return(nil).Once()

		require.NoError(t, svc.CreateGallery(ctx, g))
		assert.Equal(t, "Wedding Hall", g.Title)
		store.AssertExpectations(t)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		store := new(mockGalleryStore)
		svc := newGalleryService(store)

		err := svc.CreateGallery(ctx, &models.Gallery{Title: "  "})
		assert.ErrorIs(t, err, ErrIncompleteInput)
		store.AssertNotCalled(t, "CreateGallery", mock.Anything, mock.Anything)
	})
}

func TestGalleryServiceAddItems(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := new(mockGalleryStore)
		svc := newGalleryService(store)

		items := []models.GalleryItem{{URL: "https://cdn.example.com/hall-1.jpg", Caption: "Main hall"}}
		store.On("AddGalleryItems", ctx, int64(5), items).Return(nil).Once()

		require.NoError(t, svc.AddItems(ctx, 5, items))
		store.AssertExpectations(t)
	})

	t.Run("MissingURL", func(t *testing.T) {
		store := new(mockGalleryStore)
		svc := newGalleryService(store)

		err := svc.AddItems(ctx, 5, []models.GalleryItem{{URL: "  "}})
		assert.ErrorIs(t, err, ErrIncompleteInput)
	})

	t.Run("NoItems", func(t *testing.T) {
		store := new(mockGalleryStore)
		svc := newGalleryService(store)

		err := svc.AddItems(ctx, 5, nil)
		assert.ErrorIs(t, err, ErrEmptyPatch)
	})
}

func TestGalleryServiceDelete(t *testing.T) {
	ctx := context.Background()
	store := new(mockGalleryStore)
	svc := newGalleryService(store)

	store.On("DeleteGalleryItem", ctx, int64(5), int64(9)).Return(nil).Once()
	store.On("DeleteGallery", ctx, int64(5)).Return(nil).Once()

	require.NoError(t, svc.RemoveItem(ctx, 5, 9))
	require.NoError(t, svc.DeleteGallery(ctx, 5))
	store.AssertExpectations(t)
}
