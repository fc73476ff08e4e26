package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/models"
)

func (db *DB) CreateGallery(ctx context.Context, g *models.Gallery) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO galleries (title, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		g.Title, g.Description, now, now)
	if err != nil {
		return fmt.Errorf("create gallery: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	g.ID = id
	g.CreatedAt = now
	g.UpdatedAt = now
	return nil
}

func (db *DB) ListGalleries(ctx context.Context) ([]models.Gallery, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, description, created_at, updated_at FROM galleries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list galleries: %w", err)
	}
	defer rows.Close()

	var galleries []models.Gallery
	for rows.Next() {
		var g models.Gallery
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan gallery: %w", err)
		}
		galleries = append(galleries, g)
	}
	return galleries, rows.Err()
}

// GetGallery loads a gallery together with its items in sort order.
func (db *DB) GetGallery(ctx context.Context, id int64) (*models.Gallery, error) {
	var g models.Gallery
	err := db.QueryRowContext(ctx,
		`SELECT id, title, description, created_at, updated_at FROM galleries WHERE id = ?`, id).
		Scan(&g.ID, &g.Title, &g.Description, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get gallery: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, gallery_id, url, caption, sort_order, created_at
         FROM gallery_items WHERE gallery_id = ? ORDER BY sort_order ASC, id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("get gallery items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.GalleryItem
		if err := rows.Scan(&item.ID, &item.GalleryID, &item.URL, &item.Caption, &item.SortOrder, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gallery item: %w", err)
		}
		g.Items = append(g.Items, item)
	}
	return &g, rows.Err()
}

func (db *DB) AddGalleryItems(ctx context.Context, galleryID int64, items []models.GalleryItem) error {
	if _, err := db.GetGallery(ctx, galleryID); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for i := range items {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO gallery_items (gallery_id, url, caption, sort_order, created_at) VALUES (?, ?, ?, ?, ?)`,
			galleryID, items[i].URL, items[i].Caption, items[i].SortOrder, now)
		if err != nil {
			return fmt.Errorf("add gallery item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		items[i].ID = id
		items[i].GalleryID = galleryID
		items[i].CreatedAt = now
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE galleries SET updated_at = ? WHERE id = ?`, now, galleryID); err != nil {
		return fmt.Errorf("touch gallery: %w", err)
	}

	return tx.Commit()
}

func (db *DB) DeleteGalleryItem(ctx context.Context, galleryID, itemID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM gallery_items WHERE id = ? AND gallery_id = ?`, itemID, galleryID)
	if err != nil {
		return fmt.Errorf("delete gallery item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteGallery(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM gallery_items WHERE gallery_id = ?`, id); err != nil {
		return fmt.Errorf("delete gallery items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM galleries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete gallery: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
