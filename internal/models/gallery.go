package models

import "time"

// Gallery is a named album of media references. The service stores URLs
// only; file handling happens elsewhere.
type Gallery struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Items       []GalleryItem `json:"items,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type GalleryItem struct {
	ID        int64     `json:"id"`
	GalleryID int64     `json:"gallery_id"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	SortOrder int64     `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}
