package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"venuebook/internal/metrics"
	"venuebook/internal/models"
)

func (s *HTTPServer) handleGalleries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("galleries_list")
		galleries, err := s.galleries.ListGalleries(r.Context())
		if err != nil {
			s.log.Error().Err(err).Msg("list galleries failed")
			writeError(w, http.StatusInternalServerError, "failed to list galleries")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"galleries": galleries})
	case http.MethodPost:
		metrics.IncHTTP("galleries_create")
		var body models.Gallery
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.galleries.CreateGallery(r.Context(), &body); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, body)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleGalleryByID routes /api/v1/galleries/{id} and
// /api/v1/galleries/{id}/items[/{itemID}].
func (s *HTTPServer) handleGalleryByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/galleries/"
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, prefix), "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid gallery id")
		return
	}

	switch {
	case len(parts) == 1:
		s.galleryByID(w, r, id)
	case len(parts) == 2 && parts[1] == "items":
		s.galleryItems(w, r, id)
	case len(parts) == 3 && parts[1] == "items":
		itemID, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		s.galleryItemByID(w, r, id, itemID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) galleryByID(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("galleries_get")
		gallery, err := s.galleries.GetGallery(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, gallery)
	case http.MethodDelete:
		metrics.IncHTTP("galleries_delete")
		if err := s.galleries.DeleteGallery(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) galleryItems(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("gallery_items_add")

	var body struct {
		Items []models.GalleryItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.galleries.AddItems(r.Context(), id, body.Items); err != nil {
		s.writeServiceError(w, err)
		return
	}

	gallery, err := s.galleries.GetGallery(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gallery)
}

func (s *HTTPServer) galleryItemByID(w http.ResponseWriter, r *http.Request, id, itemID int64) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("gallery_items_delete")

	if err := s.galleries.RemoveItem(r.Context(), id, itemID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
