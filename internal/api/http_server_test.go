package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venuebook/internal/config"
	"venuebook/internal/database"
	"venuebook/internal/export"
	"venuebook/internal/models"
	"venuebook/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	// Each pooled connection to :memory: would get its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServer(t *testing.T, db *database.DB) *HTTPServer {
	t.Helper()
	logger := zerolog.Nop()
	reservations := service.NewReservationService(db, nil, nil, nil, 365, 0, 0, &logger)
	galleries := service.NewGalleryService(db, &logger)
	exporter := export.NewExporter(t.TempDir(), &logger)
	eventTypes := []models.EventType{
		{ID: 1, Name: "Wedding", IsActive: true},
		{ID: 2, Name: "Retired Event", IsActive: false},
	}

	cfg := config.APIConfig{Port: 0}
	return NewHTTPServer(cfg, reservations, galleries, exporter, eventTypes, &logger)
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func putJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateFormat)
}

func reservationPayload(date, slot string) map[string]any {
	return map[string]any{
		"guest_name":  "Nirmala Perera",
		"email":       "nirmala@example.com",
		"phone":       "+94771234567",
		"date":        date,
		"slot":        slot,
		"event":       "Wedding Event",
		"guest_count": 150,
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAvailabilityEndpoint(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	date := futureDate(10)

	t.Run("AllFree", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/availability?date=%s", ts.URL, date))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Date      string   `json:"date"`
			FreeSlots []string `json:"free_slots"`
			Message   string   `json:"message"`
			Color     string   `json:"color"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, date, body.Date)
		assert.ElementsMatch(t, []string{"day", "night", "full"}, body.FreeSlots)
		assert.Empty(t, body.Message)
		assert.Equal(t, models.ColorNone, body.Color)
	})

	t.Run("MissingDate", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/availability")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("BadDate", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/availability?date=01-10-2026")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestReservationLifecycle(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	date := futureDate(14)

	// Guest submits the form.
	resp := postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload(date, "day"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Reservation
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, int64(1), created.Version)

	url := fmt.Sprintf("%s/api/v1/reservations/%d", ts.URL, created.ID)

	// Staff confirms it.
	resp = putJSON(t, url, map[string]any{"version": 1, "status": models.StatusConfirm})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var confirmed models.Reservation
	decodeBody(t, resp, &confirmed)
	assert.Equal(t, models.StatusConfirm, confirmed.Status)
	assert.Equal(t, int64(2), confirmed.Version)

	// The day slot is now taken; full day is also blocked. The conflict
	// response offers what is still free.
	resp = postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload(date, "day"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict struct {
		Error     string   `json:"error"`
		FreeSlots []string `json:"free_slots"`
	}
	decodeBody(t, resp, &conflict)
	assert.Equal(t, []string{"night"}, conflict.FreeSlots)

	resp = postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload(date, "full"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Night is still free.
	resp = postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload(date, "night"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// A stale version loses.
	resp = putJSON(t, url, map[string]any{"version": 1, "status": models.StatusCancelled})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Reply with the current version works.
	resp = putJSON(t, url, map[string]any{"version": 2, "reply_note": "See you there!"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var replied models.Reservation
	decodeBody(t, resp, &replied)
	assert.Equal(t, "See you there!", replied.ReplyNote)
	assert.Equal(t, models.StatusConfirm, replied.Status)
}

func TestCreateReservationValidation(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	t.Run("MissingFields", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/reservations", map[string]any{
			"guest_name": "X",
			"date":       futureDate(5),
			"slot":       "day",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("PastDate", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload("2020-01-01", "day"))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("BadSlot", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload(futureDate(5), "afternoon"))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UnknownField", func(t *testing.T) {
		payload := reservationPayload(futureDate(5), "day")
		payload["bogus"] = true
		resp := postJSON(t, ts.URL+"/api/v1/reservations", payload)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateReservationStoreDown(t *testing.T) {
	db := newTestDB(t)
	server := newTestServer(t, db)
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	require.NoError(t, db.Close())

	resp := postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload(futureDate(5), "day"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetReservationNotFound(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/v1/reservations/9999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCalendarEndpoint(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	date := futureDate(20)

	resp := postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload(date, "night"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Reservation
	decodeBody(t, resp, &created)

	resp = putJSON(t, fmt.Sprintf("%s/api/v1/reservations/%d", ts.URL, created.ID),
		map[string]any{"version": 1, "status": models.StatusAdvance})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	start := futureDate(15)
	end := futureDate(25)
	resp, err := http.Get(fmt.Sprintf("%s/api/v1/calendar?start=%s&end=%s", ts.URL, start, end))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Colors map[string]string `json:"colors"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, models.ColorPink, body.Colors[date])

	t.Run("EndBeforeStart", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/calendar?start=%s&end=%s", ts.URL, end, start))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestEventTypesEndpoint(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/v1/events")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Events []models.EventType `json:"events"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "Wedding", body.Events[0].Name)
}

func TestExportEndpoint(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	date := futureDate(7)
	resp := postJSON(t, ts.URL+"/api/v1/reservations", reservationPayload(date, "day"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	url := fmt.Sprintf("%s/api/v1/reservations/export?start=%s&end=%s", ts.URL, futureDate(1), futureDate(10))
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "reservations.xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestGalleryEndpoints(t *testing.T) {
	server := newTestServer(t, newTestDB(t))
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts.URL+"/api/v1/galleries", map[string]any{
		"title":       "Wedding Hall",
		"description": "Main hall decorations",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var gallery models.Gallery
	decodeBody(t, resp, &gallery)
	require.NotZero(t, gallery.ID)

	itemsURL := fmt.Sprintf("%s/api/v1/galleries/%d/items", ts.URL, gallery.ID)
	resp = postJSON(t, itemsURL, map[string]any{
		"items": []map[string]any{
			{"url": "https://cdn.example.com/hall-1.jpg", "caption": "Stage"},
			{"url": "https://cdn.example.com/hall-2.jpg", "caption": "Tables"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var withItems models.Gallery
	decodeBody(t, resp, &withItems)
	require.Len(t, withItems.Items, 2)

	// Remove one item.
	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/v1/galleries/%d/items/%d", ts.URL, gallery.ID, withItems.Items[0].ID), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(fmt.Sprintf("%s/api/v1/galleries/%d", ts.URL, gallery.ID))
	require.NoError(t, err)
	var after models.Gallery
	decodeBody(t, resp, &after)
	assert.Len(t, after.Items, 1)

	// Delete the whole gallery.
	req, err = http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/galleries/%d", ts.URL, gallery.ID), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(fmt.Sprintf("%s/api/v1/galleries/%d", ts.URL, gallery.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
