package export

import (
	"io"
	"testing"
	"time"

	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportReservations(t *testing.T) {
	logger := zerolog.New(io.Discard)
	exporter := NewExporter(t.TempDir(), &logger)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)

	daily := map[string][]models.Reservation{
		"2026-10-01": {
			{
				ID: 1, GuestName: "Nirmala Perera", Email: "nirmala@example.com",
				Phone: "+94771234567", Date: start, Slot: models.SlotDay,
				Event: "Wedding Event", Status: models.StatusConfirm,
				CreatedAt: time.Now(),
			},
		},
		"2026-10-02": {
			{
				ID: 2, GuestName: "Kasun Silva", Phone: "+94770000000",
				Date: start.AddDate(0, 0, 1), Slot: models.SlotFull,
				Status: models.StatusAdvance, CreatedAt: time.Now(),
			},
		},
	}

	path, err := exporter.ExportReservations(daily, start, end)
	require.NoError(t, err)
	require.FileExists(t, path)
	assert.Contains(t, path, "reservations_2026-10-01_to_2026-10-03.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Calendar")
	assert.Contains(t, f.GetSheetList(), "Reservations")

	period, err := f.GetCellValue("Calendar", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Period: 2026-10-01 - 2026-10-03", period)

	// Day row, first date column holds the confirmed guest.
	dayCell, err := f.GetCellValue("Calendar", "B3")
	require.NoError(t, err)
	assert.Contains(t, dayCell, "Nirmala Perera")

	// Night slot on the same date stays free.
	nightCell, err := f.GetCellValue("Calendar", "B4")
	require.NoError(t, err)
	assert.Contains(t, nightCell, "free")

	guest, err := f.GetCellValue("Reservations", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Nirmala Perera", guest)
}

func TestExportCreatesDirectory(t *testing.T) {
	logger := zerolog.New(io.Discard)
	dir := t.TempDir() + "/nested/exports"
	exporter := NewExporter(dir, &logger)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	path, err := exporter.ExportReservations(nil, start, start)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
