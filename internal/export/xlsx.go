package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

var slotRows = []string{models.SlotDay, models.SlotNight, models.SlotFull}

// cell fill per calendar color
var colorFills = map[string]string{
	models.ColorNone:   "#FFFFFF",
	models.ColorYellow: "#FFEB9C",
	models.ColorPink:   "#FFC7CE",
	models.ColorRed:    "#FF8A80",
}

// Exporter writes reservation overviews as Excel files for the venue
// staff.
type Exporter struct {
	exportPath string
	logger     *zerolog.Logger
}

func NewExporter(exportPath string, logger *zerolog.Logger) *Exporter {
	return &Exporter{exportPath: exportPath, logger: logger}
}

// ExportReservations writes a slot-by-date grid plus a flat listing and
// returns the file path.
func (e *Exporter) ExportReservations(daily map[string][]models.Reservation, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Calendar"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format(models.DateFormat), endDate.Format(models.DateFormat)))

	dateCols := e.writeDateHeaders(f, sheetName, startDate, endDate)
	e.writeSlotHeaders(f, sheetName)
	e.writeGrid(f, sheetName, daily, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 22)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	e.writeListing(f, daily)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservations_%s_to_%s.xlsx",
		startDate.Format(models.DateFormat), endDate.Format(models.DateFormat))
	filePath := filepath.Join(e.exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func (e *Exporter) writeDateHeaders(f *excelize.File, sheetName string, startDate, endDate time.Time) map[string]int {
	col := 2
	currentDate := startDate
	dateCols := make(map[string]int)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for !currentDate.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, currentDate.Format("Jan 2"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[currentDate.Format(models.DateFormat)] = col

		col++
		currentDate = currentDate.AddDate(0, 0, 1)
	}
	return dateCols
}

func (e *Exporter) writeSlotHeaders(f *excelize.File, sheetName string) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, slot := range slotRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		_ = f.SetCellValue(sheetName, cell, slot)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func (e *Exporter) writeGrid(f *excelize.File, sheetName string, daily map[string][]models.Reservation, dateCols map[string]int) {
	for dateKey, reservations := range daily {
		col, exists := dateCols[dateKey]
		if !exists {
			continue
		}

		bySlot := make(map[string][]models.Reservation)
		for _, r := range reservations {
			bySlot[r.Slot] = append(bySlot[r.Slot], r)
		}

		fill := colorFills[availability.ClassifyColor(reservations)]
		cellStyle, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			Alignment: &excelize.Alignment{
				Horizontal: "left",
				Vertical:   "top",
				WrapText:   true,
			},
		})

		for i, slot := range slotRows {
			cell, _ := excelize.CoordinatesToCellName(col, i+3)

			var cellValue string
			for _, r := range bySlot[slot] {
				cellValue += fmt.Sprintf("%s %s (%s)\n", statusIcon(r.Status), r.GuestName, r.Phone)
				if r.Event != "" {
					cellValue += fmt.Sprintf("   %s\n", r.Event)
				}
			}
			if cellValue == "" {
				cellValue = "free"
			}

			_ = f.SetCellValue(sheetName, cell, cellValue)
			_ = f.SetCellStyle(sheetName, cell, cell, cellStyle)
		}
	}
}

var listingHeaders = []string{
	"ID", "Guest", "Email", "Phone", "Date", "Slot", "Event", "Guests",
	"Buffet", "Total", "Advance", "Due", "Status", "Note", "Reply", "Created",
}

func (e *Exporter) writeListing(f *excelize.File, daily map[string][]models.Reservation) {
	sheetName := "Reservations"
	if _, err := f.NewSheet(sheetName); err != nil {
		return
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, header := range listingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 2
	for _, dateKey := range sortedKeys(daily) {
		for _, r := range daily[dateKey] {
			values := []interface{}{
				r.ID, r.GuestName, r.Email, r.Phone,
				r.Date.Format(models.DateFormat), r.Slot, r.Event, r.GuestCount,
				r.Buffet, r.TotalPrice, r.AdvancePayment, r.DuePayment,
				r.Status, r.Note, r.ReplyNote, r.CreatedAt.Format("2006-01-02 15:04"),
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheetName, cell, v)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "B", "D", 20)
	_ = f.SetColWidth(sheetName, "G", "G", 25)
	_ = f.SetColWidth(sheetName, "N", "P", 25)
}

func statusIcon(status string) string {
	switch status {
	case models.StatusConfirm, models.StatusDone:
		return "✅"
	case models.StatusAdvance:
		return "🟡"
	case models.StatusPending:
		return "⏳"
	case models.StatusCancelled:
		return "❌"
	default:
		return "❓"
	}
}

func sortedKeys(daily map[string][]models.Reservation) []string {
	keys := make([]string, 0, len(daily))
	for k := range daily {
		keys = append(keys, k)
	}
	// Keys are yyyy-mm-dd so lexicographic order is date order.
	sort.Strings(keys)
	return keys
}
