package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"venuebook/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	sheetName = "Reservations"

	// column layout: A=id .. M=status .. Q=updated_at
	rowRange     = "A%d:Q%d"
	statusColumn = "M"
	updatedAtCol = "Q"
)

var errRowNotFound = errors.New("reservation row not found")

// Service mirrors reservations into a Google spreadsheet the venue
// staff works from.
type Service struct {
	service       *sheetsapi.Service
	spreadsheetID string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
}

func NewService(credentialsFile, spreadsheetID string) (*Service, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	service := &Service{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
	}

	// Warm up cache in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		service.WarmUpCache(ctx)
	}()

	// Periodic cache refresh every 1 hour
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			service.WarmUpCache(ctx)
			cancel()
		}
	}()

	return service, nil
}

// TestConnection проверяет подключение к таблице
func (s *Service) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *Service) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// WarmUpCache populates the row index cache by reading the entire ID column.
func (s *Service) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		var id int64
		switch v := row[0].(type) {
		case float64:
			id = int64(v)
		case string:
			fmt.Sscanf(v, "%d", &id)
		}
		if id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

func reservationRowValues(r *models.Reservation) []interface{} {
	return []interface{}{
		r.ID,
		r.GuestName,
		r.Email,
		r.Phone,
		r.Date.Format(models.DateFormat),
		r.Slot,
		r.Event,
		r.GuestCount,
		r.Buffet,
		r.TotalPrice,
		r.AdvancePayment,
		r.DuePayment,
		r.Status,
		r.Note,
		r.ReplyNote,
		r.CreatedAt.Format("2006-01-02 15:04:05"),
		r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// AppendReservation добавляет новую строку
func (s *Service) AppendReservation(ctx context.Context, r *models.Reservation) error {
	valueRange := &sheetsapi.ValueRange{
		Values: [][]interface{}{reservationRowValues(r)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, sheetName+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}

// UpsertReservation updates an existing reservation row or appends a new
// one if not found.
func (s *Service) UpsertReservation(ctx context.Context, r *models.Reservation) error {
	if r == nil {
		return fmt.Errorf("reservation is nil")
	}

	rowIdx, err := s.findReservationRow(ctx, r.ID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return s.AppendReservation(ctx, r)
		}
		return err
	}

	rangeData := fmt.Sprintf(sheetName+"!"+rowRange, rowIdx, rowIdx)
	valueRange := &sheetsapi.ValueRange{
		Values: [][]interface{}{reservationRowValues(r)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// UpdateReservationStatus updates status (and UpdatedAt) for a row.
func (s *Service) UpdateReservationStatus(ctx context.Context, reservationID int64, status string) error {
	rowIdx, err := s.findReservationRow(ctx, reservationID)
	if err != nil {
		return err
	}

	now := time.Now().Format("2006-01-02 15:04:05")

	statusRange := fmt.Sprintf("%s!%s%d:%s%d", sheetName, statusColumn, rowIdx, statusColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, statusRange, &sheetsapi.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!%s%d:%s%d", sheetName, updatedAtCol, rowIdx, updatedAtCol, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, updatedRange, &sheetsapi.ValueRange{
		Values: [][]interface{}{{now}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// ReplaceReservationsSheet rewrites the whole sheet from the store's
// view, headers included.
func (s *Service) ReplaceReservationsSheet(ctx context.Context, reservations []models.Reservation) error {
	values := [][]interface{}{{
		"ID", "Guest", "Email", "Phone", "Date", "Slot", "Event", "Guests",
		"Buffet", "Total", "Advance", "Due", "Status", "Note", "Reply",
		"Created At", "Updated At",
	}}
	for i := range reservations {
		values = append(values, reservationRowValues(&reservations[i]))
	}

	clearRange := sheetName + "!A:Q"
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return err
	}

	rangeData := fmt.Sprintf(sheetName+"!"+rowRange, 1, len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err == nil {
		s.rebuildCache(reservations)
	}
	return err
}

// findReservationRow locates row index (1-based) for an id in column A
// with cache.
func (s *Service) findReservationRow(ctx context.Context, reservationID int64) (int, error) {
	if reservationID == 0 {
		return 0, fmt.Errorf("reservation id is required")
	}

	if row, ok := s.getCachedRow(reservationID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		switch v := row[0].(type) {
		case float64:
			if int64(v) == reservationID {
				rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
				s.setCachedRow(reservationID, rowIdx)
				return rowIdx, nil
			}
		case string:
			if v == fmt.Sprintf("%d", reservationID) {
				rowIdx := i + 1
				s.setCachedRow(reservationID, rowIdx)
				return rowIdx, nil
			}
		}
	}

	return 0, errRowNotFound
}

func (s *Service) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *Service) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func (s *Service) rebuildCache(reservations []models.Reservation) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int, len(reservations))
	for i, r := range reservations {
		// +2 skips the header row
		s.rowCache[r.ID] = i + 2
	}
}
