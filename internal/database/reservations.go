package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/availability"
	"venuebook/internal/models"

	"github.com/mattn/go-sqlite3"
)

const reservationColumns = `id, guest_name, email, phone, date, slot, event, guest_count,
       buffet, buffet_price, total_price, advance_payment, due_payment,
       status, note, reply_note, created_at, updated_at, version`

func scanReservation(row interface{ Scan(...any) error }) (*models.Reservation, error) {
	var r models.Reservation
	var dateStr string
	err := row.Scan(
		&r.ID, &r.GuestName, &r.Email, &r.Phone, &dateStr, &r.Slot, &r.Event, &r.GuestCount,
		&r.Buffet, &r.BuffetPrice, &r.TotalPrice, &r.AdvancePayment, &r.DuePayment,
		&r.Status, &r.Note, &r.ReplyNote, &r.CreatedAt, &r.UpdatedAt, &r.Version,
	)
	if err != nil {
		return nil, err
	}
	r.Date, err = time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse reservation date %s: %w", dateStr, err)
	}
	return &r, nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return r, nil
}

// ListReservations returns every reservation, newest first.
func (db *DB) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC, id DESC`
	return db.queryReservations(ctx, query)
}

// GetReservationsByDate returns all reservations on a date regardless of
// status; the availability engine re-filters.
func (db *DB) GetReservationsByDate(ctx context.Context, date time.Time) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE date = ? ORDER BY created_at DESC, id DESC`
	return db.queryReservations(ctx, query, date.Format(models.DateFormat))
}

func (db *DB) GetReservationsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE date >= ? AND date <= ? ORDER BY date ASC, created_at DESC`
	return db.queryReservations(ctx, query,
		startDate.Format(models.DateFormat), endDate.Format(models.DateFormat))
}

// GetDailyReservations groups a date range by day key for calendar views.
func (db *DB) GetDailyReservations(ctx context.Context, startDate, endDate time.Time) (map[string][]models.Reservation, error) {
	reservations, err := db.GetReservationsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]models.Reservation)
	for _, r := range reservations {
		key := r.Date.Format(models.DateFormat)
		daily[key] = append(daily[key], r)
	}
	return daily, nil
}

func (db *DB) queryReservations(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return reservations, nil
}

// CreateReservation inserts without a conflict check. Used for pending
// drafts and in tests; booking submissions go through
// CreateReservationWithLock.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	now := time.Now()
	result, err := db.ExecContext(ctx, insertReservationQuery, insertReservationArgs(r, now)...)
	if err != nil {
		return fmt.Errorf("create reservation: %w", translateConstraint(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 1
	return nil
}

const insertReservationQuery = `INSERT INTO reservations (
            guest_name, email, phone, date, slot, event, guest_count,
            buffet, buffet_price, total_price, advance_payment, due_payment,
            status, note, reply_note, created_at, updated_at, version
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertReservationArgs(r *models.Reservation, now time.Time) []any {
	return []any{
		r.GuestName, r.Email, r.Phone, r.Date.Format(models.DateFormat), r.Slot,
		r.Event, r.GuestCount, r.Buffet, r.BuffetPrice, r.TotalPrice,
		r.AdvancePayment, r.DuePayment, r.Status, r.Note, r.ReplyNote,
		now, now, 1,
	}
}

// CreateReservationWithLock inserts a reservation after re-deriving
// availability inside the transaction. Together with the partial unique
// index on (date, slot) this is the atomic constraint that prevents
// double booking when two submissions race past the service pre-check.
func (db *DB) CreateReservationWithLock(ctx context.Context, r *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if models.SlotConsuming(r.Status) {
		if err := slotFreeInTx(ctx, tx, r.Date.Format(models.DateFormat), r.Slot, 0); err != nil {
			return err
		}
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, insertReservationQuery, insertReservationArgs(r, now)...)
	if err != nil {
		return fmt.Errorf("insert reservation in tx: %w", translateConstraint(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", translateConstraint(err))
	}

	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 1
	return nil
}

// UpdateReservationStatusWithVersion moves a reservation to a new status
// with optimistic locking. Promotion into a slot-consuming status
// re-derives availability inside the transaction, so two racing
// promotions on the same date cannot both commit.
func (db *DB) UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	return db.updateStatusInTx(ctx, id, fromVersion, status, nil)
}

// UpdateReservationReplyWithVersion writes the staff reply note and
// status in one version-checked update, with the same in-transaction
// availability guard as the status update.
func (db *DB) UpdateReservationReplyWithVersion(ctx context.Context, id, fromVersion int64, status, replyNote string) error {
	return db.updateStatusInTx(ctx, id, fromVersion, status, &replyNote)
}

func (db *DB) updateStatusInTx(ctx context.Context, id, fromVersion int64, status string, replyNote *string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var dateStr, slot, currentStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT date, slot, status FROM reservations WHERE id = ?`, id).
		Scan(&dateStr, &slot, &currentStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load reservation in tx: %w", err)
	}

	if models.SlotConsuming(status) && !models.SlotConsuming(currentStatus) {
		if err := slotFreeInTx(ctx, tx, dateStr, slot, id); err != nil {
			return err
		}
	}

	var result sql.Result
	if replyNote != nil {
		result, err = tx.ExecContext(ctx,
			`UPDATE reservations SET status = ?, reply_note = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
			status, *replyNote, time.Now(), id, fromVersion)
	} else {
		result, err = tx.ExecContext(ctx,
			`UPDATE reservations SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
			status, time.Now(), id, fromVersion)
	}
	if err != nil {
		return fmt.Errorf("update reservation status: %w", translateConstraint(err))
	}

	// The row exists (loaded above), so zero affected rows means the
	// version moved under us.
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status update: %w", translateConstraint(err))
	}
	return nil
}

// UpdateReservationDateSlotWithVersion moves a reservation to a new
// date/slot. The conflict check against the remaining reservations runs
// inside the transaction and excludes the reservation being edited.
func (db *DB) UpdateReservationDateSlotWithVersion(ctx context.Context, id, fromVersion int64, date time.Time, slot string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM reservations WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load reservation in tx: %w", err)
	}

	if models.SlotConsuming(status) {
		if err := slotFreeInTx(ctx, tx, date.Format(models.DateFormat), slot, id); err != nil {
			return err
		}
	}

	query := `UPDATE reservations SET date = ?, slot = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := tx.ExecContext(ctx, query, date.Format(models.DateFormat), slot, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("update reservation date/slot: %w", translateConstraint(err))
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation move: %w", translateConstraint(err))
	}
	return nil
}

func (db *DB) DeleteReservation(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// slotFreeInTx re-derives availability for a date inside the open
// transaction, leaving out excludeID (0 excludes nothing), and reports
// ErrSlotConflict when the slot is taken.
func slotFreeInTx(ctx context.Context, tx *sql.Tx, date, slot string, excludeID int64) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT slot, status FROM reservations WHERE date = ? AND id != ?`,
		date, excludeID)
	if err != nil {
		return fmt.Errorf("check availability in tx: %w", err)
	}

	var existing []models.Reservation
	for rows.Next() {
		var e models.Reservation
		if err := rows.Scan(&e.Slot, &e.Status); err != nil {
			rows.Close()
			return fmt.Errorf("scan slot in tx: %w", err)
		}
		existing = append(existing, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate slots in tx: %w", err)
	}

	if !availability.Compute(existing).Free(slot) {
		return ErrSlotConflict
	}
	return nil
}

// translateConstraint maps the driver's unique-constraint violation on
// (date, slot) to ErrSlotConflict.
func translateConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrSlotConflict
	}
	return err
}
