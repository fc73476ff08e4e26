package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"venuebook/internal/database"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// importedReservation is the YAML row shape; dates are plain strings so
// exports from other systems can be pasted in directly.
type importedReservation struct {
	GuestName  string  `yaml:"guest_name"`
	Email      string  `yaml:"email"`
	Phone      string  `yaml:"phone"`
	Date       string  `yaml:"date"`
	Slot       string  `yaml:"slot"`
	Event      string  `yaml:"event"`
	GuestCount int64   `yaml:"guest_count"`
	Status     string  `yaml:"status"`
	TotalPrice float64 `yaml:"total_price"`
	Note       string  `yaml:"note"`
}

type importFile struct {
	Reservations []importedReservation `yaml:"reservations"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		inputPath = flag.String("input", "reservations.yaml", "path to reservations yaml")
		dbPath    = flag.String("db", "./data/venuebook.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var file importFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	if len(file.Reservations) == 0 {
		return fmt.Errorf("no reservations in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	conflicts := 0
	for _, row := range file.Reservations {
		if row.GuestName == "" || row.Date == "" || row.Slot == "" {
			continue
		}

		date, err := time.Parse(models.DateFormat, row.Date)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", row.Date, err)
		}
		if !models.ValidSlot(row.Slot) {
			return fmt.Errorf("invalid slot %q for %s", row.Slot, row.GuestName)
		}

		status := row.Status
		if status == "" {
			status = models.StatusPending
		}
		if !models.ValidStatus(status) {
			return fmt.Errorf("invalid status %q for %s", row.Status, row.GuestName)
		}

		reservation := models.Reservation{
			GuestName:  row.GuestName,
			Email:      row.Email,
			Phone:      row.Phone,
			Date:       date,
			Slot:       row.Slot,
			Event:      row.Event,
			GuestCount: row.GuestCount,
			Status:     status,
			TotalPrice: row.TotalPrice,
			Note:       row.Note,
		}

		if err = db.CreateReservationWithLock(ctx, &reservation); err != nil {
			if errors.Is(err, database.ErrSlotConflict) {
				logger.Warn().Str("date", row.Date).Str("slot", row.Slot).Str("guest", row.GuestName).Msg("slot already taken, skipped")
				conflicts++
				continue
			}
			return fmt.Errorf("create %s on %s: %w", row.GuestName, row.Date, err)
		}
		created++
	}

	fmt.Printf("done: created=%d conflicts=%d\n", created, conflicts)
	return nil
}
