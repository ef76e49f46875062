// Package store persists event configuration and active bookings as plain
// pipe-delimited text, one record per line. The delimiter is not escaped;
// callers must keep '|' out of every field. The wait queue is deliberately
// not persisted: a process restart loses pending waiters.
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kassa/internal/models"
)

const (
	eventsFile   = "events.txt"
	bookingsFile = "bookings.txt"

	defaultDate = "2025-12-31"
	defaultTime = "18:00"
)

type Config struct {
	Dir string
}

// Store reads and writes the snapshot files under one data directory.
type Store struct {
	dir string
}

func New(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &Store{dir: cfg.Dir}, nil
}

func (s *Store) EventsPath() string   { return filepath.Join(s.dir, eventsFile) }
func (s *Store) BookingsPath() string { return filepath.Join(s.dir, bookingsFile) }

// SaveEvents writes one line per event:
// name|basePrice|rows|cols|discountCode|discountPercent|date|time
func (s *Store) SaveEvents(configs []models.EventConfig) error {
	var b strings.Builder
	for _, c := range configs {
		fmt.Fprintf(&b, "%s|%.2f|%d|%d|%s|%d|%s|%s\n",
			c.Name, c.BasePrice, c.Rows, c.Cols,
			c.DiscountCode, c.DiscountPercent, c.Date, c.Time)
	}
	return writeFile(s.EventsPath(), b.String())
}

// SaveBookings writes one line per booked seat:
// eventId|username|displayName|phone|email|row|col|pricePaid|bookingId|timestampEpochSeconds|groupSize
// Group membership is recoverable only by matching booking id and timestamp.
func (s *Store) SaveBookings(bookings []models.Booking) error {
	var b strings.Builder
	for _, bk := range bookings {
		fmt.Fprintf(&b, "%d|%s|%s|%s|%s|%d|%d|%.2f|%s|%d|%d\n",
			bk.EventID, bk.Username, bk.DisplayName, bk.Phone, bk.Email,
			bk.Seat.Row, bk.Seat.Col, bk.PricePaid, bk.BookingID,
			bk.BookedAt.Unix(), bk.GroupSize)
	}
	return writeFile(s.BookingsPath(), b.String())
}

// LoadEvents parses the events file. A missing file is not an error; it
// yields no events. Blank and short lines are skipped. Missing date/time
// fields fall back to defaults.
func (s *Store) LoadEvents() ([]models.EventConfig, error) {
	f, err := os.Open(s.EventsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	var configs []models.EventConfig
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 6 {
			continue
		}
		base, _ := strconv.ParseFloat(fields[1], 64)
		rows, _ := strconv.Atoi(fields[2])
		cols, _ := strconv.Atoi(fields[3])
		percent, _ := strconv.Atoi(fields[5])

		cfg := models.EventConfig{
			Name:            fields[0],
			BasePrice:       base,
			Rows:            rows,
			Cols:            cols,
			DiscountCode:    fields[4],
			DiscountPercent: percent,
			Date:            defaultDate,
			Time:            defaultTime,
		}
		if len(fields) > 6 && fields[6] != "" {
			cfg.Date = fields[6]
		}
		if len(fields) > 7 && fields[7] != "" {
			cfg.Time = fields[7]
		}
		configs = append(configs, cfg)
	}
	return configs, scanner.Err()
}

// LoadBookings parses the bookings file. Malformed lines are skipped rather
// than failing the whole load, matching the tolerant historical loader.
// Event-id validity is the caller's concern (it knows how many events
// exist).
func (s *Store) LoadBookings() ([]models.Booking, error) {
	f, err := os.Open(s.BookingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open bookings file: %w", err)
	}
	defer f.Close()

	var bookings []models.Booking
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		b, ok := parseBookingLine(line)
		if !ok {
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, scanner.Err()
}

func parseBookingLine(line string) (models.Booking, bool) {
	fields := strings.Split(line, "|")
	if len(fields) < 11 {
		return models.Booking{}, false
	}
	eventID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return models.Booking{}, false
	}
	row, err := strconv.Atoi(fields[5])
	if err != nil {
		return models.Booking{}, false
	}
	col, err := strconv.Atoi(fields[6])
	if err != nil {
		return models.Booking{}, false
	}
	price, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		return models.Booking{}, false
	}
	epoch, err := strconv.ParseInt(fields[9], 10, 64)
	if err != nil {
		return models.Booking{}, false
	}
	groupSize, err := strconv.Atoi(fields[10])
	if err != nil {
		return models.Booking{}, false
	}

	return models.Booking{
		EventID:     eventID,
		Username:    fields[1],
		DisplayName: fields[2],
		Phone:       fields[3],
		Email:       fields[4],
		Seat:        models.Seat{Row: row, Col: col},
		PricePaid:   price,
		BookingID:   fields[8],
		BookedAt:    time.Unix(epoch, 0),
		GroupSize:   groupSize,
	}, true
}

// writeFile replaces the target atomically: write a temp file in the same
// directory, then rename over the old snapshot.
func writeFile(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
