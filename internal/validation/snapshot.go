package validation

import (
	"fmt"
	"log"
	"os"

	"kassa/internal/models"
	"kassa/internal/store"
)

// SnapshotIssue - одна проблема, найденная в файлах снимка.
type SnapshotIssue struct {
	BookingID string
	Problem   string
}

func (i SnapshotIssue) String() string {
	if i.BookingID == "" {
		return i.Problem
	}
	return fmt.Sprintf("%s: %s", i.BookingID, i.Problem)
}

// CheckSnapshot сверяет bookings.txt с events.txt: места в пределах зала,
// без двойных бронирований, цена в пределах базовой. Возвращает список
// проблем; пустой список означает согласованный снимок.
func CheckSnapshot(dir string) ([]SnapshotIssue, error) {
	st, err := store.New(store.Config{Dir: dir})
	if err != nil {
		return nil, err
	}

	configs, err := st.LoadEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to load events snapshot: %w", err)
	}
	bookings, err := st.LoadBookings()
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings snapshot: %w", err)
	}

	// События получают последовательные id с 1 в порядке файла,
	// так же их назначает API при восстановлении.
	byID := make(map[int64]models.EventConfig, len(configs))
	for i, c := range configs {
		byID[int64(i+1)] = c
	}

	var issues []SnapshotIssue
	taken := make(map[string]string) // "eventID:row:col" -> booking id
	revenue := make(map[int64]float64)

	for _, b := range bookings {
		cfg, ok := byID[b.EventID]
		if !ok {
			issues = append(issues, SnapshotIssue{b.BookingID,
				fmt.Sprintf("references unknown event %d", b.EventID)})
			continue
		}
		if b.Seat.Row < 0 || b.Seat.Row >= cfg.Rows || b.Seat.Col < 0 || b.Seat.Col >= cfg.Cols {
			issues = append(issues, SnapshotIssue{b.BookingID,
				fmt.Sprintf("seat %s is outside the %dx%d grid of %q",
					b.Seat.Label(), cfg.Rows, cfg.Cols, cfg.Name)})
			continue
		}
		key := fmt.Sprintf("%d:%d:%d", b.EventID, b.Seat.Row, b.Seat.Col)
		if prev, dup := taken[key]; dup {
			issues = append(issues, SnapshotIssue{b.BookingID,
				fmt.Sprintf("seat %s of event %d already booked by %s",
					b.Seat.Label(), b.EventID, prev)})
			continue
		}
		taken[key] = b.BookingID

		if b.PricePaid <= 0 {
			issues = append(issues, SnapshotIssue{b.BookingID,
				fmt.Sprintf("non-positive price %.2f", b.PricePaid)})
		} else if b.PricePaid > cfg.BasePrice {
			issues = append(issues, SnapshotIssue{b.BookingID,
				fmt.Sprintf("price %.2f exceeds base price %.2f of %q",
					b.PricePaid, cfg.BasePrice, cfg.Name)})
		}
		revenue[b.EventID] += b.PricePaid
	}

	for id, cfg := range byID {
		capacity := float64(cfg.Rows*cfg.Cols) * cfg.BasePrice
		if revenue[id] > capacity {
			issues = append(issues, SnapshotIssue{Problem: fmt.Sprintf(
				"event %d (%q): booked revenue %.2f exceeds full-house revenue %.2f",
				id, cfg.Name, revenue[id], capacity)})
		}
	}

	return issues, nil
}

// RunSnapshotCheck запускает проверку снимка и завершает процесс с ошибкой,
// если найдены несогласованности.
func RunSnapshotCheck(dir string) {
	if env := os.Getenv("STORE_DIR"); dir == "" && env != "" {
		dir = env
	}
	if dir == "" {
		dir = "."
	}

	issues, err := CheckSnapshot(dir)
	if err != nil {
		log.Fatalf("Snapshot check failed: %v", err)
	}
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Printf("  %s", issue)
		}
		log.Fatalf("Snapshot in %s has %d inconsistencies", dir, len(issues))
	}
	log.Printf("Snapshot in %s is consistent", dir)
}
