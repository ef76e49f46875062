package engine

import (
	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

// Grid limits: row letters A-Z, at most 50 seats per row.
const (
	MinRows = 1
	MaxRows = 26
	MinCols = 1
	MaxCols = 50
)

// Schedule defaults applied when an event is created without them.
const (
	DefaultDate = "2025-12-31"
	DefaultTime = "18:00"
)

// CreateEvent validates the configuration and materializes the event.
func (e *Engine) CreateEvent(cfg models.EventConfig) (*Event, error) {
	if cfg.Name == "" {
		return nil, apperrors.Invalidf("event name required")
	}
	if cfg.BasePrice <= 0 {
		return nil, apperrors.Invalidf("base price must be positive, got %.2f", cfg.BasePrice)
	}
	if cfg.Rows < MinRows || cfg.Rows > MaxRows {
		return nil, apperrors.Invalidf("rows %d outside %d-%d", cfg.Rows, MinRows, MaxRows)
	}
	if cfg.Cols < MinCols || cfg.Cols > MaxCols {
		return nil, apperrors.Invalidf("cols %d outside %d-%d", cfg.Cols, MinCols, MaxCols)
	}
	if cfg.DiscountPercent < 0 || cfg.DiscountPercent > 100 {
		return nil, apperrors.Invalidf("discount percent %d outside 0-100", cfg.DiscountPercent)
	}
	if cfg.Date == "" {
		cfg.Date = DefaultDate
	}
	if cfg.Time == "" {
		cfg.Time = DefaultTime
	}
	return e.reg.CreateEvent(cfg), nil
}

// ChangePrice updates the event's base price. Already-committed bookings keep
// the price they paid; only future bookings and promotions see the new price.
func (e *Engine) ChangePrice(eventID int64, basePrice float64) error {
	if basePrice <= 0 {
		return apperrors.Invalidf("base price must be positive, got %.2f", basePrice)
	}
	ev, ok := e.reg.Get(eventID)
	if !ok {
		return apperrors.NotFoundf("event %d", eventID)
	}
	ev.lock()
	ev.Config.BasePrice = basePrice
	ev.unlock()
	return nil
}

// DeleteEvent removes the event and everything attached to it.
func (e *Engine) DeleteEvent(eventID int64) error {
	if !e.reg.Delete(eventID) {
		return apperrors.NotFoundf("event %d", eventID)
	}
	return nil
}

// SeatMap returns the row-by-row occupancy snapshot of the event's grid.
func (e *Engine) SeatMap(eventID int64) ([]models.SeatMapRow, int, int, error) {
	ev, ok := e.reg.Get(eventID)
	if !ok {
		return nil, 0, 0, apperrors.NotFoundf("event %d", eventID)
	}
	ev.lock()
	defer ev.unlock()

	rows := ev.Matrix.Rows()
	cols := ev.Matrix.Cols()
	out := make([]models.SeatMapRow, 0, rows)
	for r := 0; r < rows; r++ {
		row := models.SeatMapRow{RowLabel: string(rune('A' + r))}
		for c := 0; c < cols; c++ {
			s := models.Seat{Row: r, Col: c}
			if ev.Matrix.IsFree(s) {
				row.Free = append(row.Free, s.Label())
			} else {
				row.Booked = append(row.Booked, s.Label())
			}
		}
		out = append(out, row)
	}
	return out, rows, cols, nil
}
