package engine

import "kassa/internal/models"

// EventStats is the analytics view of one event.
type EventStats struct {
	EventID       int64
	Name          string
	BasePrice     float64
	TotalBookings int
	SeatsBooked   int
	TotalSeats    int
	Occupancy     float64
	Revenue       float64
	Waiting       int
}

// Stats returns per-event analytics in id order.
func (e *Engine) Stats() []EventStats {
	events := e.reg.List()
	out := make([]EventStats, 0, len(events))
	for _, ev := range events {
		ev.lock()
		out = append(out, EventStats{
			EventID:       ev.ID,
			Name:          ev.Config.Name,
			BasePrice:     ev.Config.BasePrice,
			TotalBookings: ev.TotalBookings,
			SeatsBooked:   ev.Matrix.CountBooked(),
			TotalSeats:    ev.Matrix.Rows() * ev.Matrix.Cols(),
			Occupancy:     ev.Matrix.OccupancyPercent(),
			Revenue:       ev.Revenue,
			Waiting:       ev.Queue.Len(),
		})
		ev.unlock()
	}
	return out
}

// ExportState snapshots every event's configuration and active bookings for
// persistence, in event-id order. Each event is read under its own lock;
// cross-event reads do not take a global lock.
func (e *Engine) ExportState() ([]models.EventConfig, []models.Booking) {
	events := e.reg.List()
	configs := make([]models.EventConfig, 0, len(events))
	var bookings []models.Booking
	for _, ev := range events {
		ev.lock()
		configs = append(configs, ev.Config)
		bookings = append(bookings, ev.Ledger.ListAll()...)
		ev.unlock()
	}
	return configs, bookings
}
