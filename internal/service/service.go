package service

import (
	"log/slog"

	"kassa/internal/cache"
	"kassa/internal/engine"
	"kassa/internal/messaging"
	"kassa/internal/metrics"
	"kassa/internal/models"
	"kassa/internal/search"
	"kassa/internal/store"
)

// Deps carries everything the services need. NATS, Valkey, and
// Elasticsearch are optional; a nil client degrades that concern to a no-op.
type Deps struct {
	Engine *engine.Engine
	Store  *store.Store
	NATS   *messaging.NATSClient
	Valkey *cache.ValkeyClient
	Search *search.ElasticsearchClient
}

type Services struct {
	Events   *EventService
	Bookings *BookingService
	Seats    *SeatService
}

func NewServices(deps Deps) *Services {
	return &Services{
		Events:   NewEventService(deps),
		Bookings: NewBookingService(deps),
		Seats:    NewSeatService(deps),
	}
}

// persistSnapshot writes the full engine state to disk after a committed
// mutation. Failures are logged, never surfaced: the in-memory state is the
// source of truth and the snapshot is recovery material.
func persistSnapshot(d Deps) {
	if d.Store == nil {
		return
	}
	configs, bookings := d.Engine.ExportState()
	if err := d.Store.SaveEvents(configs); err != nil {
		slog.Error("Failed to persist events snapshot", "error", err)
	}
	if err := d.Store.SaveBookings(bookings); err != nil {
		slog.Error("Failed to persist bookings snapshot", "error", err)
	}
}

// publish sends a domain event to NATS, best effort.
func publish(d Deps, subject string, payload interface{}) {
	if d.NATS == nil {
		return
	}
	if err := d.NATS.Publish(subject, payload); err != nil {
		slog.Error("Failed to publish message", "subject", subject, "error", err)
	}
}

// syncEventGauges refreshes the revenue and waitlist gauges for one event.
func syncEventGauges(d Deps, eventID int64) {
	for _, st := range d.Engine.Stats() {
		if st.EventID == eventID {
			metrics.SetEventGauges(st.EventID, st.Revenue, st.Waiting)
			return
		}
	}
}

// buildDocs flattens committed booking rows into search documents.
func buildDocs(eventName string, bookings []models.Booking) []models.BookingDoc {
	docs := make([]models.BookingDoc, 0, len(bookings))
	for _, b := range bookings {
		docs = append(docs, models.BookingDoc{
			DocID:       b.BookingID + "-" + b.Seat.Label(),
			BookingID:   b.BookingID,
			EventID:     b.EventID,
			EventName:   eventName,
			Username:    b.Username,
			DisplayName: b.DisplayName,
			Phone:       b.Phone,
			Email:       b.Email,
			SeatLabel:   b.Seat.Label(),
			Row:         b.Seat.Row,
			Col:         b.Seat.Col,
			PricePaid:   b.PricePaid,
			BookedAt:    b.BookedAt,
			GroupSize:   b.GroupSize,
		})
	}
	return docs
}

// eventName reads the event's display name for responses and documents.
func eventName(d Deps, eventID int64) string {
	if ev, ok := d.Engine.Registry().Get(eventID); ok {
		return ev.Config.Name
	}
	return ""
}

// seatLabels renders a seat list in the external format.
func seatLabels(seats []models.Seat) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.Label()
	}
	return out
}
