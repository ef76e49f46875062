package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"kassa/internal/external"
	"kassa/internal/models"
	"kassa/internal/search"

	"github.com/nats-io/stan.go"
)

type Handlers struct {
	searchClient *search.ElasticsearchClient
	notifier     *external.NotifierClient
}

func NewHandlers(searchClient *search.ElasticsearchClient, notifier *external.NotifierClient) *Handlers {
	return &Handlers{
		searchClient: searchClient,
		notifier:     notifier,
	}
}

// HandleBookingConfirmed indexes the committed booking's seat documents.
func (h *Handlers) HandleBookingConfirmed(m *stan.Msg) {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking confirmed event", "error", err)
		return
	}

	slog.Info("Processing booking confirmed event",
		"booking_id", event.BookingID, "event_id", event.EventID, "seats", len(event.Docs))

	if h.searchClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.searchClient.IndexDocs(ctx, event.Docs); err != nil {
			slog.Error("Failed to index booking docs", "booking_id", event.BookingID, "error", err)
			// Не подтверждаем, сообщение будет доставлено снова
			return
		}
	}

	m.Ack()
}

// HandleBookingCancelled drops the cancelled seats from the index.
func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking cancelled event", "error", err)
		return
	}

	slog.Info("Processing booking cancelled event",
		"event_id", event.EventID, "docs", len(event.DocIDs), "refunded", event.RefundedTotal)

	if h.searchClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.searchClient.DeleteDocs(ctx, event.DocIDs); err != nil {
			slog.Error("Failed to delete booking docs", "event_id", event.EventID, "error", err)
			return
		}
	}

	m.Ack()
}

// HandleWaitlistJoined records the join; nothing external fires yet.
func (h *Handlers) HandleWaitlistJoined(m *stan.Msg) {
	var event models.WaitlistJoinedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal waitlist joined event", "error", err)
		return
	}

	slog.Info("Processing waitlist joined event",
		"event_id", event.EventID, "username", event.Username, "requested", event.RequestedSeats)

	m.Ack()
}

// HandleWaitlistPromoted indexes the promotion bookings and notifies the
// promoted customer through the webhook.
func (h *Handlers) HandleWaitlistPromoted(m *stan.Msg) {
	var event models.WaitlistPromotedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal waitlist promoted event", "error", err)
		return
	}

	slog.Info("Processing waitlist promoted event",
		"event_id", event.EventID, "username", event.Username, "seats", event.Seats)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if h.searchClient != nil {
		if err := h.searchClient.IndexDocs(ctx, event.Docs); err != nil {
			slog.Error("Failed to index promotion docs", "event_id", event.EventID, "error", err)
			return
		}
	}

	if h.notifier != nil && len(event.Docs) > 0 {
		notice := external.PromotionNotice{
			EventID:       event.EventID,
			Username:      event.Username,
			Phone:         event.Phone,
			Email:         event.Email,
			BookingID:     event.Docs[0].BookingID,
			Seats:         event.Seats,
			SeatsStillDue: event.RemainderQueue,
			Timestamp:     event.Timestamp.Unix(),
		}
		for _, d := range event.Docs {
			notice.TotalPrice += d.PricePaid
		}
		// Уведомление не повторяем, индекс уже обновлен
		if err := h.notifier.NotifyPromotion(ctx, notice); err != nil {
			slog.Error("Failed to notify promoted customer", "username", event.Username, "error", err)
		}
	}

	m.Ack()
}
