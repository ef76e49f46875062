package service

import (
	"context"
	"time"

	"kassa/internal/cache"
	apperrors "kassa/internal/errors"
	"kassa/internal/engine"
	"kassa/internal/metrics"
	"kassa/internal/models"
)

// BookingService runs the booking state machine and fans the results out to
// persistence, messaging, and metrics.
type BookingService struct {
	deps Deps
}

func NewBookingService(deps Deps) *BookingService {
	return &BookingService{deps: deps}
}

// Quote returns the price preview for a request without committing anything.
func (s *BookingService) Quote(ctx context.Context, req *models.QuoteRequest) (*models.QuoteResponse, error) {
	out, err := s.deps.Engine.Quote(req.EventID, req.NumSeats, req.DiscountCode)
	if err != nil {
		return nil, err
	}
	return &models.QuoteResponse{
		EventID:          req.EventID,
		NumSeats:         req.NumSeats,
		PricePerSeat:     out.PricePerSeat,
		TotalPrice:       out.TotalPrice,
		AvailableSeats:   out.AvailableSeats,
		OccupancyPercent: out.OccupancyPercent,
	}, nil
}

// Book executes a booking request for the authenticated identity. Committed
// outcomes are snapshotted to disk and announced on NATS; queue-only
// outcomes announce the waitlist join.
func (s *BookingService) Book(ctx context.Context, identity models.Identity, displayName string, req *models.BookSeatsRequest) (*models.BookSeatsResponse, error) {
	mode := req.Mode
	if mode == "" {
		// Явный список мест означает ручной выбор
		if len(req.Seats) > 0 {
			mode = models.ModeManual
		} else {
			mode = models.ModeAuto
		}
	}

	seats := make([]models.Seat, 0, len(req.Seats))
	for _, label := range req.Seats {
		seat, err := models.ParseSeatLabel(label)
		if err != nil {
			return nil, apperrors.Invalidf("bad seat label %q", label)
		}
		seats = append(seats, seat)
	}

	out, err := s.deps.Engine.Book(engine.BookCommand{
		EventID:         req.EventID,
		Identity:        identity,
		DisplayName:     displayName,
		NumSeats:        req.NumSeats,
		Mode:            mode,
		Seats:           seats,
		DiscountCode:    req.DiscountCode,
		ShortfallPolicy: req.ShortfallPolicy,
	})
	if err != nil {
		return nil, err
	}

	resp := &models.BookSeatsResponse{
		Status:         out.Status,
		BookingID:      out.BookingID,
		Seats:          seatLabels(out.Seats),
		PricePerSeat:   out.PricePerSeat,
		TotalPrice:     out.TotalPrice,
		QueuedSeats:    out.QueuedSeats,
		AvailableSeats: out.AvailableSeats,
		Reason:         out.Reason,
	}

	switch out.Status {
	case models.StatusConfirmed:
		metrics.BookingsTotal.WithLabelValues(mode).Inc()
		persistSnapshot(s.deps)
		s.invalidate(ctx, req.EventID)
		publish(s.deps, models.EventBookingConfirmed, models.BookingConfirmedEvent{
			BookingID: out.BookingID,
			EventID:   req.EventID,
			Username:  identity.Username,
			Docs:      buildDocs(eventName(s.deps, req.EventID), out.Bookings),
			Total:     out.TotalPrice,
			Timestamp: time.Now(),
		})
		if out.QueuedEntry != nil {
			s.publishJoined(req.EventID, *out.QueuedEntry)
		}

	case models.StatusQueued:
		if out.QueuedEntry != nil {
			s.publishJoined(req.EventID, *out.QueuedEntry)
		}
	}

	syncEventGauges(s.deps, req.EventID)
	return resp, nil
}

func (s *BookingService) publishJoined(eventID int64, entry models.WaitlistEntry) {
	publish(s.deps, models.EventWaitlistJoined, models.WaitlistJoinedEvent{
		EventID:        eventID,
		Username:       entry.Identity.Username,
		RequestedSeats: entry.RequestedSeats,
		JoinedAt:       entry.JoinedAt,
	})
}

// Cancel refunds the identity's selected bookings and reports the single
// waitlist entry served from the freed seats, if any.
func (s *BookingService) Cancel(ctx context.Context, identity models.Identity, req *models.CancelBookingsRequest) (*models.CancelBookingsResponse, error) {
	refs := make([]models.BookingRef, 0, len(req.Refs))
	for _, r := range req.Refs {
		seat, err := models.ParseSeatLabel(r.Seat)
		if err != nil {
			return nil, apperrors.Invalidf("bad seat label %q", r.Seat)
		}
		refs = append(refs, models.BookingRef{BookingID: r.BookingID, Seat: seat})
	}

	out, err := s.deps.Engine.CancelBookings(req.EventID, identity, refs)
	if err != nil {
		return nil, err
	}

	resp := &models.CancelBookingsResponse{
		RefundedTotal: out.RefundedTotal,
	}
	docIDs := make([]string, 0, len(out.Cancelled))
	for _, b := range out.Cancelled {
		resp.CancelledSeats = append(resp.CancelledSeats, b.Seat.Label())
		docIDs = append(docIDs, b.BookingID+"-"+b.Seat.Label())
	}

	metrics.CancellationsTotal.Add(float64(len(out.Cancelled)))
	metrics.RefundedTotal.Add(out.RefundedTotal)

	persistSnapshot(s.deps)
	s.invalidate(ctx, req.EventID)
	publish(s.deps, models.EventBookingCancelled, models.BookingCancelledEvent{
		EventID:       req.EventID,
		DocIDs:        docIDs,
		RefundedTotal: out.RefundedTotal,
		Timestamp:     time.Now(),
	})

	if p := out.Promotion; p != nil {
		if !p.Requeued {
			metrics.PromotionsTotal.Inc()
			resp.ReassignedWaiter = &models.ReassignedWaiter{
				Username:       p.Identity.Username,
				Seats:          seatLabels(p.Seats),
				RemainderQueue: p.RemainderQueue,
			}
			publish(s.deps, models.EventWaitlistPromoted, models.WaitlistPromotedEvent{
				EventID:        req.EventID,
				Username:       p.Identity.Username,
				Phone:          p.Identity.Phone,
				Email:          p.Identity.Email,
				Seats:          seatLabels(p.Seats),
				RemainderQueue: p.RemainderQueue,
				Docs:           buildDocs(eventName(s.deps, req.EventID), p.Bookings),
				Timestamp:      time.Now(),
			})
		}
	}

	syncEventGauges(s.deps, req.EventID)
	return resp, nil
}

// CancelByID is the administrative removal of a single booking row. The
// earliest waiter is reported, not rebooked.
func (s *BookingService) CancelByID(ctx context.Context, bookingID string) (*models.CancelByIDResponse, error) {
	out, err := s.deps.Engine.CancelByID(bookingID)
	if err != nil {
		return nil, err
	}

	metrics.CancellationsTotal.Inc()
	metrics.RefundedTotal.Add(out.Refund)

	persistSnapshot(s.deps)
	s.invalidate(ctx, out.Removed.EventID)
	publish(s.deps, models.EventBookingCancelled, models.BookingCancelledEvent{
		EventID:       out.Removed.EventID,
		DocIDs:        []string{out.Removed.BookingID + "-" + out.Removed.Seat.Label()},
		RefundedTotal: out.Refund,
		Timestamp:     time.Now(),
	})

	resp := &models.CancelByIDResponse{
		Removed:   true,
		SeatFreed: out.Removed.Seat.Label(),
		Refund:    out.Refund,
	}
	if out.Waiting != nil {
		resp.WaitingNotified = out.Waiting.Identity.Username
	}

	syncEventGauges(s.deps, out.Removed.EventID)
	return resp, nil
}

// ListFor returns the identity's active bookings across all events.
func (s *BookingService) ListFor(ctx context.Context, username string) []models.MyBookingItem {
	bookings := s.deps.Engine.BookingsFor(username)
	out := make([]models.MyBookingItem, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, models.MyBookingItem{
			BookingID: b.BookingID,
			EventID:   b.EventID,
			EventName: eventName(s.deps, b.EventID),
			Seat:      b.Seat.Label(),
			PricePaid: b.PricePaid,
			BookedAt:  b.BookedAt,
			GroupSize: b.GroupSize,
		})
	}
	return out
}

// Search queries the booking index. Requires Elasticsearch.
func (s *BookingService) Search(ctx context.Context, bookingID, username, phone, query string, page, pageSize int) (*models.SearchBookingsResponse, error) {
	if s.deps.Search == nil {
		return nil, apperrors.Invalidf("search is not configured")
	}

	hits, err := s.deps.Search.Search(ctx, bookingID, username, phone, query, page, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.deps.Search.Count(ctx, bookingID, username, phone, query)
	if err != nil {
		return nil, err
	}

	return &models.SearchBookingsResponse{
		Total: int(total),
		Hits:  hits,
	}, nil
}

func (s *BookingService) invalidate(ctx context.Context, eventID int64) {
	invalidateEvent(ctx, s.deps.Valkey, eventID)
}

func invalidateEvent(ctx context.Context, valkey *cache.ValkeyClient, eventID int64) {
	if valkey == nil {
		return
	}
	valkey.InvalidateEvent(ctx, eventID)
}
