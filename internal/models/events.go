package models

import "time"

// NATS subjects published by the booking service after a transaction
// commits. Consumers maintain the search index and fire notifications.
const (
	EventBookingConfirmed  = "booking.confirmed"
	EventBookingCancelled  = "booking.cancelled"
	EventWaitlistJoined    = "waitlist.joined"
	EventWaitlistPromoted  = "waitlist.promoted"
)

// BookingConfirmedEvent carries the per-seat documents of one committed
// booking group.
type BookingConfirmedEvent struct {
	BookingID string       `json:"booking_id"`
	EventID   int64        `json:"event_id"`
	Username  string       `json:"username"`
	Docs      []BookingDoc `json:"docs"`
	Total     float64      `json:"total"`
	Timestamp time.Time    `json:"timestamp"`
}

// BookingCancelledEvent lists the search documents to drop after a
// cancellation.
type BookingCancelledEvent struct {
	EventID       int64     `json:"event_id"`
	DocIDs        []string  `json:"doc_ids"`
	RefundedTotal float64   `json:"refunded_total"`
	Timestamp     time.Time `json:"timestamp"`
}

// WaitlistJoinedEvent records a new waitlist entry.
type WaitlistJoinedEvent struct {
	EventID        int64     `json:"event_id"`
	Username       string    `json:"username"`
	RequestedSeats int       `json:"requested_seats"`
	JoinedAt       time.Time `json:"joined_at"`
}

// WaitlistPromotedEvent records one waiter being granted freed seats during
// a cancellation cascade. Docs carry the new bookings for indexing.
type WaitlistPromotedEvent struct {
	EventID        int64        `json:"event_id"`
	Username       string       `json:"username"`
	Phone          string       `json:"phone"`
	Email          string       `json:"email"`
	Seats          []string     `json:"seats"`
	RemainderQueue int          `json:"remainder_queued"`
	Docs           []BookingDoc `json:"docs"`
	Timestamp      time.Time    `json:"timestamp"`
}
