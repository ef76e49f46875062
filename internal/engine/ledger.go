package engine

import (
	"time"

	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

// Ledger is an event's collection of active bookings and the source of
// truth for who owns which seat at what price. It is a pure collection:
// removing a booking does not release its seat or touch revenue; that
// transactional work belongs to the allocation engine. Bookings are held by
// value and addressed by (booking id, seat), never by pointer.
type Ledger struct {
	bookings []models.Booking
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Len() int { return len(l.bookings) }

// AddGroup appends one booking row per seat. All rows share the group id,
// price per seat, and timestamp.
func (l *Ledger) AddGroup(groupID string, identity models.Identity, displayName string, eventID int64, seats []models.Seat, pricePerSeat float64, ts time.Time) []models.Booking {
	if displayName == "" {
		displayName = identity.Username
	}
	added := make([]models.Booking, 0, len(seats))
	for _, s := range seats {
		b := models.Booking{
			BookingID:   groupID,
			EventID:     eventID,
			Username:    identity.Username,
			DisplayName: displayName,
			Phone:       identity.Phone,
			Email:       identity.Email,
			Seat:        s,
			PricePaid:   pricePerSeat,
			BookedAt:    ts,
			GroupSize:   len(seats),
		}
		l.bookings = append(l.bookings, b)
		added = append(added, b)
	}
	return added
}

// Append restores a single previously persisted booking row as-is.
func (l *Ledger) Append(b models.Booking) {
	l.bookings = append(l.bookings, b)
}

// ListFor returns the bookings owned by username, in insertion order.
func (l *Ledger) ListFor(username string) []models.Booking {
	var out []models.Booking
	for _, b := range l.bookings {
		if b.Username == username {
			out = append(out, b)
		}
	}
	return out
}

// ListAll returns a copy of every active booking in insertion order.
func (l *Ledger) ListAll() []models.Booking {
	out := make([]models.Booking, len(l.bookings))
	copy(out, l.bookings)
	return out
}

// Find returns the booking matching the ref, if any.
func (l *Ledger) Find(ref models.BookingRef) (models.Booking, bool) {
	for _, b := range l.bookings {
		if b.BookingID == ref.BookingID && b.Seat == ref.Seat {
			return b, true
		}
	}
	return models.Booking{}, false
}

// FindByID returns the first booking row carrying the given group id.
func (l *Ledger) FindByID(bookingID string) (models.Booking, bool) {
	for _, b := range l.bookings {
		if b.BookingID == bookingID {
			return b, true
		}
	}
	return models.Booking{}, false
}

// RemoveOne removes the booking matching the ref and returns it.
func (l *Ledger) RemoveOne(ref models.BookingRef) (models.Booking, error) {
	for i, b := range l.bookings {
		if b.BookingID == ref.BookingID && b.Seat == ref.Seat {
			l.bookings = append(l.bookings[:i], l.bookings[i+1:]...)
			return b, nil
		}
	}
	return models.Booking{}, apperrors.NotFoundf("booking %s seat %s", ref.BookingID, ref.Seat.Label())
}
