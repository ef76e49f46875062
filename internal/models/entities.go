package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Identity is the requester identity handed to the booking core by the user
// directory. The core only ever compares usernames for ownership checks;
// phone and email ride along for waitlist notification.
type Identity struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// Seat addresses one cell of an event's grid. Rows and columns are
// zero-based internally; the external label format is "A1".
type Seat struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Label renders the seat in the external "A1" format: row letter, 1-based
// column.
func (s Seat) Label() string {
	return fmt.Sprintf("%c%d", 'A'+s.Row, s.Col+1)
}

// ParseSeatLabel parses "A1"-style labels (case-insensitive row letter).
// Bounds against a concrete grid are checked by the caller.
func ParseSeatLabel(label string) (Seat, error) {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return Seat{}, fmt.Errorf("seat label too short: %q", label)
	}
	row := int(strings.ToUpper(label)[0] - 'A')
	col, err := strconv.Atoi(label[1:])
	if err != nil {
		return Seat{}, fmt.Errorf("bad column in seat label %q", label)
	}
	return Seat{Row: row, Col: col - 1}, nil
}

// Booking is one seat's commitment: the price actually paid for that seat,
// the group it was purchased with, and the owning identity. Seats bought
// together share BookingID, price per seat, and timestamp.
type Booking struct {
	BookingID   string    `json:"booking_id"`
	EventID     int64     `json:"event_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Seat        Seat      `json:"seat"`
	PricePaid   float64   `json:"price_paid"`
	BookedAt    time.Time `json:"booked_at"`
	GroupSize   int       `json:"group_size"`
}

// BookingRef identifies a single booked seat for cancellation: the group id
// plus the seat, since all seats of a group share the id.
type BookingRef struct {
	BookingID string `json:"booking_id"`
	Seat      Seat   `json:"seat"`
}

// WaitlistEntry is a pending request that could not be (fully) satisfied,
// ordered by join time.
type WaitlistEntry struct {
	Identity       Identity  `json:"identity"`
	RequestedSeats int       `json:"requested_seats"`
	JoinedAt       time.Time `json:"joined_at"`
}

// EventConfig is the static event configuration consumed from the outside:
// grid dimensions, pricing, and schedule metadata.
type EventConfig struct {
	Name            string  `json:"name"`
	BasePrice       float64 `json:"base_price"`
	Rows            int     `json:"rows"`
	Cols            int     `json:"cols"`
	DiscountCode    string  `json:"discount_code"`
	DiscountPercent int     `json:"discount_percent"`
	Date            string  `json:"date"` // YYYY-MM-DD
	Time            string  `json:"time"` // HH:MM
}

// BookingDoc is the per-seat search document indexed into Elasticsearch.
// DocID is BookingID plus the seat label, unique per seat.
type BookingDoc struct {
	DocID       string    `json:"doc_id"`
	BookingID   string    `json:"booking_id"`
	EventID     int64     `json:"event_id"`
	EventName   string    `json:"event_name"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	SeatLabel   string    `json:"seat_label"`
	Row         int       `json:"row"`
	Col         int       `json:"col"`
	PricePaid   float64   `json:"price_paid"`
	BookedAt    time.Time `json:"booked_at"`
	GroupSize   int       `json:"group_size"`
}

// User is a row of the external user directory (Postgres). The booking core
// never sees this type; middleware converts it to an Identity.
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}
