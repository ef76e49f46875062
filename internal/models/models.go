package models

import "time"

// Seat selection modes for booking requests.
const (
	ModeManual = "manual"
	ModeAuto   = "auto"
)

// Shortfall policies: what to do when fewer seats are free than requested.
// An empty policy surfaces the shortfall to the caller as a decision point.
const (
	ShortfallBookPartial = "book-partial-and-queue"
	ShortfallQueueAll    = "queue-all"
	ShortfallAbort       = "abort"
)

// Booking outcome statuses.
const (
	StatusConfirmed = "confirmed"
	StatusQueued    = "queued"
	StatusShortfall = "shortfall"
	StatusAborted   = "aborted"
)

// BookSeatsRequest - запрос на бронирование мест
type BookSeatsRequest struct {
	EventID         int64    `json:"event_id" binding:"required"`
	NumSeats        int      `json:"num_seats" binding:"required"`
	Mode            string   `json:"mode"`
	Seats           []string `json:"seats,omitempty"` // manual mode, "A1" labels
	DiscountCode    string   `json:"discount_code,omitempty"`
	ShortfallPolicy string   `json:"shortfall_policy,omitempty"`
}

// BookSeatsResponse - результат бронирования
type BookSeatsResponse struct {
	Status         string   `json:"status"`
	BookingID      string   `json:"booking_id,omitempty"`
	Seats          []string `json:"seats,omitempty"`
	PricePerSeat   float64  `json:"price_per_seat,omitempty"`
	TotalPrice     float64  `json:"total_price,omitempty"`
	QueuedSeats    int      `json:"queued_seats,omitempty"`
	AvailableSeats int      `json:"available_seats,omitempty"` // set on shortfall
	Reason         string   `json:"reason,omitempty"`          // set on abort
}

// QuoteRequest - запрос цены без изменения состояния
type QuoteRequest struct {
	EventID      int64  `json:"event_id" binding:"required"`
	NumSeats     int    `json:"num_seats" binding:"required"`
	DiscountCode string `json:"discount_code,omitempty"`
}

// QuoteResponse - предпросмотр цены
type QuoteResponse struct {
	EventID          int64   `json:"event_id"`
	NumSeats         int     `json:"num_seats"`
	PricePerSeat     float64 `json:"price_per_seat"`
	TotalPrice       float64 `json:"total_price"`
	AvailableSeats   int     `json:"available_seats"`
	OccupancyPercent float64 `json:"occupancy_percent"`
}

// BookingRefRequest references one booked seat within a cancellation batch.
type BookingRefRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Seat      string `json:"seat" binding:"required"` // "A1" label
}

// CancelBookingsRequest - отмена выбранных броней
type CancelBookingsRequest struct {
	EventID int64               `json:"event_id" binding:"required"`
	Refs    []BookingRefRequest `json:"refs" binding:"required"`
}

// ReassignedWaiter reports the waitlist entry served by a cancellation.
type ReassignedWaiter struct {
	Username       string   `json:"username"`
	Seats          []string `json:"seats"`
	RemainderQueue int      `json:"remainder_queued,omitempty"`
}

// CancelBookingsResponse - результат отмены
type CancelBookingsResponse struct {
	RefundedTotal    float64           `json:"refunded_total"`
	CancelledSeats   []string          `json:"cancelled_seats"`
	ReassignedWaiter *ReassignedWaiter `json:"reassigned_waiter,omitempty"`
}

// CancelByIDResponse - результат административной отмены по ID. This path
// does not reassign seats; it only reports that someone is waiting.
type CancelByIDResponse struct {
	Removed         bool   `json:"removed"`
	SeatFreed       string `json:"seat_freed,omitempty"`
	Refund          float64 `json:"refund,omitempty"`
	WaitingNotified string `json:"waiting_notified,omitempty"`
}

// CreateEventRequest - модель для создания события
type CreateEventRequest struct {
	Name            string  `json:"name" binding:"required"`
	BasePrice       float64 `json:"base_price" binding:"required"`
	Rows            int     `json:"rows" binding:"required"`
	Cols            int     `json:"cols" binding:"required"`
	DiscountCode    string  `json:"discount_code,omitempty"`
	DiscountPercent int     `json:"discount_percent,omitempty"`
	Date            string  `json:"date,omitempty"`
	Time            string  `json:"time,omitempty"`
}

// CreateEventResponse - модель ответа при создании события
type CreateEventResponse struct {
	ID int64 `json:"id"`
}

// ChangePriceRequest - изменение базовой цены билета
type ChangePriceRequest struct {
	BasePrice float64 `json:"base_price" binding:"required"`
}

// ListEventsResponseItem - элемент списка событий
type ListEventsResponseItem struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Date             string  `json:"date"`
	Time             string  `json:"time"`
	BasePrice        float64 `json:"base_price"`
	Rows             int     `json:"rows"`
	Cols             int     `json:"cols"`
	OccupancyPercent float64 `json:"occupancy_percent"`
}

// ListEventsResponse - список событий
type ListEventsResponse []ListEventsResponseItem

// AvailabilityResponse - свободные места и заполненность
type AvailabilityResponse struct {
	EventID          int64   `json:"event_id"`
	TotalSeats       int     `json:"total_seats"`
	BookedSeats      int     `json:"booked_seats"`
	AvailableSeats   int     `json:"available_seats"`
	OccupancyPercent float64 `json:"occupancy_percent"`
}

// SeatMapRow is one row of the seat map: booked seats carry their label in
// Booked, free seats in Free.
type SeatMapRow struct {
	RowLabel string   `json:"row_label"`
	Free     []string `json:"free"`
	Booked   []string `json:"booked"`
}

// SeatMapResponse - карта зала
type SeatMapResponse struct {
	EventID int64        `json:"event_id"`
	Rows    int          `json:"rows"`
	Cols    int          `json:"cols"`
	SeatMap []SeatMapRow `json:"seat_map"`
}

// WaitlistEntryItem - элемент снимка очереди ожидания
type WaitlistEntryItem struct {
	Position       int       `json:"position"`
	Username       string    `json:"username"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	RequestedSeats int       `json:"requested_seats"`
	JoinedAt       time.Time `json:"joined_at"`
}

// WaitlistResponse - снимок очереди в порядке обслуживания
type WaitlistResponse struct {
	EventID int64               `json:"event_id"`
	Waiting int                 `json:"waiting"`
	Entries []WaitlistEntryItem `json:"entries"`
}

// MyBookingItem - одна бронь пользователя
type MyBookingItem struct {
	BookingID string    `json:"booking_id"`
	EventID   int64     `json:"event_id"`
	EventName string    `json:"event_name"`
	Seat      string    `json:"seat"`
	PricePaid float64   `json:"price_paid"`
	BookedAt  time.Time `json:"booked_at"`
	GroupSize int       `json:"group_size"`
}

// EventAnalytics - аналитика по одному событию
type EventAnalytics struct {
	EventID          int64   `json:"event_id"`
	Name             string  `json:"name"`
	TotalBookings    int     `json:"total_bookings"`
	SeatsBooked      int     `json:"seats_booked"`
	TotalSeats       int     `json:"total_seats"`
	OccupancyPercent float64 `json:"occupancy_percent"`
	Revenue          float64 `json:"revenue"`
	BasePrice        float64 `json:"base_price"`
}

// AnalyticsResponse - сводная аналитика
type AnalyticsResponse struct {
	Events           []EventAnalytics `json:"events"`
	MostPopularEvent string           `json:"most_popular_event,omitempty"`
	TotalRevenue     float64          `json:"total_revenue"`
}

// SearchBookingsResponse - результаты поиска броней
type SearchBookingsResponse struct {
	Total int          `json:"total"`
	Hits  []BookingDoc `json:"hits"`
}
