package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"kassa/internal/models"
)

// Event is the aggregate root: one seat matrix, one ledger, one wait queue,
// pricing configuration, and the running totals. All mutation happens under
// mu; the unit of atomicity is the whole event state, so a booking commit or
// a cancellation cascade is never partially visible.
type Event struct {
	mu sync.Mutex

	ID     int64
	Config models.EventConfig

	Matrix *SeatMatrix
	Ledger *Ledger
	Queue  *WaitQueue

	// Revenue tracks money taken minus money refunded. Commits add the full
	// total paid; cancellations subtract the refund, so the retention fee
	// stays in revenue.
	Revenue float64

	// TotalBookings counts committed booking groups (waitlist promotions
	// excluded, matching the historical accounting).
	TotalBookings int
}

func (e *Event) lock()   { e.mu.Lock() }
func (e *Event) unlock() { e.mu.Unlock() }

// Registry owns the live events, keyed by generated id. It replaces the
// process-wide event table the engine historically grew out of; everything
// that needs events receives a registry reference.
type Registry struct {
	mu             sync.RWMutex
	events         map[int64]*Event
	nextID         int64
	bookingCounter int64
}

func NewRegistry() *Registry {
	return &Registry{events: make(map[int64]*Event), nextID: 1}
}

// CreateEvent materializes an event from its static configuration and
// returns the aggregate.
func (r *Registry) CreateEvent(cfg models.EventConfig) *Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	ev := &Event{
		ID:     id,
		Config: cfg,
		Matrix: NewSeatMatrix(cfg.Rows, cfg.Cols),
		Ledger: NewLedger(),
		Queue:  NewWaitQueue(),
	}
	r.events[id] = ev
	return ev
}

func (r *Registry) Get(id int64) (*Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[id]
	return ev, ok
}

// List returns the events ordered by id.
func (r *Registry) List() []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Delete(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return false
	}
	delete(r.events, id)
	return true
}

// NextBookingID mints a booking-group id in the historical
// BK{counter}-E{event}-{epoch%100000} format.
func (r *Registry) NextBookingID(eventID int64, now time.Time) string {
	r.mu.Lock()
	r.bookingCounter++
	n := r.bookingCounter
	r.mu.Unlock()
	return fmt.Sprintf("BK%d-E%d-%d", n, eventID, now.Unix()%100000)
}
