// Package engine implements the seat inventory and waiting-list
// reconciliation core: the seat matrix, the per-event booking ledger, the
// join-order wait queue, and the allocation/cancellation state machine that
// ties them together. It performs no I/O; persistence, messaging, and
// indexing happen at the service boundary after an operation commits.
package engine

import (
	"time"

	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

// Seat count bounds per booking request.
const (
	MinSeatsPerRequest = 1
	MaxSeatsPerRequest = 10
)

// Engine orchestrates bookings, cancellations, and the cancellation-to-
// requeue cascade over a registry of events.
type Engine struct {
	reg *Registry
}

func New(reg *Registry) *Engine {
	return &Engine{reg: reg}
}

func (e *Engine) Registry() *Registry { return e.reg }

// BookCommand is one booking request with every interactive decision made
// explicit: the selection mode and, for auto mode, the shortfall policy.
type BookCommand struct {
	EventID         int64
	Identity        models.Identity
	DisplayName     string
	NumSeats        int
	Mode            string // models.ModeManual or models.ModeAuto
	Seats           []models.Seat
	DiscountCode    string
	ShortfallPolicy string
}

// BookOutcome reports how a booking request resolved. Exactly one of the
// statuses applies; Bookings carries the committed rows for downstream
// indexing and persistence.
type BookOutcome struct {
	Status         string
	BookingID      string
	Seats          []models.Seat
	PricePerSeat   float64
	TotalPrice     float64
	QueuedSeats    int
	AvailableSeats int
	Reason         string
	Bookings       []models.Booking
	QueuedEntry    *models.WaitlistEntry
}

// QuoteOutcome is a price preview plus the availability evaluation; nothing
// is mutated.
type QuoteOutcome struct {
	PricePerSeat     float64
	TotalPrice       float64
	AvailableSeats   int
	OccupancyPercent float64
}

// Quote evaluates a request without committing: the per-seat price under
// the entered discount code and the current availability.
func (e *Engine) Quote(eventID int64, numSeats int, discountCode string) (*QuoteOutcome, error) {
	if numSeats < MinSeatsPerRequest || numSeats > MaxSeatsPerRequest {
		return nil, apperrors.Invalidf("seat count %d outside %d-%d", numSeats, MinSeatsPerRequest, MaxSeatsPerRequest)
	}
	ev, ok := e.reg.Get(eventID)
	if !ok {
		return nil, apperrors.NotFoundf("event %d", eventID)
	}

	ev.lock()
	defer ev.unlock()

	per := ApplyDiscount(ev.Config.BasePrice, discountCode, ev.Config.DiscountCode, ev.Config.DiscountPercent)
	return &QuoteOutcome{
		PricePerSeat:     per,
		TotalPrice:       per * float64(numSeats),
		AvailableSeats:   ev.Matrix.CountFree(),
		OccupancyPercent: ev.Matrix.OccupancyPercent(),
	}, nil
}

// Book runs the full booking state machine: evaluate availability, select
// seats (manual or auto), price, and commit. Manual selection failures abort
// the entire request with no partial mutation. In auto mode a shortfall is
// resolved by the command's policy, or surfaced as a decision point when no
// policy was given.
func (e *Engine) Book(cmd BookCommand) (*BookOutcome, error) {
	if cmd.NumSeats < MinSeatsPerRequest || cmd.NumSeats > MaxSeatsPerRequest {
		return nil, apperrors.Invalidf("seat count %d outside %d-%d", cmd.NumSeats, MinSeatsPerRequest, MaxSeatsPerRequest)
	}
	ev, ok := e.reg.Get(cmd.EventID)
	if !ok {
		return nil, apperrors.NotFoundf("event %d", cmd.EventID)
	}

	ev.lock()
	defer ev.unlock()

	now := time.Now()
	requested := cmd.NumSeats

	var seats []models.Seat
	queueRemainder := 0

	switch cmd.Mode {
	case models.ModeManual:
		var err error
		seats, err = validateManualSelection(ev.Matrix, cmd.Seats, requested)
		if err != nil {
			return nil, err
		}

	case models.ModeAuto:
		available := ev.Matrix.CountFree()
		if available < requested {
			outcome, remainder, err := resolveShortfall(ev, cmd, available, now)
			if outcome != nil || err != nil {
				return outcome, err
			}
			// Book what is available now, queue the rest after commit.
			queueRemainder = remainder
			requested = available
		}
		var ok bool
		seats, ok = ev.Matrix.AutoAssign(requested)
		if !ok {
			return nil, apperrors.Preconditionf("auto-assign failed with %d seats free", ev.Matrix.CountFree())
		}

	default:
		return nil, apperrors.Invalidf("unknown selection mode %q", cmd.Mode)
	}

	per := ApplyDiscount(ev.Config.BasePrice, cmd.DiscountCode, ev.Config.DiscountCode, ev.Config.DiscountPercent)
	total := per * float64(len(seats))

	// Commit: matrix, ledger, revenue, counter move together under the lock.
	if err := ev.Matrix.Reserve(seats); err != nil {
		return nil, err
	}
	groupID := e.reg.NextBookingID(ev.ID, now)
	bookings := ev.Ledger.AddGroup(groupID, cmd.Identity, cmd.DisplayName, ev.ID, seats, per, now)
	ev.Revenue += total
	ev.TotalBookings++

	out := &BookOutcome{
		Status:       models.StatusConfirmed,
		BookingID:    groupID,
		Seats:        seats,
		PricePerSeat: per,
		TotalPrice:   total,
		Bookings:     bookings,
	}

	if queueRemainder > 0 {
		ev.Queue.Insert(cmd.Identity, queueRemainder, time.Now())
		out.QueuedSeats = queueRemainder
		out.QueuedEntry = &models.WaitlistEntry{
			Identity:       cmd.Identity,
			RequestedSeats: queueRemainder,
			JoinedAt:       now,
		}
	}
	return out, nil
}

// resolveShortfall applies the command's shortfall policy. A nil outcome
// with no error means "proceed with a partial booking"; remainder is the
// count to queue after the commit.
func resolveShortfall(ev *Event, cmd BookCommand, available int, now time.Time) (*BookOutcome, int, error) {
	switch cmd.ShortfallPolicy {
	case models.ShortfallQueueAll:
		ev.Queue.Insert(cmd.Identity, cmd.NumSeats, now)
		return &BookOutcome{
			Status:      models.StatusQueued,
			QueuedSeats: cmd.NumSeats,
			QueuedEntry: &models.WaitlistEntry{
				Identity:       cmd.Identity,
				RequestedSeats: cmd.NumSeats,
				JoinedAt:       now,
			},
		}, 0, nil

	case models.ShortfallBookPartial:
		if available == 0 {
			// Nothing to book now; the whole request waits.
			ev.Queue.Insert(cmd.Identity, cmd.NumSeats, now)
			return &BookOutcome{
				Status:      models.StatusQueued,
				QueuedSeats: cmd.NumSeats,
				QueuedEntry: &models.WaitlistEntry{
					Identity:       cmd.Identity,
					RequestedSeats: cmd.NumSeats,
					JoinedAt:       now,
				},
			}, 0, nil
		}
		return nil, cmd.NumSeats - available, nil

	case models.ShortfallAbort:
		return &BookOutcome{
			Status: models.StatusAborted,
			Reason: "insufficient seats",
		}, 0, nil

	case "":
		// No policy: surface the shortfall as a decision point.
		return &BookOutcome{
			Status:         models.StatusShortfall,
			AvailableSeats: available,
		}, 0, nil

	default:
		return nil, 0, apperrors.Invalidf("unknown shortfall policy %q", cmd.ShortfallPolicy)
	}
}

// validateManualSelection checks an explicit seat list: right count,
// in-bounds, currently free, no duplicates. Any failure aborts the whole
// request.
func validateManualSelection(m *SeatMatrix, seats []models.Seat, want int) ([]models.Seat, error) {
	if len(seats) != want {
		return nil, apperrors.Invalidf("selected %d seats, requested %d", len(seats), want)
	}
	seen := make(map[models.Seat]bool, len(seats))
	for _, s := range seats {
		if !m.InBounds(s) {
			return nil, apperrors.Invalidf("seat %s out of range", s.Label())
		}
		if !m.IsFree(s) {
			return nil, apperrors.Conflictf("seat %s already booked", s.Label())
		}
		if seen[s] {
			return nil, apperrors.Conflictf("seat %s selected twice", s.Label())
		}
		seen[s] = true
	}
	out := make([]models.Seat, len(seats))
	copy(out, seats)
	return out, nil
}

// Promotion reports one waiter served during a cancellation cascade.
type Promotion struct {
	Identity       models.Identity
	BookingID      string
	Seats          []models.Seat
	PricePerSeat   float64
	Bookings       []models.Booking
	RemainderQueue int  // seats re-queued because only part was satisfied
	Requeued       bool // true when nothing could be assigned and the entry went back whole
}

// CancelOutcome reports a completed cancellation batch.
type CancelOutcome struct {
	RefundedTotal float64
	Cancelled     []models.Booking
	Promotion     *Promotion
}

// CancelBookings cancels the identity's selected bookings. Every ref is
// resolved and ownership-checked before anything mutates, so a bad
// reference aborts the batch with no partial refunds. Each cancelled
// booking is refunded at its own paid price; the seat is freed and revenue
// drops by the refund. Afterwards exactly one wait-queue entry is drained
// against the freed capacity, regardless of how many seats were freed.
func (e *Engine) CancelBookings(eventID int64, identity models.Identity, refs []models.BookingRef) (*CancelOutcome, error) {
	if len(refs) == 0 {
		return nil, apperrors.Invalidf("no bookings selected")
	}
	ev, ok := e.reg.Get(eventID)
	if !ok {
		return nil, apperrors.NotFoundf("event %d", eventID)
	}

	ev.lock()
	defer ev.unlock()

	// Resolve everything first: unknown refs, foreign bookings, and
	// duplicate selections abort before any mutation.
	seen := make(map[models.BookingRef]bool, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			return nil, apperrors.Invalidf("booking %s seat %s selected twice", ref.BookingID, ref.Seat.Label())
		}
		seen[ref] = true
		b, found := ev.Ledger.Find(ref)
		if !found || b.Username != identity.Username {
			return nil, apperrors.NotFoundf("booking %s seat %s", ref.BookingID, ref.Seat.Label())
		}
	}

	out := &CancelOutcome{}
	for _, ref := range refs {
		b, err := ev.Ledger.RemoveOne(ref)
		if err != nil {
			return nil, err
		}
		if err := ev.Matrix.Release([]models.Seat{b.Seat}); err != nil {
			return nil, err
		}
		refund := Refund(b.PricePaid)
		ev.Revenue -= refund
		out.RefundedTotal += refund
		out.Cancelled = append(out.Cancelled, b)
	}

	out.Promotion = e.drainOneWaiter(ev)
	return out, nil
}

// drainOneWaiter serves at most one wait-queue entry against the currently
// free seats. Promotions are booked at the event's base price; discount
// codes are not reapplied. A partially satisfied entry is re-inserted for
// the remainder with a fresh join time; if nothing could be assigned the
// original request goes back unchanged (also with a fresh join time).
// Caller holds the event lock.
func (e *Engine) drainOneWaiter(ev *Event) *Promotion {
	entry, ok := ev.Queue.ExtractEarliest()
	if !ok {
		return nil
	}

	available := ev.Matrix.CountFree()
	toBook := entry.RequestedSeats
	if toBook > available {
		toBook = available
	}

	if toBook <= 0 {
		ev.Queue.Insert(entry.Identity, entry.RequestedSeats, time.Now())
		return &Promotion{Identity: entry.Identity, Requeued: true}
	}

	seats, ok := ev.Matrix.AutoAssign(toBook)
	if !ok {
		ev.Queue.Insert(entry.Identity, entry.RequestedSeats, time.Now())
		return &Promotion{Identity: entry.Identity, Requeued: true}
	}

	now := time.Now()
	if err := ev.Matrix.Reserve(seats); err != nil {
		// AutoAssign only returns free seats under this lock.
		ev.Queue.Insert(entry.Identity, entry.RequestedSeats, now)
		return &Promotion{Identity: entry.Identity, Requeued: true}
	}

	groupID := e.reg.NextBookingID(ev.ID, now)
	bookings := ev.Ledger.AddGroup(groupID, entry.Identity, "", ev.ID, seats, ev.Config.BasePrice, now)
	ev.Revenue += ev.Config.BasePrice * float64(len(seats))

	p := &Promotion{
		Identity:     entry.Identity,
		BookingID:    groupID,
		Seats:        seats,
		PricePerSeat: ev.Config.BasePrice,
		Bookings:     bookings,
	}
	if toBook < entry.RequestedSeats {
		p.RemainderQueue = entry.RequestedSeats - toBook
		ev.Queue.Insert(entry.Identity, p.RemainderQueue, time.Now())
	}
	return p
}

// CancelByIDOutcome reports the administrative cancel-by-id path.
type CancelByIDOutcome struct {
	Removed models.Booking
	Refund  float64
	// Waiting is the earliest waiter, consumed from the queue and reported
	// for out-of-band handling. This path deliberately does not reassign
	// seats; it is a narrower operation than CancelBookings.
	Waiting *models.WaitlistEntry
}

// CancelByID removes the first booking row carrying the given id, searching
// events in id order. The seat is freed and revenue drops by the refund,
// but no reassignment happens: if a waiter exists it is extracted and
// reported to the caller instead.
func (e *Engine) CancelByID(bookingID string) (*CancelByIDOutcome, error) {
	for _, ev := range e.reg.List() {
		ev.lock()
		b, found := ev.Ledger.FindByID(bookingID)
		if !found {
			ev.unlock()
			continue
		}

		ref := models.BookingRef{BookingID: b.BookingID, Seat: b.Seat}
		removed, err := ev.Ledger.RemoveOne(ref)
		if err != nil {
			ev.unlock()
			return nil, err
		}
		if err := ev.Matrix.Release([]models.Seat{removed.Seat}); err != nil {
			ev.unlock()
			return nil, err
		}
		refund := Refund(removed.PricePaid)
		ev.Revenue -= refund

		out := &CancelByIDOutcome{Removed: removed, Refund: refund}
		if entry, ok := ev.Queue.ExtractEarliest(); ok {
			out.Waiting = &entry
		}
		ev.unlock()
		return out, nil
	}
	return nil, apperrors.NotFoundf("booking id %q", bookingID)
}

// AvailableSeatCount returns the number of free seats for the event.
func (e *Engine) AvailableSeatCount(eventID int64) (int, error) {
	ev, ok := e.reg.Get(eventID)
	if !ok {
		return 0, apperrors.NotFoundf("event %d", eventID)
	}
	ev.lock()
	defer ev.unlock()
	return ev.Matrix.CountFree(), nil
}

// OccupancyPercent returns booked seats over total for the event, 0..100.
func (e *Engine) OccupancyPercent(eventID int64) (float64, error) {
	ev, ok := e.reg.Get(eventID)
	if !ok {
		return 0, apperrors.NotFoundf("event %d", eventID)
	}
	ev.lock()
	defer ev.unlock()
	return ev.Matrix.OccupancyPercent(), nil
}

// Waitlist returns a snapshot of the event's wait queue in service order.
func (e *Engine) Waitlist(eventID int64) ([]models.WaitlistEntry, error) {
	ev, ok := e.reg.Get(eventID)
	if !ok {
		return nil, apperrors.NotFoundf("event %d", eventID)
	}
	ev.lock()
	defer ev.unlock()
	return ev.Queue.Snapshot(), nil
}

// BookingsFor lists the identity's active bookings across all events.
func (e *Engine) BookingsFor(username string) []models.Booking {
	var out []models.Booking
	for _, ev := range e.reg.List() {
		ev.lock()
		out = append(out, ev.Ledger.ListFor(username)...)
		ev.unlock()
	}
	return out
}

// RestoreBooking re-adds a persisted booking row: seat reserved, ledger
// appended, revenue and booking counter advanced. Used only while loading a
// snapshot into a fresh registry.
func (e *Engine) RestoreBooking(b models.Booking) error {
	ev, ok := e.reg.Get(b.EventID)
	if !ok {
		return apperrors.NotFoundf("event %d", b.EventID)
	}
	ev.lock()
	defer ev.unlock()

	if err := ev.Matrix.Reserve([]models.Seat{b.Seat}); err != nil {
		return err
	}
	ev.Ledger.Append(b)
	ev.Revenue += b.PricePaid
	ev.TotalBookings++
	return nil
}
