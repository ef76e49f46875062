package engine

import (
	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

// SeatMatrix is the per-event grid of seat states. It is pure allocation and
// lookup logic; it never touches the ledger or the queue. Callers must hold
// the owning event's lock.
type SeatMatrix struct {
	rows   int
	cols   int
	booked []bool
}

func NewSeatMatrix(rows, cols int) *SeatMatrix {
	return &SeatMatrix{
		rows:   rows,
		cols:   cols,
		booked: make([]bool, rows*cols),
	}
}

func (m *SeatMatrix) Rows() int { return m.rows }
func (m *SeatMatrix) Cols() int { return m.cols }

func (m *SeatMatrix) index(s models.Seat) int {
	return s.Row*m.cols + s.Col
}

func (m *SeatMatrix) InBounds(s models.Seat) bool {
	return s.Row >= 0 && s.Row < m.rows && s.Col >= 0 && s.Col < m.cols
}

// IsFree reports whether the seat is currently unbooked. Out-of-bounds seats
// are never free.
func (m *SeatMatrix) IsFree(s models.Seat) bool {
	return m.InBounds(s) && !m.booked[m.index(s)]
}

func (m *SeatMatrix) CountFree() int {
	free := m.rows * m.cols
	for _, b := range m.booked {
		if b {
			free--
		}
	}
	return free
}

func (m *SeatMatrix) CountBooked() int {
	return m.rows*m.cols - m.CountFree()
}

// OccupancyPercent is booked seats over total, 0..100.
func (m *SeatMatrix) OccupancyPercent() float64 {
	total := m.rows * m.cols
	if total == 0 {
		return 0
	}
	return float64(m.CountBooked()) * 100.0 / float64(total)
}

// Reserve marks every given seat as booked. All seats are validated before
// any mutation: a seat that is out of bounds or already booked is a
// precondition violation and the matrix is left untouched.
func (m *SeatMatrix) Reserve(seats []models.Seat) error {
	for _, s := range seats {
		if !m.InBounds(s) {
			return apperrors.Preconditionf("reserve out-of-bounds seat %s", s.Label())
		}
		if m.booked[m.index(s)] {
			return apperrors.Preconditionf("reserve already-booked seat %s", s.Label())
		}
	}
	for _, s := range seats {
		m.booked[m.index(s)] = true
	}
	return nil
}

// Release marks every given seat as free. Releasing a seat that is out of
// bounds or already free indicates a ledger/matrix desync and leaves the
// matrix untouched.
func (m *SeatMatrix) Release(seats []models.Seat) error {
	for _, s := range seats {
		if !m.InBounds(s) {
			return apperrors.Preconditionf("release out-of-bounds seat %s", s.Label())
		}
		if !m.booked[m.index(s)] {
			return apperrors.Preconditionf("release free seat %s", s.Label())
		}
	}
	for _, s := range seats {
		m.booked[m.index(s)] = false
	}
	return nil
}

// FindContiguousRun looks for n consecutive free seats within a single row,
// scanning rows in ascending order and seats left to right, and returns the
// first such run.
func (m *SeatMatrix) FindContiguousRun(n int) ([]models.Seat, bool) {
	if n <= 0 {
		return nil, false
	}
	for r := 0; r < m.rows; r++ {
		run := 0
		start := -1
		for c := 0; c < m.cols; c++ {
			if !m.booked[r*m.cols+c] {
				if run == 0 {
					start = c
				}
				run++
				if run == n {
					seats := make([]models.Seat, n)
					for i := range seats {
						seats[i] = models.Seat{Row: r, Col: start + i}
					}
					return seats, true
				}
			} else {
				run = 0
			}
		}
	}
	return nil, false
}

// FindAnyAvailable greedily picks n free seats in row-major order across the
// whole grid.
func (m *SeatMatrix) FindAnyAvailable(n int) ([]models.Seat, bool) {
	if n <= 0 {
		return nil, false
	}
	seats := make([]models.Seat, 0, n)
	for r := 0; r < m.rows && len(seats) < n; r++ {
		for c := 0; c < m.cols && len(seats) < n; c++ {
			if !m.booked[r*m.cols+c] {
				seats = append(seats, models.Seat{Row: r, Col: c})
			}
		}
	}
	if len(seats) < n {
		return nil, false
	}
	return seats, true
}

// AutoAssign picks n seats for automatic assignment: a contiguous run in one
// row when possible, otherwise any free seats in row-major order.
func (m *SeatMatrix) AutoAssign(n int) ([]models.Seat, bool) {
	if seats, ok := m.FindContiguousRun(n); ok {
		return seats, true
	}
	return m.FindAnyAvailable(n)
}

// FreeSeats lists all free seats in row-major order.
func (m *SeatMatrix) FreeSeats() []models.Seat {
	seats := make([]models.Seat, 0, m.CountFree())
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if !m.booked[r*m.cols+c] {
				seats = append(seats, models.Seat{Row: r, Col: c})
			}
		}
	}
	return seats
}
