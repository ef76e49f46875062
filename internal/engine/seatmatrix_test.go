package engine

import (
	"testing"

	"kassa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seat(r, c int) models.Seat { return models.Seat{Row: r, Col: c} }

func TestSeatMatrixCounts(t *testing.T) {
	m := NewSeatMatrix(2, 3)

	assert.Equal(t, 6, m.CountFree())
	assert.Equal(t, 0, m.CountBooked())
	assert.Equal(t, 0.0, m.OccupancyPercent())

	require.NoError(t, m.Reserve([]models.Seat{seat(0, 0), seat(1, 2)}))
	assert.Equal(t, 4, m.CountFree())
	assert.Equal(t, 2, m.CountBooked())
	assert.InDelta(t, 33.33, m.OccupancyPercent(), 0.01)
}

func TestSeatMatrixReserveValidatesBeforeMutating(t *testing.T) {
	m := NewSeatMatrix(2, 2)
	require.NoError(t, m.Reserve([]models.Seat{seat(1, 1)}))

	// Second seat is already booked, so the first must stay free.
	err := m.Reserve([]models.Seat{seat(0, 0), seat(1, 1)})
	require.Error(t, err)
	assert.True(t, m.IsFree(seat(0, 0)))

	err = m.Reserve([]models.Seat{seat(0, 0), seat(5, 5)})
	require.Error(t, err)
	assert.True(t, m.IsFree(seat(0, 0)))
}

func TestSeatMatrixReleaseValidatesBeforeMutating(t *testing.T) {
	m := NewSeatMatrix(2, 2)
	require.NoError(t, m.Reserve([]models.Seat{seat(0, 0), seat(0, 1)}))

	// Releasing a free seat aborts the whole batch.
	err := m.Release([]models.Seat{seat(0, 0), seat(1, 0)})
	require.Error(t, err)
	assert.False(t, m.IsFree(seat(0, 0)))

	require.NoError(t, m.Release([]models.Seat{seat(0, 0), seat(0, 1)}))
	assert.Equal(t, 4, m.CountFree())
}

func TestFindContiguousRunPrefersFirstRow(t *testing.T) {
	m := NewSeatMatrix(3, 5)

	seats, ok := m.FindContiguousRun(3)
	require.True(t, ok)
	assert.Equal(t, []models.Seat{seat(0, 0), seat(0, 1), seat(0, 2)}, seats)

	// Fragment row A so only row B holds a run of 3.
	require.NoError(t, m.Reserve([]models.Seat{seat(0, 1), seat(0, 3)}))
	seats, ok = m.FindContiguousRun(3)
	require.True(t, ok)
	assert.Equal(t, []models.Seat{seat(1, 0), seat(1, 1), seat(1, 2)}, seats)
}

func TestFindContiguousRunSkipsGaps(t *testing.T) {
	m := NewSeatMatrix(1, 6)
	require.NoError(t, m.Reserve([]models.Seat{seat(0, 2)}))

	// Free: 0,1 | 3,4,5. A run of 3 starts after the gap.
	seats, ok := m.FindContiguousRun(3)
	require.True(t, ok)
	assert.Equal(t, []models.Seat{seat(0, 3), seat(0, 4), seat(0, 5)}, seats)

	_, ok = m.FindContiguousRun(4)
	assert.False(t, ok)
}

func TestAutoAssignFallsBackToScattered(t *testing.T) {
	m := NewSeatMatrix(2, 3)
	// Break every row: A2 and B2 booked.
	require.NoError(t, m.Reserve([]models.Seat{seat(0, 1), seat(1, 1)}))

	// No row has 3 contiguous, but 4 seats remain in row-major order.
	seats, ok := m.AutoAssign(3)
	require.True(t, ok)
	assert.Equal(t, []models.Seat{seat(0, 0), seat(0, 2), seat(1, 0)}, seats)
}

func TestAutoAssignFailsWhenNotEnoughSeats(t *testing.T) {
	m := NewSeatMatrix(1, 2)
	require.NoError(t, m.Reserve([]models.Seat{seat(0, 0)}))

	_, ok := m.AutoAssign(2)
	assert.False(t, ok)
}

func TestFreeSeatsRowMajor(t *testing.T) {
	m := NewSeatMatrix(2, 2)
	require.NoError(t, m.Reserve([]models.Seat{seat(0, 1)}))

	assert.Equal(t, []models.Seat{seat(0, 0), seat(1, 0), seat(1, 1)}, m.FreeSeats())
}
