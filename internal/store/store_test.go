package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"kassa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestLoadMissingFilesYieldNothing(t *testing.T) {
	s := newTestStore(t)

	events, err := s.LoadEvents()
	require.NoError(t, err)
	assert.Empty(t, events)

	bookings, err := s.LoadBookings()
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestEventsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []models.EventConfig{
		{Name: "Опера", BasePrice: 150.5, Rows: 10, Cols: 20, DiscountCode: "SAVE10", DiscountPercent: 10, Date: "2026-01-15", Time: "19:30"},
		{Name: "Балет", BasePrice: 99, Rows: 5, Cols: 8, Date: "2026-02-01", Time: "18:00"},
	}
	require.NoError(t, s.SaveEvents(in))

	out, err := s.LoadEvents()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1], out[1])
}

func TestEventsFileFormat(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveEvents([]models.EventConfig{
		{Name: "Концерт", BasePrice: 100, Rows: 3, Cols: 4, DiscountCode: "X10", DiscountPercent: 15, Date: "2026-03-01", Time: "20:00"},
	}))

	data, err := os.ReadFile(s.EventsPath())
	require.NoError(t, err)
	assert.Equal(t, "Концерт|100.00|3|4|X10|15|2026-03-01|20:00\n", string(data))
}

func TestLoadEventsSkipsShortLinesAndAppliesDefaults(t *testing.T) {
	s := newTestStore(t)

	content := "garbage\n" +
		"\n" +
		"too|few|fields\n" +
		"Опера|120.00|4|6|NA|0\n"
	require.NoError(t, os.WriteFile(s.EventsPath(), []byte(content), 0o644))

	events, err := s.LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Опера", events[0].Name)
	assert.Equal(t, "2025-12-31", events[0].Date)
	assert.Equal(t, "18:00", events[0].Time)
}

func TestBookingsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	at := time.Unix(time.Now().Unix(), 0)
	in := []models.Booking{
		{
			BookingID:   "BK1-E1-12345",
			EventID:     1,
			Username:    "alice",
			DisplayName: "Alice A",
			Phone:       "+77001234567",
			Email:       "alice@example.com",
			Seat:        models.Seat{Row: 2, Col: 5},
			PricePaid:   92.25,
			BookedAt:    at,
			GroupSize:   2,
		},
		{
			BookingID: "BK1-E1-12345",
			EventID:   1,
			Username:  "alice",
			Seat:      models.Seat{Row: 2, Col: 6},
			PricePaid: 92.25,
			BookedAt:  at,
			GroupSize: 2,
		},
	}
	require.NoError(t, s.SaveBookings(in))

	out, err := s.LoadBookings()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1].Seat, out[1].Seat)
}

func TestBookingsFileFormat(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveBookings([]models.Booking{{
		BookingID:   "BK3-E2-99",
		EventID:     2,
		Username:    "bob",
		DisplayName: "Bob",
		Phone:       "+77000000000",
		Email:       "bob@example.com",
		Seat:        models.Seat{Row: 0, Col: 0},
		PricePaid:   100,
		BookedAt:    time.Unix(1700000000, 0),
		GroupSize:   1,
	}}))

	data, err := os.ReadFile(s.BookingsPath())
	require.NoError(t, err)
	assert.Equal(t,
		"2|bob|Bob|+77000000000|bob@example.com|0|0|100.00|BK3-E2-99|1700000000|1\n",
		string(data))
}

func TestLoadBookingsSkipsMalformedLines(t *testing.T) {
	s := newTestStore(t)

	content := "1|alice|Alice|p|e|0|0|100.00|BK1-E1-1|1700000000|1\n" +
		"not-a-number|x|x|x|x|0|0|1|id|0|1\n" +
		"1|bob|Bob|p|e|zero|0|100.00|BK2-E1-1|1700000000|1\n" +
		"short|line\n" +
		"1|carol|Carol|p|e|1|1|50.00|BK3-E1-1|1700000001|1\n"
	require.NoError(t, os.WriteFile(s.BookingsPath(), []byte(content), 0o644))

	bookings, err := s.LoadBookings()
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "alice", bookings[0].Username)
	assert.Equal(t, "carol", bookings[1].Username)
}

func TestSaveReplacesAtomically(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveEvents([]models.EventConfig{{Name: "one", BasePrice: 1, Rows: 1, Cols: 1, Date: "d", Time: "t"}}))
	require.NoError(t, s.SaveEvents([]models.EventConfig{{Name: "two", BasePrice: 2, Rows: 2, Cols: 2, Date: "d", Time: "t"}}))

	events, err := s.LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "two", events[0].Name)

	// No temp file left behind.
	_, err = os.Stat(filepath.Join(s.dir, "events.txt.tmp"))
	assert.True(t, os.IsNotExist(err))
}
