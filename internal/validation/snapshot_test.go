package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, events, bookings string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.txt"), []byte(events), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bookings.txt"), []byte(bookings), 0o644))
	return dir
}

func TestCheckSnapshotClean(t *testing.T) {
	dir := writeSnapshot(t,
		"Концерт|100.00|3|4|SAVE10|10|2026-03-01|20:00\n",
		"1|alice|Alice|+77010000000|alice@example.com|0|0|100.00|BK1-E1-1|1700000000|2\n"+
			"1|alice|Alice|+77010000000|alice@example.com|0|1|100.00|BK1-E1-1|1700000000|2\n")

	issues, err := CheckSnapshot(dir)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckSnapshotFindsProblems(t *testing.T) {
	dir := writeSnapshot(t,
		"Концерт|100.00|2|2|X|0|2026-03-01|20:00\n",
		// Двойное бронирование A1, место вне зала, неизвестное событие, цена выше базовой.
		"1|alice|Alice|+77010000000|alice@example.com|0|0|100.00|BK1-E1-1|1700000000|1\n"+
			"1|bob|Bob|+77020000000|bob@example.com|0|0|100.00|BK2-E1-2|1700000001|1\n"+
			"1|carol|Carol|+77030000000|carol@example.com|5|9|100.00|BK3-E1-3|1700000002|1\n"+
			"9|dave|Dave|+77040000000|dave@example.com|0|0|100.00|BK4-E9-4|1700000003|1\n"+
			"1|erin|Erin|+77050000000|erin@example.com|1|1|250.00|BK5-E1-5|1700000004|1\n")

	issues, err := CheckSnapshot(dir)
	require.NoError(t, err)
	require.Len(t, issues, 4)

	byID := map[string]string{}
	for _, issue := range issues {
		byID[issue.BookingID] = issue.Problem
	}
	assert.Contains(t, byID["BK2-E1-2"], "already booked by BK1-E1-1")
	assert.Contains(t, byID["BK3-E1-3"], "outside the 2x2 grid")
	assert.Contains(t, byID["BK4-E9-4"], "unknown event 9")
	assert.Contains(t, byID["BK5-E1-5"], "exceeds base price")
}

func TestCheckSnapshotEmptyDir(t *testing.T) {
	issues, err := CheckSnapshot(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, issues)
}
