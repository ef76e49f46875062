package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "A1", Seat{Row: 0, Col: 0}.Label())
	assert.Equal(t, "B10", Seat{Row: 1, Col: 9}.Label())
	assert.Equal(t, "Z50", Seat{Row: 25, Col: 49}.Label())
}

func TestParseSeatLabel(t *testing.T) {
	s, err := ParseSeatLabel("A1")
	require.NoError(t, err)
	assert.Equal(t, Seat{Row: 0, Col: 0}, s)

	s, err = ParseSeatLabel("c12")
	require.NoError(t, err)
	assert.Equal(t, Seat{Row: 2, Col: 11}, s)

	s, err = ParseSeatLabel("  Z50 ")
	require.NoError(t, err)
	assert.Equal(t, Seat{Row: 25, Col: 49}, s)
}

func TestParseSeatLabelErrors(t *testing.T) {
	for _, label := range []string{"", "A", "7", "AB", "Axy"} {
		_, err := ParseSeatLabel(label)
		assert.Error(t, err, "label %q", label)
	}
}

func TestSeatLabelRoundTrip(t *testing.T) {
	for row := 0; row < 26; row++ {
		for col := 0; col < 50; col++ {
			s := Seat{Row: row, Col: col}
			parsed, err := ParseSeatLabel(s.Label())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	}
}
