package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutesOf(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"09:30:00", 570, false}, // postgres time column
		{" 10:15 ", 615, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"nine", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := MinutesOf(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "09:00", FormatMinutes(540))
	assert.Equal(t, "00:05", FormatMinutes(5))
	assert.Equal(t, "23:59", FormatMinutes(1439))
}

func TestDurationMinutes(t *testing.T) {
	d, err := DurationMinutes("09:00", "09:30")
	require.NoError(t, err)
	assert.Equal(t, 30, d)

	_, err = DurationMinutes("10:00", "09:30")
	assert.Error(t, err)
}

func TestOverlapsHalfOpen(t *testing.T) {
	// Touching endpoints do not conflict.
	assert.False(t, Overlaps(540, 570, 570, 600))
	assert.False(t, Overlaps(570, 600, 540, 570))

	assert.True(t, Overlaps(540, 570, 555, 585))
	assert.True(t, Overlaps(555, 585, 540, 570))
	assert.True(t, Overlaps(540, 600, 550, 560)) // containment
	assert.False(t, Overlaps(540, 570, 600, 630))
}
