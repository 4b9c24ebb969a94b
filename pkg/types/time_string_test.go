package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString_Validate(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, s := range valid {
		_, err := NewTimeStringFromString(s)
		assert.NoError(t, err, s)
	}

	invalid := []string{"", "9:30", "24:00", "12:60", "0930", "09:30:00"}
	for _, s := range invalid {
		_, err := NewTimeStringFromString(s)
		assert.ErrorIs(t, err, ErrInvalidTimeString, s)
	}
}

func TestTimeString_Minutes(t *testing.T) {
	m, err := TimeString("09:30").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = TimeString("bad").Minutes()
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_On(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	date := time.Date(2026, 3, 10, 23, 15, 0, 0, loc)

	got, err := TimeString("09:00").On(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, loc), got)
}

func TestTimeString_IsZero(t *testing.T) {
	assert.True(t, TimeString("").IsZero())
	assert.False(t, TimeString("07:05").IsZero())
}
