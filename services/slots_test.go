package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDaySlots(t *testing.T) {
	slots := DaySlots()
	assert.Len(t, slots, 20)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "17:30", slots[len(slots)-1])

	// Callers get their own copy.
	slots[0] = "00:00"
	assert.Equal(t, "08:00", DaySlots()[0])
}

func TestIsSlot(t *testing.T) {
	for _, hhmm := range []string{"08:00", "12:30", "17:30"} {
		assert.True(t, IsSlot(hhmm), hhmm)
	}
	for _, hhmm := range []string{"07:30", "18:00", "10:15", "8:00", ""} {
		assert.False(t, IsSlot(hhmm), hhmm)
	}
}

func TestWithinOpeningHours(t *testing.T) {
	for _, hhmm := range []string{"08:00", "10:15", "17:59"} {
		assert.True(t, WithinOpeningHours(hhmm), hhmm)
	}
	for _, hhmm := range []string{"07:59", "18:00", "23:45", "03:00", "basura"} {
		assert.False(t, WithinOpeningHours(hhmm), hhmm)
	}
}

func TestFreeSlots(t *testing.T) {
	free := FreeSlots([]string{"08:00:00", "09:30", "basura"})
	assert.Len(t, free, 18)
	assert.Equal(t, "08:30", free[0])
	assert.NotContains(t, free, "09:30")

	assert.Equal(t, DaySlots(), FreeSlots(nil))
}
