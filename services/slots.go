package services

import (
	"time"

	"vetclinic-backend/utils"
)

// Medical appointments are booked on a half-hour grid from 08:00 to 18:00.
const (
	DayStartHour = 8
	DayEndHour   = 18
	SlotLength   = 30 * time.Minute
)

var daySlots = generateSlots()

func generateSlots() []string {
	start := time.Date(2000, 1, 1, DayStartHour, 0, 0, 0, time.UTC)
	end := time.Date(2000, 1, 1, DayEndHour, 0, 0, 0, time.UTC)

	var slots []string
	for t := start; t.Before(end); t = t.Add(SlotLength) {
		slots = append(slots, t.Format(utils.TimeLayout))
	}
	return slots
}

// DaySlots returns every bookable slot of a day in order.
func DaySlots() []string {
	out := make([]string, len(daySlots))
	copy(out, daySlots)
	return out
}

// IsSlot reports whether hhmm is on the booking grid.
func IsSlot(hhmm string) bool {
	for _, s := range daySlots {
		if s == hhmm {
			return true
		}
	}
	return false
}

// WithinOpeningHours reports whether an HH:MM start time falls between
// DayStartHour and DayEndHour.
func WithinOpeningHours(hhmm string) bool {
	t, err := time.Parse(utils.TimeLayout, hhmm)
	if err != nil {
		return false
	}
	return t.Hour() >= DayStartHour && t.Hour() < DayEndHour
}

// FreeSlots returns the slots of the day not present in booked, keeping order.
func FreeSlots(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		if hhmm, err := utils.NormalizeTime(b); err == nil {
			taken[hhmm] = struct{}{}
		}
	}

	free := make([]string, 0, len(daySlots))
	for _, s := range daySlots {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	return free
}
