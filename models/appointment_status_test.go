package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		allowed  bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusInProgress, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusScheduled, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusConfirmed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAppointmentStatusPredicates(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusNoShow.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, AppointmentStatus("perdida").Terminal())
	assert.False(t, AppointmentStatus("perdida").Valid())

	assert.True(t, StatusNoShow.Editable())
	assert.False(t, StatusCompleted.Editable())
	assert.False(t, StatusCancelled.Editable())

	assert.ElementsMatch(t, []string{"cancelada", "no_asistio"}, SlotFreeingStatuses())
	assert.ElementsMatch(t, []string{"programada", "confirmada"}, RemindableStatuses())
}

func TestConsultationAndGroomingTypes(t *testing.T) {
	assert.True(t, ConsultationEmergency.Valid())
	assert.False(t, ConsultationType("cirugia").Valid())

	assert.Equal(t, 120, GroomingBathHaircut.DefaultMinutes())
	assert.Equal(t, 20, GroomingNails.DefaultMinutes())
	assert.Equal(t, 60, GroomingService("masaje").DefaultMinutes())
	assert.False(t, GroomingService("masaje").Valid())
}
