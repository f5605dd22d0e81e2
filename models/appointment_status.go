package models

// AppointmentStatus is shared by medical and grooming appointments.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "programada"
	StatusConfirmed  AppointmentStatus = "confirmada"
	StatusInProgress AppointmentStatus = "en_curso"
	StatusCompleted  AppointmentStatus = "completada"
	StatusCancelled  AppointmentStatus = "cancelada"
	StatusNoShow     AppointmentStatus = "no_asistio"
)

var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
	StatusNoShow:     nil,
}

func (s AppointmentStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s AppointmentStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether an appointment in status s may move to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Editable reports whether date, time or type may still be changed.
func (s AppointmentStatus) Editable() bool {
	return s != StatusCompleted && s != StatusCancelled
}

// SlotFreeingStatuses are the statuses that don't occupy a slot.
func SlotFreeingStatuses() []string {
	return []string{string(StatusCancelled), string(StatusNoShow)}
}

// RemindableStatuses are the statuses that still get a reminder the day before.
func RemindableStatuses() []string {
	return []string{string(StatusScheduled), string(StatusConfirmed)}
}
