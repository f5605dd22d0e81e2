package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationType string

const (
	ConsultationFirstVisit  ConsultationType = "primera_vez"
	ConsultationFollowUp    ConsultationType = "seguimiento"
	ConsultationEmergency   ConsultationType = "urgencia"
	ConsultationVaccination ConsultationType = "vacunacion"
)

const DefaultAppointmentMinutes = 30

func (t ConsultationType) Valid() bool {
	switch t {
	case ConsultationFirstVisit, ConsultationFollowUp, ConsultationEmergency, ConsultationVaccination:
		return true
	}
	return false
}

// Appointment is a medical appointment. Date is YYYY-MM-DD and Time is HH:MM,
// both in the clinic's time zone.
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID          uuid.UUID         `gorm:"type:uuid;index;not null" json:"id_paciente"`
	DoctorID           uuid.UUID         `gorm:"type:uuid;index;not null" json:"id_doctor"`
	Date               string            `gorm:"column:appointment_date;type:varchar(10);not null;index" json:"fecha"`
	Time               string            `gorm:"column:appointment_time;type:varchar(5);not null" json:"hora"`
	Type               ConsultationType  `gorm:"type:varchar(20);not null" json:"tipo_consulta"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"estado"`
	DurationMinutes    int               `gorm:"not null" json:"duracion_minutos"`
	Notes              string            `gorm:"type:text" json:"notas,omitempty"`
	ConfirmedByClient  bool              `gorm:"not null;default:false" json:"confirmada_por_cliente"`
	ConfirmedAt        *time.Time        `json:"fecha_confirmacion,omitempty"`
	CancellationReason string            `gorm:"type:text" json:"motivo_cancelacion,omitempty"`
	FinalObservations  string            `gorm:"type:text" json:"observaciones_finales,omitempty"`
	ReminderSent       bool              `gorm:"not null;default:false" json:"recordatorio_enviado"`
	ReminderSentAt     *time.Time        `json:"fecha_recordatorio,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"paciente,omitempty"`
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = DefaultAppointmentMinutes
	}
	return nil
}
