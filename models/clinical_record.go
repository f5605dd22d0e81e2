package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClinicalRecord is one entry of a patient's clinical history. An appointment
// referenced here is never hard-deleted.
type ClinicalRecord struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"id_paciente"`
	DoctorID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"id_doctor"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"id_cita,omitempty"`
	Date          string     `gorm:"column:record_date;type:varchar(10);not null" json:"fecha"`
	Reason        string     `gorm:"type:text;not null" json:"motivo"`
	Diagnosis     string     `gorm:"type:text" json:"diagnostico,omitempty"`
	Treatment     string     `gorm:"type:text" json:"tratamiento,omitempty"`
	Notes         string     `gorm:"type:text" json:"notas,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID;constraint:OnDelete:SET NULL" json:"-"`
}

func (r *ClinicalRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
