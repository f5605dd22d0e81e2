// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentKind string

const (
	KindMedical  AppointmentKind = "medica"
	KindGrooming AppointmentKind = "estetica"
)

type ReminderLog struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClinicLicenseID uuid.UUID       `gorm:"type:uuid;index;not null"`
	AppointmentID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Kind            AppointmentKind `gorm:"type:varchar(20);not null"`
	TemplateID      *uuid.UUID      `gorm:"type:uuid"`
	Recipient       string          `gorm:"type:varchar(150)"`
	Message         string          `gorm:"type:text"`
	Status          string          `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage    string          `gorm:"type:text"`
	Channel         string          `gorm:"type:varchar(40)"` // email, sms, whatsapp, joined by "+"
	SentAt          time.Time
	CreatedAt       time.Time
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
