package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderTemplate is a clinic's reminder text for one appointment kind.
// Supported placeholders: [OwnerName] [PetName] [Date] [Time] [Service] [Staff].
type ReminderTemplate struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicLicenseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_template_clinic_kind" json:"-"`
	Kind            AppointmentKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_template_clinic_kind" json:"tipo"`
	Subject         string          `gorm:"type:varchar(150);not null" json:"asunto"`
	Message         string          `gorm:"type:text;not null" json:"mensaje"`
	IsActive        bool            `gorm:"not null" json:"activa"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (t *ReminderTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
