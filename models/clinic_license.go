package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "activa"
	LicenseFree      LicenseStatus = "free"
	LicenseSuspended LicenseStatus = "suspendida"
	LicenseCancelled LicenseStatus = "cancelada"
)

// DefaultLicenseName is the shared free license new accounts join when they
// don't register a clinic of their own.
const DefaultLicenseName = "Licencia gratuita"

type ClinicLicense struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicName string        `gorm:"type:varchar(150);not null" json:"nombre_clinica"`
	Status     LicenseStatus `gorm:"type:varchar(20);not null;index" json:"estado"`
	MaxDoctors int           `gorm:"not null;default:1" json:"max_doctores"`
	ExpiresAt  *time.Time    `json:"fecha_expiracion,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Usable reports whether users under this license may authenticate.
func (l *ClinicLicense) Usable() bool {
	return l.Status == LicenseActive || l.Status == LicenseFree
}

func (l *ClinicLicense) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
