package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStatus string

const (
	AccountPending   AccountStatus = "pending"
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

// MaxFailedLogins is the number of consecutive bad passwords after which an
// account is suspended.
const MaxFailedLogins = 5

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `gorm:"type:varchar(100);not null" json:"nombre"`
	LastName string    `gorm:"type:varchar(100)" json:"apellidos"`
	Phone    string    `gorm:"type:varchar(20)" json:"telefono,omitempty"`

	Role            Role          `gorm:"type:varchar(20);not null" json:"rol"`
	Status          AccountStatus `gorm:"type:varchar(20);not null;index" json:"estado_cuenta"`
	ClinicLicenseID uuid.UUID     `gorm:"type:uuid;index;not null" json:"id_licencia_clinica"`

	ClinicLicense *ClinicLicense `gorm:"foreignKey:ClinicLicenseID" json:"licencia,omitempty"`

	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LastLogin           *time.Time `json:"ultimo_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
