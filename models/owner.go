package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Owner is the person responsible for one or more patients. Phone numbers
// are stored as digits only and are unique within a clinic.
type Owner struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicLicenseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_owner_clinic_phone" json:"-"`
	FirstName       string    `gorm:"type:varchar(100);not null" json:"nombre"`
	LastName        string    `gorm:"type:varchar(100)" json:"apellidos"`
	Email           string    `gorm:"type:varchar(150)" json:"email"`
	Phone           string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_owner_clinic_phone" json:"telefono"`

	Street       string `gorm:"type:varchar(150)" json:"calle,omitempty"`
	ExtNumber    string `gorm:"type:varchar(20)" json:"numero_ext,omitempty"`
	IntNumber    string `gorm:"type:varchar(20)" json:"numero_int,omitempty"`
	PostalCode   string `gorm:"type:varchar(10)" json:"codigo_postal,omitempty"`
	Neighborhood string `gorm:"type:varchar(100)" json:"colonia,omitempty"`
	References   string `gorm:"type:text" json:"referencias,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Owner) FullName() string {
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

func (o *Owner) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
