package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientStatus string

const (
	PatientActive   PatientStatus = "activo"
	PatientInactive PatientStatus = "inactivo"
)

type Patient struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicLicenseID uuid.UUID     `gorm:"type:uuid;index;not null" json:"-"`
	OwnerID         uuid.UUID     `gorm:"type:uuid;index;not null" json:"id_propietario"`
	DoctorID        uuid.UUID     `gorm:"type:uuid;index;not null" json:"id_doctor"`
	Name            string        `gorm:"type:varchar(100);not null" json:"nombre_mascota"`
	Species         string        `gorm:"type:varchar(50);not null" json:"especie"`
	Breed           string        `gorm:"type:varchar(100)" json:"raza,omitempty"`
	Sex             string        `gorm:"type:varchar(10)" json:"sexo,omitempty"`
	BirthDate       string        `gorm:"type:varchar(10)" json:"fecha_nacimiento,omitempty"`
	WeightKg        float64       `json:"peso,omitempty"`
	Status          PatientStatus `gorm:"type:varchar(20);not null;index" json:"estado"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Owner *Owner `gorm:"foreignKey:OwnerID" json:"propietario,omitempty"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PatientActive
	}
	return nil
}
