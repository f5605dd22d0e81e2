package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroomingService string

const (
	GroomingBath          GroomingService = "baño"
	GroomingHaircut       GroomingService = "corte"
	GroomingBathHaircut   GroomingService = "baño_corte"
	GroomingNails         GroomingService = "uñas"
	GroomingDentalCleanup GroomingService = "limpieza_dental"
	GroomingSpaPremium    GroomingService = "spa_premium"
	GroomingDeshedding    GroomingService = "deslanado"
	GroomingFleaTreatment GroomingService = "tratamiento_pulgas"
	GroomingOther         GroomingService = "otro"
)

var groomingMinutes = map[GroomingService]int{
	GroomingBath:          60,
	GroomingHaircut:       90,
	GroomingBathHaircut:   120,
	GroomingNails:         20,
	GroomingDentalCleanup: 45,
	GroomingSpaPremium:    150,
	GroomingDeshedding:    90,
	GroomingFleaTreatment: 45,
	GroomingOther:         60,
}

func (g GroomingService) Valid() bool {
	_, ok := groomingMinutes[g]
	return ok
}

// DefaultMinutes is the estimated duration used when none is given.
func (g GroomingService) DefaultMinutes() int {
	if m, ok := groomingMinutes[g]; ok {
		return m
	}
	return 60
}

// GroomingAppointment is performed by a stylist, a staff user of the clinic.
type GroomingAppointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID          uuid.UUID         `gorm:"type:uuid;index;not null" json:"id_paciente"`
	ClinicLicenseID    uuid.UUID         `gorm:"type:uuid;index;not null" json:"-"`
	StylistID          *uuid.UUID        `gorm:"type:uuid;index" json:"id_estilista,omitempty"`
	Date               string            `gorm:"column:appointment_date;type:varchar(10);not null;index" json:"fecha"`
	Time               string            `gorm:"column:appointment_time;type:varchar(5);not null" json:"hora"`
	Service            GroomingService   `gorm:"type:varchar(30);not null" json:"tipo_servicio"`
	HaircutStyle       string            `gorm:"type:varchar(100)" json:"estilo_corte,omitempty"`
	EstimatedMinutes   int               `gorm:"not null" json:"duracion_estimada"`
	Price              float64           `json:"precio"`
	Notes              string            `gorm:"type:text" json:"notas,omitempty"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"estado"`
	ConfirmedByClient  bool              `gorm:"not null;default:false" json:"confirmada_por_cliente"`
	ConfirmedAt        *time.Time        `json:"fecha_confirmacion,omitempty"`
	CancellationReason string            `gorm:"type:text" json:"motivo_cancelacion,omitempty"`
	ReminderSent       bool              `gorm:"not null;default:false" json:"recordatorio_enviado"`
	ReminderSentAt     *time.Time        `json:"fecha_recordatorio,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"paciente,omitempty"`
	Stylist *User    `gorm:"foreignKey:StylistID" json:"estilista,omitempty"`
}

func (g *GroomingAppointment) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = StatusScheduled
	}
	if g.EstimatedMinutes == 0 {
		g.EstimatedMinutes = g.Service.DefaultMinutes()
	}
	return nil
}
