package models

import (
	"fmt"

	"gorm.io/gorm"
)

// All lists every table in dependency order.
func All() []interface{} {
	return []interface{}{
		&ClinicLicense{},
		&User{},
		&UserToken{},
		&Doctor{},
		&Owner{},
		&Patient{},
		&Appointment{},
		&GroomingAppointment{},
		&ClinicalRecord{},
		&AuditLog{},
		&ReminderTemplate{},
		&ReminderLog{},
	}
}

// Partial unique indexes keep one active booking per doctor (or stylist) and
// slot. Cancelled and no-show appointments free the slot.
var slotIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_doctor_slot
		ON appointments (doctor_id, appointment_date, appointment_time)
		WHERE status NOT IN ('cancelada', 'no_asistio')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_grooming_stylist_slot
		ON grooming_appointments (stylist_id, appointment_date, appointment_time)
		WHERE stylist_id IS NOT NULL AND status NOT IN ('cancelada', 'no_asistio')`,
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range slotIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create slot index: %w", err)
		}
	}
	return nil
}
