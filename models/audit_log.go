package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Entity    string         `gorm:"type:varchar(50);not null;index:idx_audit_entity"`
	RecordID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_entity"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index"`
	Action    string         `gorm:"type:varchar(30);not null"`
	OldData   datatypes.JSON
	NewData   datatypes.JSON
	CreatedAt time.Time
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
