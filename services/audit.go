package services

import (
	"encoding/json"
	"fmt"

	"vetclinic-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	auditCreate       = "crear"
	auditUpdate       = "actualizar"
	auditStatusChange = "cambiar_estado"
	auditDelete       = "eliminar"
)

// writeAudit records a mutation. It must run on the same transaction as the change.
func writeAudit(tx *gorm.DB, entity string, recordID uuid.UUID, actor Actor, action string, oldData, newData interface{}) error {
	entry := models.AuditLog{
		Entity:   entity,
		RecordID: recordID,
		Action:   action,
	}
	if actor.UserID != uuid.Nil {
		uid := actor.UserID
		entry.UserID = &uid
	}

	var err error
	if entry.OldData, err = toJSON(oldData); err != nil {
		return err
	}
	if entry.NewData, err = toJSON(newData); err != nil {
		return err
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal audit data: %w", err)
	}
	return datatypes.JSON(b), nil
}
