package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vetclinic-backend/models"
	"vetclinic-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var defaultTemplates = map[models.AppointmentKind]models.ReminderTemplate{
	models.KindMedical: {
		Kind:    models.KindMedical,
		Subject: "Recordatorio de cita para [PetName]",
		Message: "Hola [OwnerName],\n\n" +
			"Le recordamos que [PetName] tiene una consulta de [Service] mañana [Date] a las [Time] con [Staff].\n\n" +
			"Le pedimos llegar 10 minutos antes. Si necesita cancelar o reprogramar, contáctenos con anticipación.",
		IsActive: true,
	},
	models.KindGrooming: {
		Kind:    models.KindGrooming,
		Subject: "Recordatorio de estética para [PetName]",
		Message: "Hola [OwnerName],\n\n" +
			"Le recordamos que [PetName] tiene una cita de estética ([Service]) mañana [Date] a las [Time].\n\n" +
			"Si necesita cancelar o reprogramar, contáctenos con anticipación.",
		IsActive: true,
	},
}

// DefaultTemplate returns the built-in template for kind.
func DefaultTemplate(kind models.AppointmentKind) models.ReminderTemplate {
	return defaultTemplates[kind]
}

// templateCache resolves each clinic's template once per batch.
type templateCache struct {
	tx    *gorm.DB
	cache map[string]models.ReminderTemplate
}

func newTemplateCache(tx *gorm.DB) *templateCache {
	return &templateCache{tx: tx, cache: make(map[string]models.ReminderTemplate)}
}

// get returns the clinic's active template for kind, or the built-in one
// when the clinic has none.
func (c *templateCache) get(clinicID uuid.UUID, kind models.AppointmentKind) (models.ReminderTemplate, error) {
	key := clinicID.String() + "/" + string(kind)
	if t, ok := c.cache[key]; ok {
		return t, nil
	}
	var t models.ReminderTemplate
	err := c.tx.Where("clinic_license_id = ? AND kind = ? AND is_active = ?", clinicID, kind, true).First(&t).Error
	switch {
	case err == nil:
	case isNotFound(err):
		t = DefaultTemplate(kind)
	default:
		return t, fmt.Errorf("load reminder template: %w", err)
	}
	c.cache[key] = t
	return t, nil
}

func humanize(code string) string {
	return strings.ReplaceAll(code, "_", " ")
}

func renderReminder(t models.ReminderTemplate, row reminderCandidate, clinicAddress string) (subject, body string) {
	date := row.ApptDate
	if d, err := time.Parse(utils.DateLayout, row.ApptDate); err == nil {
		date = d.Format("02/01/2006")
	}
	staff := row.StaffName
	if staff == "" {
		staff = "nuestro equipo"
	}

	r := strings.NewReplacer(
		"[OwnerName]", row.ownerName(),
		"[PetName]", row.PetName,
		"[Date]", date,
		"[Time]", row.ApptTime,
		"[Service]", humanize(row.Service),
		"[Staff]", staff,
	)
	subject = r.Replace(t.Subject)
	body = r.Replace(t.Message)
	if clinicAddress != "" {
		body += "\n\nDirección: " + clinicAddress
	}
	return subject, body
}

type TemplateInput struct {
	Kind     string `json:"tipo" binding:"required"`
	Subject  string `json:"asunto" binding:"required"`
	Message  string `json:"mensaje" binding:"required"`
	IsActive *bool  `json:"activa"`
}

// ListTemplates returns one template per appointment kind, falling back to
// the built-in text where the clinic has none.
func (s *ReminderService) ListTemplates(ctx context.Context, actor Actor) ([]models.ReminderTemplate, error) {
	var stored []models.ReminderTemplate
	if err := s.db.WithContext(ctx).Where("clinic_license_id = ?", actor.ClinicLicenseID).Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	byKind := make(map[models.AppointmentKind]models.ReminderTemplate, len(stored))
	for _, t := range stored {
		byKind[t.Kind] = t
	}

	out := make([]models.ReminderTemplate, 0, 2)
	for _, kind := range []models.AppointmentKind{models.KindMedical, models.KindGrooming} {
		if t, ok := byKind[kind]; ok {
			out = append(out, t)
			continue
		}
		out = append(out, DefaultTemplate(kind))
	}
	return out, nil
}

// SaveTemplate creates or replaces the clinic's template for a kind.
func (s *ReminderService) SaveTemplate(ctx context.Context, actor Actor, in TemplateInput) (*models.ReminderTemplate, error) {
	kind := models.AppointmentKind(in.Kind)
	if kind != models.KindMedical && kind != models.KindGrooming {
		return nil, BadRequest("Invalid template type")
	}
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, BadRequest("Subject and message are required")
	}

	var t models.ReminderTemplate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("clinic_license_id = ? AND kind = ?", actor.ClinicLicenseID, kind).First(&t).Error
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("load template: %w", err)
		}
		old := t
		t.ClinicLicenseID = actor.ClinicLicenseID
		t.Kind = kind
		t.Subject = strings.TrimSpace(in.Subject)
		t.Message = in.Message
		t.IsActive = in.IsActive == nil || *in.IsActive
		if err := tx.Save(&t).Error; err != nil {
			return fmt.Errorf("save template: %w", err)
		}
		action := auditUpdate
		var oldData interface{} = old
		if old.ID == uuid.Nil {
			action, oldData = auditCreate, nil
		}
		return writeAudit(tx, "plantillas_recordatorio", t.ID, actor, action, oldData, t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}
