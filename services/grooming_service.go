package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vetclinic-backend/models"
	"vetclinic-backend/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const groomingEntity = "citas_estetica"

// GroomingService manages grooming appointments. They follow the medical
// status rules but are booked with an optional stylist instead of a doctor
// and at any HH:MM.
type GroomingService struct {
	db  *gorm.DB
	log zerolog.Logger
	loc *time.Location
	now func() time.Time
}

func NewGroomingService(db *gorm.DB, log zerolog.Logger, loc *time.Location) *GroomingService {
	return &GroomingService{
		db:  db,
		log: log.With().Str("component", "grooming").Logger(),
		loc: loc,
		now: time.Now,
	}
}

type CreateGroomingInput struct {
	PatientID        uuid.UUID  `json:"id_paciente" binding:"required"`
	StylistID        *uuid.UUID `json:"id_estilista"`
	Date             string     `json:"fecha" binding:"required"`
	Time             string     `json:"hora" binding:"required"`
	Service          string     `json:"tipo_servicio" binding:"required"`
	HaircutStyle     string     `json:"estilo_corte"`
	EstimatedMinutes int        `json:"duracion_estimada"`
	Price            float64    `json:"precio"`
	Notes            string     `json:"notas"`
}

type UpdateGroomingInput struct {
	Date         *string  `json:"fecha"`
	Time         *string  `json:"hora"`
	Service      *string  `json:"tipo_servicio"`
	HaircutStyle *string  `json:"estilo_corte"`
	Price        *float64 `json:"precio"`
	Notes        *string  `json:"notas"`
}

type GroomingFilter struct {
	Date      string `form:"fecha"`
	Status    string `form:"estado"`
	StylistID string `form:"id_estilista"`
}

type GroomingStatusInput struct {
	Status string `json:"estado" binding:"required"`
	Reason string `json:"motivo_cancelacion"`
}

var errStylistBusy = Conflict("The stylist already has an appointment at that time")

func (s *GroomingService) bookableDate(raw string) (string, error) {
	day, err := utils.ParseDate(raw, s.loc)
	if err != nil {
		return "", BadRequest(err.Error())
	}
	if utils.IsPastDate(day, s.now()) {
		return "", BadRequest("Cannot book an appointment in the past")
	}
	return day.Format(utils.DateLayout), nil
}

// groomingTime accepts any HH:MM start within opening hours.
func groomingTime(raw string) (string, error) {
	hhmm, err := utils.NormalizeTime(raw)
	if err != nil {
		return "", BadRequest(err.Error())
	}
	if !WithinOpeningHours(hhmm) {
		return "", BadRequest(fmt.Sprintf("Grooming appointments start between %02d:00 and %02d:00", DayStartHour, DayEndHour))
	}
	return hhmm, nil
}

func parseGroomingService(raw string) (models.GroomingService, error) {
	svc := models.GroomingService(strings.TrimSpace(raw))
	if !svc.Valid() {
		return "", BadRequest("Invalid grooming service")
	}
	return svc, nil
}

func stylistInClinic(tx *gorm.DB, actor Actor, stylistID uuid.UUID) error {
	var u models.User
	err := tx.First(&u, "id = ? AND status = ?", stylistID, models.AccountActive).Error
	if isNotFound(err) || (err == nil && u.ClinicLicenseID != actor.ClinicLicenseID && !actor.crossClinic()) {
		return NotFound("Stylist not found")
	}
	if err != nil {
		return fmt.Errorf("load stylist: %w", err)
	}
	return nil
}

func stylistTaken(tx *gorm.DB, stylistID uuid.UUID, date, hhmm string, exclude *uuid.UUID) (bool, error) {
	q := tx.Model(&models.GroomingAppointment{}).
		Where("stylist_id = ? AND appointment_date = ? AND appointment_time = ?", stylistID, date, hhmm).
		Where("status NOT IN ?", models.SlotFreeingStatuses())
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check stylist slot: %w", err)
	}
	return n > 0, nil
}

func (s *GroomingService) load(tx *gorm.DB, actor Actor, id uuid.UUID) (*models.GroomingAppointment, error) {
	var g models.GroomingAppointment
	err := tx.Preload("Patient.Owner").Preload("Stylist").First(&g, "id = ?", id).Error
	if isNotFound(err) || (err == nil && !actor.crossClinic() && g.ClinicLicenseID != actor.ClinicLicenseID) {
		return nil, NotFound("Grooming appointment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load grooming appointment: %w", err)
	}
	return &g, nil
}

func (s *GroomingService) Create(ctx context.Context, actor Actor, in CreateGroomingInput) (*models.GroomingAppointment, error) {
	date, err := s.bookableDate(in.Date)
	if err != nil {
		return nil, err
	}
	hhmm, err := groomingTime(in.Time)
	if err != nil {
		return nil, err
	}
	service, err := parseGroomingService(in.Service)
	if err != nil {
		return nil, err
	}
	if in.EstimatedMinutes < 0 || in.Price < 0 {
		return nil, BadRequest("Duration and price must not be negative")
	}

	var created *models.GroomingAppointment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patient, err := activePatient(tx, actor, in.PatientID)
		if err != nil {
			return err
		}

		if in.StylistID != nil {
			if err := stylistInClinic(tx, actor, *in.StylistID); err != nil {
				return err
			}
			taken, err := stylistTaken(tx, *in.StylistID, date, hhmm, nil)
			if err != nil {
				return err
			}
			if taken {
				return errStylistBusy
			}
		}

		g := models.GroomingAppointment{
			PatientID:        patient.ID,
			ClinicLicenseID:  patient.ClinicLicenseID,
			StylistID:        in.StylistID,
			Date:             date,
			Time:             hhmm,
			Service:          service,
			HaircutStyle:     strings.TrimSpace(in.HaircutStyle),
			EstimatedMinutes: in.EstimatedMinutes,
			Price:            in.Price,
			Notes:            strings.TrimSpace(in.Notes),
			Status:           models.StatusScheduled,
		}
		if err := tx.Create(&g).Error; err != nil {
			if isUniqueViolation(err) {
				return errStylistBusy
			}
			return fmt.Errorf("create grooming appointment: %w", err)
		}
		if err := writeAudit(tx, groomingEntity, g.ID, actor, auditCreate, nil, g); err != nil {
			return err
		}

		created, err = s.load(tx, actor, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("grooming_id", created.ID.String()).
		Str("service", string(created.Service)).
		Str("date", created.Date).
		Msg("grooming appointment created")
	return created, nil
}

func (s *GroomingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.GroomingAppointment, error) {
	return s.load(s.db.WithContext(ctx), actor, id)
}

func (s *GroomingService) List(ctx context.Context, actor Actor, f GroomingFilter) ([]models.GroomingAppointment, error) {
	q := s.db.WithContext(ctx).Model(&models.GroomingAppointment{}).Preload("Patient.Owner").Preload("Stylist")
	if !actor.crossClinic() {
		q = q.Where("clinic_license_id = ?", actor.ClinicLicenseID)
	}
	if f.Date != "" {
		day, err := utils.ParseDate(f.Date, s.loc)
		if err != nil {
			return nil, BadRequest(err.Error())
		}
		q = q.Where("appointment_date = ?", day.Format(utils.DateLayout))
	}
	if f.Status != "" {
		st, err := parseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", st)
	}
	if f.StylistID != "" {
		id, err := uuid.Parse(f.StylistID)
		if err != nil {
			return nil, BadRequest("Invalid stylist ID")
		}
		q = q.Where("stylist_id = ?", id)
	}

	var out []models.GroomingAppointment
	if err := q.Order("appointment_date ASC, appointment_time ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list grooming appointments: %w", err)
	}
	return out, nil
}

func (s *GroomingService) Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateGroomingInput) (*models.GroomingAppointment, error) {
	updates := map[string]interface{}{}
	if in.Date != nil {
		date, err := s.bookableDate(*in.Date)
		if err != nil {
			return nil, err
		}
		updates["appointment_date"] = date
	}
	if in.Time != nil {
		hhmm, err := groomingTime(*in.Time)
		if err != nil {
			return nil, err
		}
		updates["appointment_time"] = hhmm
	}
	if in.Service != nil {
		svc, err := parseGroomingService(*in.Service)
		if err != nil {
			return nil, err
		}
		updates["service"] = svc
		updates["estimated_minutes"] = svc.DefaultMinutes()
	}
	if in.HaircutStyle != nil {
		updates["haircut_style"] = strings.TrimSpace(*in.HaircutStyle)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, BadRequest("Duration and price must not be negative")
		}
		updates["price"] = *in.Price
	}
	if in.Notes != nil {
		updates["notes"] = strings.TrimSpace(*in.Notes)
	}
	if len(updates) == 0 {
		return nil, BadRequest("No fields to update")
	}

	var updated *models.GroomingAppointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.load(tx, actor, id)
		if err != nil {
			return err
		}
		if !g.Status.Editable() {
			return BadRequest(fmt.Sprintf("Cannot modify an appointment in status %s", g.Status))
		}

		date, hhmm := g.Date, g.Time
		if v, ok := updates["appointment_date"].(string); ok {
			date = v
		}
		if v, ok := updates["appointment_time"].(string); ok {
			hhmm = v
		}
		if g.StylistID != nil && (date != g.Date || hhmm != g.Time) {
			taken, err := stylistTaken(tx, *g.StylistID, date, hhmm, &g.ID)
			if err != nil {
				return err
			}
			if taken {
				return errStylistBusy
			}
		}

		before := *g
		before.Patient, before.Stylist = nil, nil
		if err := tx.Model(&models.GroomingAppointment{}).Where("id = ?", g.ID).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return errStylistBusy
			}
			return fmt.Errorf("update grooming appointment: %w", err)
		}
		if err := writeAudit(tx, groomingEntity, g.ID, actor, auditUpdate, before, updates); err != nil {
			return err
		}

		updated, err = s.load(tx, actor, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangeStatus applies the same transition rules as medical appointments.
func (s *GroomingService) ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, in GroomingStatusInput) (*models.GroomingAppointment, error) {
	next, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	var result *models.GroomingAppointment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.load(tx, actor, id)
		if err != nil {
			return err
		}
		if g.Status == next {
			result = g
			return nil
		}
		if !g.Status.CanTransitionTo(next) {
			return Conflict(fmt.Sprintf("Cannot change an appointment from %s to %s", g.Status, next))
		}

		updates := map[string]interface{}{"status": next}
		switch next {
		case models.StatusConfirmed:
			updates["confirmed_by_client"] = true
			updates["confirmed_at"] = s.now().UTC()
		case models.StatusCancelled:
			if reason := strings.TrimSpace(in.Reason); reason != "" {
				updates["cancellation_reason"] = reason
			}
		}

		if err := tx.Model(&models.GroomingAppointment{}).Where("id = ?", g.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update grooming status: %w", err)
		}
		err = writeAudit(tx, groomingEntity, g.ID, actor, auditStatusChange,
			map[string]interface{}{"estado": g.Status},
			map[string]interface{}{"estado": next})
		if err != nil {
			return err
		}

		result, err = s.load(tx, actor, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GroomingService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.load(tx, actor, id)
		if err != nil {
			return err
		}
		before := *g
		before.Patient, before.Stylist = nil, nil
		if err := tx.Delete(&models.GroomingAppointment{}, "id = ?", g.ID).Error; err != nil {
			return fmt.Errorf("delete grooming appointment: %w", err)
		}
		return writeAudit(tx, groomingEntity, g.ID, actor, auditDelete, before, nil)
	})
}
