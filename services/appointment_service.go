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

const appointmentEntity = "citas"

type AppointmentService struct {
	db  *gorm.DB
	log zerolog.Logger
	loc *time.Location
	now func() time.Time
}

func NewAppointmentService(db *gorm.DB, log zerolog.Logger, loc *time.Location) *AppointmentService {
	return &AppointmentService{
		db:  db,
		log: log.With().Str("component", "appointments").Logger(),
		loc: loc,
		now: time.Now,
	}
}

type CreateAppointmentInput struct {
	PatientID uuid.UUID  `json:"id_paciente" binding:"required"`
	DoctorID  *uuid.UUID `json:"id_doctor"`
	Date      string     `json:"fecha" binding:"required"`
	Time      string     `json:"hora" binding:"required"`
	Type      string     `json:"tipo_consulta"`
	Notes     string     `json:"notas"`
}

// UpdateAppointmentInput holds the editable fields. Nil fields are left unchanged.
type UpdateAppointmentInput struct {
	Date  *string `json:"fecha"`
	Time  *string `json:"hora"`
	Type  *string `json:"tipo_consulta"`
	Notes *string `json:"notas"`
}

func (in UpdateAppointmentInput) empty() bool {
	return in.Date == nil && in.Time == nil && in.Type == nil && in.Notes == nil
}

type AppointmentFilter struct {
	Date   string `form:"fecha"`
	Status string `form:"estado"`
	Type   string `form:"tipo_consulta"`
}

type AppointmentStats struct {
	Period      string `json:"periodo"`
	From        string `json:"desde"`
	To          string `json:"hasta"`
	Total       int64  `json:"total"`
	Scheduled   int64  `json:"programadas"`
	Confirmed   int64  `json:"confirmadas"`
	InProgress  int64  `json:"en_curso"`
	Completed   int64  `json:"completadas"`
	Cancelled   int64  `json:"canceladas"`
	NoShow      int64  `json:"no_asistio"`
	Emergencies int64  `json:"urgencias"`
}

var statsPeriods = map[string]int{
	"dia":    0,
	"semana": 7,
	"mes":    30,
	"año":    365,
}

func (s *AppointmentService) today() time.Time {
	return utils.BeginningOfDay(s.now().In(s.loc))
}

func (s *AppointmentService) bookableDate(raw string) (string, error) {
	day, err := utils.ParseDate(raw, s.loc)
	if err != nil {
		return "", BadRequest(err.Error())
	}
	if utils.IsPastDate(day, s.now()) {
		return "", BadRequest("Cannot book an appointment in the past")
	}
	return day.Format(utils.DateLayout), nil
}

func bookableSlot(raw string) (string, error) {
	hhmm, err := utils.NormalizeTime(raw)
	if err != nil {
		return "", BadRequest(err.Error())
	}
	if !IsSlot(hhmm) {
		return "", BadRequest("Time must be a half-hour slot between 08:00 and 17:30")
	}
	return hhmm, nil
}

func parseConsultationType(raw string) (models.ConsultationType, error) {
	if raw == "" {
		return models.ConsultationFollowUp, nil
	}
	t := models.ConsultationType(raw)
	if !t.Valid() {
		return "", BadRequest("Invalid consultation type")
	}
	return t, nil
}

func parseStatus(raw string) (models.AppointmentStatus, error) {
	st := models.AppointmentStatus(raw)
	if !st.Valid() {
		return "", BadRequest("Invalid status")
	}
	return st, nil
}

func doctorForUser(tx *gorm.DB, userID uuid.UUID) (*models.Doctor, error) {
	var d models.Doctor
	err := tx.First(&d, "user_id = ?", userID).Error
	if isNotFound(err) {
		return nil, Forbidden("No doctor profile for this user")
	}
	if err != nil {
		return nil, fmt.Errorf("load doctor for user: %w", err)
	}
	return &d, nil
}

func doctorInClinic(tx *gorm.DB, actor Actor, doctorID uuid.UUID) (*models.Doctor, error) {
	var d models.Doctor
	err := tx.Preload("User").First(&d, "id = ?", doctorID).Error
	if isNotFound(err) {
		return nil, NotFound("Doctor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if !actor.crossClinic() && (d.User == nil || d.User.ClinicLicenseID != actor.ClinicLicenseID) {
		return nil, NotFound("Doctor not found")
	}
	return &d, nil
}

func activePatient(tx *gorm.DB, actor Actor, patientID uuid.UUID) (*models.Patient, error) {
	var p models.Patient
	err := tx.First(&p, "id = ? AND status = ?", patientID, models.PatientActive).Error
	if isNotFound(err) {
		return nil, NotFound("Patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if !actor.crossClinic() && p.ClinicLicenseID != actor.ClinicLicenseID {
		return nil, NotFound("Patient not found")
	}
	return &p, nil
}

// clinicDoctorIDs is a subquery selecting the doctors of a clinic.
func clinicDoctorIDs(tx *gorm.DB, clinicID uuid.UUID) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Doctor{}).
		Select("doctors.id").
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("users.clinic_license_id = ?", clinicID)
}

// scope restricts q to what actor may see: doctors their own appointments,
// other roles their clinic.
func (s *AppointmentService) scope(tx, q *gorm.DB, actor Actor) (*gorm.DB, error) {
	switch {
	case actor.isDoctor():
		d, err := doctorForUser(tx, actor.UserID)
		if err != nil {
			return nil, err
		}
		return q.Where("appointments.doctor_id = ?", d.ID), nil
	case actor.crossClinic():
		return q, nil
	default:
		return q.Where("appointments.doctor_id IN (?)", clinicDoctorIDs(tx, actor.ClinicLicenseID)), nil
	}
}

func (s *AppointmentService) authorize(tx *gorm.DB, actor Actor, appt *models.Appointment) error {
	if actor.isDoctor() {
		d, err := doctorForUser(tx, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID != appt.DoctorID {
			return Forbidden("You don't have access to this appointment")
		}
		return nil
	}
	if _, err := doctorInClinic(tx, actor, appt.DoctorID); err != nil {
		if _, ok := AsAppError(err); ok {
			return NotFound("Appointment not found")
		}
		return err
	}
	return nil
}

// targetDoctor resolves who the appointment is booked with. Doctors always
// book for themselves; other staff pick a doctor of their clinic and default
// to the patient's doctor.
func targetDoctor(tx *gorm.DB, actor Actor, requested *uuid.UUID, fallback uuid.UUID) (*models.Doctor, error) {
	if actor.isDoctor() {
		d, err := doctorForUser(tx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if requested != nil && *requested != d.ID {
			return nil, Forbidden("Doctors can only book their own appointments")
		}
		return d, nil
	}
	id := fallback
	if requested != nil {
		id = *requested
	}
	return doctorInClinic(tx, actor, id)
}

// slotTaken reports whether doctorID already has an appointment occupying date+hhmm.
func slotTaken(tx *gorm.DB, doctorID uuid.UUID, date, hhmm string, exclude *uuid.UUID) (bool, error) {
	q := tx.Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ?", doctorID, date, hhmm).
		Where("status NOT IN ?", models.SlotFreeingStatuses())
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return n > 0, nil
}

var errSlotTaken = Conflict("An appointment is already booked for that doctor at that time")

func (s *AppointmentService) load(tx *gorm.DB, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := tx.Preload("Patient.Owner").First(&appt, "id = ?", id).Error
	if isNotFound(err) {
		return nil, NotFound("Appointment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	return &appt, nil
}

// Create books a medical appointment with status programada.
func (s *AppointmentService) Create(ctx context.Context, actor Actor, in CreateAppointmentInput) (*models.Appointment, error) {
	date, err := s.bookableDate(in.Date)
	if err != nil {
		return nil, err
	}
	hhmm, err := bookableSlot(in.Time)
	if err != nil {
		return nil, err
	}
	kind, err := parseConsultationType(in.Type)
	if err != nil {
		return nil, err
	}

	var created *models.Appointment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patient, err := activePatient(tx, actor, in.PatientID)
		if err != nil {
			return err
		}
		doctor, err := targetDoctor(tx, actor, in.DoctorID, patient.DoctorID)
		if err != nil {
			return err
		}
		if !actor.Role.AtLeast(models.RoleAdmin) && patient.DoctorID != doctor.ID {
			return Forbidden("This patient is not assigned to the doctor")
		}

		taken, err := slotTaken(tx, doctor.ID, date, hhmm, nil)
		if err != nil {
			return err
		}
		if taken {
			return errSlotTaken
		}

		appt := models.Appointment{
			PatientID:       patient.ID,
			DoctorID:        doctor.ID,
			Date:            date,
			Time:            hhmm,
			Type:            kind,
			Status:          models.StatusScheduled,
			DurationMinutes: models.DefaultAppointmentMinutes,
			Notes:           strings.TrimSpace(in.Notes),
		}
		if err := tx.Create(&appt).Error; err != nil {
			if isUniqueViolation(err) {
				return errSlotTaken
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		if err := writeAudit(tx, appointmentEntity, appt.ID, actor, auditCreate, nil, appt); err != nil {
			return err
		}

		created, err = s.load(tx, appt.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("doctor_id", created.DoctorID.String()).
		Str("date", created.Date).
		Str("time", created.Time).
		Msg("appointment created")
	return created, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Appointment, error) {
	tx := s.db.WithContext(ctx)
	appt, err := s.load(tx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(tx, actor, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *AppointmentService) List(ctx context.Context, actor Actor, f AppointmentFilter) ([]models.Appointment, error) {
	tx := s.db.WithContext(ctx)
	q, err := s.scope(tx, tx.Model(&models.Appointment{}).Preload("Patient.Owner"), actor)
	if err != nil {
		return nil, err
	}

	if f.Date != "" {
		day, err := utils.ParseDate(f.Date, s.loc)
		if err != nil {
			return nil, BadRequest(err.Error())
		}
		q = q.Where("appointments.appointment_date = ?", day.Format(utils.DateLayout))
	}
	if f.Status != "" {
		st, err := parseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q = q.Where("appointments.status = ?", st)
	}
	if f.Type != "" {
		if !models.ConsultationType(f.Type).Valid() {
			return nil, BadRequest("Invalid consultation type")
		}
		q = q.Where("appointments.type = ?", f.Type)
	}

	var out []models.Appointment
	if err := q.Order("appointments.appointment_date ASC, appointments.appointment_time ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// ListRange returns the appointments dated between start and end inclusive.
func (s *AppointmentService) ListRange(ctx context.Context, actor Actor, start, end string) ([]models.Appointment, error) {
	if start == "" || end == "" {
		return nil, BadRequest("start and end dates are required")
	}
	from, err := utils.ParseDate(start, s.loc)
	if err != nil {
		return nil, BadRequest(err.Error())
	}
	to, err := utils.ParseDate(end, s.loc)
	if err != nil {
		return nil, BadRequest(err.Error())
	}
	if to.Before(from) {
		return nil, BadRequest("end date must not be before start date")
	}

	tx := s.db.WithContext(ctx)
	q, err := s.scope(tx, tx.Model(&models.Appointment{}).Preload("Patient.Owner"), actor)
	if err != nil {
		return nil, err
	}

	var out []models.Appointment
	err = q.Where("appointments.appointment_date BETWEEN ? AND ?", from.Format(utils.DateLayout), to.Format(utils.DateLayout)).
		Order("appointments.appointment_date ASC, appointments.appointment_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments in range: %w", err)
	}
	return out, nil
}

// Upcoming returns the next pending appointments from today on.
func (s *AppointmentService) Upcoming(ctx context.Context, actor Actor, limit int) ([]models.Appointment, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	tx := s.db.WithContext(ctx)
	q, err := s.scope(tx, tx.Model(&models.Appointment{}).Preload("Patient.Owner"), actor)
	if err != nil {
		return nil, err
	}

	var out []models.Appointment
	err = q.Where("appointments.appointment_date >= ?", s.today().Format(utils.DateLayout)).
		Where("appointments.status IN ?", models.RemindableStatuses()).
		Order("appointments.appointment_date ASC, appointments.appointment_time ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return out, nil
}

func (s *AppointmentService) ByPatient(ctx context.Context, actor Actor, patientID uuid.UUID) ([]models.Appointment, error) {
	tx := s.db.WithContext(ctx)

	var p models.Patient
	err := tx.First(&p, "id = ?", patientID).Error
	if isNotFound(err) || (err == nil && !actor.crossClinic() && p.ClinicLicenseID != actor.ClinicLicenseID) {
		return nil, NotFound("Patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if actor.isDoctor() {
		d, err := doctorForUser(tx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if d.ID != p.DoctorID {
			return nil, Forbidden("This patient is not assigned to you")
		}
	}

	var out []models.Appointment
	err = tx.Where("patient_id = ?", patientID).
		Order("appointment_date DESC, appointment_time DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return out, nil
}

// Search matches pet and owner names. At most 20 results.
func (s *AppointmentService) Search(ctx context.Context, actor Actor, term string) ([]models.Appointment, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < 2 {
		return nil, BadRequest("Search term must have at least 2 characters")
	}
	like := "%" + strings.ToLower(term) + "%"

	tx := s.db.WithContext(ctx)
	q, err := s.scope(tx, tx.Model(&models.Appointment{}).Preload("Patient.Owner"), actor)
	if err != nil {
		return nil, err
	}

	var out []models.Appointment
	err = q.Joins("JOIN patients ON patients.id = appointments.patient_id").
		Joins("JOIN owners ON owners.id = patients.owner_id").
		Where("(LOWER(patients.name) LIKE ? OR LOWER(owners.first_name) LIKE ? OR LOWER(owners.last_name) LIKE ?)", like, like, like).
		Order("appointments.appointment_date DESC, appointments.appointment_time DESC").
		Limit(20).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search appointments: %w", err)
	}
	return out, nil
}

// Update edits date, time, type or notes. Moving an appointment re-checks
// the target slot.
func (s *AppointmentService) Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateAppointmentInput) (*models.Appointment, error) {
	if in.empty() {
		return nil, BadRequest("No fields to update")
	}

	updates := map[string]interface{}{}
	if in.Date != nil {
		date, err := s.bookableDate(*in.Date)
		if err != nil {
			return nil, err
		}
		updates["appointment_date"] = date
	}
	if in.Time != nil {
		hhmm, err := bookableSlot(*in.Time)
		if err != nil {
			return nil, err
		}
		updates["appointment_time"] = hhmm
	}
	if in.Type != nil {
		kind, err := parseConsultationType(*in.Type)
		if err != nil {
			return nil, err
		}
		updates["type"] = kind
	}
	if in.Notes != nil {
		updates["notes"] = strings.TrimSpace(*in.Notes)
	}

	var updated *models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(tx, actor, appt); err != nil {
			return err
		}
		if !appt.Status.Editable() {
			return BadRequest(fmt.Sprintf("Cannot modify an appointment in status %s", appt.Status))
		}

		date, hhmm := appt.Date, appt.Time
		if v, ok := updates["appointment_date"].(string); ok {
			date = v
		}
		if v, ok := updates["appointment_time"].(string); ok {
			hhmm = v
		}
		if date != appt.Date || hhmm != appt.Time {
			taken, err := slotTaken(tx, appt.DoctorID, date, hhmm, &appt.ID)
			if err != nil {
				return err
			}
			if taken {
				return errSlotTaken
			}
		}

		before := *appt
		before.Patient = nil
		if err := tx.Model(&models.Appointment{}).Where("id = ?", appt.ID).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return errSlotTaken
			}
			return fmt.Errorf("update appointment: %w", err)
		}
		if err := writeAudit(tx, appointmentEntity, appt.ID, actor, auditUpdate, before, updates); err != nil {
			return err
		}

		updated, err = s.load(tx, appt.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// transition moves an appointment to next. extra columns are written along
// with the status. Re-applying the current status changes nothing.
func (s *AppointmentService) transition(ctx context.Context, actor Actor, id uuid.UUID, next models.AppointmentStatus, extra map[string]interface{}) (*models.Appointment, error) {
	var result *models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(tx, actor, appt); err != nil {
			return err
		}
		if appt.Status == next {
			result = appt
			return nil
		}
		if !appt.Status.CanTransitionTo(next) {
			return Conflict(fmt.Sprintf("Cannot change an appointment from %s to %s", appt.Status, next))
		}

		updates := map[string]interface{}{"status": next}
		if next == models.StatusConfirmed {
			updates["confirmed_by_client"] = true
			updates["confirmed_at"] = s.now().UTC()
		}
		for k, v := range extra {
			updates[k] = v
		}

		if err := tx.Model(&models.Appointment{}).Where("id = ?", appt.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update appointment status: %w", err)
		}
		err = writeAudit(tx, appointmentEntity, appt.ID, actor, auditStatusChange,
			map[string]interface{}{"estado": appt.Status},
			map[string]interface{}{"estado": next})
		if err != nil {
			return err
		}

		result, err = s.load(tx, appt.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", id.String()).
		Str("status", string(result.Status)).
		Msg("appointment status changed")
	return result, nil
}

func (s *AppointmentService) ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (*models.Appointment, error) {
	next, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, next, nil)
}

func (s *AppointmentService) Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*models.Appointment, error) {
	return s.transition(ctx, actor, id, models.StatusConfirmed, nil)
}

func (s *AppointmentService) Start(ctx context.Context, actor Actor, id uuid.UUID) (*models.Appointment, error) {
	return s.transition(ctx, actor, id, models.StatusInProgress, nil)
}

func (s *AppointmentService) Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Appointment, error) {
	var extra map[string]interface{}
	if reason = strings.TrimSpace(reason); reason != "" {
		extra = map[string]interface{}{"cancellation_reason": reason}
	}
	return s.transition(ctx, actor, id, models.StatusCancelled, extra)
}

func (s *AppointmentService) Complete(ctx context.Context, actor Actor, id uuid.UUID, observations string) (*models.Appointment, error) {
	var extra map[string]interface{}
	if observations = strings.TrimSpace(observations); observations != "" {
		extra = map[string]interface{}{"final_observations": observations}
	}
	return s.transition(ctx, actor, id, models.StatusCompleted, extra)
}

// Delete removes an appointment. One referenced by a clinical record is
// cancelled instead and softDeleted is true.
func (s *AppointmentService) Delete(ctx context.Context, actor Actor, id uuid.UUID) (softDeleted bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(tx, actor, appt); err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&models.ClinicalRecord{}).Where("appointment_id = ?", appt.ID).Count(&refs).Error; err != nil {
			return fmt.Errorf("count clinical records: %w", err)
		}

		before := *appt
		before.Patient = nil
		if refs > 0 {
			softDeleted = true
			if !appt.Status.Terminal() {
				err := tx.Model(&models.Appointment{}).Where("id = ?", appt.ID).Updates(map[string]interface{}{
					"status":              models.StatusCancelled,
					"cancellation_reason": "Eliminada con historial clínico",
				}).Error
				if err != nil {
					return fmt.Errorf("cancel appointment: %w", err)
				}
			}
			return writeAudit(tx, appointmentEntity, appt.ID, actor, auditStatusChange, before,
				map[string]interface{}{"estado": models.StatusCancelled})
		}

		if err := tx.Delete(&models.Appointment{}, "id = ?", appt.ID).Error; err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		return writeAudit(tx, appointmentEntity, appt.ID, actor, auditDelete, before, nil)
	})
	return softDeleted, err
}

// slotDoctor resolves the doctor whose agenda is queried. Doctors default to
// themselves; other staff must name one.
func slotDoctor(tx *gorm.DB, actor Actor, doctorID *uuid.UUID) (*models.Doctor, error) {
	if doctorID == nil {
		if !actor.isDoctor() {
			return nil, BadRequest("doctorId is required")
		}
		return doctorForUser(tx, actor.UserID)
	}
	return doctorInClinic(tx, actor, *doctorID)
}

// AvailableSlots lists the free half-hour slots of a doctor on date.
func (s *AppointmentService) AvailableSlots(ctx context.Context, actor Actor, doctorID *uuid.UUID, date string) ([]string, error) {
	day, err := utils.ParseDate(date, s.loc)
	if err != nil {
		return nil, BadRequest(err.Error())
	}

	tx := s.db.WithContext(ctx)
	doctor, err := slotDoctor(tx, actor, doctorID)
	if err != nil {
		return nil, err
	}

	var booked []string
	err = tx.Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ?", doctor.ID, day.Format(utils.DateLayout)).
		Where("status NOT IN ?", models.SlotFreeingStatuses()).
		Pluck("appointment_time", &booked).Error
	if err != nil {
		return nil, fmt.Errorf("load booked slots: %w", err)
	}
	return FreeSlots(booked), nil
}

// CheckAvailability reports whether the doctor is free at date+hhmm.
func (s *AppointmentService) CheckAvailability(ctx context.Context, actor Actor, doctorID *uuid.UUID, date, hhmm string) (bool, error) {
	day, err := utils.ParseDate(date, s.loc)
	if err != nil {
		return false, BadRequest(err.Error())
	}
	slot, err := bookableSlot(hhmm)
	if err != nil {
		return false, err
	}

	tx := s.db.WithContext(ctx)
	doctor, err := slotDoctor(tx, actor, doctorID)
	if err != nil {
		return false, err
	}
	taken, err := slotTaken(tx, doctor.ID, day.Format(utils.DateLayout), slot, nil)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// Stats counts appointments by status for a period ending today.
// period is one of dia, semana, mes (default) or año.
func (s *AppointmentService) Stats(ctx context.Context, actor Actor, period string) (*AppointmentStats, error) {
	if period == "" {
		period = "mes"
	}
	days, ok := statsPeriods[period]
	if !ok {
		return nil, BadRequest("Invalid period")
	}
	today := s.today()
	stats := &AppointmentStats{
		Period: period,
		From:   today.AddDate(0, 0, -days).Format(utils.DateLayout),
		To:     today.Format(utils.DateLayout),
	}

	tx := s.db.WithContext(ctx)
	q, err := s.scope(tx, tx.Model(&models.Appointment{}), actor)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Status models.AppointmentStatus
		Type   models.ConsultationType
		Total  int64
	}
	err = q.Select("appointments.status AS status, appointments.type AS type, COUNT(*) AS total").
		Where("appointments.appointment_date BETWEEN ? AND ?", stats.From, stats.To).
		Group("appointments.status, appointments.type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("appointment stats: %w", err)
	}

	for _, r := range rows {
		stats.Total += r.Total
		if r.Type == models.ConsultationEmergency {
			stats.Emergencies += r.Total
		}
		switch r.Status {
		case models.StatusScheduled:
			stats.Scheduled += r.Total
		case models.StatusConfirmed:
			stats.Confirmed += r.Total
		case models.StatusInProgress:
			stats.InProgress += r.Total
		case models.StatusCompleted:
			stats.Completed += r.Total
		case models.StatusCancelled:
			stats.Cancelled += r.Total
		case models.StatusNoShow:
			stats.NoShow += r.Total
		}
	}
	return stats, nil
}
