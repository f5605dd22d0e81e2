// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"vetclinic-backend/models"
	"vetclinic-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Job names, also accepted by Run.
const (
	JobReminders   = "reminders"
	JobCleanup     = "cleanup"
	JobWeeklyStats = "stats"
)

var jobSchedule = []struct {
	Name string
	Spec string
}{
	{JobReminders, "0 9 * * *"},
	{JobCleanup, "0 2 * * *"},
	{JobWeeklyStats, "0 8 * * 1"},
}

const jobLockTTL = 30 * time.Minute

// Retention of appointments that never happened.
const (
	cancelledRetentionMonths = 6
	noShowRetentionMonths    = 3
)

type ReminderService struct {
	db            *gorm.DB
	notifier      Notifier
	locker        JobLocker
	log           zerolog.Logger
	loc           *time.Location
	now           func() time.Time
	clinicAddress string
}

func NewReminderService(db *gorm.DB, notifier Notifier, locker JobLocker, log zerolog.Logger, loc *time.Location, clinicAddress string) *ReminderService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &ReminderService{
		db:            db,
		notifier:      notifier,
		locker:        locker,
		log:           log.With().Str("component", "scheduler").Logger(),
		loc:           loc,
		now:           time.Now,
		clinicAddress: clinicAddress,
	}
}

type ReminderSummary struct {
	Sent   int `json:"enviados"`
	Failed int `json:"fallidos"`
}

type CleanupSummary struct {
	CancelledMedical  int64 `json:"citas_canceladas"`
	NoShowMedical     int64 `json:"citas_no_asistio"`
	CancelledGrooming int64 `json:"estetica_canceladas"`
	NoShowGrooming    int64 `json:"estetica_no_asistio"`
}

type PeriodStats struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completadas"`
	Cancelled      int64   `json:"canceladas"`
	NoShow         int64   `json:"no_asistio"`
	AttendanceRate float64 `json:"tasa_asistencia"`
}

type WeeklyReport struct {
	From     string      `json:"desde"`
	To       string      `json:"hasta"`
	Medical  PeriodStats `json:"medicas"`
	Grooming PeriodStats `json:"estetica"`
}

// StartScheduler registers every job on a cron running in the clinic's time
// zone. The caller stops it on shutdown.
func (s *ReminderService) StartScheduler(ctx context.Context) (*cron.Cron, error) {
	c := utils.NewScheduler(s.loc, s.log)
	for _, j := range jobSchedule {
		name := j.Name
		if _, err := c.AddFunc(j.Spec, func() {
			if err := s.Run(ctx, name); err != nil {
				s.log.Error().Err(err).Str("job", name).Msg("job failed")
			}
		}); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", name, err)
		}
	}
	c.Start()
	s.log.Info().Str("timezone", s.loc.String()).Msg("reminder scheduler started")
	return c, nil
}

// Run executes one job by name unless another run holds its lock.
func (s *ReminderService) Run(ctx context.Context, name string) error {
	var run func(context.Context) error
	switch name {
	case JobReminders:
		run = func(ctx context.Context) error { _, err := s.SendDailyReminders(ctx); return err }
	case JobCleanup:
		run = func(ctx context.Context) error { _, err := s.CleanupOldAppointments(ctx); return err }
	case JobWeeklyStats:
		run = func(ctx context.Context) error { _, err := s.WeeklyStats(ctx); return err }
	default:
		return fmt.Errorf("unknown job %q", name)
	}

	release, ok, err := s.locker.Acquire(ctx, name, jobLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Warn().Str("job", name).Msg("job already running, skipped")
		return nil
	}
	defer release()

	start := time.Now()
	err = run(ctx)
	s.log.Info().Str("job", name).Dur("took", time.Since(start)).Err(err).Msg("job finished")
	return err
}

type reminderCandidate struct {
	ID              uuid.UUID
	ClinicLicenseID uuid.UUID
	ApptDate        string
	ApptTime        string
	Service         string
	PetName         string
	OwnerFirstName  string
	OwnerLastName   string
	OwnerEmail      string
	OwnerPhone      string
	StaffName       string
}

func (c reminderCandidate) ownerName() string {
	return strings.TrimSpace(c.OwnerFirstName + " " + c.OwnerLastName)
}

func (s *ReminderService) medicalCandidates(tx *gorm.DB, date string) ([]reminderCandidate, error) {
	var rows []reminderCandidate
	err := tx.Table("appointments AS a").
		Select(`a.id AS id, p.clinic_license_id AS clinic_license_id,
			a.appointment_date AS appt_date, a.appointment_time AS appt_time, a.type AS service,
			p.name AS pet_name, o.first_name AS owner_first_name, COALESCE(o.last_name, '') AS owner_last_name,
			o.email AS owner_email, o.phone AS owner_phone, COALESCE(u.name, '') AS staff_name`).
		Joins("JOIN patients p ON p.id = a.patient_id").
		Joins("JOIN owners o ON o.id = p.owner_id").
		Joins("JOIN doctors d ON d.id = a.doctor_id").
		Joins("JOIN users u ON u.id = d.user_id").
		Where("a.appointment_date = ?", date).
		Where("a.status IN ?", models.RemindableStatuses()).
		Where("a.reminder_sent = ?", false).
		Where("o.email IS NOT NULL AND o.email <> ''").
		Order("a.appointment_time").
		Scan(&rows).Error
	return rows, err
}

func (s *ReminderService) groomingCandidates(tx *gorm.DB, date string) ([]reminderCandidate, error) {
	var rows []reminderCandidate
	err := tx.Table("grooming_appointments AS g").
		Select(`g.id AS id, g.clinic_license_id AS clinic_license_id,
			g.appointment_date AS appt_date, g.appointment_time AS appt_time, g.service AS service,
			p.name AS pet_name, o.first_name AS owner_first_name, COALESCE(o.last_name, '') AS owner_last_name,
			o.email AS owner_email, o.phone AS owner_phone, COALESCE(u.name, '') AS staff_name`).
		Joins("JOIN patients p ON p.id = g.patient_id").
		Joins("JOIN owners o ON o.id = p.owner_id").
		Joins("LEFT JOIN users u ON u.id = g.stylist_id").
		Where("g.appointment_date = ?", date).
		Where("g.status IN ?", models.RemindableStatuses()).
		Where("g.reminder_sent = ?", false).
		Where("o.email IS NOT NULL AND o.email <> ''").
		Order("g.appointment_time").
		Scan(&rows).Error
	return rows, err
}

// SendDailyReminders notifies owners of tomorrow's appointments. A failed
// send is logged and left unflagged so the next run retries it; the rest of
// the batch continues.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (ReminderSummary, error) {
	var summary ReminderSummary
	tomorrow := utils.BeginningOfDay(s.now().In(s.loc)).AddDate(0, 0, 1).Format(utils.DateLayout)
	tx := s.db.WithContext(ctx)

	s.log.Info().Str("date", tomorrow).Msg("starting daily reminder processing")

	batches := []struct {
		kind  models.AppointmentKind
		table string
		load  func(*gorm.DB, string) ([]reminderCandidate, error)
	}{
		{models.KindMedical, "appointments", s.medicalCandidates},
		{models.KindGrooming, "grooming_appointments", s.groomingCandidates},
	}

	templates := newTemplateCache(tx)
	for _, b := range batches {
		rows, err := b.load(tx, tomorrow)
		if err != nil {
			return summary, fmt.Errorf("load %s reminders: %w", b.kind, err)
		}
		for _, row := range rows {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			tmpl, err := templates.get(row.ClinicLicenseID, b.kind)
			if err == nil {
				err = s.sendOne(ctx, tx, b.kind, b.table, row, tmpl)
			}
			if err != nil {
				summary.Failed++
				s.log.Error().Err(err).
					Str("kind", string(b.kind)).
					Str("appointment_id", row.ID.String()).
					Msg("failed to send reminder")
				continue
			}
			summary.Sent++
		}
	}

	s.log.Info().Int("sent", summary.Sent).Int("failed", summary.Failed).Msg("daily reminder processing completed")
	return summary, nil
}

func (s *ReminderService) sendOne(ctx context.Context, tx *gorm.DB, kind models.AppointmentKind, table string, row reminderCandidate, tmpl models.ReminderTemplate) error {
	subject, body := renderReminder(tmpl, row, s.clinicAddress)
	msg := Message{Email: row.OwnerEmail, Phone: row.OwnerPhone, Subject: subject, Body: body}

	channel := channelOf(s.notifier, msg)
	recipient := row.OwnerEmail
	if channel == "sms" || channel == "whatsapp" {
		recipient = row.OwnerPhone
	}

	sendErr := s.notifier.Send(ctx, msg)
	now := s.now().UTC()

	entry := models.ReminderLog{
		ClinicLicenseID: row.ClinicLicenseID,
		AppointmentID:   row.ID,
		Kind:            kind,
		Recipient:       recipient,
		Message:         body,
		Status:          "sent",
		Channel:         channel,
		SentAt:          now,
	}
	if tmpl.ID != uuid.Nil {
		id := tmpl.ID
		entry.TemplateID = &id
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = sendErr.Error()
	}
	if err := tx.Create(&entry).Error; err != nil {
		s.log.Error().Err(err).Str("appointment_id", row.ID.String()).Msg("failed to log reminder")
	}
	if sendErr != nil {
		return sendErr
	}

	err := tx.Table(table).
		Where("id = ? AND reminder_sent = ?", row.ID, false).
		Updates(map[string]interface{}{"reminder_sent": true, "reminder_sent_at": now}).Error
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

// CleanupOldAppointments deletes cancelled appointments older than six months
// and no-shows older than three. Medical appointments referenced by a
// clinical record are kept.
func (s *ReminderService) CleanupOldAppointments(ctx context.Context) (CleanupSummary, error) {
	var summary CleanupSummary
	today := utils.BeginningOfDay(s.now().In(s.loc))
	cancelledBefore := today.AddDate(0, -cancelledRetentionMonths, 0).Format(utils.DateLayout)
	noShowBefore := today.AddDate(0, -noShowRetentionMonths, 0).Format(utils.DateLayout)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referenced := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.ClinicalRecord{}).
			Select("appointment_id").
			Where("appointment_id IS NOT NULL")

		purge := []struct {
			model  interface{}
			status models.AppointmentStatus
			before string
			count  *int64
		}{
			{&models.Appointment{}, models.StatusCancelled, cancelledBefore, &summary.CancelledMedical},
			{&models.Appointment{}, models.StatusNoShow, noShowBefore, &summary.NoShowMedical},
			{&models.GroomingAppointment{}, models.StatusCancelled, cancelledBefore, &summary.CancelledGrooming},
			{&models.GroomingAppointment{}, models.StatusNoShow, noShowBefore, &summary.NoShowGrooming},
		}
		for _, p := range purge {
			q := tx.Where("status = ? AND appointment_date < ?", p.status, p.before)
			if _, medical := p.model.(*models.Appointment); medical {
				q = q.Where("id NOT IN (?)", referenced)
			}
			res := q.Delete(p.model)
			if res.Error != nil {
				return fmt.Errorf("purge %s appointments: %w", p.status, res.Error)
			}
			*p.count = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	s.log.Info().
		Int64("cancelled_medical", summary.CancelledMedical).
		Int64("no_show_medical", summary.NoShowMedical).
		Int64("cancelled_grooming", summary.CancelledGrooming).
		Int64("no_show_grooming", summary.NoShowGrooming).
		Msg("old appointments cleaned up")
	return summary, nil
}

// WeeklyStats aggregates the last seven days and logs the result.
func (s *ReminderService) WeeklyStats(ctx context.Context) (WeeklyReport, error) {
	today := utils.BeginningOfDay(s.now().In(s.loc))
	report := WeeklyReport{
		From: today.AddDate(0, 0, -7).Format(utils.DateLayout),
		To:   today.Format(utils.DateLayout),
	}

	tx := s.db.WithContext(ctx)
	var err error
	if report.Medical, err = periodStats(tx, &models.Appointment{}, report.From, report.To); err != nil {
		return report, err
	}
	if report.Grooming, err = periodStats(tx, &models.GroomingAppointment{}, report.From, report.To); err != nil {
		return report, err
	}

	for kind, st := range map[string]PeriodStats{"medical": report.Medical, "grooming": report.Grooming} {
		s.log.Info().
			Str("kind", kind).
			Str("from", report.From).
			Str("to", report.To).
			Int64("total", st.Total).
			Int64("completed", st.Completed).
			Int64("cancelled", st.Cancelled).
			Int64("no_show", st.NoShow).
			Float64("attendance_rate", st.AttendanceRate).
			Msg("weekly appointment stats")
	}
	return report, nil
}

func periodStats(tx *gorm.DB, model interface{}, from, to string) (PeriodStats, error) {
	var st PeriodStats
	err := tx.Model(model).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS cancelled,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS no_show`,
			models.StatusCompleted, models.StatusCancelled, models.StatusNoShow).
		Where("appointment_date BETWEEN ? AND ?", from, to).
		Scan(&st).Error
	if err != nil {
		return st, fmt.Errorf("weekly stats: %w", err)
	}
	if st.Total > 0 {
		st.AttendanceRate = math.Round(float64(st.Completed)/float64(st.Total)*1000) / 10
	}
	return st, nil
}
