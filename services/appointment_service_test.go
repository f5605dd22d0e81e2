package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"vetclinic-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAppointmentService(db *gorm.DB) *AppointmentService {
	svc := NewAppointmentService(db, zerolog.Nop(), time.UTC)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func bookInput(f clinicFixture, date, hhmm string) CreateAppointmentInput {
	return CreateAppointmentInput{PatientID: f.patient.ID, Date: date, Time: hhmm}
}

func TestCreateAppointment_BooksScheduled(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)

	appt, err := svc.Create(context.Background(), f.doctorActor(), bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusScheduled, appt.Status)
	assert.Equal(t, models.ConsultationFollowUp, appt.Type)
	assert.Equal(t, models.DefaultAppointmentMinutes, appt.DurationMinutes)
	assert.Equal(t, f.doctor.ID, appt.DoctorID)
	assert.Equal(t, tomorrow, appt.Date)
	assert.Equal(t, "10:00", appt.Time)
	require.NotNil(t, appt.Patient)
	require.NotNil(t, appt.Patient.Owner)
	assert.Equal(t, "Carlos", appt.Patient.Owner.FirstName)

	var audits int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("record_id = ?", appt.ID).Count(&audits).Error)
	assert.EqualValues(t, 1, audits)
}

func TestCreateAppointment_RejectsDoubleBooking(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()

	first, err := svc.Create(ctx, f.doctorActor(), bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, f.doctorActor(), bookInput(f, tomorrow, "10:00:00"))
	requireStatus(t, err, http.StatusConflict)

	_, other := seedPatient(t, db, f.clinic.ID, f.doctor.ID, "5599999999", "")
	_, err = svc.Create(ctx, f.doctorActor(), CreateAppointmentInput{PatientID: other.ID, Date: tomorrow, Time: "10:00"})
	requireStatus(t, err, http.StatusConflict)

	_, err = svc.Cancel(ctx, f.doctorActor(), first.ID, "cliente no puede")
	require.NoError(t, err)

	again, err := svc.Create(ctx, f.doctorActor(), bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestCreateAppointment_UniqueIndexBacksTheCheck(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)

	a := models.Appointment{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Date: tomorrow, Time: "11:00", Type: models.ConsultationFollowUp}
	require.NoError(t, db.Create(&a).Error)

	b := models.Appointment{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Date: tomorrow, Time: "11:00", Type: models.ConsultationFollowUp}
	err := db.Create(&b).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	c := models.Appointment{PatientID: f.patient.ID, DoctorID: f.doctor.ID, Date: tomorrow, Time: "11:00",
		Type: models.ConsultationFollowUp, Status: models.StatusCancelled}
	assert.NoError(t, db.Create(&c).Error)
}

func TestCreateAppointment_Validation(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)

	tests := []struct {
		name string
		in   CreateAppointmentInput
	}{
		{"past date", bookInput(f, "2025-03-09", "10:00")},
		{"bad date format", bookInput(f, "11/03/2025", "10:00")},
		{"off grid time", bookInput(f, tomorrow, "10:15")},
		{"after closing", bookInput(f, tomorrow, "18:00")},
		{"before opening", bookInput(f, tomorrow, "07:30")},
		{"bad time", bookInput(f, tomorrow, "diez")},
		{"unknown type", CreateAppointmentInput{PatientID: f.patient.ID, Date: tomorrow, Time: "10:00", Type: "cirugia"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), f.doctorActor(), tt.in)
			requireStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestCreateAppointment_TodayIsBookable(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)

	appt, err := svc.Create(context.Background(), f.doctorActor(), bookInput(f, "2025-03-10", "17:30"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", appt.Date)
}

func TestCreateAppointment_Ownership(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()

	otherUser, otherDoctor := seedDoctor(t, db, f.clinic.ID, "otro@centro.mx")

	// A doctor can't book a patient assigned to a colleague.
	_, err := svc.Create(ctx, ActorFromUser(&otherUser), bookInput(f, tomorrow, "09:00"))
	requireStatus(t, err, http.StatusForbidden)

	// Reception books with the patient's doctor by default.
	appt, err := svc.Create(ctx, f.staffActor(models.RoleRecepcion), bookInput(f, tomorrow, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, f.doctor.ID, appt.DoctorID)

	// Reception can't move the patient to another doctor, an admin can.
	in := bookInput(f, tomorrow, "09:30")
	in.DoctorID = &otherDoctor.ID
	_, err = svc.Create(ctx, f.staffActor(models.RoleRecepcion), in)
	requireStatus(t, err, http.StatusForbidden)

	appt, err = svc.Create(ctx, f.staffActor(models.RoleAdmin), in)
	require.NoError(t, err)
	assert.Equal(t, otherDoctor.ID, appt.DoctorID)
}

func TestCreateAppointment_OtherClinicIsHidden(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)

	other := seedClinic(t, db, "Clínica Norte")
	outsider := Actor{UserID: uuid.New(), Role: models.RoleAdmin, ClinicLicenseID: other.ID}

	_, err := svc.Create(context.Background(), outsider, bookInput(f, tomorrow, "10:00"))
	requireStatus(t, err, http.StatusNotFound)
}

func TestCreateAppointment_InactivePatient(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)

	require.NoError(t, db.Model(&f.patient).Update("status", models.PatientInactive).Error)

	_, err := svc.Create(context.Background(), f.doctorActor(), bookInput(f, tomorrow, "10:00"))
	requireStatus(t, err, http.StatusNotFound)
}

func TestConfirmAppointment_StampsClientConfirmation(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()

	appt, err := svc.Create(ctx, f.doctorActor(), bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)
	assert.False(t, appt.ConfirmedByClient)
	assert.Nil(t, appt.ConfirmedAt)

	confirmed, err := svc.Confirm(ctx, f.doctorActor(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.ConfirmedByClient)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.True(t, confirmed.ConfirmedAt.Equal(fixedNow))

	// Confirming again is a no-op.
	again, err := svc.Confirm(ctx, f.doctorActor(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, again.Status)
}

func TestAppointmentStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()
	actor := f.doctorActor()

	appt, err := svc.Create(ctx, actor, bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)

	started, err := svc.Start(ctx, actor, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)

	_, err = svc.Cancel(ctx, actor, appt.ID, "")
	requireStatus(t, err, http.StatusConflict)

	done, err := svc.Complete(ctx, actor, appt.ID, "  Vacuna aplicada ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, "Vacuna aplicada", done.FinalObservations)

	for _, next := range []string{"programada", "confirmada", "cancelada", "no_asistio"} {
		_, err = svc.ChangeStatus(ctx, actor, appt.ID, next)
		requireStatus(t, err, http.StatusConflict)
	}

	_, err = svc.ChangeStatus(ctx, actor, appt.ID, "perdida")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCancelAppointment_KeepsReason(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()

	appt, err := svc.Create(ctx, f.doctorActor(), bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, f.doctorActor(), appt.ID, "Viaje")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Viaje", cancelled.CancellationReason)

	_, err = svc.Start(ctx, f.doctorActor(), appt.ID)
	requireStatus(t, err, http.StatusConflict)
}

func TestUpdateAppointment(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()
	actor := f.doctorActor()

	a, err := svc.Create(ctx, actor, bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, actor, bookInput(f, tomorrow, "11:00"))
	require.NoError(t, err)

	taken := "10:00"
	_, err = svc.Update(ctx, actor, b.ID, UpdateAppointmentInput{Time: &taken})
	requireStatus(t, err, http.StatusConflict)

	free, kind, notes := "12:30", "urgencia", " cojea "
	moved, err := svc.Update(ctx, actor, b.ID, UpdateAppointmentInput{Time: &free, Type: &kind, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "12:30", moved.Time)
	assert.Equal(t, models.ConsultationEmergency, moved.Type)
	assert.Equal(t, "cojea", moved.Notes)

	// Re-saving the same slot is not a conflict with itself.
	same := "10:00"
	_, err = svc.Update(ctx, actor, a.ID, UpdateAppointmentInput{Time: &same})
	require.NoError(t, err)

	_, err = svc.Update(ctx, actor, a.ID, UpdateAppointmentInput{})
	requireStatus(t, err, http.StatusBadRequest)

	past := "2025-03-01"
	_, err = svc.Update(ctx, actor, a.ID, UpdateAppointmentInput{Date: &past})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Complete(ctx, actor, a.ID, "")
	require.NoError(t, err)
	later := "15:00"
	_, err = svc.Update(ctx, actor, a.ID, UpdateAppointmentInput{Time: &later})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestAppointmentAccess(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()

	appt, err := svc.Create(ctx, f.doctorActor(), bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)

	colleague, _ := seedDoctor(t, db, f.clinic.ID, "colega@centro.mx")
	_, err = svc.Get(ctx, ActorFromUser(&colleague), appt.ID)
	requireStatus(t, err, http.StatusForbidden)

	got, err := svc.Get(ctx, f.staffActor(models.RoleRecepcion), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, got.ID)

	other := seedClinic(t, db, "Clínica Norte")
	_, err = svc.Get(ctx, Actor{UserID: uuid.New(), Role: models.RoleAdmin, ClinicLicenseID: other.ID}, appt.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.Get(ctx, Actor{UserID: uuid.New(), Role: models.RoleSuperadmin, ClinicLicenseID: other.ID}, appt.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, f.doctorActor(), uuid.New())
	requireStatus(t, err, http.StatusNotFound)
}

func TestDeleteAppointment(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()
	actor := f.doctorActor()

	plain, err := svc.Create(ctx, actor, bookInput(f, tomorrow, "10:00"))
	require.NoError(t, err)
	soft, err := svc.Delete(ctx, actor, plain.ID)
	require.NoError(t, err)
	assert.False(t, soft)

	var n int64
	require.NoError(t, db.Model(&models.Appointment{}).Where("id = ?", plain.ID).Count(&n).Error)
	assert.Zero(t, n)

	withHistory, err := svc.Create(ctx, actor, bookInput(f, tomorrow, "11:00"))
	require.NoError(t, err)
	rec := models.ClinicalRecord{PatientID: f.patient.ID, DoctorID: f.doctor.ID, AppointmentID: &withHistory.ID, Date: tomorrow, Reason: "Revisión"}
	require.NoError(t, db.Create(&rec).Error)

	soft, err = svc.Delete(ctx, actor, withHistory.ID)
	require.NoError(t, err)
	assert.True(t, soft)

	var kept models.Appointment
	require.NoError(t, db.First(&kept, "id = ?", withHistory.ID).Error)
	assert.Equal(t, models.StatusCancelled, kept.Status)
}

func TestAvailableSlots(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()
	actor := f.doctorActor()

	_, err := svc.Create(ctx, actor, bookInput(f, tomorrow, "08:00"))
	require.NoError(t, err)
	cancelled, err := svc.Create(ctx, actor, bookInput(f, tomorrow, "09:30"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, bookInput(f, tomorrow, "17:30"))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, actor, cancelled.ID, "")
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, actor, nil, tomorrow)
	require.NoError(t, err)
	assert.Len(t, slots, len(DaySlots())-2)
	assert.NotContains(t, slots, "08:00")
	assert.NotContains(t, slots, "17:30")
	assert.Contains(t, slots, "09:30")
	assert.Equal(t, "08:30", slots[0])

	free, err := svc.CheckAvailability(ctx, actor, nil, tomorrow, "08:00")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = svc.CheckAvailability(ctx, actor, &f.doctor.ID, tomorrow, "09:30")
	require.NoError(t, err)
	assert.True(t, free)

	_, err = svc.AvailableSlots(ctx, f.staffActor(models.RoleRecepcion), nil, tomorrow)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestListAndSearchAppointments(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()
	actor := f.doctorActor()

	_, err := svc.Create(ctx, actor, bookInput(f, tomorrow, "12:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, CreateAppointmentInput{PatientID: f.patient.ID, Date: "2025-03-12", Time: "09:00", Type: "vacunacion"})
	require.NoError(t, err)

	all, err := svc.List(ctx, actor, AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, tomorrow, all[0].Date)

	vaccines, err := svc.List(ctx, actor, AppointmentFilter{Type: "vacunacion"})
	require.NoError(t, err)
	assert.Len(t, vaccines, 1)

	ranged, err := svc.ListRange(ctx, actor, "2025-03-12", "2025-03-31")
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	_, err = svc.ListRange(ctx, actor, "2025-03-12", "2025-03-01")
	requireStatus(t, err, http.StatusBadRequest)

	upcoming, err := svc.Upcoming(ctx, actor, 1)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, tomorrow, upcoming[0].Date)

	found, err := svc.Search(ctx, actor, "firu")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.Search(ctx, actor, "f")
	requireStatus(t, err, http.StatusBadRequest)

	byPatient, err := svc.ByPatient(ctx, actor, f.patient.ID)
	require.NoError(t, err)
	assert.Len(t, byPatient, 2)

	// Other clinics see nothing.
	other := seedClinic(t, db, "Clínica Norte")
	none, err := svc.List(ctx, Actor{UserID: uuid.New(), Role: models.RoleAdmin, ClinicLicenseID: other.ID}, AppointmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppointmentStats(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newAppointmentService(db)
	ctx := context.Background()

	rows := []models.Appointment{
		{Date: "2025-03-10", Time: "08:00", Type: models.ConsultationEmergency, Status: models.StatusCompleted},
		{Date: "2025-03-09", Time: "08:00", Type: models.ConsultationFollowUp, Status: models.StatusCancelled},
		{Date: "2025-03-05", Time: "08:00", Type: models.ConsultationFollowUp, Status: models.StatusNoShow},
		{Date: "2025-01-01", Time: "08:00", Type: models.ConsultationFollowUp, Status: models.StatusCompleted},
	}
	for i := range rows {
		rows[i].PatientID, rows[i].DoctorID = f.patient.ID, f.doctor.ID
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	week, err := svc.Stats(ctx, f.doctorActor(), "semana")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", week.From)
	assert.Equal(t, "2025-03-10", week.To)
	assert.EqualValues(t, 3, week.Total)
	assert.EqualValues(t, 1, week.Completed)
	assert.EqualValues(t, 1, week.Cancelled)
	assert.EqualValues(t, 1, week.NoShow)
	assert.EqualValues(t, 1, week.Emergencies)

	year, err := svc.Stats(ctx, f.staffActor(models.RoleAdmin), "año")
	require.NoError(t, err)
	assert.EqualValues(t, 4, year.Total)

	_, err = svc.Stats(ctx, f.doctorActor(), "siglo")
	requireStatus(t, err, http.StatusBadRequest)
}
