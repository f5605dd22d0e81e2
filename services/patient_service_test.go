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

func newPatientService(db *gorm.DB) *PatientService {
	svc := NewPatientService(db, zerolog.Nop(), time.UTC)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestRegisterPatient_ReusesOwnerByPhone(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newPatientService(db)
	ctx := context.Background()

	in := RegisterPatientInput{
		OwnerFirstName: "María",
		Phone:          "(55) 4444-3333",
		Name:           "Michi",
		Species:        "gato",
	}
	first, err := svc.Register(ctx, f.doctorActor(), in)
	require.NoError(t, err)
	assert.Equal(t, f.doctor.ID, first.DoctorID)
	assert.Equal(t, models.PatientActive, first.Status)
	require.NotNil(t, first.Owner)
	assert.Equal(t, "5544443333", first.Owner.Phone)
	assert.Empty(t, first.Owner.Email)

	in.Name, in.Email = "Pelusa", "maria@example.com"
	second, err := svc.Register(ctx, f.doctorActor(), in)
	require.NoError(t, err)
	assert.Equal(t, first.OwnerID, second.OwnerID)
	assert.Equal(t, "maria@example.com", second.Owner.Email)

	var owners int64
	require.NoError(t, db.Model(&models.Owner{}).Where("phone = ?", "5544443333").Count(&owners).Error)
	assert.EqualValues(t, 1, owners)
}

func TestRegisterPatient_InternationalPhoneKeepsCountryCode(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newPatientService(db)
	ctx := context.Background()

	p, err := svc.Register(ctx, f.doctorActor(), RegisterPatientInput{
		OwnerFirstName: "Lucía",
		Phone:          "+52 55 9876 5432",
		Name:           "Toby",
		Species:        "perro",
	})
	require.NoError(t, err)
	require.NotNil(t, p.Owner)
	assert.Equal(t, "+525598765432", p.Owner.Phone)
	assert.Equal(t, "whatsapp", channelFor(p.Owner.Phone))

	local, err := svc.Register(ctx, f.doctorActor(), RegisterPatientInput{
		OwnerFirstName: "Lucía",
		Phone:          "55 9876 5432",
		Name:           "Kira",
		Species:        "perro",
	})
	require.NoError(t, err)
	assert.Equal(t, "sms", channelFor(local.Owner.Phone))

	_, err = svc.Register(ctx, f.doctorActor(), RegisterPatientInput{
		OwnerFirstName: "Lucía",
		Phone:          "+0 55 9876 5432",
		Name:           "Kira",
		Species:        "perro",
	})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestRegisterPatient_Validation(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newPatientService(db)
	ctx := context.Background()

	base := RegisterPatientInput{OwnerFirstName: "María", Phone: "5544443333", Name: "Michi", Species: "gato"}

	short := base
	short.Phone = "12345"
	_, err := svc.Register(ctx, f.doctorActor(), short)
	requireStatus(t, err, http.StatusBadRequest)

	badEmail := base
	badEmail.Email = "maria"
	_, err = svc.Register(ctx, f.doctorActor(), badEmail)
	requireStatus(t, err, http.StatusBadRequest)

	badBirth := base
	badBirth.BirthDate = "ayer"
	_, err = svc.Register(ctx, f.doctorActor(), badBirth)
	requireStatus(t, err, http.StatusBadRequest)

	// Staff must say which doctor takes the patient.
	_, err = svc.Register(ctx, f.staffActor(models.RoleRecepcion), base)
	requireStatus(t, err, http.StatusBadRequest)

	withDoctor := base
	withDoctor.DoctorID = &f.doctor.ID
	p, err := svc.Register(ctx, f.staffActor(models.RoleRecepcion), withDoctor)
	require.NoError(t, err)
	assert.Equal(t, f.clinic.ID, p.ClinicLicenseID)
}

func TestDeletePatient(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newPatientService(db)
	ctx := context.Background()
	actor := f.doctorActor()

	_, plain := seedPatient(t, db, f.clinic.ID, f.doctor.ID, "5511112222", "")
	seedAppointment(t, db, f.doctor, plain, tomorrow, "09:00", models.StatusScheduled)

	soft, err := svc.Delete(ctx, actor, plain.ID)
	require.NoError(t, err)
	assert.False(t, soft)

	var n int64
	require.NoError(t, db.Model(&models.Appointment{}).Where("patient_id = ?", plain.ID).Count(&n).Error)
	assert.Zero(t, n)
	_, err = svc.Get(ctx, actor, plain.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.AddClinicalRecord(ctx, actor, f.patient.ID, ClinicalRecordInput{Reason: "Vacuna anual"})
	require.NoError(t, err)

	soft, err = svc.Delete(ctx, actor, f.patient.ID)
	require.NoError(t, err)
	assert.True(t, soft)

	p, err := svc.Get(ctx, actor, f.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PatientInactive, p.Status)

	active, err := svc.List(ctx, actor, PatientFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)
	inactive, err := svc.List(ctx, actor, PatientFilter{Status: "inactivo"})
	require.NoError(t, err)
	assert.Len(t, inactive, 1)
}

func TestClinicalRecords(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newPatientService(db)
	ctx := context.Background()
	actor := f.doctorActor()

	appt := seedAppointment(t, db, f.doctor, f.patient, "2025-03-10", "09:00", models.StatusCompleted)

	rec, err := svc.AddClinicalRecord(ctx, actor, f.patient.ID, ClinicalRecordInput{
		AppointmentID: &appt.ID,
		Reason:        "Tos",
		Diagnosis:     "Traqueítis",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", rec.Date)
	assert.Equal(t, f.doctor.ID, rec.DoctorID)

	_, err = svc.AddClinicalRecord(ctx, actor, f.patient.ID, ClinicalRecordInput{Reason: "Control", Date: "2025-02-01"})
	require.NoError(t, err)

	missing := uuid.New()
	_, err = svc.AddClinicalRecord(ctx, actor, f.patient.ID, ClinicalRecordInput{AppointmentID: &missing, Reason: "x"})
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.AddClinicalRecord(ctx, f.staffActor(models.RoleRecepcion), f.patient.ID, ClinicalRecordInput{Reason: "x"})
	requireStatus(t, err, http.StatusForbidden)

	history, err := svc.ListClinicalRecords(ctx, f.staffActor(models.RoleRecepcion), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2025-03-10", history[0].Date)
}

func TestListPatients_Search(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newPatientService(db)
	ctx := context.Background()

	colleague, colleagueDoctor := seedDoctor(t, db, f.clinic.ID, "colega@centro.mx")
	seedPatient(t, db, f.clinic.ID, colleagueDoctor.ID, "5533334444", "")

	mine, err := svc.List(ctx, f.doctorActor(), PatientFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	clinic, err := svc.List(ctx, f.staffActor(models.RoleRecepcion), PatientFilter{})
	require.NoError(t, err)
	assert.Len(t, clinic, 2)

	byPhone, err := svc.List(ctx, f.staffActor(models.RoleRecepcion), PatientFilter{Query: "33334"})
	require.NoError(t, err)
	assert.Len(t, byPhone, 1)

	_, err = svc.Get(ctx, ActorFromUser(&colleague), f.patient.ID)
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.List(ctx, f.doctorActor(), PatientFilter{Status: "perdido"})
	requireStatus(t, err, http.StatusBadRequest)
}
