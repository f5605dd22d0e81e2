package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"vetclinic-backend/models"
	"vetclinic-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fixedNow is a Monday noon. Tomorrow is 2025-03-11.
var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

const tomorrow = "2025-03-11"

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

type clinicFixture struct {
	clinic     models.ClinicLicense
	doctorUser models.User
	doctor     models.Doctor
	owner      models.Owner
	patient    models.Patient
}

func seedClinic(t *testing.T, db *gorm.DB, name string) models.ClinicLicense {
	t.Helper()
	c := models.ClinicLicense{ClinicName: name, Status: models.LicenseActive, MaxDoctors: 5}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedUser(t *testing.T, db *gorm.DB, clinicID uuid.UUID, role models.Role, email string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("secreto123")
	require.NoError(t, err)
	u := models.User{
		Email:           email,
		Password:        hash,
		Name:            "Ana",
		LastName:        "López",
		Role:            role,
		Status:          models.AccountActive,
		ClinicLicenseID: clinicID,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedDoctor(t *testing.T, db *gorm.DB, clinicID uuid.UUID, email string) (models.User, models.Doctor) {
	t.Helper()
	u := seedUser(t, db, clinicID, models.RoleDoctor, email)
	d := models.Doctor{UserID: u.ID, Specialty: "Medicina general"}
	require.NoError(t, db.Create(&d).Error)
	return u, d
}

func seedPatient(t *testing.T, db *gorm.DB, clinicID, doctorID uuid.UUID, phone, email string) (models.Owner, models.Patient) {
	t.Helper()
	o := models.Owner{ClinicLicenseID: clinicID, FirstName: "Carlos", LastName: "Ruiz", Email: email, Phone: phone}
	require.NoError(t, db.Create(&o).Error)
	p := models.Patient{ClinicLicenseID: clinicID, OwnerID: o.ID, DoctorID: doctorID, Name: "Firulais", Species: "perro"}
	require.NoError(t, db.Create(&p).Error)
	return o, p
}

func seedFixture(t *testing.T, db *gorm.DB) clinicFixture {
	t.Helper()
	var f clinicFixture
	f.clinic = seedClinic(t, db, "Clínica Centro")
	f.doctorUser, f.doctor = seedDoctor(t, db, f.clinic.ID, "doctor@centro.mx")
	f.owner, f.patient = seedPatient(t, db, f.clinic.ID, f.doctor.ID, "5512345678", "carlos@example.com")
	return f
}

func (f clinicFixture) doctorActor() Actor {
	return ActorFromUser(&f.doctorUser)
}

func (f clinicFixture) staffActor(role models.Role) Actor {
	return Actor{UserID: uuid.New(), Role: role, ClinicLicenseID: f.clinic.ID}
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var appErr *AppError
	require.True(t, errors.As(err, &appErr), "expected *AppError, got %T: %v", err, err)
	require.Equal(t, status, appErr.Status, appErr.Msg)
}
