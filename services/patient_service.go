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

const (
	patientEntity        = "pacientes"
	clinicalRecordEntity = "historial_clinico"
)

type PatientService struct {
	db  *gorm.DB
	log zerolog.Logger
	loc *time.Location
	now func() time.Time
}

func NewPatientService(db *gorm.DB, log zerolog.Logger, loc *time.Location) *PatientService {
	return &PatientService{
		db:  db,
		log: log.With().Str("component", "patients").Logger(),
		loc: loc,
		now: time.Now,
	}
}

// RegisterPatientInput carries the owner and the pet. The owner is matched by
// phone within the clinic and created when missing.
type RegisterPatientInput struct {
	OwnerFirstName string `json:"nombre_propietario" binding:"required"`
	OwnerLastName  string `json:"apellidos_propietario"`
	Email          string `json:"email"`
	Phone          string `json:"telefono" binding:"required"`
	Street         string `json:"calle"`
	ExtNumber      string `json:"numero_ext"`
	IntNumber      string `json:"numero_int"`
	PostalCode     string `json:"codigo_postal"`
	Neighborhood   string `json:"colonia"`
	References     string `json:"referencias"`

	Name      string     `json:"nombre_mascota" binding:"required"`
	Species   string     `json:"especie" binding:"required"`
	Breed     string     `json:"raza"`
	Sex       string     `json:"sexo"`
	BirthDate string     `json:"fecha_nacimiento"`
	WeightKg  float64    `json:"peso"`
	DoctorID  *uuid.UUID `json:"id_doctor"`
}

type PatientFilter struct {
	Status string `form:"estado"`
	Query  string `form:"q"`
}

type ClinicalRecordInput struct {
	AppointmentID *uuid.UUID `json:"id_cita"`
	Date          string     `json:"fecha"`
	Reason        string     `json:"motivo" binding:"required"`
	Diagnosis     string     `json:"diagnostico"`
	Treatment     string     `json:"tratamiento"`
	Notes         string     `json:"notas"`
}

// accessiblePatient loads a patient of the actor's clinic. Doctors only reach
// the patients assigned to them.
func accessiblePatient(tx *gorm.DB, actor Actor, id uuid.UUID) (*models.Patient, error) {
	var p models.Patient
	err := tx.Preload("Owner").First(&p, "id = ?", id).Error
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
	return &p, nil
}

func (s *PatientService) Register(ctx context.Context, actor Actor, in RegisterPatientInput) (*models.Patient, error) {
	phone, ok := utils.NormalizePhone(in.Phone)
	if !ok {
		return nil, BadRequest(fmt.Sprintf("Phone must have at least %d digits, international numbers as +<country><number>", utils.MinPhoneDigits))
	}
	email := normalizeEmail(in.Email)
	if email != "" && !utils.ValidateEmail(email) {
		return nil, BadRequest("Invalid email")
	}
	if in.BirthDate != "" {
		if _, err := utils.ParseDate(in.BirthDate, s.loc); err != nil {
			return nil, BadRequest(err.Error())
		}
	}
	if in.WeightKg < 0 {
		return nil, BadRequest("Weight must not be negative")
	}
	if in.DoctorID == nil && !actor.isDoctor() {
		return nil, BadRequest("doctorId is required")
	}

	var created *models.Patient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doctor, err := targetDoctor(tx, actor, in.DoctorID, uuid.Nil)
		if err != nil {
			return err
		}
		clinicID := actor.ClinicLicenseID
		if doctor.User != nil {
			clinicID = doctor.User.ClinicLicenseID
		}

		owner, err := s.findOrCreateOwner(tx, clinicID, phone, email, in)
		if err != nil {
			return err
		}

		p := models.Patient{
			ClinicLicenseID: clinicID,
			OwnerID:         owner.ID,
			DoctorID:        doctor.ID,
			Name:            strings.TrimSpace(in.Name),
			Species:         strings.TrimSpace(in.Species),
			Breed:           strings.TrimSpace(in.Breed),
			Sex:             strings.TrimSpace(in.Sex),
			BirthDate:       strings.TrimSpace(in.BirthDate),
			WeightKg:        in.WeightKg,
			Status:          models.PatientActive,
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		if err := writeAudit(tx, patientEntity, p.ID, actor, auditCreate, nil, p); err != nil {
			return err
		}

		p.Owner = owner
		created = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("patient_id", created.ID.String()).Str("owner_id", created.OwnerID.String()).Msg("patient registered")
	return created, nil
}

func (s *PatientService) findOrCreateOwner(tx *gorm.DB, clinicID uuid.UUID, phone, email string, in RegisterPatientInput) (*models.Owner, error) {
	var owner models.Owner
	err := tx.Where("clinic_license_id = ? AND phone = ?", clinicID, phone).First(&owner).Error
	if err == nil {
		if owner.Email == "" && email != "" {
			if err := tx.Model(&owner).Update("email", email).Error; err != nil {
				return nil, fmt.Errorf("update owner email: %w", err)
			}
			owner.Email = email
		}
		return &owner, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("find owner: %w", err)
	}

	owner = models.Owner{
		ClinicLicenseID: clinicID,
		FirstName:       strings.TrimSpace(in.OwnerFirstName),
		LastName:        strings.TrimSpace(in.OwnerLastName),
		Email:           email,
		Phone:           phone,
		Street:          strings.TrimSpace(in.Street),
		ExtNumber:       strings.TrimSpace(in.ExtNumber),
		IntNumber:       strings.TrimSpace(in.IntNumber),
		PostalCode:      strings.TrimSpace(in.PostalCode),
		Neighborhood:    strings.TrimSpace(in.Neighborhood),
		References:      strings.TrimSpace(in.References),
	}
	if err := tx.Create(&owner).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, Conflict("An owner with that phone was just registered, try again")
		}
		return nil, fmt.Errorf("create owner: %w", err)
	}
	return &owner, nil
}

func (s *PatientService) List(ctx context.Context, actor Actor, f PatientFilter) ([]models.Patient, error) {
	tx := s.db.WithContext(ctx)
	q := tx.Model(&models.Patient{}).Preload("Owner")

	switch {
	case actor.isDoctor():
		d, err := doctorForUser(tx, actor.UserID)
		if err != nil {
			return nil, err
		}
		q = q.Where("patients.doctor_id = ?", d.ID)
	case !actor.crossClinic():
		q = q.Where("patients.clinic_license_id = ?", actor.ClinicLicenseID)
	}

	status := models.PatientStatus(f.Status)
	if status == "" {
		status = models.PatientActive
	}
	if status != models.PatientActive && status != models.PatientInactive {
		return nil, BadRequest("Invalid patient status")
	}
	q = q.Where("patients.status = ?", status)

	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Joins("JOIN owners ON owners.id = patients.owner_id").
			Where("(LOWER(patients.name) LIKE ? OR LOWER(owners.first_name) LIKE ? OR owners.phone LIKE ?)", like, like, like)
	}

	var out []models.Patient
	if err := q.Order("patients.name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}

func (s *PatientService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Patient, error) {
	return accessiblePatient(s.db.WithContext(ctx), actor, id)
}

// Delete deactivates a patient with clinical history and hard-deletes one
// without it, along with its appointments. softDeleted reports which happened.
func (s *PatientService) Delete(ctx context.Context, actor Actor, id uuid.UUID) (softDeleted bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := accessiblePatient(tx, actor, id)
		if err != nil {
			return err
		}

		var records int64
		if err := tx.Model(&models.ClinicalRecord{}).Where("patient_id = ?", p.ID).Count(&records).Error; err != nil {
			return fmt.Errorf("count clinical records: %w", err)
		}

		before := *p
		before.Owner = nil
		if records > 0 {
			softDeleted = true
			if err := tx.Model(&models.Patient{}).Where("id = ?", p.ID).Update("status", models.PatientInactive).Error; err != nil {
				return fmt.Errorf("deactivate patient: %w", err)
			}
			return writeAudit(tx, patientEntity, p.ID, actor, auditStatusChange, before,
				map[string]interface{}{"estado": models.PatientInactive})
		}

		if err := tx.Where("patient_id = ?", p.ID).Delete(&models.Appointment{}).Error; err != nil {
			return fmt.Errorf("delete patient appointments: %w", err)
		}
		if err := tx.Where("patient_id = ?", p.ID).Delete(&models.GroomingAppointment{}).Error; err != nil {
			return fmt.Errorf("delete patient grooming appointments: %w", err)
		}
		if err := tx.Delete(&models.Patient{}, "id = ?", p.ID).Error; err != nil {
			return fmt.Errorf("delete patient: %w", err)
		}
		return writeAudit(tx, patientEntity, p.ID, actor, auditDelete, before, nil)
	})
	return softDeleted, err
}

// AddClinicalRecord appends to a patient's history. Only doctors write history.
func (s *PatientService) AddClinicalRecord(ctx context.Context, actor Actor, patientID uuid.UUID, in ClinicalRecordInput) (*models.ClinicalRecord, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, BadRequest("Reason is required")
	}
	date := utils.BeginningOfDay(s.now().In(s.loc)).Format(utils.DateLayout)
	if in.Date != "" {
		d, err := utils.ParseDate(in.Date, s.loc)
		if err != nil {
			return nil, BadRequest(err.Error())
		}
		date = d.Format(utils.DateLayout)
	}

	var rec models.ClinicalRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doctor, err := doctorForUser(tx, actor.UserID)
		if err != nil {
			return err
		}
		p, err := accessiblePatient(tx, actor, patientID)
		if err != nil {
			return err
		}

		if in.AppointmentID != nil {
			var n int64
			err := tx.Model(&models.Appointment{}).
				Where("id = ? AND patient_id = ?", *in.AppointmentID, p.ID).
				Count(&n).Error
			if err != nil {
				return fmt.Errorf("check appointment: %w", err)
			}
			if n == 0 {
				return NotFound("Appointment not found for this patient")
			}
		}

		rec = models.ClinicalRecord{
			PatientID:     p.ID,
			DoctorID:      doctor.ID,
			AppointmentID: in.AppointmentID,
			Date:          date,
			Reason:        strings.TrimSpace(in.Reason),
			Diagnosis:     strings.TrimSpace(in.Diagnosis),
			Treatment:     strings.TrimSpace(in.Treatment),
			Notes:         strings.TrimSpace(in.Notes),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create clinical record: %w", err)
		}
		return writeAudit(tx, clinicalRecordEntity, rec.ID, actor, auditCreate, nil, rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PatientService) ListClinicalRecords(ctx context.Context, actor Actor, patientID uuid.UUID) ([]models.ClinicalRecord, error) {
	tx := s.db.WithContext(ctx)
	if _, err := accessiblePatient(tx, actor, patientID); err != nil {
		return nil, err
	}

	var out []models.ClinicalRecord
	err := tx.Where("patient_id = ?", patientID).
		Order("record_date DESC, created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list clinical records: %w", err)
	}
	return out, nil
}
