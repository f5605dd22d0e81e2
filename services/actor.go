package services

import (
	"vetclinic-backend/models"

	"github.com/google/uuid"
)

// Actor is the authenticated staff member a request runs as.
type Actor struct {
	UserID          uuid.UUID
	Role            models.Role
	ClinicLicenseID uuid.UUID
}

func ActorFromUser(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, ClinicLicenseID: u.ClinicLicenseID}
}

// crossClinic reports whether the actor may see every clinic.
func (a Actor) crossClinic() bool {
	return a.Role.AtLeast(models.RoleSuperadmin)
}

func (a Actor) isDoctor() bool {
	return a.Role == models.RoleDoctor
}
