package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Doctor ")
	assert.True(t, ok)
	assert.Equal(t, RoleDoctor, r)

	_, ok = ParseRole("veterinario")
	assert.False(t, ok)
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleSuperadmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleDoctor.AtLeast(RoleAdmin))
	assert.True(t, RoleDoctor.AtLeast(RoleRecepcion))
	assert.False(t, Role("").AtLeast(RoleRecepcion))
}

func TestLicenseUsable(t *testing.T) {
	assert.True(t, (&ClinicLicense{Status: LicenseActive}).Usable())
	assert.True(t, (&ClinicLicense{Status: LicenseFree}).Usable())
	assert.False(t, (&ClinicLicense{Status: LicenseSuspended}).Usable())
	assert.False(t, (&ClinicLicense{Status: LicenseCancelled}).Usable())
}
