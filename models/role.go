package models

import "strings"

// Role is a staff role. Roles are ordered: every role has at least the
// permissions of the roles below it.
type Role string

const (
	RoleRecepcion  Role = "recepcion"
	RoleDoctor     Role = "doctor"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

var roleRank = map[Role]int{
	RoleRecepcion:  1,
	RoleDoctor:     2,
	RoleAdmin:      3,
	RoleSuperadmin: 4,
}

// ParseRole returns the role for s, ignoring case and surrounding spaces.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleRank[r]
	return r, ok
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min. Unknown roles rank below everything.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] > 0 && roleRank[r] >= roleRank[min]
}
