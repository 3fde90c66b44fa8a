package model

import "fmt"

// Role is the closed set of account roles. It is stored in the database
// and carried inside access tokens as a string, but all privilege
// comparisons go through Level() so the ordering stays total:
// REGULAR < ADMIN < SUPERADMIN.
type Role string

const (
	RoleRegular    Role = "REGULAR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperadmin Role = "SUPERADMIN"
)

// roleLevels maps every valid role to its position in the hierarchy.
// Unknown roles map to zero, which is below every real role.
var roleLevels = map[Role]int{
	RoleRegular:    1,
	RoleAdmin:      2,
	RoleSuperadmin: 3,
}

// Level returns the numeric rank of the role. Comparisons between roles
// must use levels; string equality is only correct for exact-match checks.
func (r Role) Level() int { return roleLevels[r] }

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool { return roleLevels[r] != 0 }

// ParseRole converts a free-form string into a Role, rejecting anything
// outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// RolesAtOrAbove lists every role whose level is at least min, lowest
// first. Used to build the diagnostic hint on authorization failures.
func RolesAtOrAbove(min Role) []Role {
	out := make([]Role, 0, 3)
	for _, r := range []Role{RoleRegular, RoleAdmin, RoleSuperadmin} {
		if r.Level() >= min.Level() {
			out = append(out, r)
		}
	}
	return out
}
