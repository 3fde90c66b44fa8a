package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleLevelsAreStrictlyOrdered(t *testing.T) {
	assert.Less(t, RoleRegular.Level(), RoleAdmin.Level())
	assert.Less(t, RoleAdmin.Level(), RoleSuperadmin.Level())
}

func TestUnknownRoleIsBelowEveryRealRole(t *testing.T) {
	bogus := Role("MODERATOR")
	assert.False(t, bogus.Valid())
	assert.Less(t, bogus.Level(), RoleRegular.Level())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"REGULAR", RoleRegular, false},
		{"ADMIN", RoleAdmin, false},
		{"SUPERADMIN", RoleSuperadmin, false},
		{"admin", "", true}, // case matters; stored values are uppercase
		{"", "", true},
		{"ROOT", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRolesAtOrAbove(t *testing.T) {
	assert.Equal(t, []Role{RoleRegular, RoleAdmin, RoleSuperadmin}, RolesAtOrAbove(RoleRegular))
	assert.Equal(t, []Role{RoleAdmin, RoleSuperadmin}, RolesAtOrAbove(RoleAdmin))
	assert.Equal(t, []Role{RoleSuperadmin}, RolesAtOrAbove(RoleSuperadmin))
}
