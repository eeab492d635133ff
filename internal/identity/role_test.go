package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"user", "admin", "superadmin"} {
		r, err := ParseRole(s)
		assert.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}
	_, err := ParseRole("root")
	assert.Error(t, err)
}

func TestRoleOrderingAndCapabilities(t *testing.T) {
	assert.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleUser.AtLeast(RoleAdmin))
	assert.False(t, Role("root").AtLeast(RoleUser))

	assert.True(t, RoleUser.Can(CapBookVehicle))
	assert.False(t, RoleUser.Can(CapDeleteUsers))
	assert.True(t, RoleAdmin.Can(CapDeleteUsers))
	assert.False(t, Role("").Can(CapBookVehicle))

	assert.True(t, RoleAdmin.In(AdminRoles...))
	assert.True(t, RoleSuperAdmin.In(AdminRoles...))
	assert.False(t, RoleUser.In(AdminRoles...))
}
