package identity

import "fmt"

// Role is the closed set of authorization levels an account can hold.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Capability names an action gated by role.
type Capability string

const (
	CapBookVehicle Capability = "book_vehicle"
	CapListUsers   Capability = "list_users"
	CapDeleteUsers Capability = "delete_users"
)

// AdminRoles are the roles allowed on admin-gated routes.
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

var roleRank = map[Role]int{
	RoleUser:       0,
	RoleAdmin:      1,
	RoleSuperAdmin: 2,
}

var roleCapabilities = map[Role]map[Capability]bool{
	RoleUser: {
		CapBookVehicle: true,
	},
	RoleAdmin: {
		CapBookVehicle: true,
		CapListUsers:   true,
		CapDeleteUsers: true,
	},
	RoleSuperAdmin: {
		CapBookVehicle: true,
		CapListUsers:   true,
		CapDeleteUsers: true,
	},
}

// ParseRole validates a stored or claimed role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank orders roles by privilege. Unknown roles rank below every known one.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether r is as privileged as min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// Can reports whether r grants the capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// In reports whether r is a member of allowed.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
