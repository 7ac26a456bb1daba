package domain

import "time"

// Role is the permission class of a dashboard user.
type Role string

const (
	RoleVendeur           Role = "vendeur"
	RoleTechnicien        Role = "technicien"
	RoleGestionnaireStock Role = "gestionnaire_stock"
	RoleSuperAdmin        Role = "super_admin"
)

// Roles lists every known role.
var Roles = []Role{RoleVendeur, RoleTechnicien, RoleGestionnaireStock, RoleSuperAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleVendeur, RoleTechnicien, RoleGestionnaireStock, RoleSuperAdmin:
		return true
	}
	return false
}

// User is a dashboard operator. Its lifecycle is owned by the hosted auth.
type User struct {
	ID        string
	Email     string
	Role      Role
	FullName  *string
	Phone     *string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
