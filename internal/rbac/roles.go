package rbac

// Role is the closed set of caller roles. Keep these stable; they are part of
// auth/RBAC contracts and of the consultation transition tables.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func IsAdmin(role Role) bool { return role == RoleAdmin }

// Known reports whether the role is one of the defined values. Unknown roles
// must be denied everywhere; there is no default role.
func Known(role Role) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}
