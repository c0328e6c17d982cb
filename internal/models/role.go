package models

type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

var ValidRoles = map[string]bool{
	string(RoleUser):      true,
	string(RoleGuide):     true,
	string(RoleLeadGuide): true,
	string(RoleAdmin):     true,
}

func IsValidRole(role string) bool {
	return ValidRoles[role]
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
	Role   Role
}

// HasRole reports whether the caller holds one of the required roles.
func HasRole(id Identity, required ...Role) bool {
	for _, r := range required {
		if id.Role == r {
			return true
		}
	}
	return false
}
