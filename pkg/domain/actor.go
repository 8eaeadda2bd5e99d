package domain

import "strings"

// Role is the coarse permission group an authenticated principal belongs to.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleRegistrar  Role = "registrar"
	RoleSupervisor Role = "supervisor"
	RoleOfficer    Role = "officer"
	RoleCitizen    Role = "citizen"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleRegistrar, RoleSupervisor, RoleOfficer, RoleCitizen:
		return true
	}
	return false
}

// ParseRole normalises case and whitespace. Unknown roles yield "" and false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", false
	}
	return r, true
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID       UserID
	Username string
	Role     Role
}

// Identity is the value recorded as changed_by in status history.
// The username is preferred; the user id is used when no username is known.
func (a Actor) Identity() string {
	if a.Username != "" {
		return a.Username
	}
	if a.ID.IsNil() {
		return ""
	}
	return a.ID.String()
}

// IsZero reports whether no principal is present.
func (a Actor) IsZero() bool {
	return a.ID.IsNil() && a.Username == "" && a.Role == ""
}
