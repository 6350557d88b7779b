package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleParent      Role = "parent"
	RoleCuidador    Role = "cuidador"
	RoleInstitution Role = "institution"
	RoleCoordinator Role = "coordinator"
)

// ParseRole maps the wire representation of a role onto the closed set of roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", Errorf(KindValidation, "Perfil inválido: %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleCuidador, RoleInstitution, RoleCoordinator:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role acts on behalf of an institution.
func (r Role) IsStaff() bool {
	switch r {
	case RoleInstitution, RoleCoordinator:
		return true
	case RoleParent, RoleCuidador:
		return false
	default:
		return false
	}
}

// CanConnect reports whether a peer connection may exist between the two roles.
// Institutions are reached through institution links instead.
func CanConnect(a, b Role) bool {
	switch a {
	case RoleParent, RoleCuidador:
		switch b {
		case RoleParent, RoleCuidador:
			return true
		case RoleInstitution, RoleCoordinator:
			return false
		}
	case RoleInstitution, RoleCoordinator:
		return false
	}
	return false
}

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	InstitutionName string    `json:"institution_name,omitempty"`
	InstitutionID   string    `json:"institution_id,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	PasswordHash    string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// DisplayName is the name shown to other users; institutions are known by their display name.
func (u User) DisplayName() string {
	if u.Role == RoleInstitution && u.InstitutionName != "" {
		return u.InstitutionName
	}
	return u.Name
}

// StaffInstitutionID returns the institution the user acts for, or "" for non-staff users.
func (u User) StaffInstitutionID() string {
	switch u.Role {
	case RoleInstitution:
		return u.ID
	case RoleCoordinator:
		return u.InstitutionID
	case RoleParent, RoleCuidador:
		return ""
	default:
		return ""
	}
}

// ActsFor reports whether the user may act on behalf of the given institution.
func (u User) ActsFor(institutionID string) bool {
	staff := u.StaffInstitutionID()
	return staff != "" && staff == institutionID
}

// Actor is the pre-validated caller identity attached to every operation.
type Actor struct {
	ID   string
	Role Role
}
