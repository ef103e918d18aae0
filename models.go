package authkit

import (
	"time"
)

// Permission grants an action over a resource. Resource defaults to the
// wildcard "*".
type Permission struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Resource    string `json:"resource,omitempty"`
	Action      string `json:"action,omitempty"`
}

// Role is authorization metadata attached to a user. A role may carry its own
// permission list, independent of the user's top level permission list.
type Role struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// User is the normalized user record held in AuthState. ID is the opaque
// identifier assigned by the identity provider and never changes once issued.
type User struct {
	ID          string       `json:"id,omitempty"`
	Email       string       `json:"email,omitempty"`
	FirstName   string       `json:"first_name,omitempty"`
	LastName    string       `json:"last_name,omitempty"`
	Roles       []Role       `json:"roles,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// HasRole reports whether the user carries a role with the given name.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// EffectivePermissions returns the user's top level permissions followed by
// the permissions nested under each role. The two lists are kept independent;
// this is a read-only convenience view and nothing reconciles them.
func (u *User) EffectivePermissions() []Permission {
	if u == nil {
		return nil
	}

	out := make([]Permission, 0, len(u.Permissions))
	out = append(out, u.Permissions...)
	for _, role := range u.Roles {
		out = append(out, role.Permissions...)
	}
	return out
}

// Profile is the wire shape of a row in the hosted "profiles" table. Field
// names are snake cased and timestamps travel as RFC 3339 strings; ToUser
// performs the projection into the internal record shape.
type Profile struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Email       string       `json:"email"`
	Roles       []Role       `json:"roles"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
}

// ToUser projects the raw profile row into a User, defaulting the role and
// permission lists to empty and parsing timestamp strings into time values.
func (p *Profile) ToUser() *User {
	if p == nil {
		return nil
	}

	roles := p.Roles
	if roles == nil {
		roles = []Role{}
	}

	permissions := p.Permissions
	if permissions == nil {
		permissions = []Permission{}
	}

	return &User{
		ID:          p.ID,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Roles:       roles,
		Permissions: permissions,
		CreatedAt:   parseTimestamp(p.CreatedAt),
		UpdatedAt:   parseTimestamp(p.UpdatedAt),
	}
}

func parseTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	return nil
}

// DefaultRole is the role seeded on every new profile row.
func DefaultRole() Role {
	return Role{
		ID:          "1",
		Name:        "USER",
		Description: "Standard user role",
		Permissions: []Permission{DefaultPermission()},
	}
}

// DefaultPermission is the permission seeded on every new profile row.
func DefaultPermission() Permission {
	return Permission{
		ID:       "1",
		Name:     "READ",
		Resource: "*",
		Action:   "read",
	}
}

// NewProfile builds the profile row inserted during registration, seeded with
// the default role and permission.
func NewProfile(id, email, firstName, lastName string) *Profile {
	return &Profile{
		ID:          id,
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		Roles:       []Role{DefaultRole()},
		Permissions: []Permission{DefaultPermission()},
	}
}
