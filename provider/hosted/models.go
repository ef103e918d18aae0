package hosted

import (
	"context"
	"time"

	"github.com/accessmanagerpro/authkit"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// IdentityRecord is a row in the identities table. It is the backend's user
// table; the profiles table references its primary key.
type IdentityRecord struct {
	bun.BaseModel `bun:"table:identities,alias:idn"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string         `bun:"password_hash,notnull" json:"-"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ProfileRecord is a row in the profiles table. Roles and permissions are
// stored as JSON array columns defaulting to empty.
type ProfileRecord struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID            `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName     string               `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string               `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string               `bun:"email,notnull,unique" json:"email,omitempty"`
	Roles         []authkit.Role       `bun:"roles" json:"roles,omitempty"`
	Permissions   []authkit.Permission `bun:"permissions" json:"permissions,omitempty"`
	CreatedAt     *time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time           `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*ProfileRecord)(nil)

// BeforeAppendModel stamps updated_at on every modification, mirroring the
// backend's update trigger.
func (p *ProfileRecord) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.CreatedAt == nil {
			p.CreatedAt = &now
		}
		p.UpdatedAt = &now
	case *bun.UpdateQuery:
		p.UpdatedAt = &now
	}
	return nil
}

// ToWire converts the stored row to the snake cased wire shape the core
// consumes, with timestamps rendered as RFC 3339 strings.
func (p *ProfileRecord) ToWire() *authkit.Profile {
	if p == nil {
		return nil
	}

	return &authkit.Profile{
		ID:          p.ID.String(),
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Roles:       p.Roles,
		Permissions: p.Permissions,
		CreatedAt:   formatTimestamp(p.CreatedAt),
		UpdatedAt:   formatTimestamp(p.UpdatedAt),
	}
}

func profileFromWire(profile *authkit.Profile) (*ProfileRecord, error) {
	id, err := uuid.Parse(profile.ID)
	if err != nil {
		return nil, err
	}

	roles := profile.Roles
	if roles == nil {
		roles = []authkit.Role{}
	}

	permissions := profile.Permissions
	if permissions == nil {
		permissions = []authkit.Permission{}
	}

	return &ProfileRecord{
		ID:          id,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Email:       profile.Email,
		Roles:       roles,
		Permissions: permissions,
	}, nil
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
