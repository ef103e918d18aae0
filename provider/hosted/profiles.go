package hosted

import (
	"context"
	"database/sql"

	"github.com/accessmanagerpro/authkit"
	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var _ authkit.ProfileStore = (*Profiles)(nil)

// Profiles exposes the profiles table to the core. Reads enforce the
// backend's row policy: a caller may only select the row whose id matches its
// own session identity. Inserts are keyed by the freshly created identity and
// are not gated on an active session.
type Profiles struct {
	repo   repository.Repository[*ProfileRecord]
	db     *bun.DB
	client *Client
	logger authkit.Logger
}

// ProfilesOption customizes the store.
type ProfilesOption func(*Profiles)

// WithProfilesLogger overrides the store logger.
func WithProfilesLogger(logger authkit.Logger) ProfilesOption {
	return func(p *Profiles) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProfiles returns a profile store bound to the client whose session
// scopes row access.
func NewProfiles(db *bun.DB, client *Client, opts ...ProfilesOption) *Profiles {
	repo := repository.NewRepository[*ProfileRecord](db, repository.ModelHandlers[*ProfileRecord]{
		NewRecord: func() *ProfileRecord { return &ProfileRecord{} },
		GetID: func(p *ProfileRecord) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *ProfileRecord, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	profiles := &Profiles{
		repo:   repo,
		db:     db,
		client: client,
		logger: authkit.DefaultLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(profiles)
		}
	}

	return profiles
}

// SelectByID fetches the profile row for the given identity. The row policy
// rejects reads for any id other than the caller's session identity.
func (p *Profiles) SelectByID(ctx context.Context, id string) (*authkit.Profile, error) {
	if err := p.authorizeRowAccess(id); err != nil {
		return nil, err
	}

	record := &ProfileRecord{}
	err := p.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to fetch profile")
	}

	return record.ToWire(), nil
}

// Insert writes a new profile row.
func (p *Profiles) Insert(ctx context.Context, profile *authkit.Profile) error {
	if profile == nil {
		return errors.New("profile must not be nil", errors.CategoryValidation)
	}

	record, err := profileFromWire(profile)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "profile id must be a valid identity id")
	}

	if _, err := p.repo.Create(ctx, record); err != nil {
		return errors.Wrap(err, errors.CategoryConflict, "could not create profile")
	}

	return nil
}

// Update replaces the caller's own profile row.
func (p *Profiles) Update(ctx context.Context, profile *authkit.Profile) (*authkit.Profile, error) {
	if profile == nil {
		return nil, errors.New("profile must not be nil", errors.CategoryValidation)
	}

	if err := p.authorizeRowAccess(profile.ID); err != nil {
		return nil, err
	}

	record, err := profileFromWire(profile)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "profile id must be a valid identity id")
	}

	updated, err := p.repo.Update(ctx, record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not update profile")
	}

	return updated.ToWire(), nil
}

func (p *Profiles) authorizeRowAccess(id string) error {
	session := p.client.Session()
	if session == nil || session.GetUserID() != id {
		return errors.New("row access denied for this identity", errors.CategoryAuth).
			WithTextCode("ROW_ACCESS_DENIED").
			WithMetadata(map[string]any{"id": id})
	}
	return nil
}
