package hosted

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/accessmanagerpro/authkit"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var _ authkit.IdentityClient = (*Client)(nil)

// Client is the hosted identity provider: it verifies credentials, creates
// accounts, issues JWT backed sessions, and broadcasts session changes to
// subscribers. One Client tracks at most one active session, matching a
// single browser-like client session.
type Client struct {
	db     *bun.DB
	config *Config
	tokens *tokenService
	logger authkit.Logger

	mu          sync.Mutex
	current     *SessionObject
	nextSubID   int
	subscribers map[int]authkit.SessionHandler
}

// ClientOption customizes client construction.
type ClientOption func(*Client)

// WithClientLogger overrides the client logger.
func WithClientLogger(logger authkit.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a Client backed by the given database.
func NewClient(db *bun.DB, cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("hosted client requires a config", errors.CategoryValidation)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		db:          db,
		config:      cfg,
		logger:      authkit.DefaultLogger(),
		subscribers: map[int]authkit.SessionHandler{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.tokens = newTokenService([]byte(cfg.SigningKey), cfg.TokenExpiration, cfg.Issuer, c.logger)

	return c, nil
}

// SignUp creates a new identity. It does not start a session; callers sign in
// separately.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (authkit.Identity, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errors.New("email is required", errors.CategoryValidation)
	}

	exists, err := c.db.NewSelect().
		Model((*IdentityRecord)(nil)).
		Where("?TableAlias.email = ?", email).
		Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for existing identity")
	}
	if exists {
		return nil, errors.New("user already registered", errors.CategoryConflict).
			WithTextCode("USER_ALREADY_REGISTERED")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	record := &IdentityRecord{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Metadata:     metadata,
	}

	if _, err := c.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create identity")
	}

	return identityHandle{id: record.ID.String(), email: record.Email}, nil
}

// VerifyCredentials checks the email/password pair, starts a session on
// success and notifies subscribers.
func (c *Client) VerifyCredentials(ctx context.Context, email, password string) (authkit.Session, error) {
	email = normalizeEmail(email)

	record := &IdentityRecord{}
	err := c.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve identity during verification")
	}

	if err := ComparePasswordAndHash(password, record.PasswordHash); err != nil {
		return nil, err
	}

	token, claims, err := c.tokens.Sign(record.ID.String(), record.Email)
	if err != nil {
		return nil, err
	}

	session := sessionFromClaims(token, claims)

	c.mu.Lock()
	c.current = session
	c.mu.Unlock()

	c.broadcast(ctx, authkit.SessionEventSignedIn, session)

	return session, nil
}

// SignOut ends the current session and notifies subscribers. Signing out
// without an active session is an error.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return authkit.ErrNoActiveSession
	}
	c.current = nil
	c.mu.Unlock()

	c.broadcast(ctx, authkit.SessionEventSignedOut, nil)
	return nil
}

// Restore validates a previously issued access token and, if still valid,
// resumes its session and notifies subscribers. Use it on process start to
// reconstruct state from a persisted token.
func (c *Client) Restore(ctx context.Context, token string) (authkit.Session, error) {
	claims, err := c.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	session := sessionFromClaims(token, claims)
	if session.Expired() {
		return nil, errors.New("session token expired", errors.CategoryAuth).
			WithTextCode("SESSION_EXPIRED")
	}

	c.mu.Lock()
	c.current = session
	c.mu.Unlock()

	c.broadcast(ctx, authkit.SessionEventSignedIn, session)

	return session, nil
}

// Session returns the current session, or nil when signed out.
func (c *Client) Session() *SessionObject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// OnSessionChange registers a handler for session changes. The handler is
// invoked immediately with the current session state, then on every change,
// until the subscription is released.
func (c *Client) OnSessionChange(handler authkit.SessionHandler) authkit.Subscription {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = handler
	current := c.current
	c.mu.Unlock()

	if handler != nil {
		handler(context.Background(), authkit.SessionEventInitial, asSession(current))
	}

	return clientSubscription{client: c, id: id}
}

func (c *Client) broadcast(ctx context.Context, event authkit.SessionEvent, session *SessionObject) {
	c.mu.Lock()
	handlers := make([]authkit.SessionHandler, 0, len(c.subscribers))
	for _, handler := range c.subscribers {
		handlers = append(handlers, handler)
	}
	c.mu.Unlock()

	for _, handler := range handlers {
		if handler != nil {
			handler(ctx, event, asSession(session))
		}
	}
}

// asSession avoids handing subscribers a non-nil interface wrapping a nil
// pointer.
func asSession(s *SessionObject) authkit.Session {
	if s == nil {
		return nil
	}
	return s
}

type clientSubscription struct {
	client *Client
	id     int
}

func (s clientSubscription) Unsubscribe() {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	delete(s.client.subscribers, s.id)
}

type identityHandle struct {
	id    string
	email string
}

func (i identityHandle) ID() string    { return i.id }
func (i identityHandle) Email() string { return i.email }

var _ authkit.Identity = identityHandle{}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
