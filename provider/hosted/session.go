package hosted

import (
	"time"

	"github.com/accessmanagerpro/authkit"
)

var _ authkit.Session = &SessionObject{}

// SessionObject is the hosted provider's session implementation.
type SessionObject struct {
	UserID      string     `json:"user_id,omitempty"`
	Email       string     `json:"email,omitempty"`
	AccessToken string     `json:"access_token,omitempty"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func (s *SessionObject) GetUserID() string      { return s.UserID }
func (s *SessionObject) GetEmail() string       { return s.Email }
func (s *SessionObject) GetAccessToken() string { return s.AccessToken }
func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}
func (s *SessionObject) GetExpiresAt() *time.Time {
	return s.ExpiresAt
}

// Expired reports whether the session's token lifetime has elapsed.
func (s *SessionObject) Expired() bool {
	if s.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*s.ExpiresAt)
}

func sessionFromClaims(token string, claims *SessionClaims) *SessionObject {
	session := &SessionObject{
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: token,
	}

	if claims.IssuedAt != nil {
		issuedAt := claims.IssuedAt.Time
		session.IssuedAt = &issuedAt
	}

	if claims.ExpiresAt != nil {
		expiresAt := claims.ExpiresAt.Time
		session.ExpiresAt = &expiresAt
	}

	return session
}
