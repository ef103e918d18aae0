package authkit

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes of a provider-issued auth session
type Session interface {
	GetUserID() string
	GetEmail() string
	GetAccessToken() string
	GetIssuedAt() *time.Time
	GetExpiresAt() *time.Time
}

// Identity is the handle the provider returns for a newly created account
type Identity interface {
	ID() string
	Email() string
}

// SessionEvent identifies the kind of session change the provider reported
type SessionEvent string

const (
	SessionEventInitial   SessionEvent = "INITIAL_SESSION"
	SessionEventSignedIn  SessionEvent = "SIGNED_IN"
	SessionEventSignedOut SessionEvent = "SIGNED_OUT"
	SessionEventRefreshed SessionEvent = "TOKEN_REFRESHED"
)

// SessionHandler receives session change notifications. The session argument
// is nil when the provider reports no active session.
type SessionHandler func(ctx context.Context, event SessionEvent, session Session)

// Subscription is a handle to a session change subscription. Callers own the
// subscription and must release it when the consuming scope is torn down.
type Subscription interface {
	Unsubscribe()
}

// IdentityClient is the surface we consume from the hosted identity provider.
type IdentityClient interface {
	VerifyCredentials(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (Identity, error)
	SignOut(ctx context.Context) error
	OnSessionChange(handler SessionHandler) Subscription
}

// ProfileStore is the surface we consume from the hosted profile table.
// The backend restricts select/update to the caller's own row.
type ProfileStore interface {
	SelectByID(ctx context.Context, id string) (*Profile, error)
	Insert(ctx context.Context, profile *Profile) error
}

// Notifier surfaces transient success/failure messages to the user-facing
// layer. Implementations should not block.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// NotifierFunc adapts plain functions to the Notifier interface.
type NotifierFunc struct {
	OnSuccess func(message string)
	OnFailure func(message string)
}

func (n NotifierFunc) Success(message string) {
	if n.OnSuccess != nil {
		n.OnSuccess(message)
	}
}

func (n NotifierFunc) Failure(message string) {
	if n.OnFailure != nil {
		n.OnFailure(message)
	}
}

type noopNotifier struct{}

func (noopNotifier) Success(string) {}
func (noopNotifier) Failure(string) {}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// DefaultLogger returns the stdout fallback logger components start with.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHKIT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHKIT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHKIT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHKIT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
