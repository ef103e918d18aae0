package authkit

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// ErrInvalidCredentials is the generic login failure surfaced to callers.
// Provider detail is never leaked through it.
var ErrInvalidCredentials = errors.New("Invalid credentials")

// ErrMissingIdentity is returned when sign-up reports success but hands back
// no created identity.
var ErrMissingIdentity = errors.New("No user data returned from signup")

// ErrProfileNotFound is returned by profile stores when the session identity
// has no matching row.
var ErrProfileNotFound = errors.New("profile not found")

// ErrNoActiveSession is returned by sign-out when there is no session to end.
var ErrNoActiveSession = errors.New("no active session")

// IsProfileNotFound reports whether err means the profile row is absent.
// Stores built on go-repository-bun surface record-not-found errors, plain
// stores wrap ErrProfileNotFound; both are recognized here.
func IsProfileNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrProfileNotFound) {
		return true
	}
	if repository.IsRecordNotFound(err) {
		return true
	}
	return goerrors.IsNotFound(err)
}
