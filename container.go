package authkit

import (
	"context"
	"errors"
	"time"
)

// User facing notification copy.
const (
	MsgRegistrationSuccess = "Registration successful. You can now sign in."
	MsgLogoutSuccess       = "Signed out successfully."
	MsgLogoutFailure       = "Sign out failed. Please try again."
)

// Container exposes the authentication operations consumed by the
// presentation layer. All state changes flow through the injected Store, so
// observers read state from there; Login in particular resolving without
// error does NOT mean IsAuthenticated is already true, the session change
// notification drives that transition asynchronously.
type Container struct {
	store        *Store
	identity     IdentityClient
	profiles     ProfileStore
	notifier     Notifier
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

// New returns a Container bound to the given store and providers.
func New(store *Store, identity IdentityClient, profiles ProfileStore) *Container {
	return &Container{
		store:        store,
		identity:     identity,
		profiles:     profiles,
		notifier:     noopNotifier{},
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (c *Container) WithLogger(logger Logger) *Container {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithNotifier configures the transient message sink.
func (c *Container) WithNotifier(notifier Notifier) *Container {
	c.notifier = normalizeNotifier(notifier)
	return c
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (c *Container) WithActivitySink(sink ActivitySink) *Container {
	c.activitySink = normalizeActivitySink(sink)
	return c
}

// WithClock injects a custom clock (useful for tests).
func (c *Container) WithClock(clock func() time.Time) *Container {
	if clock != nil {
		c.now = clock
	}
	return c
}

// Store returns the store this container dispatches into.
func (c *Container) Store() *Store {
	return c.store
}

// Login verifies credentials against the identity provider. On failure the
// state records the fixed generic message and the error is returned. On
// success no state update happens here: the provider's session change
// notification is reconciled by the Synchronizer, which issues the success
// transition once the profile is fetched.
func (c *Container) Login(ctx context.Context, email, password string) error {
	c.store.Dispatch(LoginStart())

	if _, err := c.identity.VerifyCredentials(ctx, email, password); err != nil {
		c.logger.Error("login credential verification failed", "email", email, "error", err)
		c.store.Dispatch(LoginError(ErrInvalidCredentials.Error()))
		c.emit(ctx, ActivityEventLoginFailure, "", email, map[string]any{
			"error": err.Error(),
		})
		return ErrInvalidCredentials
	}

	c.emit(ctx, ActivityEventLoginSuccess, "", email, nil)
	return nil
}

// LoginAndWait composes Login with the asynchronous authenticated transition:
// it resolves once the store reports IsAuthenticated, or fails when the store
// records an error or ctx expires. Use it when "login finished" and
// "authenticated" must be a single awaitable.
func (c *Container) LoginAndWait(ctx context.Context, email, password string) error {
	states := make(chan AuthState, 16)
	sub := c.store.Subscribe(func(state AuthState) {
		select {
		case states <- state:
		default:
		}
	})
	defer sub.Unsubscribe()

	if err := c.Login(ctx, email, password); err != nil {
		return err
	}

	for {
		select {
		case state := <-states:
			if state.IsAuthenticated {
				return nil
			}
			if state.Error != "" {
				return errors.New(state.Error)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Register signs up a new identity and seeds its profile row with the default
// USER role and READ permission. A profile insertion failure compensates by
// signing the fresh identity back out so no authenticated-but-profile-less
// account is left behind. Success is reported through the notifier only;
// callers sign in separately (or rely on the provider's own post-signup
// session behavior).
func (c *Container) Register(ctx context.Context, email, password, firstName, lastName string) error {
	c.store.Dispatch(RegisterStart())

	identity, err := c.identity.SignUp(ctx, email, password, map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	})
	if err != nil {
		c.logger.Error("registration sign-up failed", "email", email, "error", err)
		c.store.Dispatch(RegisterError(err.Error()))
		c.notifier.Failure(err.Error())
		c.emit(ctx, ActivityEventRegisterFailure, "", email, map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if identity == nil {
		err := ErrMissingIdentity
		c.logger.Error("registration returned no identity", "email", email)
		c.store.Dispatch(RegisterError(err.Error()))
		c.notifier.Failure(err.Error())
		c.emit(ctx, ActivityEventRegisterFailure, "", email, map[string]any{
			"error": err.Error(),
		})
		return err
	}

	profile := NewProfile(identity.ID(), email, firstName, lastName)
	if err := c.profiles.Insert(ctx, profile); err != nil {
		c.logger.Error("profile creation failed, signing identity back out", "user_id", identity.ID(), "error", err)

		if signOutErr := c.identity.SignOut(ctx); signOutErr != nil {
			c.logger.Warn("compensating sign-out failed", "user_id", identity.ID(), "error", signOutErr)
		}

		c.store.Dispatch(RegisterError(err.Error()))
		c.notifier.Failure(err.Error())
		c.emit(ctx, ActivityEventRegisterFailure, identity.ID(), email, map[string]any{
			"error": err.Error(),
		})
		return err
	}

	c.notifier.Success(MsgRegistrationSuccess)
	c.emit(ctx, ActivityEventRegisterSuccess, identity.ID(), email, nil)
	return nil
}

// Logout signs the session out. Failures surface as a transient notification
// only; no error transition is recorded in the store.
func (c *Container) Logout(ctx context.Context) error {
	if err := c.identity.SignOut(ctx); err != nil {
		c.logger.Error("sign-out failed", "error", err)
		c.notifier.Failure(MsgLogoutFailure)
		c.emit(ctx, ActivityEventLogoutFailure, "", "", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	c.store.Dispatch(Logout())
	c.notifier.Success(MsgLogoutSuccess)
	c.emit(ctx, ActivityEventLogoutSuccess, "", "", nil)
	return nil
}

// UpdateUser replaces the cached user record. This is a local cache update
// only; nothing is validated against or written to the profile store.
func (c *Container) UpdateUser(user *User) {
	c.store.Dispatch(UpdateUser(user))
}

func (c *Container) emit(ctx context.Context, eventType ActivityEventType, userID, email string, metadata map[string]any) {
	sink := normalizeActivitySink(c.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Email:      email,
		Metadata:   metadata,
		OccurredAt: c.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		c.logger.Warn("activity sink record error: %v", err)
	}
}
