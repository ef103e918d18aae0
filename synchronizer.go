package authkit

import (
	"context"
	"sync"
	"time"
)

// Synchronizer reconciles provider-driven session lifecycle events into store
// transitions. It is a stateless projector: every notification is handled on
// its own, session present means fetch-profile-then-login-success, session
// absent means logout. It is the only place external session truth feeds
// AuthState.
type Synchronizer struct {
	store        *Store
	identity     IdentityClient
	profiles     ProfileStore
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time

	// serializes handling so two notifications never interleave their
	// fetch-then-dispatch sequences
	mu sync.Mutex
}

// NewSynchronizer returns a Synchronizer bound to the given store and
// providers. Call Bind to start receiving notifications.
func NewSynchronizer(store *Store, identity IdentityClient, profiles ProfileStore) *Synchronizer {
	return &Synchronizer{
		store:        store,
		identity:     identity,
		profiles:     profiles,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
}

func (s *Synchronizer) WithLogger(logger Logger) *Synchronizer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for session lifecycle events.
func (s *Synchronizer) WithActivitySink(sink ActivitySink) *Synchronizer {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Bind subscribes to the identity client's session changes. The returned
// subscription is the synchronizer's one long-lived resource; release it when
// the owning scope is torn down.
func (s *Synchronizer) Bind() Subscription {
	return s.identity.OnSessionChange(s.handle)
}

func (s *Synchronizer) handle(ctx context.Context, event SessionEvent, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session == nil {
		s.logger.Debug("session ended", "event", string(event))
		s.store.Dispatch(Logout())
		s.emit(ctx, ActivityEventSessionEnded, "", nil)
		return
	}

	profile, err := s.profiles.SelectByID(ctx, session.GetUserID())
	if err != nil {
		// A session with no profile row leaves state untouched; the account
		// may still be provisioning. See Synchronizer docs for the tradeoff.
		if IsProfileNotFound(err) {
			s.logger.Warn("session has no profile row", "user_id", session.GetUserID(), "event", string(event))
			s.emit(ctx, ActivityEventProfileMissing, session.GetUserID(), nil)
			return
		}

		s.logger.Error("profile fetch failed", "user_id", session.GetUserID(), "error", err)
		return
	}

	s.store.Dispatch(LoginSuccess(profile.ToUser()))
	s.emit(ctx, ActivityEventSessionRestored, session.GetUserID(), map[string]any{
		"event": string(event),
	})
}

func (s *Synchronizer) emit(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}
