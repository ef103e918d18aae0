package authkit_test

import (
	"context"
	"sync"
	"time"

	"github.com/accessmanagerpro/authkit"
	"github.com/stretchr/testify/mock"
)

// MockIdentityClient implements authkit.IdentityClient
type MockIdentityClient struct {
	mock.Mock

	mu       sync.Mutex
	handlers []authkit.SessionHandler
}

func (m *MockIdentityClient) VerifyCredentials(ctx context.Context, email, password string) (authkit.Session, error) {
	args := m.Called(ctx, email, password)
	var session authkit.Session
	if v := args.Get(0); v != nil {
		session = v.(authkit.Session)
	}
	return session, args.Error(1)
}

func (m *MockIdentityClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (authkit.Identity, error) {
	args := m.Called(ctx, email, password, metadata)
	var identity authkit.Identity
	if v := args.Get(0); v != nil {
		identity = v.(authkit.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockIdentityClient) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIdentityClient) OnSessionChange(handler authkit.SessionHandler) authkit.Subscription {
	m.mu.Lock()
	m.handlers = append(m.handlers, handler)
	m.mu.Unlock()
	return mockSubscription{client: m}
}

// Emit delivers a session change to every registered handler.
func (m *MockIdentityClient) Emit(ctx context.Context, event authkit.SessionEvent, session authkit.Session) {
	m.mu.Lock()
	handlers := append([]authkit.SessionHandler{}, m.handlers...)
	m.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, event, session)
	}
}

func (m *MockIdentityClient) HandlerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

type mockSubscription struct {
	client *MockIdentityClient
}

func (s mockSubscription) Unsubscribe() {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	s.client.handlers = nil
}

// MockProfileStore implements authkit.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) SelectByID(ctx context.Context, id string) (*authkit.Profile, error) {
	args := m.Called(ctx, id)
	var profile *authkit.Profile
	if v := args.Get(0); v != nil {
		profile = v.(*authkit.Profile)
	}
	return profile, args.Error(1)
}

func (m *MockProfileStore) Insert(ctx context.Context, profile *authkit.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// RecordingNotifier captures transient notifications.
type RecordingNotifier struct {
	mu        sync.Mutex
	Successes []string
	Failures  []string
}

func (n *RecordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, message)
}

func (n *RecordingNotifier) Failure(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Failures = append(n.Failures, message)
}

func (n *RecordingNotifier) SuccessCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Successes)
}

func (n *RecordingNotifier) FailureCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Failures)
}

// FakeSession is a bare authkit.Session for synchronizer tests.
type FakeSession struct {
	UserID string
	Email  string
}

func (s FakeSession) GetUserID() string       { return s.UserID }
func (s FakeSession) GetEmail() string        { return s.Email }
func (s FakeSession) GetAccessToken() string  { return "" }
func (s FakeSession) GetIssuedAt() *time.Time { return nil }
func (s FakeSession) GetExpiresAt() *time.Time {
	return nil
}

// FakeIdentity is a bare authkit.Identity for register tests.
type FakeIdentity struct {
	UserID string
	Addr   string
}

func (i FakeIdentity) ID() string    { return i.UserID }
func (i FakeIdentity) Email() string { return i.Addr }

// RecordingSink captures activity events.
type RecordingSink struct {
	mu     sync.Mutex
	Events []authkit.ActivityEvent
}

func (s *RecordingSink) Record(_ context.Context, event authkit.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return nil
}

func (s *RecordingSink) Types() []authkit.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]authkit.ActivityEventType, 0, len(s.Events))
	for _, event := range s.Events {
		types = append(types, event.EventType)
	}
	return types
}
