package authkit

import (
	"sort"
	"sync"
)

// Store holds AuthState behind a mutex and notifies subscribers after every
// dispatch. It is an explicit, injectable object: construct one per client
// session and let it go out of scope with the owning application tree, rather
// than keeping ambient global state.
type Store struct {
	mu        sync.Mutex
	state     AuthState
	nextID    int
	listeners map[int]func(AuthState)
	logger    Logger
}

// StoreOption customizes store construction.
type StoreOption func(*Store)

// WithStoreLogger overrides the logger used for dispatch tracing.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns a store primed with InitialState.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		state:     InitialState(),
		listeners: map[int]func(AuthState){},
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies the action atomically and notifies subscribers with the
// resulting state. Listeners run outside the lock, in registration order.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	next := s.state

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(AuthState), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	s.logger.Debug("dispatch", "action", string(action.Type))

	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe registers a listener invoked after every dispatch. The returned
// subscription must be released when the observer goes away.
func (s *Store) Subscribe(fn func(AuthState)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return storeSubscription{store: s, id: id}
}

type storeSubscription struct {
	store *Store
	id    int
}

func (s storeSubscription) Unsubscribe() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.listeners, s.id)
}
