package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/DimasRabelo/delivery-frontend/domain"
	"github.com/DimasRabelo/delivery-frontend/store"
	"github.com/google/uuid"
)

// Persisted entry keys. The token is stored as-is, the user as JSON.
const (
	tokenKey = "token"
	userKey  = "user"
)

// State is a value snapshot of the session. IsLoading is true only during the
// restore phase at startup; consumers must not treat IsAuthenticated as
// meaningful while it is true.
type State struct {
	User         *domain.User
	Token        string
	IsLoading    bool
	IsPromptOpen bool
}

func (s State) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// Listener receives a snapshot after every published state transition.
type Listener func(State)

type subscription struct {
	id uuid.UUID
	fn Listener
}

// Store is the single authoritative owner of session state. All other
// components read it through Snapshot or a subscription; only Store mutates it.
type Store struct {
	mu    sync.RWMutex
	state State
	kv    store.Store
	subs  []subscription
}

func NewStore(kv store.Store) *Store {
	return &Store{
		kv:    kv,
		state: State{IsLoading: true},
	}
}

// Snapshot returns a copy of the current state. The user is cloned so no
// caller can alias the store's internals.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	if s.state.User != nil {
		user := *s.state.User
		snap.User = &user
	}
	return snap
}

// Subscribe registers a listener invoked synchronously after every state
// transition, in subscription order. It returns a handle for Unsubscribe.
func (s *Store) Subscribe(fn Listener) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return id
}

func (s *Store) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Restore rehydrates a prior session from the persistent store. It runs once
// at startup. Corrupt persisted data is self-healing: both entries are
// removed, the session stays unauthenticated and no error is surfaced.
// IsLoading is unconditionally set to false as the last step of the
// transition, whatever happened before.
func (s *Store) Restore(ctx context.Context) {
	token, errToken := s.kv.Get(ctx, tokenKey)
	rawUser, errUser := s.kv.Get(ctx, userKey)

	var user *domain.User
	if errToken == nil && errUser == nil {
		var u domain.User
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			log.Printf("session restore: corrupt stored user, clearing session: %v", err)
			s.clearPersisted(ctx)
			user = nil
		} else {
			user = &u
		}
	} else {
		if errToken != nil && !errors.Is(errToken, store.ErrNotFound) {
			log.Printf("session restore: read token failed: %v", errToken)
		}
		if errUser != nil && !errors.Is(errUser, store.ErrNotFound) {
			log.Printf("session restore: read user failed: %v", errUser)
		}
	}
	if user == nil {
		token = ""
	}

	s.mu.Lock()
	s.state.User = user
	s.state.Token = token
	s.state.IsLoading = false
	snap := s.snapshotLocked()
	subs := s.subsLocked()
	s.mu.Unlock()

	publish(subs, snap)
}

// Login records already-obtained credentials: it persists them, then updates
// the in-memory state in one observable transition. It performs no network
// call. A persistence failure propagates and leaves the session untouched.
func (s *Store) Login(ctx context.Context, token string, user domain.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user failed: %w", err)
	}
	if err := s.kv.Set(ctx, tokenKey, token); err != nil {
		return fmt.Errorf("persist token failed: %w", err)
	}
	if err := s.kv.Set(ctx, userKey, string(rawUser)); err != nil {
		return fmt.Errorf("persist user failed: %w", err)
	}

	s.mu.Lock()
	s.state.User = &user
	s.state.Token = token
	snap := s.snapshotLocked()
	subs := s.subsLocked()
	s.mu.Unlock()

	publish(subs, snap)
	return nil
}

// Logout removes the persisted entries and clears the in-memory session.
// It is idempotent; removal failures are logged, never surfaced.
func (s *Store) Logout(ctx context.Context) {
	s.clearPersisted(ctx)

	s.mu.Lock()
	s.state.User = nil
	s.state.Token = ""
	snap := s.snapshotLocked()
	subs := s.subsLocked()
	s.mu.Unlock()

	publish(subs, snap)
}

func (s *Store) OpenPrompt() {
	s.setPrompt(true)
}

func (s *Store) ClosePrompt() {
	s.setPrompt(false)
}

func (s *Store) setPrompt(open bool) {
	s.mu.Lock()
	s.state.IsPromptOpen = open
	snap := s.snapshotLocked()
	subs := s.subsLocked()
	s.mu.Unlock()

	publish(subs, snap)
}

func (s *Store) clearPersisted(ctx context.Context) {
	if err := s.kv.Remove(ctx, tokenKey); err != nil {
		log.Printf("session: remove token failed: %v", err)
	}
	if err := s.kv.Remove(ctx, userKey); err != nil {
		log.Printf("session: remove user failed: %v", err)
	}
}

func (s *Store) subsLocked() []subscription {
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	return subs
}

// publish runs outside the store lock so listeners may read the store again.
func publish(subs []subscription, snap State) {
	for _, sub := range subs {
		sub.fn(snap)
	}
}
