// Package session holds the client-side authentication state: the current
// access token and the cached user profile, persisted in a Storage and
// observable through change events.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
	"golang.org/x/oauth2"
)

// EventType identifies a session change.
type EventType int

// Session change events.
const (
	EventSignedIn EventType = iota + 1
	EventUserUpdated
	EventSignedOut
	EventExpired
)

func (t EventType) String() string {
	switch t {
	case EventSignedIn:
		return "signed_in"
	case EventUserUpdated:
		return "user_updated"
	case EventSignedOut:
		return "signed_out"
	case EventExpired:
		return "expired"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Event is published to subscribers after every session change.
type Event struct {
	Session model.Session
	Type    EventType
}

// Store owns the current session. All changes go through a single mutation
// point which writes storage first and then notifies subscribers.
type Store struct {
	storage     Storage
	subscribers map[int]func(Event)
	current     model.Session
	nextID      int
	mu          sync.RWMutex
}

// NewStore loads the persisted session, if any, from storage.
func NewStore(ctx context.Context, storage Storage) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("%w: storage is required", common.ErrStorageFailure)
	}

	s := &Store{
		storage:     storage,
		subscribers: make(map[int]func(Event)),
	}

	token, ok, err := storage.Get(ctx, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok || token == "" {
		return s, nil
	}
	s.current.AccessToken = token

	rawUser, ok, err := storage.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if ok && rawUser != "" {
		if err := json.Unmarshal([]byte(rawUser), &s.current.User); err != nil {
			slog.Warn("Ignoring unreadable cached user profile", "error", err)
			s.current.User = model.User{}
		}
	}

	return s, nil
}

// Current returns a copy of the current session.
func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool {
	return s.Current().Valid()
}

// Save replaces the current session, typically after login or register.
func (s *Store) Save(ctx context.Context, sess model.Session) error {
	if !sess.Valid() {
		return fmt.Errorf("%w: access token is empty", common.ErrNoSession)
	}
	return s.apply(ctx, sess, EventSignedIn)
}

// UpdateUser refreshes the cached profile of the current session.
func (s *Store) UpdateUser(ctx context.Context, user model.User) error {
	sess := s.Current()
	if !sess.Valid() {
		return common.ErrNoSession
	}
	sess.User = user
	return s.apply(ctx, sess, EventUserUpdated)
}

// Clear destroys the session. reason is EventSignedOut for an explicit
// logout and EventExpired when the server rejected the token. The in-memory
// session is cleared even when storage fails.
func (s *Store) Clear(ctx context.Context, reason EventType) error {
	if reason != EventSignedOut && reason != EventExpired {
		reason = EventSignedOut
	}
	return s.apply(ctx, model.Session{}, reason)
}

// Subscribe registers fn for session events and returns a function that
// removes it. fn runs synchronously on the goroutine that changed the session.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Token implements oauth2.TokenSource so the store can back an
// oauth2.Transport.
func (s *Store) Token() (*oauth2.Token, error) {
	sess := s.Current()
	if !sess.Valid() {
		return nil, common.ErrNoSession
	}
	return &oauth2.Token{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		Expiry:      sess.ExpiresAt(),
	}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)

// apply is the single mutation point for the session.
func (s *Store) apply(ctx context.Context, next model.Session, evt EventType) error {
	s.mu.Lock()
	err := s.persist(ctx, next)
	if err == nil || !next.Valid() {
		s.current = next
	}
	subscribers := s.snapshotSubscribers()
	s.mu.Unlock()

	if err != nil && next.Valid() {
		return err
	}

	event := Event{Type: evt, Session: next}
	for _, fn := range subscribers {
		fn(event)
	}

	slog.Debug("Session changed", "event", evt.String(), "user_id", next.User.ID)
	return err
}

// persist writes next to storage. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, next model.Session) error {
	if !next.Valid() {
		return errors.Join(
			s.storage.Delete(ctx, KeyAccessToken),
			s.storage.Delete(ctx, KeyUser),
		)
	}

	user, err := json.Marshal(next.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.storage.Set(ctx, KeyAccessToken, next.AccessToken); err != nil {
		return err
	}
	return s.storage.Set(ctx, KeyUser, string(user))
}

// snapshotSubscribers returns subscribers in registration order. Callers hold s.mu.
func (s *Store) snapshotSubscribers() []func(Event) {
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subscribers[id])
	}
	return fns
}
