// Package session owns the client's single piece of shared mutable state:
// the current models.Session. Store is the only writer; everything else
// reads snapshots or subscribes to changes.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/logging"
)

var ErrIncompleteSession = errors.New("session needs both a token and a user")

// Persistence is the durable mirror of the session.
type Persistence interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Delete(ctx context.Context) error
}

// State is a read-only view of the store.
type State struct {
	Session models.Session
	// Initialized turns true once Restore has finished, successfully or not.
	Initialized bool
}

// Token returns the bearer token, or "" when signed out.
func (s State) Token() string {
	return s.Session.Token
}

type subscriber struct {
	id int
	fn func(State)
}

type Store struct {
	repo Persistence
	log  logging.Logger

	mu    sync.RWMutex
	state State

	subsMu sync.Mutex
	subs   []subscriber
	nextID int
}

func NewStore(repo Persistence, log logging.Logger) *Store {
	return &Store{repo: repo, log: log.With("component", "session")}
}

// Restore loads the persisted session. Storage failures are logged and the
// store stays empty; either way the store is initialized afterwards.
func (s *Store) Restore(ctx context.Context) {
	restored, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to load persisted session", "error", err)
	}

	s.mu.Lock()
	if err == nil && restored.Authenticated() {
		s.state.Session = copySession(restored)
	}
	s.state.Initialized = true
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if snapshot.Session.Authenticated() {
		s.log.Info(ctx, "session restored", "username", snapshot.Session.User.Username)
	} else {
		s.log.Debug(ctx, "no persisted session")
	}
	s.notify(snapshot)
}

// Set replaces the session. Observers see the new state before the
// persistence write starts; a failed write is logged and not rolled back.
func (s *Store) Set(ctx context.Context, token string, user *models.User) error {
	next := models.Session{Token: token, User: user}
	if !next.Authenticated() {
		return ErrIncompleteSession
	}
	next = copySession(next)

	s.mu.Lock()
	s.state.Session = next
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)

	if err := s.repo.Save(ctx, next); err != nil {
		s.log.Error(ctx, "failed to persist session", "error", err)
	}
	return nil
}

// Clear forgets the session in memory, notifies observers, then deletes
// the persisted copy. A failed delete is logged.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.state.Session = models.Session{}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)

	if err := s.repo.Delete(ctx); err != nil {
		s.log.Error(ctx, "failed to delete persisted session", "error", err)
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Session.Token
}

func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Initialized
}

// Subscribe registers fn for change notifications. fn runs synchronously on
// the goroutine that changed the state, with no store lock held.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(state State) {
	s.subsMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(state)
	}
}

func (s *Store) snapshotLocked() State {
	return State{Session: copySession(s.state.Session), Initialized: s.state.Initialized}
}

func copySession(in models.Session) models.Session {
	if in.User == nil {
		return models.Session{Token: in.Token}
	}
	u := *in.User
	return models.Session{Token: in.Token, User: &u}
}
