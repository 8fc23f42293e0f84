package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
)

type entry struct {
	snap    *domain.Snapshot
	expires time.Time
}

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]entry
	mu   sync.RWMutex

	ttl time.Duration
	now func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL expires a session ttl after its last Save. Zero keeps sessions forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock replaces time.Now when stamping and checking expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) expired(e entry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Save keeps a private copy of the snapshot and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	e := entry{snap: snap.Clone()}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = e
	return nil
}

// Load returns a copy so callers cannot mutate the stored snapshot.
// An expired snapshot is removed and reported as missing.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	now := s.now()

	s.mu.RLock()
	e, ok := s.data[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.expired(e, now) {
		s.mu.Lock()
		if cur, ok := s.data[sessionID]; ok && s.expired(cur, now) {
			delete(s.data, sessionID)
		}
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	return e.snap.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the live session IDs in lexical order and drops expired ones.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]string, 0, len(s.data))
	for id, e := range s.data {
		if s.expired(e, now) {
			delete(s.data, id)
			continue
		}
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
