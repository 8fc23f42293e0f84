package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// saver writes committed snapshots of one session to the store.
// Delayed commits publish from their own goroutine, so saves can arrive out of
// order; anything older than the last saved revision is dropped.
type saver struct {
	store     ports.SessionStore
	sessionID string
	logger    *slog.Logger

	mu       sync.Mutex
	revision uint64
	stopped  bool
}

func newSaver(store ports.SessionStore, sessionID string, revision uint64, logger *slog.Logger) *saver {
	return &saver{store: store, sessionID: sessionID, revision: revision, logger: logger}
}

func (s *saver) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{OnChange: s.save}
}

func (s *saver) save(ctx context.Context, snap *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || snap.Revision <= s.revision {
		return
	}
	if err := s.store.Save(ctx, s.sessionID, snap); err != nil {
		s.logger.Error("failed to save session", "session_id", s.sessionID, "revision", snap.Revision, "err", err)
		return
	}
	s.revision = snap.Revision
}

// advance records a revision saved outside the hooks.
func (s *saver) advance(revision uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if revision > s.revision {
		s.revision = revision
	}
}

func (s *saver) last() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// stop prevents late commits from resurrecting a closed session.
func (s *saver) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}
