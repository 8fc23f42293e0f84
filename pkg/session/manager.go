package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock is held for one intent.
const DefaultLockTTL = 30 * time.Second

// DefaultSweepInterval is how often SweepEvery looks for expired sessions.
const DefaultSweepInterval = time.Minute

// Factory builds application states. *waypoint.Engine implements it.
type Factory interface {
	NewTour(sessionID string, hooks ...domain.LifecycleHooks) *runtime.App
	Restore(snap *domain.Snapshot, hooks ...domain.LifecycleHooks) *runtime.App
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// live is an application state owned by this replica.
type live struct {
	app   *runtime.App
	saved *saver
}

// Manager maps session IDs to live application states.
// Intents on one session are serialised; snapshots are saved to the store after
// every commit, including delayed ones.
type Manager struct {
	factory Factory
	store   ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	appsMu sync.RWMutex
	apps   map[string]*live

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	newID   func() string
	logger  *slog.Logger
	onEvict []func(sessionID string)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks attaches hooks to every session the Manager opens.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithEvictionHandler registers fn to run after a session leaves this replica,
// either closed or expired from the store.
func WithEvictionHandler(fn func(sessionID string)) Option {
	return func(m *Manager) {
		m.onEvict = append(m.onEvict, fn)
	}
}

// WithSessionIDs replaces the UUID generator used by Create.
func WithSessionIDs(next func() string) Option {
	return func(m *Manager) {
		m.newID = next
	}
}

// NewManager creates a Session Manager backed by store.
func NewManager(factory Factory, store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		store:   store,
		locks:   make(map[string]*lockEntry),
		apps:    make(map[string]*live),
		lockTTL: DefaultLockTTL,
		newID:   func() string { return uuid.New().String() },
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the local and, if configured, the distributed lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Create starts a new session under a fresh ID.
func (m *Manager) Create(ctx context.Context) (*runtime.App, error) {
	id := m.newID()
	var app *runtime.App
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		app, err = m.start(ctx, id)
		return err
	})
	return app, err
}

// Open returns the session, restoring it from the store or starting it if it does not exist.
func (m *Manager) Open(ctx context.Context, sessionID string) (*runtime.App, error) {
	var app *runtime.App
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		app, err = m.attach(ctx, sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			app, err = m.start(ctx, sessionID)
		}
		return err
	})
	return app, err
}

// Get returns an existing session. Unknown sessions fail with domain.ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, sessionID string) (*runtime.App, error) {
	var app *runtime.App
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		app, err = m.attach(ctx, sessionID)
		return err
	})
	return app, err
}

// Do runs fn against an existing session while holding its lock.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *runtime.App) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		app, err := m.attach(ctx, sessionID)
		if err != nil {
			return err
		}
		return fn(ctx, app)
	})
}

// Close drops the session: in-flight commits finish, then its snapshot is deleted.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if !m.evict(sessionID) {
			if _, err := m.store.Load(ctx, sessionID); err != nil {
				return err
			}
		}
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("delete session %s: %w", sessionID, err)
		}
		m.logger.Debug("session closed", "session_id", sessionID)
		return nil
	})
}

// Sweep evicts every live session whose snapshot is gone from the store,
// which is how expired sessions leave memory. It returns how many were evicted.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	m.appsMu.RLock()
	ids := make([]string, 0, len(m.apps))
	for id := range m.apps {
		ids = append(ids, id)
	}
	m.appsMu.RUnlock()

	evicted := 0
	for _, id := range ids {
		err := m.WithLock(ctx, id, func(ctx context.Context) error {
			_, err := m.store.Load(ctx, id)
			if errors.Is(err, domain.ErrSessionNotFound) {
				if m.evict(id) {
					evicted++
					m.logger.Debug("session expired", "session_id", id)
				}
				return nil
			}
			return err
		})
		if err != nil {
			return evicted, err
		}
	}
	return evicted, nil
}

// SweepEvery calls Sweep on every tick until ctx is done.
func (m *Manager) SweepEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil && ctx.Err() == nil {
				m.logger.Warn("session sweep failed", "err", err)
			}
		}
	}
}

// Live returns the number of sessions held by this replica.
func (m *Manager) Live() int {
	m.appsMu.RLock()
	defer m.appsMu.RUnlock()
	return len(m.apps)
}

// evict drops the live session, if any. In-flight commits finish but are no
// longer saved. Must hold the session lock.
func (m *Manager) evict(sessionID string) bool {
	m.appsMu.Lock()
	l, ok := m.apps[sessionID]
	delete(m.apps, sessionID)
	m.appsMu.Unlock()
	if !ok {
		return false
	}

	l.saved.stop()
	l.app.Close()
	for _, fn := range m.onEvict {
		fn(sessionID)
	}
	return true
}

// List returns the stored session IDs.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Shutdown waits for the in-flight commits of every live session.
func (m *Manager) Shutdown() {
	m.appsMu.RLock()
	apps := make([]*runtime.App, 0, len(m.apps))
	for _, l := range m.apps {
		apps = append(apps, l.app)
	}
	m.appsMu.RUnlock()

	for _, app := range apps {
		app.Close()
	}
}

// attach returns the live app, restoring from the store when this replica has
// none or when another replica committed a newer revision. Must hold the session lock.
func (m *Manager) attach(ctx context.Context, sessionID string) (*runtime.App, error) {
	m.appsMu.RLock()
	l, ok := m.apps[sessionID]
	m.appsMu.RUnlock()

	snap, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if ok && errors.Is(err, domain.ErrSessionNotFound) {
			m.evict(sessionID)
			m.logger.Debug("session expired", "session_id", sessionID)
			return nil, err
		}
		if ok {
			m.logger.Warn("session store unavailable, using local state", "session_id", sessionID, "err", err)
			return l.app, nil
		}
		return nil, err
	}
	if ok && snap.Revision <= l.saved.last() {
		return l.app, nil
	}
	if ok {
		l.saved.stop()
		l.app.Close()
	}

	s := newSaver(m.store, sessionID, snap.Revision, m.logger)
	app := m.factory.Restore(snap, m.hooks.Merge(s.hooks()))
	m.track(sessionID, app, s)
	m.logger.Debug("session restored", "session_id", sessionID, "revision", snap.Revision)
	return app, nil
}

// start creates and saves a new session. Must hold the session lock.
func (m *Manager) start(ctx context.Context, sessionID string) (*runtime.App, error) {
	s := newSaver(m.store, sessionID, 0, m.logger)
	app := m.factory.NewTour(sessionID, m.hooks.Merge(s.hooks()))
	snap := app.Snapshot()
	if err := m.store.Save(ctx, sessionID, snap); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	s.advance(snap.Revision)
	m.track(sessionID, app, s)
	m.logger.Info("session started", "session_id", sessionID)
	return app, nil
}

func (m *Manager) track(sessionID string, app *runtime.App, s *saver) {
	m.appsMu.Lock()
	defer m.appsMu.Unlock()
	m.apps[sessionID] = &live{app: app, saved: s}
}
