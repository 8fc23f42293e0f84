package http

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Watch topics accepted by the events endpoint.
const (
	TopicView  = "view"
	TopicSteps = "steps"
	TopicDraft = "draft"
)

type message struct {
	diff *domain.SnapshotDiff
	data string

	// full marks a whole-state message sent to resync a subscriber.
	full bool
}

// event is the SSE event name the message is written under.
func (m message) event() string {
	if m.full {
		return "snapshot"
	}
	return "diff"
}

// matches reports whether the diff touches any watched topic. An empty
// filter and full messages match everything.
func (m message) matches(watch map[string]bool) bool {
	if len(watch) == 0 || m.full {
		return true
	}
	d := m.diff
	return (watch[TopicView] && d.ViewState != nil) ||
		(watch[TopicSteps] && d.Steps != nil) ||
		(watch[TopicDraft] && (d.Draft != nil || d.SubmitPending != nil))
}

// subscriber is stale once a diff could not be delivered to it. Its next
// message is the whole state instead of a diff.
type subscriber struct {
	stale atomic.Bool
}

// StreamManager fans out snapshot diffs to SSE subscribers, per session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan message]*subscriber
	last        map[string]*domain.Snapshot
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan message]*subscriber),
		last:        make(map[string]*domain.Snapshot),
	}
}

// Hooks returns the lifecycle hooks that feed the stream. Register them on the
// session manager.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnChange: func(_ context.Context, snap *domain.Snapshot) {
			sm.Publish(snap)
		},
	}
}

// Publish diffs snap against the last published revision of its session and
// broadcasts the result. Older revisions are dropped.
func (sm *StreamManager) Publish(snap *domain.Snapshot) {
	sm.mu.Lock()
	prev := sm.last[snap.SessionID]
	if prev != nil && snap.Revision <= prev.Revision {
		sm.mu.Unlock()
		return
	}
	sm.last[snap.SessionID] = snap.Clone()
	sm.mu.Unlock()

	if diff := domain.Diff(prev, snap); diff != nil {
		sm.broadcast(snap, diff)
	}
}

// Forget drops the cached state of a closed session.
func (sm *StreamManager) Forget(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.last, sessionID)
}

// Subscribe registers a listener for one session. The returned func
// unregisters it and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan message, 16)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan message]*subscriber)
	}
	sm.subscribers[sessionID][ch] = &subscriber{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		subs, ok := sm.subscribers[sessionID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(sm.subscribers, sessionID)
		}
	}
}

// Subscribers returns the number of listeners on a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

func (sm *StreamManager) broadcast(snap *domain.Snapshot, diff *domain.SnapshotDiff) {
	msg, err := newMessage(diff, false)
	if err != nil {
		return
	}
	var full *message

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch, sub := range sm.subscribers[diff.SessionID] {
		out := msg
		if sub.stale.Load() {
			if full == nil {
				m, err := newMessage(domain.Diff(nil, snap), true)
				if err != nil {
					continue
				}
				full = &m
			}
			out = *full
		}
		select {
		case ch <- out:
			sub.stale.Store(false)
		default:
			sub.stale.Store(true)
		}
	}
}

func newMessage(diff *domain.SnapshotDiff, full bool) (message, error) {
	data, err := json.Marshal(diff)
	if err != nil {
		return message{}, err
	}
	return message{diff: diff, data: string(data), full: full}, nil
}

func parseWatch(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	watch := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			watch[t] = true
		}
	}
	return watch
}
