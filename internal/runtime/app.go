package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Sleeper blocks for the cosmetic delay before a commit.
type Sleeper func(time.Duration)

// App is the application state of one tour session.
// It owns the step list, the navigator and the editor; every public method is a
// single atomic state replacement.
type App struct {
	sessionID string

	mu       sync.Mutex
	steps    *StepList
	nav      Navigator
	editor   Editor
	revision uint64

	ids             IDGenerator
	transitionDelay time.Duration
	submitDelay     time.Duration
	sleep           Sleeper
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	seed            []domain.Draft

	inflight sync.WaitGroup
}

// Option configures an App.
type Option func(*App)

// WithTransitionDelay sets the pause between a view-change request and its commit.
// Zero commits immediately.
func WithTransitionDelay(d time.Duration) Option {
	return func(a *App) {
		a.transitionDelay = d
	}
}

// WithSubmitDelay sets the pause between a submission and its commit.
// Zero commits immediately.
func WithSubmitDelay(d time.Duration) Option {
	return func(a *App) {
		a.submitDelay = d
	}
}

// WithSleeper replaces time.Sleep for delayed commits.
func WithSleeper(s Sleeper) Option {
	return func(a *App) {
		a.sleep = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithIDGenerator overrides the default step ID sequence.
func WithIDGenerator(ids IDGenerator) Option {
	return func(a *App) {
		a.ids = ids
	}
}

// WithSeedSteps appends steps at construction, in order, without validation or delay.
func WithSeedSteps(drafts ...domain.Draft) Option {
	return func(a *App) {
		a.seed = append(a.seed, drafts...)
	}
}

// NewApp creates the application state for a session, starting on the hero view.
func NewApp(sessionID string, opts ...Option) *App {
	a := &App{
		sessionID:       sessionID,
		nav:             NewNavigator(),
		editor:          NewEditor(),
		transitionDelay: domain.DefaultTransitionDelay,
		submitDelay:     domain.DefaultSubmitDelay,
		sleep:           time.Sleep,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.ids == nil {
		a.ids = NewSequence(0)
	}
	a.steps = NewStepList(a.ids)
	for _, d := range a.seed {
		a.steps.Add(d)
	}
	a.seed = nil
	a.logger = a.logger.With("session_id", sessionID)
	return a
}

// Restore rebuilds an App from a snapshot.
// In-flight work is not restored: the transition and pending flags start cleared.
func Restore(snap *domain.Snapshot, opts ...Option) *App {
	if snap.NextSeq > 0 {
		opts = append([]Option{WithIDGenerator(NewSequence(snap.NextSeq))}, opts...)
	}
	a := NewApp(snap.SessionID, opts...)
	a.steps.load(snap.Steps)
	a.nav.state = domain.ViewState{View: snap.ViewState.View, StepIndex: snap.ViewState.StepIndex}
	if a.nav.state.View == "" {
		a.nav.state.View = domain.ViewHero
	}
	a.nav.Clamp(a.steps.Len())
	a.editor.draft = snap.Draft
	if a.editor.draft.Category == "" {
		a.editor.draft.Category = domain.CategoryCustom
	}
	a.revision = snap.Revision
	return a
}

// SessionID returns the owning session.
func (a *App) SessionID() string {
	return a.sessionID
}

// Snapshot returns a consistent copy of the whole state.
func (a *App) Snapshot() *domain.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *App) snapshotLocked() *domain.Snapshot {
	snap := &domain.Snapshot{
		SessionID:     a.sessionID,
		Revision:      a.revision,
		ViewState:     a.nav.State(),
		Steps:         a.steps.Steps(),
		Draft:         a.editor.Draft(),
		SubmitPending: a.editor.pending,
	}
	if seq, ok := a.ids.(*Sequence); ok {
		snap.NextSeq = seq.Peek()
	}
	return snap
}

// commitLocked bumps the revision and captures the committed state.
func (a *App) commitLocked() *domain.Snapshot {
	a.revision++
	return a.snapshotLocked()
}

// publish fires the collected event hooks, then OnChange. Must be called without the lock.
func (a *App) publish(ctx context.Context, snap *domain.Snapshot, events ...func(context.Context)) {
	for _, fire := range events {
		fire(ctx)
	}
	if snap != nil && a.hooks.OnChange != nil {
		a.hooks.OnChange(ctx, snap)
	}
}

func (a *App) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: a.sessionID}
}

// Transition requests a view change. The view and step index commit together after
// the transition delay; until then Transitioning is true and further view changes
// are rejected with domain.ErrTransitionInFlight.
func (a *App) Transition(ctx context.Context, intent domain.Intent) (*Pending[domain.ViewState], error) {
	a.mu.Lock()
	if a.nav.state.Transitioning {
		a.mu.Unlock()
		return nil, domain.ErrTransitionInFlight
	}
	r, err := a.nav.check(intent)
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}

	if a.transitionDelay <= 0 {
		state, snap, ev := a.commitTransitionLocked(intent, r)
		a.mu.Unlock()
		a.publish(ctx, snap, ev)
		return resolved(state), nil
	}

	a.nav.state.Transitioning = true
	snap := a.commitLocked()
	a.mu.Unlock()
	a.publish(ctx, snap)

	a.logger.Debug("view transition started", "intent", intent, "to", r.to)
	p := newPending[domain.ViewState]()
	bg := context.WithoutCancel(ctx)
	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		a.sleep(a.transitionDelay)

		a.mu.Lock()
		state, snap, ev := a.commitTransitionLocked(intent, r)
		a.mu.Unlock()

		a.publish(bg, snap, ev)
		p.resolve(state, nil)
	}()
	return p, nil
}

func (a *App) commitTransitionLocked(intent domain.Intent, r route) (domain.ViewState, *domain.Snapshot, func(context.Context)) {
	from := a.nav.state.View
	a.nav.commit(r, a.steps.Len())
	state := a.nav.State()
	snap := a.commitLocked()

	a.logger.Debug("view transition committed", "intent", intent, "from", from, "to", state.View, "step_index", state.StepIndex)
	ev := &domain.ViewEvent{
		EventBase: a.base(domain.EventViewChange),
		From:      from,
		To:        state.View,
		Intent:    intent,
		StepIndex: state.StepIndex,
	}
	return state, snap, func(ctx context.Context) {
		if a.hooks.OnViewChange != nil {
			a.hooks.OnViewChange(ctx, ev)
		}
	}
}

// StartDemo moves from the hero view to the tour, resetting the cursor to 0.
func (a *App) StartDemo(ctx context.Context) (*Pending[domain.ViewState], error) {
	return a.Transition(ctx, domain.IntentStartDemo)
}

// OpenEditor moves from the hero or tour view to the editor.
func (a *App) OpenEditor(ctx context.Context) (*Pending[domain.ViewState], error) {
	return a.Transition(ctx, domain.IntentOpenEditor)
}

// BackToHero returns to the landing view from the tour or the editor.
func (a *App) BackToHero(ctx context.Context) (*Pending[domain.ViewState], error) {
	return a.Transition(ctx, domain.IntentBackToHero)
}

// BackToTour returns from the editor to the tour without resetting the cursor.
func (a *App) BackToTour(ctx context.Context) (*Pending[domain.ViewState], error) {
	return a.Transition(ctx, domain.IntentBackToTour)
}

// Next advances the tour cursor. It is a no-op on the last step or outside the tour.
func (a *App) Next(ctx context.Context) bool {
	return a.move(ctx, func() bool { return a.nav.Next(a.steps.Len()) })
}

// Prev moves the tour cursor back. It is a no-op on the first step or outside the tour.
func (a *App) Prev(ctx context.Context) bool {
	return a.move(ctx, a.nav.Prev)
}

// GoTo jumps the tour cursor to index i. Invalid positions are ignored.
func (a *App) GoTo(ctx context.Context, i int) bool {
	return a.move(ctx, func() bool { return a.nav.GoTo(i, a.steps.Len()) })
}

func (a *App) move(ctx context.Context, fn func() bool) bool {
	a.mu.Lock()
	if !fn() {
		a.mu.Unlock()
		return false
	}
	snap := a.commitLocked()
	a.mu.Unlock()
	a.publish(ctx, snap)
	return true
}

// Delete removes a step. Unknown IDs are ignored. If the cursor falls off the end
// of the list it is clamped to the new last step.
func (a *App) Delete(ctx context.Context, id string) bool {
	a.mu.Lock()
	removed, idx, ok := a.steps.Delete(id)
	if !ok {
		a.mu.Unlock()
		return false
	}
	a.nav.Clamp(a.steps.Len())
	snap := a.commitLocked()
	a.mu.Unlock()

	a.logger.Debug("step deleted", "step_id", id, "index", idx)
	ev := &domain.StepEvent{EventBase: a.base(domain.EventStepDeleted), Step: removed, FromIndex: idx}
	a.publish(ctx, snap, func(ctx context.Context) {
		if a.hooks.OnStepDeleted != nil {
			a.hooks.OnStepDeleted(ctx, ev)
		}
	})
	return true
}

// Reorder moves the step at from to position to. Out-of-range indices are rejected
// with domain.ErrIndexOutOfRange and nothing changes.
func (a *App) Reorder(ctx context.Context, from, to int) error {
	a.mu.Lock()
	if err := a.steps.Reorder(from, to); err != nil {
		a.mu.Unlock()
		return err
	}
	if from == to {
		a.mu.Unlock()
		return nil
	}
	moved := a.steps.steps[to]
	snap := a.commitLocked()
	a.mu.Unlock()

	ev := &domain.StepEvent{EventBase: a.base(domain.EventStepsReordered), Step: moved, FromIndex: from, ToIndex: to}
	a.publish(ctx, snap, func(ctx context.Context) {
		if a.hooks.OnStepsReordered != nil {
			a.hooks.OnStepsReordered(ctx, ev)
		}
	})
	return nil
}

// UpdateDraftField sets one draft field by name.
func (a *App) UpdateDraftField(ctx context.Context, name, value string) error {
	a.mu.Lock()
	if err := a.editor.UpdateField(name, value); err != nil {
		a.mu.Unlock()
		return err
	}
	snap := a.commitLocked()
	a.mu.Unlock()
	a.publish(ctx, snap)
	return nil
}

// SelectTemplate overwrites the draft with a template. It does not submit.
func (a *App) SelectTemplate(ctx context.Context, t domain.Template) {
	a.mu.Lock()
	a.editor.SelectTemplate(t)
	snap := a.commitLocked()
	a.mu.Unlock()
	a.publish(ctx, snap)
}

// ResetDraft clears the draft.
func (a *App) ResetDraft(ctx context.Context) {
	a.mu.Lock()
	a.editor.Reset()
	snap := a.commitLocked()
	a.mu.Unlock()
	a.publish(ctx, snap)
}

// Draft returns the current draft.
func (a *App) Draft() domain.Draft {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editor.Draft()
}

// Submit validates the draft and, after the submit delay, appends it as a new step
// and resets the draft. A validation failure leaves both the list and the draft
// unchanged. While a submission is pending further calls are ignored and return
// domain.ErrSubmitPending.
func (a *App) Submit(ctx context.Context) (*Pending[domain.Step], error) {
	a.mu.Lock()
	if a.editor.pending {
		a.mu.Unlock()
		a.logger.Debug("submit ignored, submission pending")
		return nil, domain.ErrSubmitPending
	}
	draft, err := a.editor.Validate()
	if err != nil {
		a.mu.Unlock()
		a.publishValidation(ctx, err)
		return nil, err
	}

	if a.submitDelay <= 0 {
		step, snap, ev := a.commitSubmitLocked(draft)
		a.mu.Unlock()
		a.publish(ctx, snap, ev)
		return resolved(step), nil
	}

	a.editor.pending = true
	snap := a.commitLocked()
	a.mu.Unlock()
	a.publish(ctx, snap)

	p := newPending[domain.Step]()
	bg := context.WithoutCancel(ctx)
	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		a.sleep(a.submitDelay)

		a.mu.Lock()
		step, snap, ev := a.commitSubmitLocked(draft)
		a.mu.Unlock()

		a.publish(bg, snap, ev)
		p.resolve(step, nil)
	}()
	return p, nil
}

func (a *App) commitSubmitLocked(draft domain.Draft) (domain.Step, *domain.Snapshot, func(context.Context)) {
	step := a.steps.Add(draft)
	a.editor.Reset()
	a.editor.pending = false
	snap := a.commitLocked()

	a.logger.Debug("step added", "step_id", step.ID, "category", step.Category)
	ev := &domain.StepEvent{EventBase: a.base(domain.EventStepAdded), Step: step, ToIndex: len(snap.Steps) - 1}
	return step, snap, func(ctx context.Context) {
		if a.hooks.OnStepAdded != nil {
			a.hooks.OnStepAdded(ctx, ev)
		}
	}
}

func (a *App) publishValidation(ctx context.Context, err error) {
	a.logger.Debug("submission rejected", "err", err)
	if a.hooks.OnValidationFailed == nil {
		return
	}
	var fields []string
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		fields = ve.Fields
	}
	a.hooks.OnValidationFailed(ctx, &domain.ValidationEvent{
		EventBase: a.base(domain.EventValidationFailed),
		Fields:    fields,
	})
}

// Close waits for delayed commits that are still running.
func (a *App) Close() {
	a.inflight.Wait()
}
