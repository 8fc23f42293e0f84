package runtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gate holds delayed commits until released.
type gate struct {
	release chan struct{}
}

func newGate() *gate {
	return &gate{release: make(chan struct{})}
}

func (g *gate) sleep(time.Duration) { <-g.release }

func (g *gate) open() { close(g.release) }

func instant(opts ...runtime.Option) []runtime.Option {
	return append([]runtime.Option{
		runtime.WithTransitionDelay(0),
		runtime.WithSubmitDelay(0),
		runtime.WithIDGenerator(runtime.NewSequence(100)),
	}, opts...)
}

func seeded(n int) runtime.Option {
	drafts := make([]domain.Draft, n)
	for i := range drafts {
		drafts[i] = domain.Draft{Title: "Step", Description: "Body"}
	}
	return runtime.WithSeedSteps(drafts...)
}

func mustWait[T any](t *testing.T, p *runtime.Pending[T], err error) T {
	t.Helper()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := p.Wait(ctx)
	require.NoError(t, err)
	return v
}

func waitView(t *testing.T) func(*runtime.Pending[domain.ViewState], error) domain.ViewState {
	return func(p *runtime.Pending[domain.ViewState], err error) domain.ViewState {
		return mustWait(t, p, err)
	}
}

func waitStep(t *testing.T) func(*runtime.Pending[domain.Step], error) domain.Step {
	return func(p *runtime.Pending[domain.Step], err error) domain.Step {
		return mustWait(t, p, err)
	}
}

func fillDraft(t *testing.T, app *runtime.App, title, desc string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, app.UpdateDraftField(ctx, "title", title))
	require.NoError(t, app.UpdateDraftField(ctx, "description", desc))
}

func TestApp_InitialState(t *testing.T) {
	app := runtime.NewApp("s1", instant()...)
	snap := app.Snapshot()

	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, domain.ViewHero, snap.ViewState.View)
	assert.Equal(t, 0, snap.ViewState.StepIndex)
	assert.False(t, snap.ViewState.Transitioning)
	assert.Empty(t, snap.Steps)
	assert.Equal(t, domain.NewDraft(), snap.Draft)
}

func TestApp_SubmitAddsExactlyOneStep(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(2))...)
	before := app.Snapshot()

	fillDraft(t, app, "  New feature ", " Try it out ")
	step := waitStep(t)(app.Submit(ctx))

	after := app.Snapshot()
	require.Len(t, after.Steps, len(before.Steps)+1)
	assert.Equal(t, step, after.Steps[len(after.Steps)-1])
	assert.Equal(t, "New feature", step.Title)
	assert.Equal(t, "Try it out", step.Description)
	for _, s := range before.Steps {
		assert.NotEqual(t, s.ID, step.ID)
	}
	assert.Equal(t, domain.NewDraft(), after.Draft, "draft resets after a successful submit")
}

func TestApp_SubmitInvalidDraftLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	var failures []*domain.ValidationEvent
	app := runtime.NewApp("s1", instant(seeded(1), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnValidationFailed: func(_ context.Context, e *domain.ValidationEvent) { failures = append(failures, e) },
	}))...)
	fillDraft(t, app, "", "x")
	before := app.Snapshot()

	p, err := app.Submit(ctx)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrValidation)
	after := app.Snapshot()
	assert.Equal(t, before.Steps, after.Steps)
	assert.Equal(t, before.Draft, after.Draft)
	require.Len(t, failures, 1)
	assert.Equal(t, []string{"title"}, failures[0].Fields)
}

func TestApp_SubmitWhitespaceOnlyRejected(t *testing.T) {
	app := runtime.NewApp("s1", instant()...)
	fillDraft(t, app, "   ", "\t")

	_, err := app.Submit(context.Background())

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"title", "description"}, ve.Fields)
	assert.Empty(t, app.Snapshot().Steps)
}

func TestApp_SubmitPendingIgnoresRepeats(t *testing.T) {
	ctx := context.Background()
	g := newGate()
	app := runtime.NewApp("s1",
		runtime.WithSubmitDelay(time.Millisecond),
		runtime.WithSleeper(g.sleep),
	)
	fillDraft(t, app, "Once", "Only once")

	p, err := app.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, app.Snapshot().SubmitPending)
	assert.Empty(t, app.Snapshot().Steps, "nothing commits before the delay ends")

	for i := 0; i < 3; i++ {
		again, err := app.Submit(ctx)
		assert.Nil(t, again)
		assert.ErrorIs(t, err, domain.ErrSubmitPending)
	}

	g.open()
	step, err := p.Wait(ctx)
	require.NoError(t, err)
	app.Close()

	snap := app.Snapshot()
	assert.False(t, snap.SubmitPending)
	require.Len(t, snap.Steps, 1)
	assert.Equal(t, step.ID, snap.Steps[0].ID)
}

func TestApp_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(3))...)
	waitView(t)(app.StartDemo(ctx))
	app.Next(ctx)
	before := app.Snapshot()

	assert.False(t, app.Delete(ctx, "does-not-exist"))

	after := app.Snapshot()
	assert.Equal(t, before.Steps, after.Steps)
	assert.Equal(t, before.ViewState, after.ViewState)
	assert.Equal(t, before.Revision, after.Revision)
}

func TestApp_DeleteLastStepClampsIndex(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(3))...)
	waitView(t)(app.StartDemo(ctx))
	app.Next(ctx)
	app.Next(ctx)
	snap := app.Snapshot()
	require.Equal(t, 2, snap.ViewState.StepIndex)

	require.True(t, app.Delete(ctx, snap.Steps[2].ID))

	after := app.Snapshot()
	assert.Len(t, after.Steps, 2)
	assert.Equal(t, 1, after.ViewState.StepIndex)
}

func TestApp_DeleteAllStepsClampsToZero(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(1))...)
	waitView(t)(app.StartDemo(ctx))

	require.True(t, app.Delete(ctx, app.Snapshot().Steps[0].ID))

	assert.Equal(t, 0, app.Snapshot().ViewState.StepIndex)
	assert.False(t, app.Next(ctx))
	assert.False(t, app.Prev(ctx))
}

func TestApp_NextPrevBounds(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(2))...)

	assert.False(t, app.Next(ctx), "navigation is inactive outside the tour")

	waitView(t)(app.StartDemo(ctx))
	assert.False(t, app.Prev(ctx), "prev is a no-op on the first step")
	assert.True(t, app.Next(ctx))
	assert.False(t, app.Next(ctx), "next is a no-op on the last step")
	assert.Equal(t, 1, app.Snapshot().ViewState.StepIndex)
	assert.True(t, app.Prev(ctx))
	assert.Equal(t, 0, app.Snapshot().ViewState.StepIndex)
}

func TestApp_GoTo(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(3))...)
	waitView(t)(app.StartDemo(ctx))

	assert.True(t, app.GoTo(ctx, 2))
	assert.False(t, app.GoTo(ctx, 3))
	assert.False(t, app.GoTo(ctx, -1))
	assert.Equal(t, 2, app.Snapshot().ViewState.StepIndex)
}

func TestApp_StartDemoResetsIndex(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(3))...)
	waitView(t)(app.StartDemo(ctx))
	app.Next(ctx)
	app.Next(ctx)
	waitView(t)(app.BackToHero(ctx))
	assert.Equal(t, 2, app.Snapshot().ViewState.StepIndex)

	state := waitView(t)(app.StartDemo(ctx))

	assert.Equal(t, domain.ViewTour, state.View)
	assert.Equal(t, 0, state.StepIndex)
}

func TestApp_BackToTourKeepsIndex(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(3))...)
	waitView(t)(app.StartDemo(ctx))
	app.Next(ctx)

	waitView(t)(app.OpenEditor(ctx))
	state := waitView(t)(app.BackToTour(ctx))

	assert.Equal(t, domain.ViewTour, state.View)
	assert.Equal(t, 1, state.StepIndex)
}

func TestApp_TransitionTable(t *testing.T) {
	tests := []struct {
		from    domain.View
		intent  domain.Intent
		want    domain.View
		allowed bool
	}{
		{domain.ViewHero, domain.IntentStartDemo, domain.ViewTour, true},
		{domain.ViewHero, domain.IntentOpenEditor, domain.ViewEditor, true},
		{domain.ViewHero, domain.IntentBackToHero, "", false},
		{domain.ViewHero, domain.IntentBackToTour, "", false},
		{domain.ViewTour, domain.IntentBackToHero, domain.ViewHero, true},
		{domain.ViewTour, domain.IntentOpenEditor, domain.ViewEditor, true},
		{domain.ViewTour, domain.IntentStartDemo, "", false},
		{domain.ViewTour, domain.IntentBackToTour, "", false},
		{domain.ViewEditor, domain.IntentBackToTour, domain.ViewTour, true},
		{domain.ViewEditor, domain.IntentBackToHero, domain.ViewHero, true},
		{domain.ViewEditor, domain.IntentStartDemo, "", false},
		{domain.ViewEditor, domain.IntentOpenEditor, "", false},
		{domain.ViewHero, domain.IntentNextStep, "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.intent), func(t *testing.T) {
			ctx := context.Background()
			app := runtime.Restore(&domain.Snapshot{
				SessionID: "s1",
				ViewState: domain.ViewState{View: tt.from},
			}, instant()...)

			p, err := app.Transition(ctx, tt.intent)
			if !tt.allowed {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.Equal(t, tt.from, app.Snapshot().ViewState.View)
				return
			}
			state := mustWait(t, p, err)
			assert.Equal(t, tt.want, state.View)
		})
	}
}

func TestApp_TransitionIsTwoPhase(t *testing.T) {
	ctx := context.Background()
	g := newGate()
	var views []domain.ViewState
	var mu sync.Mutex
	app := runtime.NewApp("s1",
		seeded(2),
		runtime.WithTransitionDelay(time.Millisecond),
		runtime.WithSleeper(g.sleep),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnChange: func(_ context.Context, s *domain.Snapshot) {
				mu.Lock()
				defer mu.Unlock()
				views = append(views, s.ViewState)
			},
		}),
	)

	p, err := app.StartDemo(ctx)
	require.NoError(t, err)

	mid := app.Snapshot().ViewState
	assert.True(t, mid.Transitioning)
	assert.Equal(t, domain.ViewHero, mid.View, "the view must not change before the commit")

	_, err = app.OpenEditor(ctx)
	assert.ErrorIs(t, err, domain.ErrTransitionInFlight)

	g.open()
	state, err := p.Wait(ctx)
	require.NoError(t, err)
	app.Close()

	assert.Equal(t, domain.ViewState{View: domain.ViewTour, StepIndex: 0}, state)
	assert.Equal(t, state, app.Snapshot().ViewState)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.ViewState{
		{View: domain.ViewHero, Transitioning: true},
		{View: domain.ViewTour},
	}, views)
}

func TestApp_ReorderKeepsRecordsAndRejectsOutOfRange(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(3))...)
	before := app.Snapshot()

	require.NoError(t, app.Reorder(ctx, 0, 2))
	after := app.Snapshot()
	assert.ElementsMatch(t, before.Steps, after.Steps)
	assert.Equal(t, before.Steps[0], after.Steps[2])

	err := app.Reorder(ctx, 0, 5)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	assert.Equal(t, after.Steps, app.Snapshot().Steps)
}

func TestApp_SelectTemplateDoesNotSubmit(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant()...)
	tpl := domain.Template{Name: "welcome", Title: "Welcome", Description: "Start here", Category: domain.CategoryOnboarding}

	app.SelectTemplate(ctx, tpl)

	snap := app.Snapshot()
	assert.Empty(t, snap.Steps)
	assert.Equal(t, tpl.Draft(), snap.Draft)

	step := waitStep(t)(app.Submit(ctx))
	assert.Equal(t, domain.CategoryOnboarding, step.Category)
}

func TestApp_HooksFire(t *testing.T) {
	ctx := context.Background()
	var got []domain.EventType
	record := func(e domain.EventType) { got = append(got, e) }
	app := runtime.NewApp("s1", instant(seeded(2), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnViewChange:     func(_ context.Context, e *domain.ViewEvent) { record(e.Type) },
		OnStepAdded:      func(_ context.Context, e *domain.StepEvent) { record(e.Type) },
		OnStepDeleted:    func(_ context.Context, e *domain.StepEvent) { record(e.Type) },
		OnStepsReordered: func(_ context.Context, e *domain.StepEvent) { record(e.Type) },
	}))...)

	waitView(t)(app.StartDemo(ctx))
	require.NoError(t, app.Reorder(ctx, 0, 1))
	app.Delete(ctx, app.Snapshot().Steps[0].ID)
	fillDraft(t, app, "t", "d")
	waitStep(t)(app.Submit(ctx))

	assert.Equal(t, []domain.EventType{
		domain.EventViewChange,
		domain.EventStepsReordered,
		domain.EventStepDeleted,
		domain.EventStepAdded,
	}, got)
}

func TestRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	app := runtime.NewApp("s1", instant(seeded(3))...)
	waitView(t)(app.StartDemo(ctx))
	app.Next(ctx)
	require.NoError(t, app.UpdateDraftField(ctx, "title", "half-written"))
	snap := app.Snapshot()

	restored := runtime.Restore(snap, runtime.WithTransitionDelay(0), runtime.WithSubmitDelay(0))
	assert.Equal(t, snap, restored.Snapshot())

	fillDraft(t, restored, "t", "d")
	step := waitStep(t)(restored.Submit(ctx))
	for _, s := range snap.Steps {
		assert.NotEqual(t, s.ID, step.ID, "restored sequence must not reissue IDs")
	}
}
