package waypoint_test

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/internal/testutils"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...waypoint.Option) *waypoint.Engine {
	t.Helper()
	eng, err := waypoint.New(append([]waypoint.Option{
		waypoint.WithTransitionDelay(0),
		waypoint.WithSubmitDelay(0),
	}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestEngine_Defaults(t *testing.T) {
	eng, err := waypoint.New()
	require.NoError(t, err)

	assert.Equal(t, catalog.Default().List(), eng.Templates().List())
	assert.NotNil(t, eng.Logger())

	tour := eng.NewTour("s1")
	snap := tour.Snapshot()
	assert.Equal(t, domain.ViewHero, snap.ViewState.View)
	assert.Empty(t, snap.Steps)
}

func TestEngine_StarterTour(t *testing.T) {
	eng := newEngine(t, waypoint.WithStarterTour())

	steps := eng.NewTour("s1").Snapshot().Steps
	require.Len(t, steps, 3)
	assert.Equal(t, domain.CategoryOnboarding, steps[0].Category)
	assert.Equal(t, domain.DefaultDuration, steps[0].Duration)
}

func TestEngine_FullAuthoringFlow(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)
	tour := eng.NewTour("s1")

	_, err := tour.OpenEditor(ctx)
	require.NoError(t, err)
	tpl, err := eng.SelectTemplate(ctx, tour, "feature-spotlight")
	require.NoError(t, err)
	assert.Empty(t, tour.Snapshot().Steps, "selecting a template does not submit")

	p, err := tour.Submit(ctx)
	require.NoError(t, err)
	step, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, tpl.Title, step.Title)

	_, err = tour.BackToTour(ctx)
	require.NoError(t, err)
	snap := tour.Snapshot()
	assert.Equal(t, domain.ViewTour, snap.ViewState.View)
	assert.Len(t, snap.Steps, 1)

	_, err = eng.SelectTemplate(ctx, tour, "missing")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestEngine_HooksMerge(t *testing.T) {
	ctx := context.Background()
	var engineCalls, tourCalls int
	eng := newEngine(t, waypoint.WithLifecycleHooks(domain.LifecycleHooks{
		OnViewChange: func(context.Context, *domain.ViewEvent) { engineCalls++ },
	}))

	tour := eng.NewTour("s1", domain.LifecycleHooks{
		OnViewChange: func(context.Context, *domain.ViewEvent) { tourCalls++ },
	})
	_, err := tour.StartDemo(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, engineCalls)
	assert.Equal(t, 1, tourCalls)
}

func TestEngine_TemplateSources(t *testing.T) {
	dir, _ := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, map[string]string{
		"shortcuts.md": "---\ntitle: Shortcuts\ncategory: advanced\n---\nPress ?",
	})

	eng := newEngine(t,
		waypoint.WithTemplateDir(dir),
		waypoint.WithTemplateSource(memory.Templates{{Name: "faq", Title: "FAQ", Description: "Answers"}}),
	)

	for _, name := range []string{"welcome", "shortcuts", "faq"} {
		_, err := eng.Templates().Lookup(name)
		assert.NoError(t, err, name)
	}
}

func TestEngine_TemplateDirBodyIsDescription(t *testing.T) {
	ctx := context.Background()
	dir, _ := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, map[string]string{
		"tip.md": "---\ntitle: Tip\ncategory: advanced\n---\nUse the search bar.",
	})
	eng := newEngine(t, waypoint.WithTemplateDir(dir))
	tour := eng.NewTour("s1")

	tpl, err := eng.SelectTemplate(ctx, tour, "tip")
	require.NoError(t, err)
	assert.Equal(t, "Use the search bar.", tpl.Description)

	p, err := tour.Submit(ctx)
	require.NoError(t, err)
	step, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tip", step.Title)
	assert.Equal(t, domain.CategoryAdvanced, step.Category)
}

func TestEngine_RejectsInvalidSourceTemplates(t *testing.T) {
	_, err := waypoint.New(waypoint.WithTemplateSource(memory.Templates{{Title: "nameless"}}))
	assert.Error(t, err)

	_, err = waypoint.New(waypoint.WithTemplateSource(memory.Templates{{Name: "x", Category: "expert"}}))
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestEngine_CustomIDsAndRestore(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, waypoint.WithIDGenerator(func() waypoint.IDGenerator { return runtime.NewSequence(10) }))

	tour := eng.NewTour("s1")
	require.NoError(t, tour.UpdateDraftField(ctx, "title", "a"))
	require.NoError(t, tour.UpdateDraftField(ctx, "description", "b"))
	p, err := tour.Submit(ctx)
	require.NoError(t, err)
	step, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", step.ID)

	restored := eng.Restore(tour.Snapshot())
	require.NoError(t, restored.UpdateDraftField(ctx, "title", "c"))
	require.NoError(t, restored.UpdateDraftField(ctx, "description", "d"))
	p, err = restored.Submit(ctx)
	require.NoError(t, err)
	next, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "11", next.ID)
}

func TestEngine_IsSessionFactory(t *testing.T) {
	var _ session.Factory = newEngine(t)
}
