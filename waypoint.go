package waypoint

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/waypoint/internal/runtime"
	loamAdapter "github.com/aretw0/waypoint/pkg/adapters/loam"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Tour is the application state of one session: step list, view navigator and
// editor form behind a single lock.
type Tour = runtime.App

// Pending is the completion handle of a delayed view change or submission.
type Pending[T any] = runtime.Pending[T]

// IDGenerator hands out step identifiers.
type IDGenerator = runtime.IDGenerator

// Engine is the high-level entry point for the Waypoint library.
// It holds the configuration shared by every tour it builds.
type Engine struct {
	templates       *catalog.Catalog
	sources         []ports.TemplateSource
	templateDir     string
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	transitionDelay time.Duration
	submitDelay     time.Duration
	seed            []domain.Draft
	ids             func() IDGenerator
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks on every tour.
// Calling it more than once merges the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTransitionDelay sets the pause before a view change commits (default 100ms).
func WithTransitionDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.transitionDelay = d
	}
}

// WithSubmitDelay sets the pause before a submitted draft becomes a step (default 800ms).
func WithSubmitDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.submitDelay = d
	}
}

// WithTemplates replaces the built-in template catalog.
func WithTemplates(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.templates = c
	}
}

// WithTemplateSource layers the templates of src over the catalog.
func WithTemplateSource(src ports.TemplateSource) Option {
	return func(e *Engine) {
		e.sources = append(e.sources, src)
	}
}

// WithTemplateDir reads extra templates from a directory of markdown files.
func WithTemplateDir(dir string) Option {
	return func(e *Engine) {
		e.templateDir = dir
	}
}

// WithSeedSteps starts every new tour with these steps.
func WithSeedSteps(drafts ...domain.Draft) Option {
	return func(e *Engine) {
		e.seed = append(e.seed, drafts...)
	}
}

// WithStarterTour seeds every new tour with one step per non-blank built-in template.
func WithStarterTour() Option {
	return func(e *Engine) {
		for _, t := range catalog.Builtin() {
			if t.Category == "" {
				continue
			}
			e.seed = append(e.seed, t.Draft())
		}
	}
}

// WithIDGenerator sets the step ID generator factory, called once per tour.
func WithIDGenerator(ids func() IDGenerator) Option {
	return func(e *Engine) {
		e.ids = ids
	}
}

// New initializes a new Waypoint Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		transitionDelay: domain.DefaultTransitionDelay,
		submitDelay:     domain.DefaultSubmitDelay,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.templates == nil {
		eng.templates = catalog.Default()
	}

	if eng.templateDir != "" {
		src, err := loamAdapter.Open(eng.templateDir)
		if err != nil {
			return nil, fmt.Errorf("template dir: %w", err)
		}
		eng.sources = append(eng.sources, src)
	}

	templates, err := eng.templates.Layer(context.Background(), eng.sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	eng.templates = templates
	eng.logger.Debug("engine ready", "templates", eng.templates.Len(), "seed_steps", len(eng.seed))

	return eng, nil
}

func (e *Engine) tourOptions(hooks []domain.LifecycleHooks) []runtime.Option {
	merged := e.hooks
	for _, h := range hooks {
		merged = merged.Merge(h)
	}
	opts := []runtime.Option{
		runtime.WithTransitionDelay(e.transitionDelay),
		runtime.WithSubmitDelay(e.submitDelay),
		runtime.WithLifecycleHooks(merged),
		runtime.WithLogger(e.logger),
	}
	if e.ids != nil {
		opts = append(opts, runtime.WithIDGenerator(e.ids()))
	}
	return opts
}

// NewTour builds the application state for a new session, starting on the hero view.
// Extra hooks run after the engine-wide ones.
func (e *Engine) NewTour(sessionID string, hooks ...domain.LifecycleHooks) *Tour {
	opts := append(e.tourOptions(hooks), runtime.WithSeedSteps(e.seed...))
	return runtime.NewApp(sessionID, opts...)
}

// Restore rebuilds a tour from a snapshot. In-flight transitions and submissions
// are not carried over.
func (e *Engine) Restore(snap *domain.Snapshot, hooks ...domain.LifecycleHooks) *Tour {
	opts := e.tourOptions(hooks)
	if e.ids != nil && snap.NextSeq > 0 {
		// Keep the snapshot's sequence so restored tours never reissue IDs.
		opts = opts[:len(opts)-1]
	}
	return runtime.Restore(snap, opts...)
}

// Templates returns the quick template catalog.
func (e *Engine) Templates() *catalog.Catalog {
	return e.templates
}

// SelectTemplate looks up a template by name and loads it into the tour's draft.
func (e *Engine) SelectTemplate(ctx context.Context, tour *Tour, name string) (domain.Template, error) {
	t, err := e.templates.Lookup(name)
	if err != nil {
		return domain.Template{}, err
	}
	tour.SelectTemplate(ctx, t)
	return t, nil
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
