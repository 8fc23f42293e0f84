package runner

import (
	"log/slog"

	"github.com/aretw0/waypoint/pkg/catalog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithInterceptor configures the command policy.
func WithInterceptor(interceptor Interceptor) Option {
	return func(r *Runner) {
		r.Interceptor = interceptor
	}
}

// WithTemplates sets the catalog used by the template commands.
func WithTemplates(c *catalog.Catalog) Option {
	return func(r *Runner) {
		r.Templates = c
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithHeadless disables confirmations.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}
