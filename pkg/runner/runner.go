package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Runner plays a tour through an IOHandler.
type Runner struct {
	// Handler is the IO strategy. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Interceptor vetoes commands. Defaults to confirmation prompts, or to
	// AutoApprove in headless mode.
	Interceptor Interceptor

	// Templates backs the template commands. Defaults to the built-ins.
	Templates *catalog.Catalog

	Logger   *slog.Logger
	Headless bool
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.Templates == nil {
		r.Templates = catalog.Default()
	}
	if r.Interceptor == nil {
		if r.Headless {
			r.Interceptor = AutoApproveMiddleware()
		} else {
			r.Interceptor = ConfirmationMiddleware(r.Handler)
		}
	}
	return r
}

// Run renders the tour and applies commands until quit, end of input or an
// interrupt. Rejected commands are reported to the player and do not stop the loop.
func (r *Runner) Run(ctx context.Context, app *runtime.App) error {
	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if err := r.Handler.Render(ctx, app.Snapshot()); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for {
		line, err := r.Handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if signals.Context().Err() != nil {
				r.Logger.Debug("player interrupted", "session_id", app.SessionID())
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if line == "" {
			continue
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			if err := r.Handler.SystemOutput(ctx, "Error: "+err.Error()); err != nil {
				return err
			}
			continue
		}
		if cmd.Name == CmdQuit {
			return nil
		}

		render, err := r.Execute(signals.Context(), app, cmd)
		if err != nil {
			r.Logger.Debug("command rejected", "command", cmd.Name, "err", err)
			if err := r.Handler.SystemOutput(ctx, describe(err, app)); err != nil {
				return err
			}
			continue
		}
		if render {
			if err := r.Handler.Render(ctx, app.Snapshot()); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
	}
}

// Execute applies one command and reports whether the view should be rendered
// again. Delayed commits are awaited.
func (r *Runner) Execute(ctx context.Context, app *runtime.App, cmd Command) (bool, error) {
	allowed, err := r.Interceptor(ctx, cmd, app.Snapshot())
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, r.Handler.SystemOutput(ctx, "Cancelled.")
	}

	if intent, ok := cmd.Intent(); ok {
		out, err := app.Dispatch(ctx, intent)
		if err != nil {
			return false, err
		}
		if err := out.Wait(ctx); err != nil {
			return false, err
		}
		if step, ok := out.Step(); ok {
			if err := r.Handler.SystemOutput(ctx, fmt.Sprintf("Added step %q (%s).", step.Title, step.ID)); err != nil {
				return false, err
			}
		}
		return out.Changed, nil
	}

	switch cmd.Name {
	case CmdSet:
		value, err := SanitizeField(cmd.Args[0], cmd.Args[1])
		if err != nil {
			return false, err
		}
		return true, app.UpdateDraftField(ctx, cmd.Args[0], value)
	case CmdTemplate:
		t, err := r.Templates.Lookup(cmd.Args[0])
		if err != nil {
			return false, err
		}
		app.SelectTemplate(ctx, t)
		return true, nil
	case CmdTemplates:
		return false, r.Handler.SystemOutput(ctx, templateList(r.Templates))
	case CmdDelete:
		if !app.Delete(ctx, cmd.Args[0]) {
			return false, r.Handler.SystemOutput(ctx, fmt.Sprintf("No step with ID %s.", cmd.Args[0]))
		}
		return true, nil
	case CmdMove:
		from, err := cmd.Position(0)
		if err != nil {
			return false, err
		}
		to, err := cmd.Position(1)
		if err != nil {
			return false, err
		}
		if err := app.Reorder(ctx, from, to); err != nil {
			return false, err
		}
		return false, r.Handler.SystemOutput(ctx, StepList(app.Snapshot()))
	case CmdGoto:
		i, err := cmd.Position(0)
		if err != nil {
			return false, err
		}
		return app.GoTo(ctx, i), nil
	case CmdSteps:
		return false, r.Handler.SystemOutput(ctx, StepList(app.Snapshot()))
	case CmdHelp:
		return false, r.Handler.SystemOutput(ctx, Help)
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
}

func templateList(c *catalog.Catalog) string {
	var b strings.Builder
	for _, t := range c.List() {
		fmt.Fprintf(&b, "  %-20s %s\n", t.Name, t.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

// describe turns a rejection into a message for the player.
func describe(err error, app *runtime.App) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "Cannot submit, missing " + strings.Join(ve.Fields, " and ") + "."
	case errors.Is(err, domain.ErrInvalidTransition):
		return fmt.Sprintf("Not available from the %s view.", app.Snapshot().ViewState.View)
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return "No step at that position."
	default:
		return "Error: " + err.Error()
	}
}
