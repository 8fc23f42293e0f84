package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play and edit a tour in the terminal",
		Long: `Starts an interactive tour. Type 'help' for the command list.
With --session and a Redis store the tour is resumed and kept for later.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, _ := cmd.Flags().GetString("session")
			headless, _ := cmd.Flags().GetBool("headless")
			jsonMode, _ := cmd.Flags().GetBool("json")
			empty, _ := cmd.Flags().GetBool("empty")
			debug, _ := cmd.Flags().GetBool("debug")

			if debug {
				_ = cmd.Flags().Set("log-level", "debug")
			}
			st, err := newStack(cmd, stackOptions{logEvents: debug, starter: !empty})
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			var app *waypoint.Tour
			if sessionID == "" {
				app, err = st.manager.Create(ctx)
			} else {
				app, err = st.manager.Open(ctx, sessionID)
			}
			if err != nil {
				return fmt.Errorf("failed to init session: %w", err)
			}

			out := cmd.OutOrStdout()
			handler, err := playHandler(cmd.InOrStdin(), out, headless, jsonMode)
			if err != nil {
				return err
			}

			r := runner.NewRunner(
				runner.WithInputHandler(handler),
				runner.WithTemplates(st.engine.Templates()),
				runner.WithLogger(st.logger),
				runner.WithHeadless(headless || jsonMode),
			)
			if err := r.Run(ctx, app); err != nil {
				return err
			}

			if st.shared && !jsonMode && !headless {
				fmt.Fprintf(out, ">>> Session '%s' saved. Resume with --session %s\n", app.SessionID(), app.SessionID())
			}
			return nil
		},
	}
	cmd.Flags().String("session", "", "Resume or create the session with this ID")
	cmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, no styling)")
	cmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	cmd.Flags().Bool("empty", false, "Start without the starter steps")
	cmd.Flags().Bool("debug", false, "Log every tour event to stderr")
	return cmd
}

// playHandler picks the IO strategy: NDJSON, styled terminal output, or plain
// markdown when stdout is not a terminal.
func playHandler(in io.Reader, out io.Writer, headless, jsonMode bool) (runner.IOHandler, error) {
	if jsonMode {
		return runner.NewJSONHandler(in, out), nil
	}

	f, ok := out.(*os.File)
	if headless || !ok || !term.IsTerminal(int(f.Fd())) {
		return runner.NewTextHandler(in, out), nil
	}

	width := tui.DefaultWidth
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		width = w
	}
	render, err := tui.NewRenderer(width)
	if err != nil {
		return nil, err
	}

	tui.PrintBanner(out)
	return runner.NewTextHandler(in, out,
		runner.WithTextHandlerRenderer(render),
		runner.WithTextHandlerBadge(tui.BadgeFunc(termenv.NewOutput(out).Profile)),
	), nil
}
