package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "waypoint",
		Short: "Waypoint authors and plays guided product tours",
		Long: `Waypoint keeps the state of product tours: a hero screen, a step player
and an editor for adding steps. Play a tour in the terminal, or serve
sessions over HTTP and MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().String("config", "", "Config file (default ./waypoint.yaml if present)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newServeCmd(),
		newPlayCmd(),
		newMCPCmd(),
		newTemplatesCmd(),
		newSessionCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
