package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/spf13/cobra"
)

var errNoSharedStore = errors.New("session commands need a shared store: set redis.addr or WAYPOINT_REDIS_ADDR")

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored sessions",
		Long:  `List, inspect, and remove sessions kept in the Redis store.`,
	}
	cmd.AddCommand(newSessionLsCmd(), newSessionInspectCmd(), newSessionRmCmd())
	return cmd
}

// withStore runs fn against the configured shared store.
func withStore(cmd *cobra.Command, fn func(ports.SessionStore) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, _, closer, shared, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer()
	if !shared {
		return errNoSharedStore
	}
	return fn(store)
}

func newSessionLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store ports.SessionStore) error {
				ids, err := store.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("error listing sessions: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					fmt.Fprintln(out, "No active sessions found.")
					return nil
				}
				fmt.Fprintln(out, "Active Sessions:")
				for _, id := range ids {
					fmt.Fprintln(out, "- "+id)
				}
				return nil
			})
		},
	}
}

func newSessionInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <session-id>",
		Short: "Inspect the state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asMarkdown, _ := cmd.Flags().GetBool("markdown")
			return withStore(cmd, func(store ports.SessionStore) error {
				snap, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("error loading session '%s': %w", args[0], err)
				}

				out := cmd.OutOrStdout()
				if asMarkdown {
					fmt.Fprintln(out, runner.Markdown(snap))
					return nil
				}
				data, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			})
		},
	}
	cmd.Flags().Bool("markdown", false, "Print the current view instead of the raw snapshot")
	return cmd
}

func newSessionRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [session-id...]",
		Short: "Remove one or more sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if !all && len(args) == 0 {
				return errors.New("give at least one session ID, or --all")
			}

			return withStore(cmd, func(store ports.SessionStore) error {
				ids := args
				if all {
					var err error
					if ids, err = store.List(cmd.Context()); err != nil {
						return fmt.Errorf("error listing sessions: %w", err)
					}
				}

				out := cmd.OutOrStdout()
				var failed error
				for _, id := range ids {
					if err := store.Delete(cmd.Context(), id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
						fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
						failed = errors.New("some sessions were not removed")
						continue
					}
					fmt.Fprintf(out, "Removed session '%s'\n", id)
				}
				return failed
			})
		},
	}
	cmd.Flags().Bool("all", false, "Remove every stored session")
	return cmd
}
