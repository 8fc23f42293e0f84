package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aretw0/waypoint/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes tour sessions as MCP tools, so an agent can walk a tour and
author steps.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, _ := cmd.Flags().GetString("transport")

			st, err := newStack(cmd, stackOptions{logEvents: true})
			if err != nil {
				return err
			}
			defer st.Close()

			srv := mcp.NewServer(st.manager, st.engine.Templates(), mcp.WithLogger(st.logger))

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				st.logger.Info("starting waypoint MCP server", "transport", "stdio")
				return srv.ServeStdio()

			case "sse":
				port, err := strconv.Atoi(st.cfg.Port)
				if cmd.Flags().Changed("port") {
					port, err = cmd.Flags().GetInt("port")
				}
				if err != nil {
					return fmt.Errorf("invalid port: %w", err)
				}

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				st.logger.Info("starting waypoint MCP server", "transport", "sse", "port", port)
				if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				st.logger.Info("MCP server stopped")
				return nil

			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}
	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("port", 8080, "Port to listen on (only for SSE, overrides the config file)")
	return cmd
}
