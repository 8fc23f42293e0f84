package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serves tour sessions over a JSON API with a Server-Sent Events feed per
session. Sessions live in memory unless redis.addr is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			streams := httpAdapter.NewStreamManager()
			st, err := newStack(cmd, stackOptions{
				logEvents: true,
				sessions: []session.Option{
					session.WithLifecycleHooks(streams.Hooks()),
					session.WithEvictionHandler(streams.Forget),
				},
			})
			if err != nil {
				return err
			}
			defer st.Close()

			port := st.cfg.Port
			if cmd.Flags().Changed("port") {
				port, _ = cmd.Flags().GetString("port")
			}

			handler := httpAdapter.NewHandler(st.manager, st.engine.Templates(),
				httpAdapter.WithStreams(streams),
				httpAdapter.WithMetrics(st.metrics.Handler()),
				httpAdapter.WithLogger(st.logger),
			)
			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			sweepCtx, stopSweep := context.WithCancel(cmd.Context())
			defer stopSweep()
			go st.manager.SweepEvery(sweepCtx, session.DefaultSweepInterval)

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				st.logger.Info("starting waypoint server", "addr", srv.Addr, "shared_store", st.shared)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case sig := <-shutdown:
				st.logger.Info("shutting down", "signal", sig.String())

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					st.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
				}
				st.logger.Info("waypoint server stopped")
				return nil
			}
		},
	}
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides the config file)")
	return cmd
}
