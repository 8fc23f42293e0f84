package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/logging"
	redisAdapter "github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/spf13/cobra"
)

// stack is everything a command needs to host sessions.
type stack struct {
	cfg     *config.Config
	logger  *slog.Logger
	engine  *waypoint.Engine
	manager *session.Manager
	metrics *observability.Metrics
	shared  bool
	closers []func() error
}

type stackOptions struct {
	logEvents bool
	starter   bool
	sessions  []session.Option
}

// loadConfig reads the --config file and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		if _, err := logging.ParseLevel(level); err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// templateOptions layers the configured template file and directory over the
// built-in catalog.
func templateOptions(cfg *config.Config) ([]waypoint.Option, error) {
	var opts []waypoint.Option
	if cfg.Templates.File != "" {
		templates, err := catalog.LoadFile(cfg.Templates.File)
		if err != nil {
			return nil, err
		}
		opts = append(opts, waypoint.WithTemplates(templates))
	}
	if cfg.Templates.Dir != "" {
		opts = append(opts, waypoint.WithTemplateDir(cfg.Templates.Dir))
	}
	return opts, nil
}

// openStore returns the Redis store when one is configured and an in-process
// store otherwise. shared reports which one it picked.
func openStore(cmd *cobra.Command, cfg *config.Config) (store ports.SessionStore, locker ports.DistributedLocker, closer func() error, shared bool, err error) {
	if cfg.Redis.Addr == "" {
		return memory.NewStore(memory.WithTTL(cfg.SessionTTL)), nil, func() error { return nil }, false, nil
	}

	enc, err := cfg.Encryption()
	if err != nil {
		return nil, nil, nil, false, err
	}
	rs := redisAdapter.New(cfg.Redis.Addr,
		redisAdapter.WithPrefix(cfg.Redis.Prefix),
		redisAdapter.WithTTL(cfg.Redis.TTL),
	)
	if err := rs.Client().Ping(cmd.Context()).Err(); err != nil {
		_ = rs.Client().Close()
		return nil, nil, nil, false, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
	}
	store = rs
	if enc != nil {
		seal, err := middleware.NewEncryptionMiddleware(*enc)
		if err != nil {
			return nil, nil, nil, false, err
		}
		store = middleware.Chain(rs, seal)
	}
	return store, redisAdapter.NewLocker(rs.Client(), cfg.Redis.Prefix), rs.Client().Close, true, nil
}

func newStack(cmd *cobra.Command, opts stackOptions) (*stack, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s := &stack{
		cfg:     cfg,
		logger:  cfg.Logger(os.Stderr),
		metrics: observability.NewMetrics(),
	}

	hooks := s.metrics.Hooks()
	if opts.logEvents {
		hooks = hooks.Merge(observability.LogHooks(s.logger))
	}
	engineOpts := []waypoint.Option{
		waypoint.WithLogger(s.logger),
		waypoint.WithTransitionDelay(cfg.TransitionDelay),
		waypoint.WithSubmitDelay(cfg.SubmitDelay),
		waypoint.WithLifecycleHooks(hooks),
	}
	templateOpts, err := templateOptions(cfg)
	if err != nil {
		return nil, err
	}
	engineOpts = append(engineOpts, templateOpts...)
	if opts.starter || cfg.StarterTour {
		engineOpts = append(engineOpts, waypoint.WithStarterTour())
	}
	s.engine, err = waypoint.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing waypoint: %w", err)
	}

	store, locker, closer, shared, err := openStore(cmd, cfg)
	if err != nil {
		return nil, err
	}
	s.shared = shared
	s.closers = append(s.closers, closer)

	sessionOpts := []session.Option{
		session.WithLogger(s.logger),
		session.WithLockTTL(cfg.Redis.LockTTL),
	}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	s.manager = session.NewManager(s.engine, store, append(sessionOpts, opts.sessions...)...)

	s.logger.Debug("stack ready", "shared_store", shared, "templates", s.engine.Templates().Len())
	return s, nil
}

// Close waits for pending commits, then releases the store.
func (s *stack) Close() {
	s.manager.Shutdown()
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.logger.Warn("close failed", "error", err)
		}
	}
}
