package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"lumen/internal/app"
	"lumen/internal/config"
	"lumen/internal/daemon"
	"lumen/internal/logging"
	"lumen/internal/preflight"
	"lumen/internal/telemetry"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// SkipProviderCheck avoids spending a generation call at startup.
	SkipProviderCheck bool
}

// Run starts the lumen daemon and blocks until SIGINT, SIGTERM or cmdCtx
// cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "lumend.log")},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	shutdownTracing, err := telemetry.Init(signalCtx, cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.WarnWithContext(logger, "trace exporter shutdown failed", "telemetry_shutdown_failed", logging.Error(err))
		}
	}()

	pidPath := filepath.Join(cfg.Paths.DataDir, "lumend.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	a, err := app.Build(signalCtx, cfg, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "build application", "app_build_failed", logging.Error(err))
		return err
	}

	logConfigSnapshot(logger, cfg, a)
	providers := a.Providers
	if opts.SkipProviderCheck {
		providers = nil
	}
	for _, result := range preflight.Failed(preflight.RunAll(signalCtx, cfg, providers...)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run lumen doctor for details"),
			logging.String(logging.FieldImpact, "affected features may fail at request time"),
		)
	}

	d, err := daemon.New(cfg, a, logger)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("lumen daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config, a *app.App) {
	generator := ""
	if a.Generator != nil {
		generator = a.Generator.Name()
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("generator", generator),
		logging.String("lineage_backend", cfg.Lineage.Backend),
		logging.String("cache_backend", cfg.Guidance.CacheBackend),
		logging.Duration("cache_ttl", cfg.Guidance.TTL()),
		logging.Bool("consistency_scoring", cfg.Scoring.UseConsistency),
		logging.String("sessions_dir", cfg.Paths.SessionsDir),
		logging.String("api_bind", cfg.API.Bind),
		logging.Bool("api_token_set", cfg.API.Token != ""),
	)
}
