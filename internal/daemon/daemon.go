package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"lumen/internal/app"
	"lumen/internal/config"
	"lumen/internal/logging"
)

// Daemon owns the API server lifecycle and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	app    *app.App
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	mu        sync.Mutex
	running   atomic.Bool
	startedAt atomic.Int64
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	PID            int
	StartedAt      time.Time
	LockFilePath   string
	APIAddress     string
	Generator      string
	Providers      []string
	LineageBackend string
	CacheBackend   string
}

// New constructs a daemon around a built application.
func New(cfg *config.Config, a *app.App, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || a == nil {
		return nil, errors.New("daemon requires config and application")
	}
	lockPath := filepath.Join(cfg.Paths.DataDir, "lumend.lock")
	d := &Daemon{
		cfg:      cfg,
		app:      a,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("ensure lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lumen daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.startedAt.Store(time.Now().UnixNano())
	d.running.Store(true)
	d.logger.Info("lumen daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("api_address", d.api.address()),
	)
	return nil
}

// Stop shuts the API server down and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("lumen daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close stops the daemon and releases application resources.
func (d *Daemon) Close() error {
	d.Stop()
	return d.app.Close()
}

// Handler returns the HTTP handler served by the daemon.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	var startedAt time.Time
	if ns := d.startedAt.Load(); ns != 0 {
		startedAt = time.Unix(0, ns).UTC()
	}
	providers := make([]string, 0, len(d.app.Providers))
	for _, p := range d.app.Providers {
		providers = append(providers, p.Name())
	}
	generator := ""
	if d.app.Generator != nil {
		generator = d.app.Generator.Name()
	}
	return Status{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		StartedAt:      startedAt,
		LockFilePath:   d.lockPath,
		APIAddress:     d.api.address(),
		Generator:      generator,
		Providers:      providers,
		LineageBackend: d.cfg.Lineage.Backend,
		CacheBackend:   d.cfg.Guidance.CacheBackend,
	}
}
