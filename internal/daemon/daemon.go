package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"titledoctor/internal/api"
	"titledoctor/internal/bus"
	"titledoctor/internal/config"
	"titledoctor/internal/errnotify"
	"titledoctor/internal/jobs"
	"titledoctor/internal/logging"
	"titledoctor/internal/notifications"
	"titledoctor/internal/pipeline"
	"titledoctor/internal/report"
	"titledoctor/internal/resolve"
	"titledoctor/internal/scheduler"
	"titledoctor/internal/services"
	"titledoctor/internal/services/llm"
	"titledoctor/internal/services/youtube"
	"titledoctor/internal/titles"
	"titledoctor/internal/videos"
)

// Daemon composes the job store, event router, pipeline stages, HTTP API, and
// automation schedule into one lifecycle. A flock-based lock prevents two
// daemons from sharing the same data directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	store  *jobs.Store
	router *bus.Router
	engine *pipeline.Engine
	server *api.Server
	sched  *scheduler.Scheduler

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with all dependencies wired from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if cfg.YouTube.APIKey == "" {
		return nil, fmt.Errorf("%w: youtube.api_key is not set", services.ErrConfiguration)
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("%w: llm.api_key is not set", services.ErrConfiguration)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	router := bus.NewRouter(logger)

	ytClient := youtube.NewClient(youtube.Config{
		APIKey:            cfg.YouTube.APIKey,
		BaseURL:           cfg.YouTube.BaseURL,
		TimeoutSeconds:    cfg.YouTube.TimeoutSeconds,
		MaxVideos:         cfg.YouTube.MaxVideos,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
	})
	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	notifier := notifications.NewService(cfg)

	engine := pipeline.New(store, router, logger)
	engine.Register(
		resolve.New(ytClient, logger),
		videos.New(ytClient, logger),
		titles.New(llmClient, logger),
		report.New(notifier, logger),
	)
	errnotify.New(notifier, router, logger).Start()

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		router:   router,
		engine:   engine,
		lockPath: filepath.Join(cfg.Paths.DataDir, "titledoctord.lock"),
	}
	d.lock = flock.New(d.lockPath)

	d.server = api.NewServer(cfg, store, router, d.status, logger)

	submitService := api.NewSubmitService(store, router, logger)
	d.sched = scheduler.New(cfg, func(ctx context.Context, channel, email string) error {
		_, err := submitService.Submit(ctx, channel, email)
		return err
	}, logger)

	return d, nil
}

// Start acquires the instance lock and launches the pipeline, HTTP server,
// and automation schedule.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another titledoctor daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.engine.Start(runCtx)

	if err := d.server.Start(runCtx); err != nil {
		d.releaseLock()
		cancel()
		d.cancel = nil
		return err
	}
	if err := d.sched.Start(); err != nil {
		d.server.Stop()
		d.releaseLock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()))
	return nil
}

// Stop drains in-flight pipeline work, shuts the HTTP server down, and
// releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.sched.Stop()
	d.server.Stop()

	drainTimeout := time.Duration(d.cfg.Pipeline.DrainTimeoutSeconds) * time.Second
	if !d.router.Close(drainTimeout) {
		d.logger.Warn("pipeline drain timed out", logging.Duration("timeout", drainTimeout))
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases the job store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the API listen address once Start has succeeded.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}

func (d *Daemon) status(ctx context.Context) api.DaemonStatus {
	summary, err := d.store.Summary(ctx)
	if err != nil {
		d.logger.Warn("job summary unavailable", logging.Error(err))
	}
	return api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		JobsDBPath:   d.store.Path(),
		LockFilePath: d.lockPath,
		Summary:      summary,
		Stages:       api.FromHealth(d.engine.Health(ctx)),
	}
}
