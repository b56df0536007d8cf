package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"acfkit/internal/acftype"
	"acfkit/internal/api"
	"acfkit/internal/database"
	"acfkit/internal/models"
	"acfkit/internal/plugin"
	"acfkit/internal/scheduler"
	"acfkit/internal/session"
	"acfkit/internal/tasks"
	"acfkit/internal/xplm"

	"golang.org/x/sync/errgroup"
)

// Runner keeps a host link alive until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
	Close() error
}

// Daemon represents the main daemon structure
type Daemon struct {
	cfg       Config
	log       *slog.Logger
	loop      *Loop
	plugin    *plugin.Plugin
	scheduler *scheduler.Scheduler
	records   chan *models.ClassificationRecord
	collector *tasks.JournalCollector
	server    *http.Server
}

// Config holds daemon configuration
type Config struct {
	Host xplm.Host
	// Link is the host transport, if it needs running; optional.
	Link Runner
	// Repo stores the journal and resolves type designators; optional.
	Repo                   database.Repository
	BatchSize              int           // Number of records to batch before writing
	BatchTimeout           time.Duration // Flush batch after this time even if not full
	PollInterval           time.Duration // Aircraft watcher period, 0 disables it
	APIAddr                string        // HTTP listen address, empty disables the API
	SharedValuesConstraint string
	Logger                 *slog.Logger
}

// New creates a new daemon instance
func New(cfg Config) (*Daemon, error) {
	if cfg.Host == nil {
		return nil, fmt.Errorf("host is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	batchSize := 100
	if cfg.BatchSize > 0 {
		batchSize = cfg.BatchSize
	}
	batchTimeout := 5 * time.Second
	if cfg.BatchTimeout > 0 {
		batchTimeout = cfg.BatchTimeout
	}

	d := &Daemon{
		cfg:  cfg,
		log:  log,
		loop: NewLoop(64),
	}

	sessionCfg := session.Config{
		Host:                   cfg.Host,
		Classifier:             acftype.NewClassifier(log),
		SharedValuesConstraint: cfg.SharedValuesConstraint,
		Logger:                 log,
	}
	if sv, ok := cfg.Host.(xplm.SharedValuesProvider); ok {
		sessionCfg.SharedValues = sv
	}

	var observers []func(session.Snapshot)
	if cfg.Repo != nil {
		sessionCfg.Designators = cfg.Repo
		d.records = make(chan *models.ClassificationRecord, 256)
		d.collector = tasks.NewJournalCollectorWithConfig(cfg.Repo.ClassificationRepository(), d.records, batchSize, batchTimeout).
			WithLogger(log)
		observers = append(observers, tasks.Feed(d.records, log))
	}

	p, err := plugin.New(plugin.Config{
		Session:   sessionCfg,
		Observers: observers,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin: %w", err)
	}
	d.plugin = p

	return d, nil
}

// Loop returns the event loop every host interaction runs on.
func (d *Daemon) Loop() *Loop { return d.loop }

// Plugin returns the plugin. Its methods must run on the loop.
func (d *Daemon) Plugin() *plugin.Plugin { return d.plugin }

// Run starts every component and blocks until ctx is cancelled or one of
// them fails. The plugin is stopped before Run returns.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info("Starting daemon")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(d.loop.Run(gctx)) })

	if err := d.loop.Do(gctx, func() {
		if err := d.plugin.Start(); err != nil {
			d.log.Error("Failed to start plugin", "error", err)
			return
		}
		if err := d.plugin.Enable(); err != nil {
			d.log.Error("Failed to enable plugin", "error", err)
		}
	}); err != nil {
		_ = g.Wait()
		return fmt.Errorf("failed to start plugin: %w", err)
	}

	if d.cfg.Link != nil {
		g.Go(func() error { return ignoreCanceled(d.cfg.Link.Run(gctx)) })
	}

	if d.collector != nil {
		g.Go(func() error { return ignoreCanceled(d.collector.Start(gctx)) })
	}

	d.scheduler = scheduler.New(gctx, d.log)
	if d.cfg.PollInterval > 0 {
		d.scheduler.AddTask(tasks.NewAircraftWatcher(d.cfg.Host, d.loop, d.plugin, d.cfg.PollInterval, d.log))
	}
	d.scheduler.Start()
	g.Go(func() error {
		<-gctx.Done()
		d.scheduler.Stop()
		return nil
	})

	if d.cfg.APIAddr != "" {
		apiCfg := api.Config{
			Exec:   d.loop,
			Plugin: d.plugin,
			Tasks:  d.scheduler.Status,
			Logger: d.log,
		}
		if d.cfg.Repo != nil {
			apiCfg.Journal = d.cfg.Repo.ClassificationRepository()
			apiCfg.Designators = d.cfg.Repo.DesignatorRepository()
		}
		d.server = &http.Server{
			Addr:              d.cfg.APIAddr,
			Handler:           api.NewRouter(apiCfg).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			d.log.Info("Starting API server", "addr", d.cfg.APIAddr)
			if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("API server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return d.server.Shutdown(shutdownCtx)
		})
	}

	d.log.Info("Daemon started successfully")
	err := g.Wait()

	// Every goroutine touching the host has returned.
	d.plugin.Stop()
	if d.cfg.Link != nil {
		if cerr := d.cfg.Link.Close(); cerr != nil {
			d.log.Error("Error closing host link", "error", cerr)
		}
	}

	d.log.Info("Daemon stopped")
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
