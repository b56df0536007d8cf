package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"acfkit/internal/config"
	"acfkit/internal/daemon"
	"acfkit/internal/database"
	"acfkit/internal/xplane"
	"acfkit/internal/xplm"
	"acfkit/internal/xplm/memhost"

	"gopkg.in/natefinch/lumberjack.v2"
)

func initLogger(cfg *config.Config) {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var out io.Writer = os.Stdout
	if cfg.Log.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    32, // MB
			MaxBackups: 3,
			MaxAge:     14,
		}
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

// newHost returns the in-memory scenario host when a scenario is
// configured, otherwise the UDP link to the simulator.
func newHost(cfg *config.Config) (xplm.Host, daemon.Runner, error) {
	if cfg.Scenario != "" {
		h, err := memhost.NewFromScenario(cfg.Scenario)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using scenario host", "scenario", cfg.Scenario)
		return h, nil, nil
	}
	client := xplane.NewClient(xplane.Config{
		Addr:      cfg.XPlane.Addr,
		LocalAddr: cfg.XPlane.LocalAddr,
		Frequency: cfg.XPlane.Frequency,
		Plugins:   cfg.XPlane.Plugins,
		Logger:    slog.Default(),
	})
	slog.Info("Using X-Plane UDP host", "addr", cfg.XPlane.Addr, "plugins", cfg.XPlane.Plugins)
	return client, client, nil
}

func loadDesignators(db *database.DB, csvPaths []string) error {
	if len(csvPaths) == 0 {
		return nil
	}
	repo := db.DesignatorRepository()
	populated, err := repo.IsTablePopulated()
	if err != nil {
		return err
	}
	if populated {
		slog.Info("Type designator table is already populated")
		return nil
	}
	slog.Info("Type designator table is empty, loading from CSV files", "csv_paths", csvPaths)
	if err := repo.LoadFromMultipleCSV(csvPaths, 500); err != nil {
		return err
	}
	slog.Info("Successfully loaded type designators from CSV")
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	scenario := flag.String("scenario", "", "Run against a YAML host scenario instead of X-Plane")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("ACFKIT_CONFIG_PATH", *configPath)
	}
	if *scenario != "" {
		os.Setenv("ACFKIT_SCENARIO", *scenario)
	}

	cfg, err := config.Load()
	if err != nil {
		// Use basic logging for config errors since logger isn't initialized yet
		basicLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		basicLogger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	db, err := database.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := loadDesignators(db, cfg.DesignatorsCSV); err != nil {
		// The registry only enriches logs and the API.
		slog.Warn("Failed to load type designators", "error", err)
	}

	host, link, err := newHost(cfg)
	if err != nil {
		slog.Error("Failed to create host", "error", err)
		os.Exit(1)
	}

	d, err := daemon.New(daemon.Config{
		Host:                   host,
		Link:                   link,
		Repo:                   db,
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		PollInterval:           cfg.XPlane.PollInterval,
		APIAddr:                cfg.API.Addr,
		SharedValuesConstraint: cfg.SharedValues.Constraint,
		Logger:                 slog.Default(),
	})
	if err != nil {
		slog.Error("Failed to create daemon", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		slog.Error("Daemon stopped with error", "error", err)
		db.Close()
		os.Exit(1)
	}

	slog.Info("Shutdown complete")
}
