package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for the daemon
type Config struct {
	XPlane         XPlaneConfig
	Scenario       string // YAML host scenario; when set no simulator is contacted
	DBPath         string
	DesignatorsCSV []string
	BatchSize      int
	BatchTimeout   time.Duration
	API            APIConfig
	SharedValues   SharedValuesConfig
	Log            LogConfig
}

// XPlaneConfig configures the UDP link to a running simulator
type XPlaneConfig struct {
	Addr         string
	LocalAddr    string
	Plugins      []string // Plugin signatures reported as loaded
	Frequency    int      // Subscription rate per second
	PollInterval time.Duration
}

// APIConfig configures the HTTP control surface
type APIConfig struct {
	Addr string // Empty disables the API
}

// SharedValuesConfig configures the vendor shared value handshake
type SharedValuesConfig struct {
	Constraint string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	File   string // Rotated log file; empty logs to stdout
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("xplane.addr", "127.0.0.1:49000")
	v.SetDefault("xplane.local_addr", "")
	v.SetDefault("xplane.plugins", []string{})
	v.SetDefault("xplane.frequency", 5)
	v.SetDefault("xplane.poll_interval", "2s")
	v.SetDefault("scenario", "")
	v.SetDefault("db_path", "acfkit.db")
	v.SetDefault("designators_csv", []string{"internal/database/datasets/type-designators.csv"})
	v.SetDefault("batch_size", 100)
	v.SetDefault("batch_timeout", "5s")
	v.SetDefault("api.addr", "127.0.0.1:8642")
	v.SetDefault("sharedvalues.constraint", ">= 1.0.0, < 3.0.0")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	// Set config file name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Set config file search paths
	v.AddConfigPath("/etc/acfkit")
	v.AddConfigPath(".")

	// Check for config file path from environment variable
	if configPath := os.Getenv("ACFKIT_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	// Read config file (if it exists)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults + env vars
	}

	// Set environment variable prefix
	v.SetEnvPrefix("ACFKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		XPlane: XPlaneConfig{
			Addr:         v.GetString("xplane.addr"),
			LocalAddr:    v.GetString("xplane.local_addr"),
			Plugins:      v.GetStringSlice("xplane.plugins"),
			Frequency:    v.GetInt("xplane.frequency"),
			PollInterval: v.GetDuration("xplane.poll_interval"),
		},
		Scenario:       v.GetString("scenario"),
		DBPath:         v.GetString("db_path"),
		DesignatorsCSV: v.GetStringSlice("designators_csv"),
		BatchSize:      v.GetInt("batch_size"),
		BatchTimeout:   v.GetDuration("batch_timeout"),
		API: APIConfig{
			Addr: v.GetString("api.addr"),
		},
		SharedValues: SharedValuesConfig{
			Constraint: v.GetString("sharedvalues.constraint"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
	}

	// Validate configuration
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.Scenario == "" && cfg.XPlane.Addr == "" {
		return fmt.Errorf("xplane.addr is required without a scenario")
	}

	if cfg.XPlane.Frequency <= 0 {
		return fmt.Errorf("xplane.frequency must be greater than 0")
	}

	if cfg.XPlane.PollInterval < 0 {
		return fmt.Errorf("xplane.poll_interval must not be negative")
	}

	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be greater than 0")
	}

	if cfg.BatchTimeout <= 0 {
		return fmt.Errorf("batch_timeout must be greater than 0")
	}

	if _, err := semver.NewConstraint(cfg.SharedValues.Constraint); err != nil {
		return fmt.Errorf("invalid sharedvalues.constraint %q: %w", cfg.SharedValues.Constraint, err)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
