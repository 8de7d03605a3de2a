package config

import (
	"fmt"
	"os"
	"strconv"

	"gollh/domain/core"
)

// Config is the complete application configuration, assembled from
// environment variables. The CLI overlays flags on top of it.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Sweep    SweepConfig
	Export   ExportConfig
}

// DatabaseConfig holds sweep-result persistence settings. An empty URL means
// results are not persisted.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds the results HTTP server settings.
type ServerConfig struct {
	Port    string
	Enabled bool
}

// SweepConfig holds trial-sweep defaults.
type SweepConfig struct {
	Trials         int
	Workers        int
	Seed           int64
	InjectedNS     float64
	BackgroundMean float64
}

// ExportConfig holds report output paths. Empty paths disable the export.
type ExportConfig struct {
	ExcelFile    string
	MarkdownFile string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	cfg := &Config{
		Database: DatabaseConfig{
			URL:     dbURL,
			Enabled: dbURL != "",
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			Enabled: getEnvBoolOrDefault("SERVE_RESULTS", false),
		},
		Sweep: SweepConfig{
			Trials:         getEnvIntOrDefault("SWEEP_TRIALS", 1000),
			Workers:        getEnvIntOrDefault("SWEEP_WORKERS", 4),
			Seed:           int64(getEnvIntOrDefault("SWEEP_SEED", 1)),
			InjectedNS:     getEnvFloatOrDefault("SWEEP_INJECTED_NS", 0),
			BackgroundMean: getEnvFloatOrDefault("SWEEP_BACKGROUND_MEAN", 100),
		},
		Export: ExportConfig{
			ExcelFile:    getEnvOrDefault("EXCEL_FILE", ""),
			MarkdownFile: getEnvOrDefault("REPORT_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no sweep can run with.
func (c *Config) Validate() error {
	if c.Sweep.Trials <= 0 {
		return fmt.Errorf("%w: SWEEP_TRIALS must be positive, got %d", core.ErrNotConfigured, c.Sweep.Trials)
	}
	if c.Sweep.Workers <= 0 {
		return fmt.Errorf("%w: SWEEP_WORKERS must be positive, got %d", core.ErrNotConfigured, c.Sweep.Workers)
	}
	if c.Sweep.InjectedNS < 0 {
		return fmt.Errorf("%w: SWEEP_INJECTED_NS must not be negative", core.ErrNotConfigured)
	}
	if c.Sweep.BackgroundMean <= 0 {
		return fmt.Errorf("%w: SWEEP_BACKGROUND_MEAN must be positive", core.ErrNotConfigured)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
