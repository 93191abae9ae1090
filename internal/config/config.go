package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
	"ledger-service/internal/models"
)

const defaultConfigFile = "ledger.yaml"

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence (lowest first). A .env
// file in the working directory is loaded into the environment if present.
func Load() (*models.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := defaults()

	path := os.Getenv("LEDGER_CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := loadFile(path, cfg); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return nil, err
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *models.Config {
	return &models.Config{
		Database: models.DatabaseConfig{
			Driver:          models.DriverSQLite,
			Path:            "ledger.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
			BusyTimeout:     5 * time.Second,
			MaxRetries:      5,
			RetryBackoff:    10 * time.Millisecond,
		},
		Log: models.LogConfig{
			Level: "info",
		},
		Metrics: models.MetricsConfig{
			Addr: ":9090",
		},
		Simulator: models.SimulatorConfig{
			Workers:        8,
			Accounts:       10,
			Duration:       30 * time.Second,
			InitialBalance: "1000",
		},
	}
}

func loadFile(path string, cfg *models.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *models.Config) {
	db := &cfg.Database
	db.Driver = getEnvString("DATABASE_DRIVER", db.Driver)
	db.Path = getEnvString("DATABASE_PATH", db.Path)
	db.MaxOpenConns = getEnvInt("DATABASE_MAX_OPEN_CONNS", db.MaxOpenConns)
	db.MaxIdleConns = getEnvInt("DATABASE_MAX_IDLE_CONNS", db.MaxIdleConns)
	db.ConnMaxLifetime = getEnvDuration("DATABASE_CONN_MAX_LIFETIME", db.ConnMaxLifetime)
	db.ConnMaxIdleTime = getEnvDuration("DATABASE_CONN_MAX_IDLE_TIME", db.ConnMaxIdleTime)
	db.PingTimeout = getEnvDuration("DATABASE_PING_TIMEOUT", db.PingTimeout)
	db.BusyTimeout = getEnvDuration("DATABASE_BUSY_TIMEOUT", db.BusyTimeout)
	db.MaxRetries = getEnvInt("DATABASE_MAX_RETRIES", db.MaxRetries)
	db.RetryBackoff = getEnvDuration("DATABASE_RETRY_BACKOFF", db.RetryBackoff)

	cfg.Log.Level = getEnvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Metrics.Addr = getEnvString("METRICS_ADDR", cfg.Metrics.Addr)

	sim := &cfg.Simulator
	sim.Workers = getEnvInt("SIMULATOR_WORKERS", sim.Workers)
	sim.Accounts = getEnvInt("SIMULATOR_ACCOUNTS", sim.Accounts)
	sim.Duration = getEnvDuration("SIMULATOR_DURATION", sim.Duration)
	sim.InitialBalance = getEnvString("SIMULATOR_INITIAL_BALANCE", sim.InitialBalance)
}

// Validate rejects configurations the services cannot start with
func Validate(cfg *models.Config) error {
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	switch cfg.Database.Driver {
	case models.DriverSQLite:
		if cfg.Database.Path == "" {
			return fmt.Errorf("database path is required for driver %s", models.DriverSQLite)
		}
	case models.DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	if cfg.Database.MaxRetries <= 0 {
		return fmt.Errorf("database max retries must be positive, got %d", cfg.Database.MaxRetries)
	}
	if cfg.Database.RetryBackoff < 0 {
		return fmt.Errorf("database retry backoff cannot be negative")
	}
	if cfg.Simulator.Workers <= 0 || cfg.Simulator.Accounts < 2 {
		return fmt.Errorf("simulator needs at least one worker and two accounts")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
