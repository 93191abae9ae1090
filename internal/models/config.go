package models

import "time"

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// DatabaseConfig holds storage backend and connection settings
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Path            string        `yaml:"path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	PingTimeout     time.Duration `yaml:"ping_timeout"`
	BusyTimeout     time.Duration `yaml:"busy_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig holds the Prometheus exporter settings
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// SimulatorConfig holds load simulator settings
type SimulatorConfig struct {
	Workers        int           `yaml:"workers"`
	Accounts       int           `yaml:"accounts"`
	Duration       time.Duration `yaml:"duration"`
	InitialBalance string        `yaml:"initial_balance"`
}

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)
