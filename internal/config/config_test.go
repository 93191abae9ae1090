package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ledger-service/internal/models"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LEDGER_CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != models.DriverSQLite {
		t.Errorf("Expected driver %s, got %s", models.DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Database.Path != "ledger.db" {
		t.Errorf("Expected path ledger.db, got %s", cfg.Database.Path)
	}
	if cfg.Database.MaxRetries != 5 {
		t.Errorf("Expected 5 retries, got %d", cfg.Database.MaxRetries)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected log level info, got %s", cfg.Log.Level)
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: memory
  busy_timeout: 2s
  max_retries: 3
log:
  level: debug
simulator:
  workers: 4
  accounts: 6
  duration: 1m
  initial_balance: "250.50"
`)
	t.Setenv("LEDGER_CONFIG_FILE", path)
	t.Setenv("DATABASE_MAX_RETRIES", "7")
	t.Setenv("METRICS_ADDR", ":9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != models.DriverMemory {
		t.Errorf("Expected driver from file, got %s", cfg.Database.Driver)
	}
	if cfg.Database.BusyTimeout != 2*time.Second {
		t.Errorf("Expected busy timeout 2s, got %s", cfg.Database.BusyTimeout)
	}
	if cfg.Database.MaxRetries != 7 {
		t.Errorf("Expected environment to override retries, got %d", cfg.Database.MaxRetries)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Metrics.Addr != ":9999" {
		t.Errorf("Expected metrics addr :9999, got %s", cfg.Metrics.Addr)
	}
	if cfg.Simulator.Duration != time.Minute || cfg.Simulator.InitialBalance != "250.50" {
		t.Errorf("Unexpected simulator config: %+v", cfg.Simulator)
	}
	if cfg.Database.Path != "ledger.db" {
		t.Errorf("Expected default path to survive, got %s", cfg.Database.Path)
	}
}

func TestLoad_InvalidEnvironmentValueKeepsDefault(t *testing.T) {
	t.Setenv("LEDGER_CONFIG_FILE", "")
	t.Setenv("DATABASE_BUSY_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.BusyTimeout != 5*time.Second {
		t.Errorf("Expected default busy timeout, got %s", cfg.Database.BusyTimeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "missing explicit file", env: map[string]string{"LEDGER_CONFIG_FILE": filepath.Join(t.TempDir(), "missing.yaml")}},
		{name: "unknown field", file: "database:\n  drvier: memory\n"},
		{name: "unknown driver", env: map[string]string{"LEDGER_CONFIG_FILE": "", "DATABASE_DRIVER": "postgres"}},
		{name: "zero retries", env: map[string]string{"LEDGER_CONFIG_FILE": "", "DATABASE_MAX_RETRIES": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.file != "" {
				t.Setenv("LEDGER_CONFIG_FILE", writeConfig(t, tt.file))
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			if _, err := Load(); err == nil {
				t.Errorf("Expected error")
			}
		})
	}
}

func TestValidate_NormalizesDriver(t *testing.T) {
	cfg := defaults()
	cfg.Database.Driver = "SQLite"

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Database.Driver != models.DriverSQLite {
		t.Errorf("Expected normalized driver, got %s", cfg.Database.Driver)
	}
}
