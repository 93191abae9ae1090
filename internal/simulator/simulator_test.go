package simulator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"ledger-service/internal/api"
	"ledger-service/internal/database"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
	"ledger-service/internal/store/memory"
)

func testConfig() models.SimulatorConfig {
	return models.SimulatorConfig{
		Workers:        4,
		Accounts:       5,
		Duration:       200 * time.Millisecond,
		InitialBalance: "100",
	}
}

func runSimulation(t *testing.T, st store.Store) *Report {
	t.Helper()
	ctx := context.Background()
	ledger := api.NewLedgerService(st, zap.NewNop(), nil)

	sim, err := New(ledger, zap.NewNop(), testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := sim.Setup(ctx); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	sim.Start(ctx)
	time.Sleep(testConfig().Duration)
	if err := sim.Stop(); err != nil {
		t.Fatalf("Simulator workers failed: %v", err)
	}

	report, err := sim.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify failed: %v (report %+v)", err, report)
	}
	return report
}

func TestSimulator_Memory(t *testing.T) {
	report := runSimulation(t, memory.NewStore(zap.NewNop()))

	if report.Baseline.String() != "500" {
		t.Errorf("Expected baseline 500, got %s", report.Baseline.String())
	}
	total := 0
	for _, count := range report.Outcomes {
		total += count
	}
	if total == 0 {
		t.Errorf("Expected operations to run")
	}
	if report.Accounts != 5 {
		t.Errorf("Expected 5 accounts, got %d", report.Accounts)
	}
}

func TestSimulator_SQLite(t *testing.T) {
	cfg := models.DatabaseConfig{
		Driver:       models.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  10 * time.Second,
		MaxRetries:   5,
		RetryBackoff: 5 * time.Millisecond,
	}
	st, err := database.NewService(context.Background(), zap.NewNop(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	defer st.Close()

	runSimulation(t, st)
}

func TestSimulator_SetupReusesAccounts(t *testing.T) {
	ctx := context.Background()
	ledger := api.NewLedgerService(memory.NewStore(zap.NewNop()), zap.NewNop(), nil)

	first, err := New(ledger, zap.NewNop(), testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := first.Setup(ctx); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if _, err := ledger.Deposit(ctx, "SIM-0001", api.Amount(first.initialBalance)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	second, _ := New(ledger, zap.NewNop(), testConfig())
	if err := second.Setup(ctx); err != nil {
		t.Fatalf("Second setup failed: %v", err)
	}
	if second.baseline.String() != "600" {
		t.Errorf("Expected baseline 600, got %s", second.baseline.String())
	}
}

func TestNew_Validation(t *testing.T) {
	cfg := testConfig()
	cfg.InitialBalance = "lots"
	if _, err := New(nil, zap.NewNop(), cfg); err == nil {
		t.Errorf("Expected invalid balance error")
	}

	cfg = testConfig()
	cfg.Accounts = 1
	if _, err := New(nil, zap.NewNop(), cfg); err == nil {
		t.Errorf("Expected account count error")
	}
}
