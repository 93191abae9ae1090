package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"
	"ledger-service/internal/common"
	"ledger-service/internal/config"
	"ledger-service/internal/simulator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.Log.Level)
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Starting ledger simulator",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("workers", cfg.Simulator.Workers),
		zap.Int("accounts", cfg.Simulator.Accounts),
		zap.Duration("duration", cfg.Simulator.Duration))

	services, err := common.InitializeServices(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	metricsServer := services.Metrics.StartServer(cfg.Metrics.Addr)

	sim, err := simulator.New(services.Ledger, logger, cfg.Simulator)
	if err != nil {
		logger.Fatal("Failed to create simulator", zap.Error(err))
	}
	if err := sim.Setup(ctx); err != nil {
		logger.Fatal("Failed to set up simulator accounts", zap.Error(err))
	}

	sim.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Simulator running - press Ctrl+C to stop early")

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, stopping simulator...")
	case <-time.After(cfg.Simulator.Duration):
		logger.Info("Simulation duration elapsed")
	case <-sim.Done():
		logger.Warn("Simulator workers exited early")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan error, 1)
	go func() {
		done <- sim.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("Simulator workers failed", zap.Error(err))
		} else {
			logger.Info("Simulator stopped gracefully")
		}
	case <-shutdownCtx.Done():
		cancel()
		logger.Warn("Forced shutdown after timeout")
	}

	report, verifyErr := sim.Verify(context.Background())
	if report != nil {
		printReport(report)
	}

	if err := services.Metrics.Shutdown(shutdownCtx, metricsServer); err != nil {
		logger.Warn("Failed to shut down metrics server", zap.Error(err))
	}

	if verifyErr != nil {
		logger.Fatal("Ledger verification failed", zap.Error(verifyErr))
	}
	logger.Info("Ledger verification passed",
		zap.String("total_balance", report.TotalBalance.String()))
}

func printReport(report *simulator.Report) {
	common.PrintHeader("SIMULATION REPORT", common.DefaultWidth)

	keys := make([]string, 0, len(report.Outcomes))
	for key := range report.Outcomes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for i, key := range keys {
		fmt.Printf("%s %-40s %10d\n", common.BoxPrefix(i == len(keys)-1), key, report.Outcomes[key])
	}

	fmt.Println()
	fmt.Printf("Baseline:  %s\n", report.Baseline.String())
	fmt.Printf("Deposited: %s\n", report.Deposited.String())
	fmt.Printf("Withdrawn: %s\n", report.Withdrawn.String())
	fmt.Printf("Expected:  %s\n", report.ExpectedTotal.String())
	fmt.Printf("Actual:    %s\n", report.TotalBalance.String())

	summary := fmt.Sprintf("SUMMARY: %d accounts, %d failed reconciliation", report.Accounts, len(report.Unreconciled))
	common.PrintFooter(summary, common.DefaultWidth)
}
