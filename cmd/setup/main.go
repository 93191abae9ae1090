package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"
	"ledger-service/internal/common"
	"ledger-service/internal/config"
	"ledger-service/internal/models"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.Log.Level)
	defer loggerCleanup()

	pathFlag := flag.String("path", "", "Database file to initialize (defaults to the configured path)")
	flag.Parse()

	if *pathFlag != "" {
		cfg.Database.Path = *pathFlag
	}
	if cfg.Database.Driver != models.DriverSQLite {
		logger.Fatal("Setup only applies to the sqlite driver", zap.String("driver", cfg.Database.Driver))
	}

	logger.Info("Initializing ledger database", zap.String("path", cfg.Database.Path))

	// Opening the store creates the schema if it does not exist yet
	services, err := common.InitializeServices(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	accounts, err := services.Ledger.ListAccounts(ctx)
	if err != nil {
		logger.Fatal("Failed to read accounts", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("LEDGER DATABASE READY", common.DefaultWidth)
	fmt.Printf("Path:     %s\n", cfg.Database.Path)
	fmt.Printf("Accounts: %d\n", len(accounts))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	logger.Info("Initialization complete", zap.Int("accounts", len(accounts)))
}
