package main

import (
	"context"
	"errors"
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

	_, loggerCleanup := common.InitializeLogger(cfg.Log.Level)
	defer loggerCleanup()

	// Parse command line flags
	numberFlag := flag.String("number", "", "Account number (required)")
	balanceFlag := flag.String("balance", "0", "Initial balance")
	flag.Parse()

	if *numberFlag == "" {
		zap.L().Fatal("The --number flag is required")
	}

	balance, err := common.ParseAmount(*balanceFlag)
	if err != nil {
		zap.L().Fatal("Invalid balance", zap.String("balance", *balanceFlag), zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, zap.L(), cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	account, err := services.Ledger.CreateAccount(ctx, *numberFlag, balance)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateAccount) {
			zap.L().Fatal("Account already exists with this number", zap.String("account_number", *numberFlag))
		}
		zap.L().Fatal("Failed to create account",
			zap.String("kind", models.KindOf(err)),
			zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("ACCOUNT CREATED", common.DefaultWidth)
	fmt.Printf("ID:      %s\n", account.Id)
	fmt.Printf("Number:  %s\n", account.AccountNumber)
	fmt.Printf("Balance: %s\n", account.Balance.String())
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}
