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

	_, loggerCleanup := common.InitializeLogger(cfg.Log.Level)
	defer loggerCleanup()

	numberFlag := flag.String("number", "", "Account number (required)")
	amountFlag := flag.String("amount", "", "Amount to deposit (required)")
	flag.Parse()

	if *numberFlag == "" || *amountFlag == "" {
		zap.L().Fatal("All flags are required: --number, --amount")
	}

	amount, err := common.ParseAmount(*amountFlag)
	if err != nil {
		zap.L().Fatal("Invalid amount format", zap.String("amount", *amountFlag), zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, zap.L(), cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	account, err := services.Ledger.Deposit(ctx, *numberFlag, amount)
	if err != nil {
		zap.L().Fatal("Deposit failed",
			zap.String("account_number", *numberFlag),
			zap.String("kind", models.KindOf(err)),
			zap.Error(err))
	}

	fmt.Printf("Deposited %s into %s, new balance %s\n",
		amount.Decimal.String(), account.AccountNumber, account.Balance.String())
}
