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

	fromFlag := flag.String("from", "", "Source account number (required)")
	toFlag := flag.String("to", "", "Destination account number (required)")
	amountFlag := flag.String("amount", "", "Amount to transfer (required)")
	flag.Parse()

	if *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		zap.L().Fatal("All flags are required: --from, --to, --amount")
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

	if _, err := services.Ledger.Transfer(ctx, *fromFlag, *toFlag, amount); err != nil {
		zap.L().Fatal("Transfer failed",
			zap.String("from", *fromFlag),
			zap.String("to", *toFlag),
			zap.String("kind", models.KindOf(err)),
			zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("TRANSFER COMPLETE", common.DefaultWidth)
	for _, number := range []string{*fromFlag, *toFlag} {
		account, err := services.Ledger.GetAccount(ctx, number)
		if err != nil {
			zap.L().Error("Failed to read account after transfer", zap.String("account_number", number), zap.Error(err))
			continue
		}
		fmt.Printf("%-20s %20s\n", account.AccountNumber, account.Balance.String())
	}
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}
