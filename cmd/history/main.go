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

	numberFlag := flag.String("number", "", "Account number (required)")
	flag.Parse()

	if *numberFlag == "" {
		logger.Fatal("The --number flag is required")
	}

	services, err := common.InitializeServices(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	account, err := services.Ledger.GetAccount(ctx, *numberFlag)
	if err != nil {
		logger.Fatal("Account not found", zap.String("account_number", *numberFlag), zap.Error(err))
	}

	entries, err := services.Ledger.GetTransactionHistory(ctx, *numberFlag)
	if err != nil {
		logger.Fatal("Failed to get transaction history", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("HISTORY FOR %s", account.AccountNumber), common.DefaultWidth)
	fmt.Printf("│  ID: %s\n", account.Id)
	fmt.Printf("│  Balance: %s\n", account.Balance.String())
	common.PrintBoxSeparator(78)

	for i, entry := range entries {
		sign := "+"
		if entry.Direction(account.Id) < 0 {
			sign = "-"
		}

		fmt.Printf("%s #%-6d %-8s %s%-18s %s  %s\n",
			common.BoxPrefix(i == len(entries)-1),
			entry.Sequence,
			entry.Type,
			sign,
			entry.Amount.String(),
			counterparty(entry, account.Id),
			entry.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d entries", len(entries)), common.DefaultWidth)
}

func counterparty(entry models.LedgerEntry, accountId string) string {
	switch {
	case entry.Type != models.EntryTypeTransfer:
		return "-"
	case entry.FromAccountId != nil && *entry.FromAccountId == accountId:
		return "to " + *entry.ToAccountId
	default:
		return "from " + *entry.FromAccountId
	}
}
