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

	// Parse command line flags
	numberFlag := flag.String("number", "", "Filter by specific account number (optional)")
	reconcileFlag := flag.Bool("reconcile", false, "Verify each balance against its ledger history")
	flag.Parse()

	logger.Info("Starting balance query")

	services, err := common.InitializeServices(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	// Get accounts - either a specific account or all accounts
	var accounts []models.Account
	if *numberFlag != "" {
		account, err := services.Ledger.GetAccount(ctx, *numberFlag)
		if err != nil {
			logger.Fatal("Account not found", zap.String("account_number", *numberFlag), zap.Error(err))
		}
		accounts = append(accounts, *account)
	} else {
		accounts, err = services.Ledger.ListAccounts(ctx)
		if err != nil {
			logger.Fatal("Failed to get accounts", zap.Error(err))
		}
	}

	logger.Info("Retrieved accounts", zap.Int("count", len(accounts)))

	common.PrintHeader("ACCOUNT BALANCE REPORT", common.DefaultWidth)

	mismatches := 0
	for i, account := range accounts {
		symbol := common.BoxPrefix(i == len(accounts)-1)
		status := ""
		if *reconcileFlag {
			status = " ok"
			result, err := services.Ledger.ReconcileAccount(ctx, account.AccountNumber)
			if err != nil {
				mismatches++
				status = " " + models.KindOf(err)
				if result != nil {
					status = fmt.Sprintf(" MISMATCH (ledger %s)", result.LedgerBalance.String())
				}
			}
		}

		fmt.Printf("%s %-20s: %20s (v%d, updated: %s)%s\n",
			symbol,
			account.AccountNumber,
			account.Balance.String(),
			account.Version,
			account.UpdatedAt.Format("2006-01-02 15:04:05"),
			status)
	}

	summary := fmt.Sprintf("SUMMARY: %d accounts", len(accounts))
	if *reconcileFlag {
		summary = fmt.Sprintf("%s, %d failed reconciliation", summary, mismatches)
	}
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("accounts", len(accounts)),
		zap.Int("mismatches", mismatches))

	if mismatches > 0 {
		logger.Fatal("Balance reconciliation found discrepancies", zap.Int("mismatches", mismatches))
	}
}
