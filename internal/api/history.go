package api

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
)

// Reconciliation compares an account balance with the sum of its history
type Reconciliation struct {
	Account       models.Account
	LedgerBalance decimal.Decimal
	Credits       int
	Debits        int
}

func (r Reconciliation) Balanced() bool {
	return r.Account.Balance.Equal(r.LedgerBalance)
}

// GetTransactionHistory returns every entry that credits or debits the
// account, oldest first
func (s *LedgerService) GetTransactionHistory(ctx context.Context, accountNumber string) ([]models.LedgerEntry, error) {
	account, err := s.GetAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Getting transaction history",
		zap.String("account_number", accountNumber),
		zap.String("account_id", account.Id))

	return collectHistory(ctx, s.store.Ledger(), account.Id)
}

// ReconcileAccount verifies that the stored balance equals credits minus
// debits over the account's ledger entries. The account is held for update
// so no mutation can land between the two reads.
func (s *LedgerService) ReconcileAccount(ctx context.Context, accountNumber string) (*Reconciliation, error) {
	s.logger.Info("Reconciling balance", zap.String("account_number", accountNumber))

	var result *Reconciliation
	err := s.store.Atomically(ctx, models.IsolationRepeatableRead, func(ctx context.Context, tx store.Tx) error {
		accounts, err := tx.Accounts().FindForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}
		account := accounts[0]

		entries, err := collectHistory(ctx, tx.Ledger(), account.Id)
		if err != nil {
			return err
		}

		result = &Reconciliation{Account: *account, LedgerBalance: decimal.Zero}
		for _, entry := range entries {
			switch entry.Direction(account.Id) {
			case 1:
				result.LedgerBalance = result.LedgerBalance.Add(entry.Amount)
				result.Credits++
			case -1:
				result.LedgerBalance = result.LedgerBalance.Sub(entry.Amount)
				result.Debits++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Balanced() {
		s.logger.Error("Balance reconciliation failed",
			zap.String("account_number", accountNumber),
			zap.String("current_balance", result.Account.Balance.String()),
			zap.String("ledger_balance", result.LedgerBalance.String()),
			zap.String("difference", result.Account.Balance.Sub(result.LedgerBalance).String()))
		return result, fmt.Errorf("%w: account %s current=%s ledger=%s",
			models.ErrBalanceMismatch, accountNumber, result.Account.Balance.String(), result.LedgerBalance.String())
	}

	s.logger.Info("Balance reconciliation successful",
		zap.String("account_number", accountNumber),
		zap.String("balance", result.Account.Balance.String()),
		zap.Int("credits", result.Credits),
		zap.Int("debits", result.Debits))
	return result, nil
}

func collectHistory(ctx context.Context, ledger store.TransactionLedger, accountId string) ([]models.LedgerEntry, error) {
	debits, err := ledger.FindByFromAccount(ctx, accountId)
	if err != nil {
		return nil, fmt.Errorf("failed to get debits: %w", err)
	}
	credits, err := ledger.FindByToAccount(ctx, accountId)
	if err != nil {
		return nil, fmt.Errorf("failed to get credits: %w", err)
	}

	history := append(debits, credits...)
	sort.SliceStable(history, func(i, j int) bool { return history[i].Sequence < history[j].Sequence })
	return history, nil
}
