package api

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
)

// Deposit credits amount to the account. The account is resolved before
// the amount is checked, so an unknown account reports ErrNotFound first.
func (s *LedgerService) Deposit(ctx context.Context, accountNumber string, amount decimal.NullDecimal) (account *models.Account, err error) {
	started := time.Now()
	defer func() {
		s.observe("deposit", started, err,
			zap.String("account_number", accountNumber),
			zap.String("amount", formatAmount(amount)))
	}()

	err = s.store.Atomically(ctx, models.IsolationRepeatableRead, func(ctx context.Context, tx store.Tx) error {
		accounts, err := tx.Accounts().FindForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}
		if err := requirePositive(amount); err != nil {
			return err
		}

		target := accounts[0]
		target.Balance = target.Balance.Add(amount.Decimal)
		if err := tx.Accounts().Save(ctx, target); err != nil {
			return err
		}
		if _, err := tx.Ledger().Append(ctx, nil, &target.Id, amount.Decimal, models.EntryTypeDeposit); err != nil {
			return err
		}

		account = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntry(string(models.EntryTypeDeposit))
	s.recordBalances(account)
	return account, nil
}
