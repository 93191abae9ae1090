package api

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
)

// Withdraw debits amount from the account. Withdrawing the whole balance
// is allowed.
func (s *LedgerService) Withdraw(ctx context.Context, accountNumber string, amount decimal.NullDecimal) (account *models.Account, err error) {
	started := time.Now()
	defer func() {
		s.observe("withdraw", started, err,
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

		source := accounts[0]
		if source.Balance.LessThan(amount.Decimal) {
			return fmt.Errorf("%w: account %s has %s, requested %s",
				models.ErrInsufficientFunds, accountNumber, source.Balance.String(), amount.Decimal.String())
		}

		source.Balance = source.Balance.Sub(amount.Decimal)
		if err := tx.Accounts().Save(ctx, source); err != nil {
			return err
		}
		if _, err := tx.Ledger().Append(ctx, &source.Id, nil, amount.Decimal, models.EntryTypeWithdraw); err != nil {
			return err
		}

		account = source
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntry(string(models.EntryTypeWithdraw))
	s.recordBalances(account)
	return account, nil
}
