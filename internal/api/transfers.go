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

// Transfer moves amount between two accounts. The source must keep a
// positive balance: a transfer of the entire balance is rejected, unlike
// Withdraw.
func (s *LedgerService) Transfer(ctx context.Context, fromAccountNumber, toAccountNumber string, amount decimal.NullDecimal) (ok bool, err error) {
	started := time.Now()
	defer func() {
		s.observe("transfer", started, err,
			zap.String("from_account_number", fromAccountNumber),
			zap.String("to_account_number", toAccountNumber),
			zap.String("amount", formatAmount(amount)))
	}()

	switch {
	case fromAccountNumber == "":
		return false, fmt.Errorf("%w: from account number must be provided", models.ErrInvalidRequest)
	case toAccountNumber == "":
		return false, fmt.Errorf("%w: to account number must be provided", models.ErrInvalidRequest)
	case fromAccountNumber == toAccountNumber:
		return false, fmt.Errorf("%w: to and from account numbers must be different", models.ErrInvalidRequest)
	case !amount.Valid:
		return false, fmt.Errorf("%w: amount must be provided", models.ErrInvalidRequest)
	}
	if err := requirePositive(amount); err != nil {
		return false, err
	}

	var source, destination *models.Account
	err = s.store.Atomically(ctx, models.IsolationSerializable, func(ctx context.Context, tx store.Tx) error {
		accounts, err := tx.Accounts().FindForUpdate(ctx, fromAccountNumber, toAccountNumber)
		if err != nil {
			return err
		}
		source, destination = accounts[0], accounts[1]

		if !source.Balance.GreaterThan(amount.Decimal) {
			return fmt.Errorf("%w: account %s has %s, requested %s",
				models.ErrInsufficientFunds, fromAccountNumber, source.Balance.String(), amount.Decimal.String())
		}

		source.Balance = source.Balance.Sub(amount.Decimal)
		destination.Balance = destination.Balance.Add(amount.Decimal)
		if err := tx.Accounts().Save(ctx, source); err != nil {
			return err
		}
		if err := tx.Accounts().Save(ctx, destination); err != nil {
			return err
		}

		_, err = tx.Ledger().Append(ctx, &source.Id, &destination.Id, amount.Decimal, models.EntryTypeTransfer)
		return err
	})
	if err != nil {
		return false, err
	}

	s.metrics.RecordEntry(string(models.EntryTypeTransfer))
	s.recordBalances(source, destination)
	return true, nil
}
