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

// CreateAccount opens an account with an initial balance. A positive
// initial balance is recorded as a DEPOSIT entry in the same unit of work,
// so a duplicate account number leaves neither an account nor an entry.
func (s *LedgerService) CreateAccount(ctx context.Context, accountNumber string, balance decimal.NullDecimal) (account *models.Account, err error) {
	started := time.Now()
	defer func() {
		s.observe("create_account", started, err,
			zap.String("account_number", accountNumber),
			zap.String("balance", formatAmount(balance)))
	}()

	if accountNumber == "" {
		return nil, fmt.Errorf("%w: account number must be provided", models.ErrInvalidRequest)
	}
	if !balance.Valid {
		return nil, fmt.Errorf("%w: balance must be provided", models.ErrInvalidAmount)
	}
	if balance.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s must not be negative", models.ErrInvalidAmount, balance.Decimal.String())
	}

	err = s.store.Atomically(ctx, models.IsolationSerializable, func(ctx context.Context, tx store.Tx) error {
		created, err := tx.Accounts().Create(ctx, accountNumber, balance.Decimal)
		if err != nil {
			return err
		}

		if created.Balance.IsPositive() {
			if _, err := tx.Ledger().Append(ctx, nil, &created.Id, created.Balance, models.EntryTypeDeposit); err != nil {
				return err
			}
		}

		account = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if account.Balance.IsPositive() {
		s.metrics.RecordEntry(string(models.EntryTypeDeposit))
	}
	s.recordBalances(account)
	return account, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	if accountNumber == "" {
		return nil, fmt.Errorf("%w: account number must be provided", models.ErrNotFound)
	}
	return s.store.Accounts().FindByNumber(ctx, accountNumber)
}

// ListAccounts returns all accounts in creation order; no accounts is an
// empty slice, not an error
func (s *LedgerService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.store.Accounts().ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
