package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"ledger-service/internal/models"
)

type accountRepo struct {
	q      queryer
	logger *zap.Logger
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *accountRepo) Create(ctx context.Context, accountNumber string, initialBalance decimal.Decimal) (*models.Account, error) {
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance %s is negative", models.ErrInvalidAmount, initialBalance.String())
	}

	r.logger.Debug("Creating account",
		zap.String("account_number", accountNumber),
		zap.String("initial_balance", initialBalance.String()))

	accountId := uuid.New().String()
	now := time.Now().UTC()

	_, err := r.q.ExecContext(ctx, queryInsertAccount, accountId, accountNumber, initialBalance.String(), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug("Account number already taken", zap.String("account_number", accountNumber))
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateAccount, accountNumber)
		}
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return &models.Account{
		Id:            accountId,
		AccountNumber: accountNumber,
		Balance:       initialBalance,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (r *accountRepo) FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	account, err := scanAccount(r.q.QueryRowContext(ctx, queryGetAccountByNumber, accountNumber))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, accountNumber)
	}
	if err != nil {
		r.logger.Error("Failed to get account", zap.String("account_number", accountNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// FindForUpdate reads the accounts inside the caller's transaction. The
// IMMEDIATE transaction already holds the database write lock, so the rows
// stay stable until commit and no per-row locking is needed.
func (r *accountRepo) FindForUpdate(ctx context.Context, accountNumbers ...string) ([]*models.Account, error) {
	accounts := make([]*models.Account, len(accountNumbers))
	for i, number := range accountNumbers {
		account, err := r.FindByNumber(ctx, number)
		if err != nil {
			return nil, err
		}
		accounts[i] = account
	}

	r.logger.Debug("Accounts held for update", zap.Strings("account_numbers", accountNumbers))
	return accounts, nil
}

// Save writes the balance back with an optimistic version check
func (r *accountRepo) Save(ctx context.Context, account *models.Account) error {
	if account.Balance.IsNegative() {
		return fmt.Errorf("%w: account %s", models.ErrInsufficientFunds, account.AccountNumber)
	}

	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx, queryUpdateAccountBalance, account.Balance.String(), now, account.Id, account.Version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: account %s at version %d", models.ErrConcurrentModification, account.AccountNumber, account.Version)
	}

	account.Version++
	account.UpdatedAt = now
	return nil
}

func (r *accountRepo) ListAll(ctx context.Context) ([]models.Account, error) {
	r.logger.Debug("Querying accounts")

	rows, err := r.q.QueryContext(ctx, queryListAccounts)
	if err != nil {
		r.logger.Error("Failed to query accounts", zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.logger.Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	r.logger.Debug("Retrieved accounts", zap.Int("count", len(accounts)))
	return accounts, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var balanceStr string
	err := row.Scan(&account.Id, &account.AccountNumber, &balanceStr, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}
	return &account, nil
}
