package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlTx struct {
	accounts *accountRepo
	ledger   *ledgerRepo
}

func (t *sqlTx) Accounts() store.AccountStore {
	return t.accounts
}

func (t *sqlTx) Ledger() store.TransactionLedger {
	return t.ledger
}

// Atomically runs fn inside one SQLite transaction. Busy/locked errors and
// lost optimistic version checks are retried with exponential backoff; any
// other error from fn is returned as-is after rollback.
//
// Both isolation levels execute serializably: the IMMEDIATE transaction holds
// the write lock from BEGIN until COMMIT.
func (s *Service) Atomically(ctx context.Context, isolation models.Isolation, fn store.TxFunc) error {
	maxAttempts := s.cfg.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := s.cfg.RetryBackoff

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}

		if attempt == maxAttempts {
			break
		}

		s.logger.Warn("Retrying unit of work after transient conflict",
			zap.String("isolation", isolation.String()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	s.logger.Error("Unit of work failed after retries",
		zap.String("isolation", isolation.String()),
		zap.Int("attempts", maxAttempts),
		zap.Error(err))
	return fmt.Errorf("unit of work failed after %d attempts: %w", maxAttempts, err)
}

func (s *Service) runTx(ctx context.Context, fn store.TxFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &sqlTx{
		accounts: &accountRepo{q: tx, logger: s.logger},
		ledger:   &ledgerRepo{q: tx, logger: s.logger},
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	if errors.Is(err, models.ErrConcurrentModification) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
