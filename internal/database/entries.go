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
	"ledger-service/internal/store"
)

type ledgerRepo struct {
	q      queryer
	logger *zap.Logger
}

// Append records an immutable ledger entry in the current unit of work
func (r *ledgerRepo) Append(ctx context.Context, fromAccountId, toAccountId *string, amount decimal.Decimal, entryType models.EntryType) (*models.LedgerEntry, error) {
	if err := store.ValidateEntry(fromAccountId, toAccountId, amount, entryType); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		Id:            uuid.New().String(),
		FromAccountId: fromAccountId,
		ToAccountId:   toAccountId,
		Amount:        amount,
		Type:          entryType,
		CreatedAt:     time.Now().UTC(),
	}

	result, err := r.q.ExecContext(ctx, queryInsertLedgerEntry,
		entry.Id, nullString(fromAccountId), nullString(toAccountId),
		amount.String(), string(entryType), entry.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert ledger entry",
			zap.String("type", string(entryType)),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	entry.Sequence, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger entry sequence: %w", err)
	}

	r.logger.Debug("Ledger entry appended",
		zap.String("entry_id", entry.Id),
		zap.String("type", string(entryType)),
		zap.String("amount", amount.String()))
	return entry, nil
}

func (r *ledgerRepo) FindByFromAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {
	return r.findEntries(ctx, queryGetEntriesByFromAccount, accountId)
}

func (r *ledgerRepo) FindByToAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {
	return r.findEntries(ctx, queryGetEntriesByToAccount, accountId)
}

func (r *ledgerRepo) findEntries(ctx context.Context, query, accountId string) ([]models.LedgerEntry, error) {
	rows, err := r.q.QueryContext(ctx, query, accountId)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.logger.Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		var entry models.LedgerEntry
		var from, to sql.NullString
		var amountStr, entryType string
		if err := rows.Scan(&entry.Sequence, &entry.Id, &from, &to, &amountStr, &entryType, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		entry.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		entry.FromAccountId = stringPtr(from)
		entry.ToAccountId = stringPtr(to)
		entry.Type = models.EntryType(entryType)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error during ledger entry row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return entries, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
