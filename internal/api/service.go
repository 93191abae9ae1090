package api

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"ledger-service/internal/metrics"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
)

// LedgerService runs every balance mutation as one atomic unit of work
// against the store and appends the matching ledger entry.
type LedgerService struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewLedgerService wires the service; collector may be nil
func NewLedgerService(st store.Store, logger *zap.Logger, collector *metrics.Collector) *LedgerService {
	return &LedgerService{
		store:   st,
		logger:  logger,
		metrics: collector,
	}
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	if _, err := s.store.Accounts().ListAll(ctx); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}
	return nil
}

// observe records the outcome of an operation. Business rule violations
// are expected traffic and log at warn; anything else is an error.
func (s *LedgerService) observe(operation string, started time.Time, err error, fields ...zap.Field) {
	kind := models.KindOf(err)
	s.metrics.RecordOperation(operation, kind, time.Since(started))

	fields = append(fields, zap.String("operation", operation), zap.String("outcome", kind))
	switch {
	case err == nil:
		s.logger.Info("Ledger operation succeeded", fields...)
	case models.IsBusinessError(err):
		s.logger.Warn("Ledger operation rejected", append(fields, zap.Error(err))...)
	default:
		s.logger.Error("Ledger operation failed", append(fields, zap.Error(err))...)
	}
}

func (s *LedgerService) recordBalances(accounts ...*models.Account) {
	for _, account := range accounts {
		s.metrics.UpdateAccountBalance(account.AccountNumber, account.Balance)
	}
}

// Amount wraps a parsed decimal as a present amount
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

func formatAmount(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return "<absent>"
	}
	return amount.Decimal.String()
}

func requirePositive(amount decimal.NullDecimal) error {
	if !amount.Valid {
		return fmt.Errorf("%w: amount must be provided", models.ErrInvalidAmount)
	}
	if !amount.Decimal.IsPositive() {
		return fmt.Errorf("%w: amount %s must be greater than zero", models.ErrInvalidAmount, amount.Decimal.String())
	}
	return nil
}
