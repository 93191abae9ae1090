package store

import (
	"fmt"

	"github.com/shopspring/decimal"
	"ledger-service/internal/models"
)

// ValidateEntry checks the shape every ledger entry must have before it is
// appended: a positive amount and the account references its type requires.
func ValidateEntry(fromAccountId, toAccountId *string, amount decimal.Decimal, entryType models.EntryType) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: ledger amount %s must be positive", models.ErrInvalidAmount, amount.String())
	}

	switch entryType {
	case models.EntryTypeDeposit:
		if toAccountId == nil {
			return fmt.Errorf("%w: deposit entry needs a destination", models.ErrInvalidRequest)
		}
	case models.EntryTypeWithdraw:
		if fromAccountId == nil {
			return fmt.Errorf("%w: withdraw entry needs a source", models.ErrInvalidRequest)
		}
	case models.EntryTypeTransfer:
		if fromAccountId == nil || toAccountId == nil || *fromAccountId == *toAccountId {
			return fmt.Errorf("%w: transfer entry needs two distinct accounts", models.ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown entry type %q", models.ErrInvalidRequest, entryType)
	}
	return nil
}
