package store

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"ledger-service/internal/models"
)

// Compile-time checks that the interfaces are importable and usable.
func TestStoreInterfacesExist(t *testing.T) {
	var _ Store
	var _ Tx
	var _ AccountStore
	var _ TransactionLedger
	var _ TxFunc = nil
}

func TestValidateEntry(t *testing.T) {
	a, b := "a", "b"
	amount := decimal.NewFromInt(10)

	tests := []struct {
		name      string
		from, to  *string
		amount    decimal.Decimal
		entryType models.EntryType
		wantErr   error
	}{
		{"deposit", nil, &a, amount, models.EntryTypeDeposit, nil},
		{"withdraw", &a, nil, amount, models.EntryTypeWithdraw, nil},
		{"transfer", &a, &b, amount, models.EntryTypeTransfer, nil},
		{"zero amount", nil, &a, decimal.Zero, models.EntryTypeDeposit, models.ErrInvalidAmount},
		{"negative amount", &a, nil, decimal.NewFromInt(-1), models.EntryTypeWithdraw, models.ErrInvalidAmount},
		{"deposit without destination", &a, nil, amount, models.EntryTypeDeposit, models.ErrInvalidRequest},
		{"withdraw without source", nil, &a, amount, models.EntryTypeWithdraw, models.ErrInvalidRequest},
		{"self transfer", &a, &a, amount, models.EntryTypeTransfer, models.ErrInvalidRequest},
		{"unknown type", &a, &b, amount, models.EntryType("REFUND"), models.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.from, tt.to, tt.amount, tt.entryType)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
