package api

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"ledger-service/internal/models"
)

func TestGetTransactionHistory_MergesDebitsAndCredits(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		ctx := context.Background()
		mustCreate(t, service, "A", "100")
		mustCreate(t, service, "B", "100")

		if _, err := service.Transfer(ctx, "B", "A", amount("10")); err != nil {
			t.Fatalf("Transfer failed: %v", err)
		}
		if _, err := service.Withdraw(ctx, "A", amount("5")); err != nil {
			t.Fatalf("Withdraw failed: %v", err)
		}
		if _, err := service.Transfer(ctx, "A", "B", amount("1")); err != nil {
			t.Fatalf("Transfer failed: %v", err)
		}

		entries := history(t, service, "A")
		expected := []models.EntryType{
			models.EntryTypeDeposit,
			models.EntryTypeTransfer,
			models.EntryTypeWithdraw,
			models.EntryTypeTransfer,
		}
		if len(entries) != len(expected) {
			t.Fatalf("Expected %d entries, got %d", len(expected), len(entries))
		}
		for i, entryType := range expected {
			if entries[i].Type != entryType {
				t.Errorf("Expected entry %d to be %s, got %s", i, entryType, entries[i].Type)
			}
			if i > 0 && entries[i].Sequence <= entries[i-1].Sequence {
				t.Errorf("Expected ascending sequence at %d", i)
			}
		}
	})
}

func TestGetTransactionHistory_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		_, err := service.GetTransactionHistory(context.Background(), "missing")
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("Expected not found, got %v", err)
		}
	})
}

func TestReconcileAccount(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		ctx := context.Background()
		mustCreate(t, service, "A", "100")
		mustCreate(t, service, "B", "0")

		service.Deposit(ctx, "A", amount("20"))
		service.Withdraw(ctx, "A", amount("7.5"))
		service.Transfer(ctx, "A", "B", amount("12.5"))

		result, err := service.ReconcileAccount(ctx, "A")
		if err != nil {
			t.Fatalf("ReconcileAccount failed: %v", err)
		}
		if !result.Balanced() {
			t.Errorf("Expected balanced result")
		}
		if !result.LedgerBalance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected ledger balance 100, got %s", result.LedgerBalance.String())
		}
		if result.Credits != 2 || result.Debits != 2 {
			t.Errorf("Expected 2 credits and 2 debits, got %d and %d", result.Credits, result.Debits)
		}
	})
}

func TestReconcileAccount_DetectsMismatch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		ctx := context.Background()
		mustCreate(t, service, "A", "100")

		// a balance change that bypasses the ledger
		account, err := service.store.Accounts().FindByNumber(ctx, "A")
		if err != nil {
			t.Fatalf("FindByNumber failed: %v", err)
		}
		account.Balance = decimal.NewFromInt(90)
		if err := service.store.Accounts().Save(ctx, account); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		result, err := service.ReconcileAccount(ctx, "A")
		if !errors.Is(err, models.ErrBalanceMismatch) {
			t.Fatalf("Expected balance mismatch, got %v", err)
		}
		if result == nil || result.Balanced() {
			t.Errorf("Expected an unbalanced result")
		}
	})
}
