package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"ledger-service/internal/models"
)

func TestTransfer_Scenario(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		ctx := context.Background()
		a := mustCreate(t, service, "A", "1000")
		b := mustCreate(t, service, "B", "500")

		ok, err := service.Transfer(ctx, "A", "B", amount("200"))
		if err != nil {
			t.Fatalf("Transfer failed: %v", err)
		}
		if !ok {
			t.Fatalf("Expected transfer to report success")
		}

		mustBalance(t, service, "A", "800")
		mustBalance(t, service, "B", "700")

		debits := history(t, service, "A")
		if len(debits) != 2 {
			t.Fatalf("Expected 2 entries for A, got %d", len(debits))
		}
		transfer := debits[1]
		if transfer.Type != models.EntryTypeTransfer {
			t.Errorf("Expected TRANSFER, got %s", transfer.Type)
		}
		if *transfer.FromAccountId != a.Id || *transfer.ToAccountId != b.Id {
			t.Errorf("Expected transfer %s->%s, got %s->%s", a.Id, b.Id, *transfer.FromAccountId, *transfer.ToAccountId)
		}
		if !transfer.Amount.Equal(decimal.NewFromInt(200)) {
			t.Errorf("Expected amount 200, got %s", transfer.Amount.String())
		}

		credits := history(t, service, "B")
		if len(credits) != 2 || credits[1].Id != transfer.Id {
			t.Errorf("Expected the same TRANSFER entry in B's history")
		}
	})
}

func TestTransfer_Boundary(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		ctx := context.Background()
		mustCreate(t, service, "A", "100")
		mustCreate(t, service, "B", "0")

		_, err := service.Transfer(ctx, "A", "B", amount("100"))
		if !errors.Is(err, models.ErrInsufficientFunds) {
			t.Fatalf("Expected insufficient funds for full balance transfer, got %v", err)
		}
		mustBalance(t, service, "A", "100")
		mustBalance(t, service, "B", "0")

		ok, err := service.Transfer(ctx, "A", "B", amount("99.99"))
		if err != nil || !ok {
			t.Fatalf("Expected transfer of 99.99 to succeed, got %v", err)
		}
		mustBalance(t, service, "A", "0.01")
		mustBalance(t, service, "B", "99.99")
	})
}

func TestTransfer_ConservesBalance(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		ctx := context.Background()
		mustCreate(t, service, "A", "12.345")
		mustCreate(t, service, "B", "0.005")

		for _, value := range []string{"1.111", "0.004", "10"} {
			before := totalBalance(t, service)
			if _, err := service.Transfer(ctx, "A", "B", amount(value)); err != nil {
				t.Fatalf("Transfer %s failed: %v", value, err)
			}
			if after := totalBalance(t, service); !after.Equal(before) {
				t.Errorf("Expected total %s to be conserved, got %s", before.String(), after.String())
			}
		}
		mustBalance(t, service, "A", "1.23")
		mustBalance(t, service, "B", "11.12")
	})
}

func TestTransfer_Errors(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		ctx := context.Background()
		mustCreate(t, service, "A", "100")
		mustCreate(t, service, "B", "100")

		tests := []struct {
			name     string
			from, to string
			amount   decimal.NullDecimal
			wantErr  error
		}{
			{"missing from", "", "B", amount("1"), models.ErrInvalidRequest},
			{"missing to", "A", "", amount("1"), models.ErrInvalidRequest},
			{"same account", "A", "A", amount("1"), models.ErrInvalidRequest},
			{"absent amount", "A", "B", decimal.NullDecimal{}, models.ErrInvalidRequest},
			{"zero amount", "A", "B", amount("0"), models.ErrInvalidAmount},
			{"unknown source", "X", "B", amount("1"), models.ErrNotFound},
			{"unknown destination", "A", "X", amount("1"), models.ErrNotFound},
			{"insufficient", "A", "B", amount("500"), models.ErrInsufficientFunds},
		}

		for _, tt := range tests {
			ok, err := service.Transfer(ctx, tt.from, tt.to, tt.amount)
			if ok {
				t.Errorf("%s: expected failure", tt.name)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: expected %v, got %v", tt.name, tt.wantErr, err)
			}
		}

		mustBalance(t, service, "A", "100")
		mustBalance(t, service, "B", "100")
		if entries := history(t, service, "A"); len(entries) != 1 {
			t.Errorf("Expected no entries from failed transfers, got %d", len(entries)-1)
		}
	})
}

func TestTransfer_OppositeDirectionsConcurrently(t *testing.T) {
	forEachBackend(t, func(t *testing.T, service *LedgerService) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		mustCreate(t, service, "A", "1000")
		mustCreate(t, service, "B", "1000")

		const rounds = 25
		var g errgroup.Group
		for i := 0; i < rounds; i++ {
			g.Go(func() error {
				_, err := service.Transfer(ctx, "A", "B", amount("3"))
				return err
			})
			g.Go(func() error {
				_, err := service.Transfer(ctx, "B", "A", amount("1"))
				return err
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("Concurrent transfers failed: %v", err)
		}

		mustBalance(t, service, "A", "950")
		mustBalance(t, service, "B", "1050")
		for _, number := range []string{"A", "B"} {
			if _, err := service.ReconcileAccount(ctx, number); err != nil {
				t.Errorf("Reconcile %s failed: %v", number, err)
			}
		}
	})
}

func totalBalance(t *testing.T, service *LedgerService) decimal.Decimal {
	t.Helper()
	accounts, err := service.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	total := decimal.Zero
	for _, account := range accounts {
		total = total.Add(account.Balance)
	}
	return total
}
