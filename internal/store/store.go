package store

import (
	"context"

	"github.com/shopspring/decimal"
	"ledger-service/internal/models"
)

// AccountStore maps account numbers to their current balance state
type AccountStore interface {
	// Create inserts a new account. Fails with models.ErrDuplicateAccount
	// when the number is taken.
	Create(ctx context.Context, accountNumber string, initialBalance decimal.Decimal) (*models.Account, error)

	// FindByNumber returns a committed snapshot of the account or models.ErrNotFound
	FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error)

	// FindForUpdate loads the accounts and holds them until the unit of work
	// ends. Accounts are acquired in ascending id order; the result follows
	// the order of accountNumbers.
	FindForUpdate(ctx context.Context, accountNumbers ...string) ([]*models.Account, error)

	// Save persists the account balance as part of the current unit of work
	Save(ctx context.Context, account *models.Account) error

	// ListAll returns every account in insertion order
	ListAll(ctx context.Context) ([]models.Account, error)
}

// TransactionLedger is the append-only history of balance movements
type TransactionLedger interface {
	Append(ctx context.Context, fromAccountId, toAccountId *string, amount decimal.Decimal, entryType models.EntryType) (*models.LedgerEntry, error)
	FindByFromAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error)
	FindByToAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error)
}

// Tx is a unit of work: everything written through it commits together
type Tx interface {
	Accounts() AccountStore
	Ledger() TransactionLedger
}

// TxFunc is the body of a unit of work. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is a durable backing for accounts and ledger entries
type Store interface {
	// Atomically runs fn as one unit of work at the requested isolation.
	// Transient conflicts may cause fn to run more than once.
	Atomically(ctx context.Context, isolation models.Isolation, fn TxFunc) error

	// Accounts and Ledger serve committed reads outside a unit of work
	Accounts() AccountStore
	Ledger() TransactionLedger

	Close() error
}
