// Package memory is an in-process store.Store. Units of work stage their
// writes and apply them on commit; accounts read for update are held with
// per-account locks taken in ascending id order so that two transfers moving
// money in opposite directions between the same pair cannot deadlock.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account // committed state by id
	numbers  map[string]string          // account number -> id
	order    []string                   // ids in insertion order
	entries  []models.LedgerEntry
	locks    map[string]chan struct{}
	// account numbers claimed by an open unit of work; closed on release
	reserved map[string]chan struct{}
	sequence atomic.Int64
	logger   *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
		numbers:  make(map[string]string),
		locks:    make(map[string]chan struct{}),
		reserved: make(map[string]chan struct{}),
		logger:   logger,
	}
}

// Atomically runs fn with a fresh unit of work. Writes become visible only
// if fn returns nil; every lock and reservation is released either way.
func (s *Store) Atomically(ctx context.Context, isolation models.Isolation, fn store.TxFunc) error {
	tx := newMemTx(s)
	defer tx.release()

	s.logger.Debug("Starting unit of work", zap.String("isolation", isolation.String()))
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) Accounts() store.AccountStore {
	return committedAccounts{s: s}
}

func (s *Store) Ledger() store.TransactionLedger {
	return committedLedger{s: s}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) snapshot(accountNumber string) (*models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.numbers[accountNumber]
	if !ok {
		return nil, false
	}
	account := *s.accounts[id]
	return &account, true
}

func (s *Store) entriesWhere(match func(models.LedgerEntry) bool) []models.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.LedgerEntry, 0)
	for _, entry := range s.entries {
		if match(entry) {
			result = append(result, entry)
		}
	}
	return result
}

// committedAccounts serves reads of committed state; writes run as their
// own single-statement unit of work.
type committedAccounts struct {
	s *Store
}

func (c committedAccounts) Create(ctx context.Context, accountNumber string, initialBalance decimal.Decimal) (*models.Account, error) {
	var account *models.Account
	err := c.s.Atomically(ctx, models.IsolationRepeatableRead, func(ctx context.Context, tx store.Tx) error {
		var err error
		account, err = tx.Accounts().Create(ctx, accountNumber, initialBalance)
		return err
	})
	return account, err
}

func (c committedAccounts) FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	account, ok := c.s.snapshot(accountNumber)
	if !ok {
		return nil, notFound(accountNumber)
	}
	return account, nil
}

func (c committedAccounts) FindForUpdate(ctx context.Context, accountNumbers ...string) ([]*models.Account, error) {
	var accounts []*models.Account
	err := c.s.Atomically(ctx, models.IsolationRepeatableRead, func(ctx context.Context, tx store.Tx) error {
		var err error
		accounts, err = tx.Accounts().FindForUpdate(ctx, accountNumbers...)
		return err
	})
	return accounts, err
}

func (c committedAccounts) Save(ctx context.Context, account *models.Account) error {
	return c.s.Atomically(ctx, models.IsolationRepeatableRead, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Accounts().FindForUpdate(ctx, account.AccountNumber); err != nil {
			return err
		}
		return tx.Accounts().Save(ctx, account)
	})
}

func (c committedAccounts) ListAll(ctx context.Context) ([]models.Account, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	accounts := make([]models.Account, 0, len(c.s.order))
	for _, id := range c.s.order {
		accounts = append(accounts, *c.s.accounts[id])
	}
	return accounts, nil
}

type committedLedger struct {
	s *Store
}

func (c committedLedger) Append(ctx context.Context, fromAccountId, toAccountId *string, amount decimal.Decimal, entryType models.EntryType) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := c.s.Atomically(ctx, models.IsolationRepeatableRead, func(ctx context.Context, tx store.Tx) error {
		var err error
		entry, err = tx.Ledger().Append(ctx, fromAccountId, toAccountId, amount, entryType)
		return err
	})
	return entry, err
}

func (c committedLedger) FindByFromAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {
	return c.s.entriesWhere(func(e models.LedgerEntry) bool {
		return e.FromAccountId != nil && *e.FromAccountId == accountId
	}), nil
}

func (c committedLedger) FindByToAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {
	return c.s.entriesWhere(func(e models.LedgerEntry) bool {
		return e.ToAccountId != nil && *e.ToAccountId == accountId
	}), nil
}

var _ store.Store = (*Store)(nil)
