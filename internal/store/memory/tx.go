package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"ledger-service/internal/models"
	"ledger-service/internal/store"
)

type memTx struct {
	s *Store

	held     []string            // locked account ids, in acquisition order
	heldSet  map[string]struct{} // same ids for lookup
	created  map[string]*models.Account
	creation []string                   // created ids in call order
	staged   map[string]*models.Account // pending balance updates by id
	entries  []models.LedgerEntry
	reserved []string
}

func newMemTx(s *Store) *memTx {
	return &memTx{
		s:       s,
		heldSet: make(map[string]struct{}),
		created: make(map[string]*models.Account),
		staged:  make(map[string]*models.Account),
	}
}

func (t *memTx) Accounts() store.AccountStore {
	return txAccounts{tx: t}
}

func (t *memTx) Ledger() store.TransactionLedger {
	return txLedger{tx: t}
}

// commit publishes staged state
func (t *memTx) commit() {
	s := t.s
	s.mu.Lock()
	for _, id := range t.creation {
		committed := *t.created[id]
		s.accounts[id] = &committed
		s.numbers[committed.AccountNumber] = id
		s.order = append(s.order, id)
		s.locks[id] = make(chan struct{}, 1)
	}
	for id, account := range t.staged {
		committed := *account
		s.accounts[id] = &committed
	}
	s.entries = append(s.entries, t.entries...)
	s.mu.Unlock()

	s.logger.Debug("Unit of work committed",
		zap.Int("accounts_created", len(t.created)),
		zap.Int("accounts_updated", len(t.staged)),
		zap.Int("entries_appended", len(t.entries)))
}

// release unlocks held accounts and frees reserved numbers. Safe to call
// after commit.
func (t *memTx) release() {
	s := t.s
	if len(t.reserved) > 0 {
		s.mu.Lock()
		for _, number := range t.reserved {
			if wait, ok := s.reserved[number]; ok {
				delete(s.reserved, number)
				close(wait)
			}
		}
		s.mu.Unlock()
		t.reserved = nil
	}

	for i := len(t.held) - 1; i >= 0; i-- {
		s.mu.RLock()
		lock := s.locks[t.held[i]]
		s.mu.RUnlock()
		<-lock
	}
	t.held = nil
}

// current returns the account as this unit of work sees it
func (t *memTx) current(id string) *models.Account {
	if account, ok := t.staged[id]; ok {
		return account
	}
	if account, ok := t.created[id]; ok {
		return account
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.accounts[id]
}

func (t *memTx) resolve(accountNumber string) (string, bool) {
	for _, id := range t.creation {
		if t.created[id].AccountNumber == accountNumber {
			return id, true
		}
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	id, ok := t.s.numbers[accountNumber]
	return id, ok
}

func (t *memTx) exists(id string) bool {
	if _, ok := t.created[id]; ok {
		return true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	_, ok := t.s.accounts[id]
	return ok
}

// lock acquires the given account ids in ascending order, skipping ids this
// unit of work already holds or created itself.
func (t *memTx) lock(ctx context.Context, ids []string) error {
	pending := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := t.heldSet[id]; ok {
			continue
		}
		if _, ok := t.created[id]; ok {
			continue
		}
		pending = append(pending, id)
	}
	sort.Strings(pending)

	for i, id := range pending {
		if i > 0 && pending[i-1] == id {
			continue
		}
		t.s.mu.RLock()
		lock := t.s.locks[id]
		t.s.mu.RUnlock()

		select {
		case lock <- struct{}{}:
		case <-ctx.Done():
			return fmt.Errorf("waiting for account lock: %w", ctx.Err())
		}
		t.held = append(t.held, id)
		t.heldSet[id] = struct{}{}
	}
	return nil
}

func (t *memTx) holds(id string) bool {
	if _, ok := t.heldSet[id]; ok {
		return true
	}
	_, ok := t.created[id]
	return ok
}

type txAccounts struct {
	tx *memTx
}

func (a txAccounts) Create(ctx context.Context, accountNumber string, initialBalance decimal.Decimal) (*models.Account, error) {
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance %s is negative", models.ErrInvalidAmount, initialBalance.String())
	}
	if _, ok := a.tx.resolve(accountNumber); ok {
		return nil, fmt.Errorf("%w: %s", models.ErrDuplicateAccount, accountNumber)
	}
	if err := a.reserve(ctx, accountNumber); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &models.Account{
		Id:            uuid.New().String(),
		AccountNumber: accountNumber,
		Balance:       initialBalance,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	a.tx.created[account.Id] = account
	a.tx.creation = append(a.tx.creation, account.Id)

	result := *account
	return &result, nil
}

// reserve claims accountNumber for this unit of work. A number claimed by
// another open unit of work is waited on, the way a unique index blocks a
// second insert until the first transaction finishes.
func (a txAccounts) reserve(ctx context.Context, accountNumber string) error {
	s := a.tx.s
	for {
		s.mu.Lock()
		if _, ok := s.numbers[accountNumber]; ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", models.ErrDuplicateAccount, accountNumber)
		}
		wait, ok := s.reserved[accountNumber]
		if !ok {
			s.reserved[accountNumber] = make(chan struct{})
			s.mu.Unlock()
			a.tx.reserved = append(a.tx.reserved, accountNumber)
			return nil
		}
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return fmt.Errorf("waiting for account number %s: %w", accountNumber, ctx.Err())
		}
	}
}

func (a txAccounts) FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	id, ok := a.tx.resolve(accountNumber)
	if !ok {
		return nil, notFound(accountNumber)
	}
	account := *a.tx.current(id)
	return &account, nil
}

func (a txAccounts) FindForUpdate(ctx context.Context, accountNumbers ...string) ([]*models.Account, error) {
	ids := make([]string, len(accountNumbers))
	for i, number := range accountNumbers {
		id, ok := a.tx.resolve(number)
		if !ok {
			return nil, notFound(number)
		}
		ids[i] = id
	}

	if err := a.tx.lock(ctx, ids); err != nil {
		return nil, err
	}

	accounts := make([]*models.Account, len(ids))
	for i, id := range ids {
		account := *a.tx.current(id)
		accounts[i] = &account
	}
	return accounts, nil
}

func (a txAccounts) Save(ctx context.Context, account *models.Account) error {
	if !a.tx.holds(account.Id) {
		return fmt.Errorf("account %s saved without being read for update", account.AccountNumber)
	}
	if account.Balance.IsNegative() {
		return fmt.Errorf("%w: account %s", models.ErrInsufficientFunds, account.AccountNumber)
	}

	current := a.tx.current(account.Id)
	if current.Version != account.Version {
		return fmt.Errorf("%w: account %s at version %d", models.ErrConcurrentModification, account.AccountNumber, account.Version)
	}

	account.Version++
	account.UpdatedAt = time.Now().UTC()
	staged := *account
	if _, ok := a.tx.created[account.Id]; ok {
		a.tx.created[account.Id] = &staged
		return nil
	}
	a.tx.staged[account.Id] = &staged
	return nil
}

func (a txAccounts) ListAll(ctx context.Context) ([]models.Account, error) {
	committed, err := committedAccounts{s: a.tx.s}.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range committed {
		if staged, ok := a.tx.staged[committed[i].Id]; ok {
			committed[i] = *staged
		}
	}
	for _, id := range a.tx.creation {
		committed = append(committed, *a.tx.created[id])
	}
	return committed, nil
}

type txLedger struct {
	tx *memTx
}

func (l txLedger) Append(ctx context.Context, fromAccountId, toAccountId *string, amount decimal.Decimal, entryType models.EntryType) (*models.LedgerEntry, error) {
	if err := store.ValidateEntry(fromAccountId, toAccountId, amount, entryType); err != nil {
		return nil, err
	}
	for _, id := range []*string{fromAccountId, toAccountId} {
		if id != nil && !l.tx.exists(*id) {
			return nil, fmt.Errorf("%w: account id %s", models.ErrNotFound, *id)
		}
	}

	entry := models.LedgerEntry{
		Id:            uuid.New().String(),
		Sequence:      l.tx.s.sequence.Add(1),
		FromAccountId: copyString(fromAccountId),
		ToAccountId:   copyString(toAccountId),
		Amount:        amount,
		Type:          entryType,
		CreatedAt:     time.Now().UTC(),
	}
	l.tx.entries = append(l.tx.entries, entry)
	return &entry, nil
}

func (l txLedger) FindByFromAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {
	return l.find(func(e models.LedgerEntry) bool {
		return e.FromAccountId != nil && *e.FromAccountId == accountId
	}), nil
}

func (l txLedger) FindByToAccount(ctx context.Context, accountId string) ([]models.LedgerEntry, error) {
	return l.find(func(e models.LedgerEntry) bool {
		return e.ToAccountId != nil && *e.ToAccountId == accountId
	}), nil
}

func (l txLedger) find(match func(models.LedgerEntry) bool) []models.LedgerEntry {
	result := l.tx.s.entriesWhere(match)
	for _, entry := range l.tx.entries {
		if match(entry) {
			result = append(result, entry)
		}
	}
	return result
}

func notFound(accountNumber string) error {
	return fmt.Errorf("%w: %s", models.ErrNotFound, accountNumber)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
