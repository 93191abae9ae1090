package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry
type EntryType string

const (
	EntryTypeDeposit  EntryType = "DEPOSIT"
	EntryTypeWithdraw EntryType = "WITHDRAW"
	EntryTypeTransfer EntryType = "TRANSFER"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeDeposit, EntryTypeWithdraw, EntryTypeTransfer:
		return true
	}
	return false
}

// LedgerEntry is one immutable record of a completed balance movement.
// FromAccountId is nil for deposits, ToAccountId is nil for withdrawals.
type LedgerEntry struct {
	Id string `json:"id"`
	// Sequence increases with every append and orders an account's history
	Sequence      int64           `json:"sequence"`
	FromAccountId *string         `json:"from_account_id,omitempty"`
	ToAccountId   *string         `json:"to_account_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          EntryType       `json:"type"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Direction reports how the entry moves money for the given account:
// +1 when it credits the account, -1 when it debits it, 0 otherwise.
func (e LedgerEntry) Direction(accountId string) int {
	switch {
	case e.ToAccountId != nil && *e.ToAccountId == accountId:
		return 1
	case e.FromAccountId != nil && *e.FromAccountId == accountId:
		return -1
	}
	return 0
}
