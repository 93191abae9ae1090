package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the current balance state of one ledger account
type Account struct {
	Id            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Isolation is the consistency strength a unit of work asks the store for
type Isolation int

const (
	// IsolationRepeatableRead is enough for operations touching one account
	IsolationRepeatableRead Isolation = iota
	// IsolationSerializable is required for operations touching several accounts
	IsolationSerializable
)

func (i Isolation) String() string {
	switch i {
	case IsolationRepeatableRead:
		return "repeatable_read"
	case IsolationSerializable:
		return "serializable"
	default:
		return "unknown"
	}
}
