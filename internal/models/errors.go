package models

import "errors"

var (
	// ErrNotFound the referenced account number does not exist
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateAccount the account number is already taken
	ErrDuplicateAccount = errors.New("account number already exists")

	// ErrInvalidAmount the amount is missing, malformed or not positive
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidRequest a required identifier is missing or the request is self-referencing
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInsufficientFunds the balance rule for the operation is violated
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrentModification an optimistic version check lost a race
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrBalanceMismatch the stored balance disagrees with the ledger history
	ErrBalanceMismatch = errors.New("balance mismatch")
)

// Stable error kinds for callers that must not parse messages
const (
	KindOK                = "OK"
	KindNotFound          = "NOT_FOUND"
	KindDuplicateAccount  = "DUPLICATE_ACCOUNT"
	KindInvalidAmount     = "INVALID_AMOUNT"
	KindInvalidRequest    = "INVALID_REQUEST"
	KindInsufficientFunds = "INSUFFICIENT_FUNDS"
	KindInternal          = "INTERNAL"
)

// KindOf maps err to one of the Kind constants
func KindOf(err error) string {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicateAccount):
		return KindDuplicateAccount
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	default:
		return KindInternal
	}
}

// IsBusinessError reports whether err is a deterministic rule violation
// that retrying cannot fix
func IsBusinessError(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindDuplicateAccount, KindInvalidAmount, KindInvalidRequest, KindInsufficientFunds:
		return true
	}
	return false
}
