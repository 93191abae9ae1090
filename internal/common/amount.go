package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"ledger-service/internal/models"
)

// ParseAmount reads a command line amount. An empty value is an absent
// amount, which the ledger service rejects on its own terms.
func ParseAmount(value string) (decimal.NullDecimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.NullDecimal{}, nil
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q is not a decimal number", models.ErrInvalidAmount, value)
	}
	return decimal.NewNullDecimal(amount), nil
}
