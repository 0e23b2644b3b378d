// Package currency holds the BTC/USD conversion rules: input sanitization,
// supply clamping and display formatting.
package currency

import (
	"errors"
	"strings"
)

// Currency selects the side of the conversion that drives the input
type Currency string

const (
	BTC Currency = "BTC"
	USD Currency = "USD"
)

// MaxSupply is the BTC supply cap every BTC amount is clamped to
const MaxSupply = 21_000_000

// ErrUnsupportedCurrency is returned for anything other than BTC or USD
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Parse maps a case-insensitive currency code onto a Currency
func Parse(code string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case BTC:
		return BTC, nil
	case USD:
		return USD, nil
	}
	return "", ErrUnsupportedCurrency
}

func (c Currency) String() string {
	return string(c)
}
