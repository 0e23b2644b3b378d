package currency

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	btcDecimals = 8
	usdDecimals = 2
)

var maxSupply = decimal.NewFromInt(MaxSupply)

// Result holds the two display strings of one conversion
type Result struct {
	BTC string
	USD string
}

// Convert turns a sanitized amount typed in from into both display values
// at the given rate. A rate that is not a positive finite number converts
// everything to zero.
func Convert(amount Amount, from Currency, rate float64) Result {
	r := rateDecimal(rate)

	if from == USD {
		btc := decimal.Zero
		if r.IsPositive() {
			btc = clampSupply(amountDecimal(amount).Div(r))
		}
		return Result{
			BTC: formatDecimal(btc, btcDecimals),
			USD: amount.Text,
		}
	}

	btc := amountDecimal(amount)
	btcDisplay := truncateFraction(amount.Text, btcDecimals)
	if btc.GreaterThan(maxSupply) {
		btcDisplay = formatDecimal(maxSupply, 0)
	}
	usd := clampSupply(btc).Mul(r)

	return Result{
		BTC: btcDisplay,
		USD: formatDecimal(usd, usdDecimals),
	}
}

// amountDecimal reads the cleaned text so the cap check and the echoed
// display agree on digits float64 cannot hold
func amountDecimal(amount Amount) decimal.Decimal {
	if d, err := decimal.NewFromString(amount.Text); err == nil {
		return d
	}
	return decimal.NewFromFloat(amount.Value)
}

func rateDecimal(rate float64) decimal.Decimal {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(rate)
}

func clampSupply(btc decimal.Decimal) decimal.Decimal {
	if btc.IsNegative() {
		return decimal.Zero
	}
	if btc.GreaterThan(maxSupply) {
		return maxSupply
	}
	return btc
}
