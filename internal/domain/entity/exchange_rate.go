package entity

import (
	"time"
)

// ExchangeRate is the USD price of one BTC as last fetched from the price feed
type ExchangeRate struct {
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}

// IsZero reports whether no rate has ever been fetched
func (r ExchangeRate) IsZero() bool {
	return r.FetchedAt.IsZero()
}

// Age returns how long ago the rate was fetched relative to now
func (r ExchangeRate) Age(now time.Time) time.Duration {
	if r.IsZero() {
		return 0
	}
	return now.Sub(r.FetchedAt)
}
