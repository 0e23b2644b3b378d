package service

import (
	"context"

	"github.com/damon-houk/satsval/internal/domain/entity"
)

// RateFeed fetches the current BTC→USD rate from an external price source
type RateFeed interface {
	// FetchRate returns the USD price of one BTC
	FetchRate(ctx context.Context) (float64, error)
}

// RateProvider serves the BTC→USD rate, possibly from a cache.
// GetRate always returns a usable rate; a non-nil error reports that the
// rate is the last known good value (or 0) because a refresh failed.
type RateProvider interface {
	GetRate(ctx context.Context) (float64, error)
	Snapshot() entity.ExchangeRate
}
