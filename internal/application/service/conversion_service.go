// Package service internal/application/service/conversion_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/satsval/internal/domain/currency"
	domainservice "github.com/damon-houk/satsval/internal/domain/service"
	"github.com/damon-houk/satsval/internal/infrastructure/logger"
	"github.com/damon-houk/satsval/internal/infrastructure/middleware"
)

// ConversionResult carries both display values of one conversion
type ConversionResult struct {
	BTC      string            `json:"btc"`
	USD      string            `json:"usd"`
	Currency currency.Currency `json:"currency"`
	Rate     float64           `json:"rate"`
}

// RateQuote describes the rate the service is currently converting with
type RateQuote struct {
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale"`
}

// ConversionService handles currency conversion between BTC and USD
type ConversionService struct {
	rates  domainservice.RateProvider
	logger logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(rates domainservice.RateProvider, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		rates:  rates,
		logger: log,
	}
}

// Convert sanitizes raw, reads it as an amount of code and converts it at
// the current rate. Only an unknown currency code is an error.
func (s *ConversionService) Convert(ctx context.Context, raw, code string) (*ConversionResult, error) {
	requestID := middleware.GetRequestID(ctx)

	from, err := currency.Parse(code)
	if err != nil {
		s.logger.Warn("Unsupported currency", map[string]interface{}{
			"request_id": requestID,
			"currency":   code,
		})
		return nil, fmt.Errorf("failed to convert %q: %w", code, err)
	}

	rate := s.rate(ctx)
	amount := currency.Sanitize(raw)
	result := currency.Convert(amount, from, rate)

	s.logger.Debug("Conversion completed", map[string]interface{}{
		"request_id": requestID,
		"currency":   from.String(),
		"raw":        raw,
		"amount":     amount.Value,
		"rate":       rate,
		"btc":        result.BTC,
		"usd":        result.USD,
	})

	return &ConversionResult{
		BTC:      result.BTC,
		USD:      result.USD,
		Currency: from,
		Rate:     rate,
	}, nil
}

// Landing returns the values the converter page starts with: one BTC at
// the current rate
func (s *ConversionService) Landing(ctx context.Context) *ConversionResult {
	rate := s.rate(ctx)
	result := currency.Convert(currency.Sanitize("1"), currency.BTC, rate)

	return &ConversionResult{
		BTC:      result.BTC,
		USD:      result.USD,
		Currency: currency.BTC,
		Rate:     rate,
	}
}

// CurrentRate returns the rate together with when it was fetched. Stale is
// set when the latest refresh failed and an older value is being served.
func (s *ConversionService) CurrentRate(ctx context.Context) *RateQuote {
	rate, err := s.rates.GetRate(ctx)
	if err != nil {
		s.logFetchFailure(ctx, rate, err)
	}
	snap := s.rates.Snapshot()

	return &RateQuote{
		Rate:      rate,
		FetchedAt: snap.FetchedAt,
		Stale:     err != nil,
	}
}

func (s *ConversionService) rate(ctx context.Context) float64 {
	rate, err := s.rates.GetRate(ctx)
	if err != nil {
		s.logFetchFailure(ctx, rate, err)
	}
	return rate
}

func (s *ConversionService) logFetchFailure(ctx context.Context, fallback float64, err error) {
	s.logger.Warn("Exchange rate refresh failed, using last known rate", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"rate":       fallback,
		"error":      err.Error(),
	})
}
