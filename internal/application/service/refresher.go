package service

import (
	"context"
	"time"

	domainservice "github.com/damon-houk/satsval/internal/domain/service"
	"github.com/damon-houk/satsval/internal/infrastructure/logger"
)

// Refresher keeps the rate cache warm by asking it for the rate on a fixed
// interval. It goes through the same GetRate path as requests do.
type Refresher struct {
	rates    domainservice.RateProvider
	interval time.Duration
	logger   logger.Logger
}

// NewRefresher creates a refresher; an interval of zero or less disables it
func NewRefresher(rates domainservice.RateProvider, interval time.Duration, log logger.Logger) *Refresher {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Refresher{
		rates:    rates,
		interval: interval,
		logger:   log,
	}
}

// Run refreshes once immediately and then on every tick until ctx is done
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("Rate refresher disabled", nil)
		return
	}

	r.logger.Info("Rate refresher started", map[string]interface{}{
		"interval": r.interval.String(),
	})

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Rate refresher stopped", nil)
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	rate, err := r.rates.GetRate(ctx)
	if err != nil {
		r.logger.Warn("Background rate refresh failed", map[string]interface{}{
			"rate":  rate,
			"error": err.Error(),
		})
		return
	}

	r.logger.Debug("Background rate refresh", map[string]interface{}{
		"rate": rate,
	})
}
