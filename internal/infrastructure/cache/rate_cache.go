package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/damon-houk/satsval/internal/domain/entity"
	"github.com/damon-houk/satsval/internal/domain/service"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched rate is served before a refresh
const DefaultTTL = 3 * time.Second

const fetchKey = "btc-usd"

// ErrFetchFailed wraps every error coming out of a failed refresh
var ErrFetchFailed = errors.New("rate fetch failed")

// Recorder receives cache and fetch outcomes, typically for metrics
type Recorder interface {
	CacheHit()
	CacheMiss()
	FetchSucceeded(rate float64)
	FetchFailed()
}

type noopRecorder struct{}

func (noopRecorder) CacheHit()              {}
func (noopRecorder) CacheMiss()             {}
func (noopRecorder) FetchSucceeded(float64) {}
func (noopRecorder) FetchFailed()           {}

// Option configures a RateCache
type Option func(*RateCache)

// WithTTL sets how long a fetched rate stays fresh
func WithTTL(ttl time.Duration) Option {
	return func(c *RateCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(c *RateCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRecorder attaches a Recorder
func WithRecorder(r Recorder) Option {
	return func(c *RateCache) {
		if r != nil {
			c.recorder = r
		}
	}
}

// RateCache holds the last fetched BTC→USD rate in a single slot and
// refreshes it from the feed at most once per TTL window
type RateCache struct {
	feed     service.RateFeed
	ttl      time.Duration
	now      func() time.Time
	recorder Recorder

	mutex sync.RWMutex
	slot  entity.ExchangeRate

	group singleflight.Group
}

// NewRateCache creates an empty rate cache in front of feed
func NewRateCache(feed service.RateFeed, opts ...Option) *RateCache {
	c := &RateCache{
		feed:     feed,
		ttl:      DefaultTTL,
		now:      time.Now,
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRate returns the cached rate while it is fresh and otherwise refreshes
// it. Callers missing at the same time share one fetch. When the fetch fails
// the last known good rate is returned (0 if there never was one) together
// with an error wrapping ErrFetchFailed.
func (c *RateCache) GetRate(ctx context.Context) (float64, error) {
	if rate, ok := c.fresh(); ok {
		c.recorder.CacheHit()
		return rate, nil
	}
	c.recorder.CacheMiss()

	v, err, _ := c.group.Do(fetchKey, func() (interface{}, error) {
		// another caller may have refreshed while we waited for the group
		if rate, ok := c.fresh(); ok {
			return rate, nil
		}
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return c.Snapshot().Rate, err
	}

	return v.(float64), nil
}

// Snapshot returns a copy of the cached slot
func (c *RateCache) Snapshot() entity.ExchangeRate {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.slot
}

// TTL returns the configured freshness window
func (c *RateCache) TTL() time.Duration {
	return c.ttl
}

func (c *RateCache) fresh() (float64, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.slot.IsZero() || c.slot.Age(c.now()) >= c.ttl {
		return 0, false
	}
	return c.slot.Rate, true
}

func (c *RateCache) refresh(ctx context.Context) (float64, error) {
	rate, err := c.feed.FetchRate(ctx)
	if err == nil && (math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0) {
		err = fmt.Errorf("invalid rate %v", rate)
	}
	if err != nil {
		c.recorder.FetchFailed()
		return 0, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	c.mutex.Lock()
	c.slot = entity.ExchangeRate{Rate: rate, FetchedAt: c.now()}
	c.mutex.Unlock()

	c.recorder.FetchSucceeded(rate)
	return rate, nil
}

var _ service.RateProvider = (*RateCache)(nil)
