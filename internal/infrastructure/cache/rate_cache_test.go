package cache

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/satsval/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type countingRecorder struct {
	hits, misses, successes, failures atomic.Int32
	lastRate                          atomic.Value
}

func (r *countingRecorder) CacheHit()  { r.hits.Add(1) }
func (r *countingRecorder) CacheMiss() { r.misses.Add(1) }
func (r *countingRecorder) FetchSucceeded(rate float64) {
	r.successes.Add(1)
	r.lastRate.Store(rate)
}
func (r *countingRecorder) FetchFailed() { r.failures.Add(1) }

func TestRateCacheServesFreshValue(t *testing.T) {
	feed := new(mocks.MockRateFeed)
	clock := newFakeClock()
	c := NewRateCache(feed, WithClock(clock.Now))
	ctx := context.Background()

	assert.True(t, c.Snapshot().IsZero())

	feed.On("FetchRate", mock.Anything).Return(64000.25, nil).Once()

	first, err := c.GetRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 64000.25, first)

	clock.Advance(DefaultTTL - time.Millisecond)
	second, err := c.GetRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	snap := c.Snapshot()
	assert.Equal(t, 64000.25, snap.Rate)
	assert.Equal(t, clock.Now().Add(-(DefaultTTL - time.Millisecond)), snap.FetchedAt)

	feed.AssertExpectations(t)
	feed.AssertNumberOfCalls(t, "FetchRate", 1)
}

func TestRateCacheRefreshesAfterTTL(t *testing.T) {
	feed := new(mocks.MockRateFeed)
	clock := newFakeClock()
	c := NewRateCache(feed, WithClock(clock.Now), WithTTL(10*time.Second))
	ctx := context.Background()

	assert.Equal(t, 10*time.Second, c.TTL())

	feed.On("FetchRate", mock.Anything).Return(60000.0, nil).Once()
	feed.On("FetchRate", mock.Anything).Return(61000.0, nil).Once()

	rate, err := c.GetRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60000.0, rate)

	clock.Advance(10 * time.Second)
	rate, err = c.GetRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 61000.0, rate)

	rate, err = c.GetRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 61000.0, rate)

	feed.AssertExpectations(t)
	feed.AssertNumberOfCalls(t, "FetchRate", 2)
}

func TestRateCacheFetchFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("No rate ever fetched", func(t *testing.T) {
		feed := new(mocks.MockRateFeed)
		c := NewRateCache(feed)

		feed.On("FetchRate", mock.Anything).Return(0.0, errors.New("connection refused")).Once()

		rate, err := c.GetRate(ctx)
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, 0.0, rate)
		assert.True(t, c.Snapshot().IsZero())
	})

	t.Run("Last good rate retained", func(t *testing.T) {
		feed := new(mocks.MockRateFeed)
		clock := newFakeClock()
		c := NewRateCache(feed, WithClock(clock.Now))

		feed.On("FetchRate", mock.Anything).Return(58000.0, nil).Once()
		feed.On("FetchRate", mock.Anything).Return(0.0, errors.New("status 503")).Twice()

		_, err := c.GetRate(ctx)
		require.NoError(t, err)
		fetchedAt := c.Snapshot().FetchedAt

		clock.Advance(time.Minute)
		rate, err := c.GetRate(ctx)
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.Equal(t, 58000.0, rate)

		// the stale slot keeps its timestamp, so the next call tries again
		assert.Equal(t, fetchedAt, c.Snapshot().FetchedAt)
		rate, err = c.GetRate(ctx)
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.Equal(t, 58000.0, rate)

		feed.AssertExpectations(t)
	})

	t.Run("Invalid rate rejected", func(t *testing.T) {
		for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			feed := new(mocks.MockRateFeed)
			c := NewRateCache(feed)

			feed.On("FetchRate", mock.Anything).Return(bad, nil).Once()

			rate, err := c.GetRate(ctx)
			assert.ErrorIs(t, err, ErrFetchFailed)
			assert.Equal(t, 0.0, rate)
			assert.True(t, c.Snapshot().IsZero())
		}
	})
}

func TestRateCacheDetachesFetchFromCallerCancellation(t *testing.T) {
	feed := new(mocks.MockRateFeed)
	c := NewRateCache(feed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed.On("FetchRate", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	})).Return(50000.0, nil).Once()

	rate, err := c.GetRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, rate)
	feed.AssertExpectations(t)
}

// gatedFeed answers the first call immediately and blocks later calls until
// release is closed
type gatedFeed struct {
	calls   atomic.Int32
	release chan struct{}
}

func (f *gatedFeed) FetchRate(ctx context.Context) (float64, error) {
	if f.calls.Add(1) == 1 {
		return 100, nil
	}
	<-f.release
	return 200, nil
}

func TestRateCacheConcurrentRefreshFetchesOnce(t *testing.T) {
	feed := &gatedFeed{release: make(chan struct{})}
	clock := newFakeClock()
	recorder := &countingRecorder{}
	c := NewRateCache(feed, WithClock(clock.Now), WithRecorder(recorder))
	ctx := context.Background()

	rate, err := c.GetRate(ctx)
	require.NoError(t, err)
	require.Equal(t, 100.0, rate)

	clock.Advance(DefaultTTL)

	const callers = 50
	results := make(chan float64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := c.GetRate(ctx)
			assert.NoError(t, err)
			results <- r
		}()
	}

	assert.Eventually(t, func() bool { return feed.calls.Load() == 2 }, time.Second, time.Millisecond)
	close(feed.release)
	wg.Wait()
	close(results)

	for r := range results {
		assert.Contains(t, []float64{100, 200}, r)
	}
	assert.Equal(t, int32(2), feed.calls.Load())
	assert.Equal(t, 200.0, c.Snapshot().Rate)

	assert.Equal(t, int32(2), recorder.successes.Load())
	assert.Equal(t, int32(0), recorder.failures.Load())
	assert.Equal(t, 200.0, recorder.lastRate.Load())
	assert.Equal(t, int32(callers+1), recorder.hits.Load()+recorder.misses.Load())
}
