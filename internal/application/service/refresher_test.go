package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/satsval/internal/domain/entity"
	"github.com/damon-houk/satsval/internal/infrastructure/logger"
	"github.com/damon-houk/satsval/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type countingRates struct {
	calls atomic.Int32
	err   error
}

func (c *countingRates) GetRate(ctx context.Context) (float64, error) {
	c.calls.Add(1)
	return 60000, c.err
}

func (c *countingRates) Snapshot() entity.ExchangeRate {
	return entity.ExchangeRate{}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runRefresher(r *Refresher) (context.CancelFunc, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	return cancel, done
}

func TestRefresherRunsUntilCancelled(t *testing.T) {
	rates := &countingRates{}
	refresher := NewRefresher(rates, 10*time.Millisecond, logger.NewJSONLogger(&bytes.Buffer{}, logger.InfoLevel))

	cancel, done := runRefresher(refresher)

	assert.Eventually(t, func() bool {
		return rates.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancel")
	}

	stopped := rates.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, rates.calls.Load())
}

func TestRefresherLogsFailures(t *testing.T) {
	rates := &countingRates{err: fetchFailed("connection refused")}
	var buf lockedBuffer
	refresher := NewRefresher(rates, time.Hour, logger.NewJSONLogger(&buf, logger.InfoLevel))

	cancel, done := runRefresher(refresher)
	defer func() {
		cancel()
		<-done
	}()

	// the first refresh happens right away, not after the first tick
	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "Background rate refresh failed")
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, buf.String(), "connection refused")
	assert.Equal(t, int32(1), rates.calls.Load())
}

func TestRefresherDisabled(t *testing.T) {
	rates := new(mocks.MockRateProvider)
	refresher := NewRefresher(rates, 0, logger.NewJSONLogger(&bytes.Buffer{}, logger.InfoLevel))

	refresher.Run(context.Background())

	rates.AssertNotCalled(t, "GetRate", mock.Anything)
}
