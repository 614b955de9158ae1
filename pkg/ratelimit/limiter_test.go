package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterSpacesSequentialCalls(t *testing.T) {
	l := New(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 95*time.Millisecond, "three calls need two full intervals")
}

func TestLimiterFirstCallDoesNotWait(t *testing.T) {
	l := New(time.Second)
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterConcurrentCallersAreSerialised(t *testing.T) {
	l := New(40 * time.Millisecond)
	ctx := context.Background()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		times []time.Time
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Wait(ctx))
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, times, 4)
	first, last := times[0], times[0]
	for _, ts := range times {
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	assert.GreaterOrEqual(t, last.Sub(first), 110*time.Millisecond, "no two callers may proceed within one interval")
}

func TestLimiterHonoursContext(t *testing.T) {
	l := New(time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestLimiterDisabled(t *testing.T) {
	l := New(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	var nilLimiter *Limiter
	assert.NoError(t, nilLimiter.Wait(context.Background()))
}

func TestFromSeconds(t *testing.T) {
	ctx := context.Background()

	l := FromSeconds(0.05)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 95*time.Millisecond)

	disabled := FromSeconds(0)
	start = time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, disabled.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
