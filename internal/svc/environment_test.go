package svc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptodata-api/internal/config"
	"cryptodata-api/internal/stream"
	"cryptodata-api/internal/svc"
)

func newConfig(env string) config.Config {
	return config.Config{
		Env:    env,
		Status: "OK",
		Fetch: config.FetchConf{
			CacheTTL:          20,
			SymbolsTTL:        300,
			RateLimitInterval: 0,
			MaxAttempts:       3,
			BackoffStep:       "750ms",
		},
		Stream: config.StreamConf{Interval: "1s", MaxSymbols: 5, Workers: 2},
	}
}

// TestEnvironmentAwareVenues verifies that the simulated venue is only
// exposed in the test environment.
func TestEnvironmentAwareVenues(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		wantSim bool
	}{
		{name: "test env adds sim", env: "test", wantSim: true},
		{name: "empty env treated as test", env: "", wantSim: true},
		{name: "dev env keeps public venues", env: "dev", wantSim: false},
		{name: "prod env keeps public venues", env: "prod", wantSim: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := svc.NewServiceContext(newConfig(tt.env))
			defer sc.Close()

			venues := sc.Fetcher.ListVenues()
			assert.Contains(t, venues, "binance")
			assert.Contains(t, venues, "hyperliquid")
			assert.Equal(t, tt.wantSim, sc.Registry.Known(svc.SimVenue))
		})
	}
}

func TestServiceContextFetchesFromSim(t *testing.T) {
	sc := svc.NewServiceContext(newConfig("test"))
	defer sc.Close()

	ticker, err := sc.Fetcher.GetTicker(context.Background(), svc.SimVenue, "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "sim", ticker.Venue)
	assert.InDelta(t, 10000.0, ticker.Price, 1e-9)
	assert.Equal(t, int64(1600000000), ticker.Timestamp)

	frame, err := sc.Streamer.Snapshot(context.Background(), stream.Subscription{
		Venue:   svc.SimVenue,
		Symbols: []string{"BTC/USDT", "ETH/USDT"},
	})
	require.NoError(t, err)
	assert.Len(t, frame.Prices, 2)
}
