package svc

import (
	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/cache"
	"cryptodata-api/internal/config"
	"cryptodata-api/internal/marketdata"
	"cryptodata-api/internal/middleware"
	"cryptodata-api/internal/stream"
	"cryptodata-api/pkg/ratelimit"
	"cryptodata-api/pkg/venue"
	_ "cryptodata-api/pkg/venue/exchanges/binance"
	_ "cryptodata-api/pkg/venue/exchanges/hyperliquid"
	_ "cryptodata-api/pkg/venue/exchanges/sim"
)

// SimVenue is the simulated venue exposed in the test environment.
const SimVenue = "sim"

type ServiceContext struct {
	Config config.Config

	Cache       *cache.Cache
	Limiter     *ratelimit.Limiter
	VenueConfig *venue.Config
	Registry    *venue.Registry
	Fetcher     *marketdata.Fetcher
	Streamer    *stream.Streamer

	Metrics *middleware.MetricsMiddleware
}

func NewServiceContext(c config.Config) *ServiceContext {
	venueCfg := c.VenueConfig()
	// Test environment exposes the deterministic simulated venue alongside the real ones.
	if c.IsTestEnv() {
		if _, ok := venueCfg.Venues[SimVenue]; !ok {
			logx.Must(venueCfg.Add(SimVenue, &venue.ConnectorConfig{Type: SimVenue}))
		}
	}

	backoff, err := c.Fetch.Backoff()
	logx.Must(err)
	tick, err := c.Stream.TickInterval()
	logx.Must(err)

	store := cache.New()
	limiter := ratelimit.FromSeconds(c.Fetch.RateLimitInterval)
	registry := venue.NewRegistry(venueCfg.Factories())
	fetcher := marketdata.NewFetcher(registry, store, limiter,
		marketdata.WithTTLs(cache.NewTTLSet(c.Fetch)),
		marketdata.WithRetry(c.Fetch.MaxAttempts, backoff),
	)

	return &ServiceContext{
		Config:      c,
		Cache:       store,
		Limiter:     limiter,
		VenueConfig: venueCfg,
		Registry:    registry,
		Fetcher:     fetcher,
		Streamer: stream.NewStreamer(fetcher,
			stream.WithInterval(tick),
			stream.WithMaxSymbols(c.Stream.MaxSymbols),
			stream.WithWorkers(c.Stream.Workers),
		),
		Metrics: middleware.NewMetricsMiddleware(),
	}
}

// Close releases connector resources.
func (s *ServiceContext) Close() error {
	return s.Registry.Close()
}
