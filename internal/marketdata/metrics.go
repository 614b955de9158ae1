package marketdata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptodata",
		Subsystem: "fetch",
		Name:      "attempts_total",
		Help:      "Upstream fetch attempts by venue, operation and result.",
	}, []string{"venue", "op", "result"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cryptodata",
		Subsystem: "fetch",
		Name:      "duration_seconds",
		Help:      "Latency of successful fetches including retries and waits.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"venue", "op"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptodata",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by operation and result.",
	}, []string{"op", "result"})
)
