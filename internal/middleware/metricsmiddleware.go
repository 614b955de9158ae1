package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zeromicro/go-zero/core/logx"
)

var (
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptodata",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status_code"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cryptodata",
		Subsystem: "http",
		Name:      "request_latency_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

type MetricsMiddleware struct{}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{}
}

// Route returns a middleware recording request count and latency under the
// route pattern, so path parameters never become label values.
func (m *MetricsMiddleware) Route(pattern string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next(rec, r)
			duration := time.Since(start)

			requestCount.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
			requestLatency.WithLabelValues(r.Method, pattern).Observe(duration.Seconds())
			logx.WithContext(r.Context()).WithDuration(duration).Infof("%s %s - status %d", r.Method, r.URL.Path, rec.status)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the
// underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
