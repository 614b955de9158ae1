package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareRecordsStatus(t *testing.T) {
	handler := NewMetricsMiddleware().Route("/teapot")(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(requestCount.WithLabelValues(http.MethodGet, "/teapot", "418"))
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(requestCount.WithLabelValues(http.MethodGet, "/teapot", "418")))
}

func TestMetricsMiddlewareDefaultsToOK(t *testing.T) {
	handler := NewMetricsMiddleware().Route("/ok")(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(requestCount.WithLabelValues(http.MethodPost, "/ok", "200"))
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ok", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(requestCount.WithLabelValues(http.MethodPost, "/ok", "200")))
}

func TestMetricsMiddlewareLabelsByRoutePattern(t *testing.T) {
	const pattern = "/api/v1/utils/symbols/:exchange"
	handler := NewMetricsMiddleware().Route(pattern)(func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(requestCount.WithLabelValues(http.MethodGet, pattern, "200"))
	for _, path := range []string{"/api/v1/utils/symbols/binance", "/api/v1/utils/symbols/x1", "/api/v1/utils/symbols/x2"} {
		handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(requestCount.WithLabelValues(http.MethodGet, pattern, "200")))
	assert.Zero(t, testutil.ToFloat64(requestCount.WithLabelValues(http.MethodGet, "/api/v1/utils/symbols/x1", "200")),
		"concrete paths never become label values")
}
