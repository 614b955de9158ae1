package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeromicro/go-zero/rest"

	"cryptodata-api/internal/middleware"
	"cryptodata-api/internal/svc"
)

const (
	realTimePrefix   = "/api/v1/real_time"
	historicalPrefix = "/api/v1/historical"
	utilsPrefix      = "/api/v1/utils"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		withMetrics(serverCtx.Metrics, realTimePrefix, []rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/ticker",
				Handler: GetTickerHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/order_book",
				Handler: GetOrderBookHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/trades",
				Handler: GetTradesHandler(serverCtx),
			},
		}),
		rest.WithPrefix(realTimePrefix),
	)

	// Long-lived stream connections stay out of the request metrics.
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/stream_prices",
				Handler: StreamPricesHandler(serverCtx),
			},
		},
		rest.WithPrefix(realTimePrefix),
	)

	server.AddRoutes(
		withMetrics(serverCtx.Metrics, historicalPrefix, []rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/ohlcv",
				Handler: GetOHLCVHandler(serverCtx),
			},
		}),
		rest.WithPrefix(historicalPrefix),
	)

	server.AddRoutes(
		withMetrics(serverCtx.Metrics, utilsPrefix, []rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/exchanges",
				Handler: ListExchangesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/symbols/:exchange",
				Handler: ListSymbolsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/validate",
				Handler: ValidatePairHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/status",
				Handler: StatusHandler(serverCtx),
			},
		}),
		rest.WithPrefix(utilsPrefix),
	)

	server.AddRoute(rest.Route{
		Method:  http.MethodGet,
		Path:    "/metrics",
		Handler: promhttp.Handler().ServeHTTP,
	})
}

// withMetrics wraps every route with request metrics labelled by its full
// route pattern.
func withMetrics(m *middleware.MetricsMiddleware, prefix string, routes []rest.Route) []rest.Route {
	for i := range routes {
		routes[i].Handler = m.Route(prefix + routes[i].Path)(routes[i].Handler)
	}
	return routes
}
