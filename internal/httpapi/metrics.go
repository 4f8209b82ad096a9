package httpapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the share server.
//
// Metrics:
//   - daylog_http_requests_total{method,route,status}
//   - daylog_http_request_duration_seconds{method,route}
//   - daylog_share_fetch_total{outcome} - ok, not_found, expired, disabled, error
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ShareFetchTotal *prometheus.CounterVec
}

// NewMetrics registers the metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "daylog_http_requests_total",
				Help: "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "daylog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"method", "route"},
		),
		ShareFetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "daylog_share_fetch_total",
				Help: "Share fetches by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Middleware records request count and duration. Routes are labelled by
// their pattern so share ids do not become label values.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
