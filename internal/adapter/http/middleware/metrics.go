
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Metrics middleware records HTTP metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath normalizes URL paths to avoid high cardinality.
func normalizePath(path string) string {
	// Collapse entity and payout ids to placeholders
	// /api/v1/wallets/RIDER/r-42/transactions -> /api/v1/wallets/:type/:id/transactions
	switch {
	case strings.HasPrefix(path, "/api/v1/wallets/"):
		rest := path[len("/api/v1/wallets/"):]
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) < 3 {
			return "/api/v1/wallets/:type/:id"
		}
		return "/api/v1/wallets/:type/:id/" + parts[2]

	case strings.HasPrefix(path, "/api/v1/payouts/"):
		rest := path[len("/api/v1/payouts/"):]
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) < 2 {
			return "/api/v1/payouts/:id"
		}
		return "/api/v1/payouts/:id/" + parts[1]

	case strings.HasPrefix(path, "/api/v1/settlements/order/"):
		return "/api/v1/settlements/order/:id"
	}

	return path
}
