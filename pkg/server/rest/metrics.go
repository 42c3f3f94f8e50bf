package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	tableSize prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigatorx",
			Name:      "http_requests_total",
			Help:      "Number of http requests by route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "navigatorx",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of http requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tableSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "navigatorx",
			Name:      "table_cells",
			Help:      "Number of cells (sources x destinations) of answered table queries.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}),
	}
	reg.MustRegister(m.requests, m.latency, m.tableSize)
	return m
}

func (m *Metrics) observeTable(rows, cols int) {
	m.tableSize.Observe(float64(rows * cols))
}

// PromeHttpMiddleware counts and times every request under its chi route
// pattern, so path parameters do not blow up the label set.
func PromeHttpMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(r.Method, route).Observe(time.Since(st).Seconds())
		})
	}
}
