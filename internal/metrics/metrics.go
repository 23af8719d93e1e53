// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnings_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "earnings_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	SalesImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "earnings_sales_imported_total",
			Help: "Sale lines written by imports, by file format.",
		},
		[]string{"format"},
	)

	ImportsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "earnings_imports_skipped_total",
			Help: "Import files skipped because they were already ingested.",
		},
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "earnings_report_duration_seconds",
			Help:    "Time to fetch inputs and compute a report.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"report"},
	)

	StatementsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "earnings_commission_statements_written_total",
			Help: "Commission statements persisted by commission runs.",
		},
	)

	FloorsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "earnings_commission_floors_applied_total",
			Help: "Commission results raised to the minimum guarantee.",
		},
	)
)

// ObserveReport records how long a report took since start.
func ObserveReport(report string, start time.Time) {
	ReportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// Middleware counts requests and their latency labelled by chi route
// pattern, keeping path parameters out of the label values.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
