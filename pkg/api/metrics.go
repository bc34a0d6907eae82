package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit  = "hit"
	resultMiss = "miss"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Table lookup metrics
	lookupsTotal *prometheus.CounterVec

	// Loaded table stats
	packagesTotal prometheus.Gauge
	flagsTotal    prometheus.Gauge

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flagstore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flagstore_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		lookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flagstore_lookups_total",
				Help: "Total number of table lookups",
			},
			[]string{"table", "result"},
		),

		packagesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "flagstore_packages_total",
				Help: "Number of packages in the loaded package table",
			},
		),

		flagsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "flagstore_flags_total",
				Help: "Number of flags in the loaded flag table",
			},
		),

		healthChecksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flagstore_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordLookup records a table lookup
func (m *Metrics) RecordLookup(table string, found bool) {
	result := resultHit
	if !found {
		result = resultMiss
	}
	m.lookupsTotal.WithLabelValues(table, result).Inc()
}

// UpdateTableStats updates the loaded table gauges
func (m *Metrics) UpdateTableStats(packages, flags uint32) {
	m.packagesTotal.Set(float64(packages))
	m.flagsTotal.Set(float64(flags))
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.healthChecksTotal.WithLabelValues(status).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		duration := time.Since(start)
		m.RecordHTTPRequest(method, endpoint, rw.statusCode, duration)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
