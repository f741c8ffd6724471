package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bptracker_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPRequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bptracker_http_request_duration_seconds",
		Help:    "Duration of HTTP request handling in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// Repository metrics
	DBQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bptracker_db_query_duration_seconds",
		Help:    "Duration of repository queries in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Domain metrics
	MeasurementsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bptracker_measurements_created_total",
		Help: "Total number of measurements created",
	})
)

// ObserveQuery records the duration of one repository query.
func ObserveQuery(operation string, start time.Time) {
	DBQueryDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
