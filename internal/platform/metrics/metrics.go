package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Prometheus panics on duplicate registration.
	once sync.Once

	// HTTPRequestsTotal counts finished requests.
	// route is the router pattern (/:code), never the raw path, to keep cardinality bounded.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// Allocations counts allocation attempts by outcome ("ok" or an error kind).
	Allocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_allocations_total",
			Help: "Short link allocations by outcome.",
		},
		[]string{"outcome"},
	)

	// CodeCollisions counts generated candidates rejected by the conditional put.
	CodeCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_code_collisions_total",
			Help: "Generated codes that were already taken.",
		},
	)

	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_resolutions_total",
			Help: "Short link resolutions by response status.",
		},
		[]string{"status"},
	)

	SignedRedirects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_signed_redirects_total",
			Help: "Redirects that required a signed storage URL.",
		},
	)

	// CacheOperations: layer is l1/l2, result is hit/miss/error.
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_cache_operations_total",
			Help: "Record cache lookups by layer and result.",
		},
		[]string{"layer", "result"},
	)

	AuditEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full or closed.",
		},
	)

	PurgedRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_purged_records_total",
			Help: "Expired records removed by the sweeper.",
		},
	)
)

// Init registers every collector with the default registry. Safe to call twice.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			Allocations,
			CodeCollisions,
			Resolutions,
			SignedRedirects,
			CacheOperations,
			AuditEventsDropped,
			PurgedRecords,
		)
	})
}
