package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobcrm_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobcrm_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ApplicationsCreated counts applications that were newly recorded.
	ApplicationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobcrm_applications_created_total",
		Help: "Total number of job applications created",
	})

	// ApplicationDedupHits counts create requests that resolved to an existing application.
	ApplicationDedupHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobcrm_application_dedup_hits_total",
		Help: "Total number of create requests answered with an existing application",
	})

	// ApplicationTransitions counts status changes by target status.
	ApplicationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobcrm_application_transitions_total",
		Help: "Total number of application status transitions",
	}, []string{"to"})

	// AuthorizationDenied counts ownership denials by resource kind.
	AuthorizationDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobcrm_authorization_denied_total",
		Help: "Total number of requests denied by ownership checks",
	}, []string{"resource"})

	// EventsAppended counts timeline events written.
	EventsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobcrm_events_appended_total",
		Help: "Total number of timeline events appended",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
