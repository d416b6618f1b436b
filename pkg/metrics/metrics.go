package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Slow database queries seen by the pgx tracer
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Number of database queries slower than the configured threshold",
		},
		[]string{"sql"},
	)

	SlowQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "db_slow_query_duration_seconds",
			Help:    "Duration of slow database queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~12s
		},
	)

	LeadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_submitted_total",
			Help: "Total number of leads accepted from the public form",
		},
		[]string{"service_type"},
	)

	// Messaging provider latency (milliseconds)
	ProviderCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_provider_latency_ms",
			Help:    "Messaging provider call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 8), // 50ms to ~6s
		},
		[]string{"provider", "status"},
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification deliveries by provider, audience and outcome",
		},
		[]string{"provider", "audience", "status"}, // status: sent, failed, queued
	)

	ShortIDAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "short_id_allocation_attempts",
			Help:    "Candidates drawn per short id allocation",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		},
	)

	ShortIDExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "short_id_allocation_exhausted_total",
			Help: "Short id allocations that ran out of attempts",
		},
	)

	ProjectStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_status_transitions_total",
			Help: "Project status changes",
		},
		[]string{"from", "to"},
	)

	LeadConversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_conversions_total",
			Help: "Lead to project conversions",
		},
		[]string{"result"}, // result: created, existing
	)

	ComplexityAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complexity_assessments_total",
			Help: "Complexity heuristic results by tier",
		},
		[]string{"tier"},
	)

	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_published_total",
			Help: "Outbox events handed to the broker",
		},
		[]string{"status"}, // status: sent, failed
	)
)

// RecordHTTPRequestDuration records one served request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementSlowQuery records a query over the slow threshold.
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
	SlowQueryDuration.Observe(duration.Seconds())
}

func IncrementLeadSubmitted(serviceType string) {
	LeadsSubmitted.WithLabelValues(serviceType).Inc()
}

// RecordProviderCall records the latency of one provider HTTP call.
func RecordProviderCall(provider, status string, duration time.Duration) {
	ProviderCallLatency.WithLabelValues(provider, status).Observe(float64(duration.Milliseconds()))
}

func IncrementNotification(provider, audience, status string) {
	NotificationsDelivered.WithLabelValues(provider, audience, status).Inc()
}

// RecordShortIDAllocation records the number of candidates drawn; exhausted
// allocations are counted separately.
func RecordShortIDAllocation(attempts int, exhausted bool) {
	ShortIDAttempts.Observe(float64(attempts))
	if exhausted {
		ShortIDExhausted.Inc()
	}
}

func IncrementStatusTransition(from, to string) {
	ProjectStatusTransitions.WithLabelValues(from, to).Inc()
}

func IncrementLeadConversion(result string) {
	LeadConversions.WithLabelValues(result).Inc()
}

func IncrementComplexityAssessment(tier string) {
	ComplexityAssessments.WithLabelValues(tier).Inc()
}

func IncrementOutboxPublished(status string) {
	OutboxPublished.WithLabelValues(status).Inc()
}
