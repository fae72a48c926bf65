package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	EntityOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_entity_operations_total",
			Help: "Total number of configuration entity operations (count)",
		},
		[]string{"entity", "operation", "status"},
	)

	EntityOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_entity_operation_duration_ms",
			Help:    "Duration of configuration entity operations in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"entity", "operation"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"table", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"table", "operation"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_events_published_total",
			Help: "Total number of entity change events published (count)",
		},
		[]string{"broker", "status"},
	)

	NotificationsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_notifications_sent_total",
			Help: "Total number of notifications delivered by channel (count)",
		},
		[]string{"channel", "variant", "status"},
	)

	StripeSyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripe_sync_runs_total",
			Help: "Total number of stripe sync runs (count)",
		},
		[]string{"status"},
	)

	StripeSyncPaymentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stripe_sync_payments_total",
			Help: "Total number of stripe payments upserted (count)",
		},
	)

	StripeSyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stripe_sync_duration_ms",
			Help:    "Duration of stripe sync runs in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"operation"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EntityOperationsTotal,
			EntityOperationDuration,
			DatabaseQueriesTotal,
			DatabaseQueryDuration,
			EventsPublishedTotal,
			NotificationsSentTotal,
			StripeSyncRunsTotal,
			StripeSyncPaymentsTotal,
			StripeSyncDuration,
			RetryAttemptsTotal,
			CircuitBreakerState,
			CircuitBreakerRequests,
			CircuitBreakerFailures,
			RateLimitRequestsTotal,
		)
	})
}

func ObserveEntityOperation(entity, operation, status string, duration time.Duration) {
	EntityOperationsTotal.WithLabelValues(entity, operation, status).Inc()
	EntityOperationDuration.WithLabelValues(entity, operation).Observe(float64(duration.Milliseconds()))
}

func ObserveDatabaseQuery(table, operation, status string, duration time.Duration) {
	DatabaseQueriesTotal.WithLabelValues(table, operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(table, operation).Observe(float64(duration.Milliseconds()))
}

func IncEventPublished(broker, status string) {
	EventsPublishedTotal.WithLabelValues(broker, status).Inc()
}

func IncNotificationSent(channel, variant, status string) {
	NotificationsSentTotal.WithLabelValues(channel, variant, status).Inc()
}

func ObserveStripeSync(status string, payments int, duration time.Duration) {
	StripeSyncRunsTotal.WithLabelValues(status).Inc()
	StripeSyncPaymentsTotal.Add(float64(payments))
	StripeSyncDuration.Observe(float64(duration.Milliseconds()))
}

func IncRetryAttempt(operation string) {
	RetryAttemptsTotal.WithLabelValues(operation).Inc()
}
