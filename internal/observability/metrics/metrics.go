package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatspace_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatspace_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatspace_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_class"},
	)

	GraphQLOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatspace_graphql_operations_total",
			Help: "Total number of GraphQL operations by name and outcome",
		},
		[]string{"operation", "outcome"},
	)

	DomainErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatspace_domain_errors_total",
			Help: "Total number of domain errors by category and code",
		},
		[]string{"category", "code"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatspace_events_published_total",
			Help: "Total number of events published on the in-memory bus",
		},
		[]string{"topic"},
	)

	EventSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chatspace_event_subscribers",
			Help: "Current number of subscribers per bus topic",
		},
		[]string{"topic"},
	)

	DBPoolAcquiredConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatspace_db_pool_acquired_connections",
			Help: "Connections currently acquired from the pool",
		},
	)

	DBPoolIdleConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatspace_db_pool_idle_connections",
			Help: "Idle connections in the pool",
		},
	)

	DBPoolMaxConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatspace_db_pool_max_connections",
			Help: "Configured maximum pool size",
		},
	)

	DBPoolTotalConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatspace_db_pool_total_connections",
			Help: "Total connections held by the pool",
		},
	)
)
