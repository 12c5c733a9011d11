package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	IngestMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_messages_total",
			Help: "Total number of messages processed by the ingest pipeline (count)",
		},
		[]string{"status"},
	)

	IngestProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_processing_duration_ms",
			Help:    "End-to-end processing duration per message in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	RelayPublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_publish_total",
			Help: "Total number of outbound relay publishes by outcome (count)",
		},
		[]string{"status"},
	)

	AuthorityRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authority_requests_total",
			Help: "Total number of machine authority validation requests (count)",
		},
		[]string{"status"},
	)

	AuthorityRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authority_request_duration_ms",
			Help:    "Machine authority request duration in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	SeenCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequence_cache_requests_total",
			Help: "Seen-sequence cache lookups by result (count)",
		},
		[]string{"result"},
	)

	GatewaySubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_submissions_total",
			Help: "Total number of message submissions accepted by the gateway (count)",
		},
		[]string{"status"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_skipped_total",
			Help: "Total number of malformed deliveries skipped (count)",
		},
		[]string{"service", "topic"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to the DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
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
			Help: "Total number of requests through circuit breakers (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breakers (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against the rate limit (count)",
		},
		[]string{"status"},
	)
)

func RegisterIngestMetrics() {
	prometheus.MustRegister(
		IngestMessagesTotal,
		IngestProcessingDuration,
		RelayPublishTotal,
		AuthorityRequestsTotal,
		AuthorityRequestDuration,
		SeenCacheRequestsTotal,
	)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(
		KafkaMessagesReadTotal,
		KafkaMessagesSkippedTotal,
		RetryAttemptsTotal,
		DLQMessagesTotal,
	)
}

func RegisterGatewayMetrics() {
	prometheus.MustRegister(
		GatewaySubmissionsTotal,
		RateLimitRequestsTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func ObserveIngestDuration(duration time.Duration, status string) {
	IngestProcessingDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveAuthorityDuration(duration time.Duration) {
	AuthorityRequestDuration.Observe(float64(duration.Milliseconds()))
}
