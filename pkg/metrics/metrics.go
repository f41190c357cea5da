package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
// Пример запроса PromQL: rate(http_requests_total{service="marketplace"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// MongoDB Метрики
// =============================================================================

// DbQueryDuration - время выполнения операций с коллекциями
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database operations in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "collection"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation", "collection"},
)

// DocumentsTotal - количество документов в коллекциях, обновляется cron-задачей
var DocumentsTotal = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "marketplace_documents",
		Help: "Number of documents per collection",
	},
	[]string{"collection"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Identity Метрики
// =============================================================================

// AuthFailures - отклоненные запросы аутентификации
var AuthFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_failures_total",
		Help: "Total number of rejected authentication attempts",
	},
	[]string{"reason"}, // missing_token, invalid_token, provider_unavailable, forbidden
)

// IdentityKeyRefreshes - загрузки сертификатов провайдера идентификации
var IdentityKeyRefreshes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "identity_key_refreshes_total",
		Help: "Total number of identity provider certificate fetches",
	},
	[]string{"source", "status"}, // source: remote, redis; status: success, failed
)

// =============================================================================
// Business Метрики
// =============================================================================

var UserRegistrations = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "marketplace_user_registrations_total",
		Help: "Total number of user registrations",
	},
)

var UserRoleChanges = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "marketplace_user_role_changes_total",
		Help: "Total number of user role changes",
	},
	[]string{"role"},
)

var ServicesCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "marketplace_services_created_total",
		Help: "Total number of services created",
	},
)

var BookingsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "marketplace_bookings_created_total",
		Help: "Total number of bookings created",
	},
)

var BookingStatusUpdates = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "marketplace_booking_status_updates_total",
		Help: "Total number of booking status updates",
	},
	[]string{"status"},
)

var ReviewsAdded = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "marketplace_reviews_added_total",
		Help: "Total number of reviews appended to services",
	},
)

// ReviewsRating - распределение оценок
var ReviewsRating = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "marketplace_reviews_rating",
		Help:    "Distribution of review ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)
