package metrics

import "github.com/prometheus/client_golang/prometheus"

var LedgerOperationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Total number of ledger operations by outcome",
	},
	[]string{"operation", "outcome"},
)

var LedgerOperationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ledger_operation_duration_seconds",
		Help:    "Duration of ledger operations including simulated latency",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

var LedgerAuditSinkFailuresTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ledger_audit_sink_failures_total",
		Help: "Total number of audit events the archive failed to store",
	},
)

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)

var FeedPublishFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feed_publish_failure_total",
		Help: "Total number of failed change-feed publishes",
	},
	[]string{"sink", "topic"},
)

var FeedWebsocketClients = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "feed_websocket_clients",
		Help: "Number of connected websocket feed clients",
	},
)

func InitLedgerMetrics() {
	prometheus.MustRegister(LedgerOperationsTotal)
	prometheus.MustRegister(LedgerOperationDuration)
	prometheus.MustRegister(LedgerAuditSinkFailuresTotal)
}

func InitAPIMetrics() {
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(HttpRateLimitRejectionsTotal)
}

func InitFeedMetrics() {
	prometheus.MustRegister(FeedPublishFailureTotal)
	prometheus.MustRegister(FeedWebsocketClients)
}
