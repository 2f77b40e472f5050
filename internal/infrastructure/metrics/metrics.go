package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Settlement metrics
	SettlementsProcessed *prometheus.CounterVec
	SettlementReplays    prometheus.Counter
	SettlementDuration   prometheus.Histogram
	SettlementAmount     prometheus.Histogram
	SettlementErrors     *prometheus.CounterVec

	// Payout metrics
	PayoutsRequested prometheus.Counter
	PayoutsDecided   *prometheus.CounterVec
	PayoutAmount     prometheus.Histogram

	// Wallet metrics
	WalletTopups  prometheus.Counter
	WalletDebits  prometheus.Counter
	WalletsListed prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
	OutboxBacklog   prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Settlement metrics
		SettlementsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_settlements_processed_total",
				Help: "Total number of orders settled",
			},
			[]string{"category"},
		),
		SettlementReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_settlement_replays_total",
			Help: "Total number of duplicate settlement requests answered from the receipt",
		}),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_settlement_duration_seconds",
			Help:    "Duration of settlement operations",
			Buckets: prometheus.DefBuckets,
		}),
		SettlementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_settlement_amount",
			Help:    "Settled order totals in minor units",
			Buckets: []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		}),
		SettlementErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_settlement_errors_total",
				Help: "Total number of settlement errors by type",
			},
			[]string{"error_type"},
		),

		// Payout metrics
		PayoutsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_payouts_requested_total",
			Help: "Total number of payout requests created",
		}),
		PayoutsDecided: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_payouts_decided_total",
				Help: "Total number of payout decisions by terminal status",
			},
			[]string{"status"},
		),
		PayoutAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_payout_amount",
			Help:    "Requested payout amounts in minor units",
			Buckets: []float64{50000, 100000, 250000, 500000, 1000000},
		}),

		// Wallet metrics
		WalletTopups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_wallet_topups_total",
			Help: "Total number of wallet top-ups",
		}),
		WalletDebits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_wallet_debits_total",
			Help: "Total number of order-payment debits",
		}),
		WalletsListed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_wallets_listed_total",
			Help: "Total number of wallet list queries",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_failures_total",
			Help: "Total outbox publish failures",
		}),
		OutboxBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_outbox_backlog",
			Help: "Unpublished outbox events at the last poll",
		}),
	}
}
