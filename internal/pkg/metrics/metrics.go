package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	AuditWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_audit_writes_total",
		Help: "Audit entry write attempts by result (success, invalid, failure)",
	}, []string{"result"})

	AuditCleanupDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_audit_cleanup_deleted_total",
		Help: "Audit entries removed by retention cleanup",
	})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	OverviewCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_overview_cache_total",
		Help: "Overview cache lookups by outcome (hit, miss, error)",
	}, []string{"outcome"})
)
