// Package metrics declares the Prometheus collectors of the pseudo-ledger
// server. Collectors register with the default registry on import and are
// exposed by the HTTP adapter on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pseudo_ledger"

var (
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Read cache lookups by view kind and result (hit, miss, error).",
	}, []string{"kind", "result"})

	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Group generation bumps.",
	})

	LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_operations_total",
		Help:      "Core mutations by operation and outcome.",
	}, []string{"operation", "outcome"})

	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Access gateway decisions by action.",
	}, []string{"action", "decision"})

	DecryptFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_decrypt_failures_total",
		Help:      "Identity records that failed to decrypt during a batch reveal.",
	})

	StoreRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_read_retries_total",
		Help:      "Retries of idempotent reads after a transient store error.",
	}, []string{"operation"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Outcome labels a finished operation.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
