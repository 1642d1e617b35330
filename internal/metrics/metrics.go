// Package metrics declares the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recon_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "endpoint"})

	TransactionsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_transactions_ingested_total",
		Help: "Bank records by ingestion result (new, duplicate, rejected)",
	}, []string{"result"})

	MatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_match_outcomes_total",
		Help: "Auto-match outcomes per transaction",
	}, []string{"status"})

	ManualMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_manual_matches_total",
		Help: "Manual matches by match type and result",
	}, []string{"match_type", "result"})

	MatchConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recon_match_version_conflicts_total",
		Help: "Optimistic concurrency conflicts seen while binding matches",
	})

	RequestsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recon_payment_requests_expired_total",
		Help: "Payment requests moved to EXPIRED",
	})

	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_sync_runs_total",
		Help: "Bank sync cycles by result",
	}, []string{"result"})

	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recon_sync_duration_seconds",
		Help:    "Duration of bank sync cycles",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)
