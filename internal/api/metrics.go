package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Process metrics for a running screening service, per SPEC_FULL.md §2.
// Grounded on the evdnx-gots example's metrics package (package-level
// prometheus.NewCounterVec/NewHistogramVec vars registered once via
// prometheus.MustRegister, rather than promauto's implicit global
// registration, so tests can construct an isolated registry).
var (
	StrategiesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "screener_strategies_processed_total",
		Help: "Total number of strategies backtested across all runs.",
	})

	StrategyDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "screener_strategy_duration_seconds",
		Help:    "Per-strategy backtest latency in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	BatchDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "screener_batch_duration_seconds",
		Help:    "Total wall-clock duration of a batch run in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// NewRegistry builds a Prometheus registry with this package's
// collectors registered, for mounting at /metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(StrategiesProcessedTotal, StrategyDurationSeconds, BatchDurationSeconds)
	return reg
}
