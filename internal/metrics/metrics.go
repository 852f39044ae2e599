// Package metrics defines Prometheus collectors for the indexing pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransfersIndexed counts classified transfers written to the store.
	TransfersIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netflow_transfers_indexed_total",
			Help: "Total number of transfers indexed",
		},
		[]string{"token", "direction"},
	)

	// RPCErrors counts failed chain RPC calls by method.
	RPCErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netflow_rpc_errors_total",
			Help: "Total number of failed chain RPC calls",
		},
		[]string{"method"},
	)

	// BatchFailures counts transfer batches rolled back on persistence errors.
	BatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netflow_batch_failures_total",
			Help: "Total number of rolled-back transfer batches",
		},
		[]string{"token"},
	)

	// ScanCycleDuration tracks the duration of one full polling cycle.
	ScanCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netflow_scan_cycle_duration_seconds",
			Help:    "Duration of one polling cycle across all tokens",
			Buckets: prometheus.DefBuckets,
		},
	)

	// TargetBlock tracks the latest confirmed block the indexer scanned to.
	TargetBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netflow_target_block",
			Help: "Latest confirmed block height targeted by the scanner",
		},
	)

	// AggregateRecomputes counts netflow recomputation passes.
	AggregateRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netflow_aggregate_recomputes_total",
			Help: "Total number of netflow recomputation passes",
		},
	)
)
