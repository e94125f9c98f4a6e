package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Executor Prometheus metrics.
var (
	ExecutorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecscope",
			Name:      "executor_requests_total",
			Help:      "Total number of executor calls",
		},
		[]string{"op", "collection", "status"},
	)

	ExecutorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vecscope",
			Name:      "executor_request_duration_seconds",
			Help:      "Executor call duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op", "collection"},
	)

	ExecutorHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecscope",
			Name:      "executor_hits_total",
			Help:      "Documents returned by executor calls",
		},
		[]string{"op", "collection"},
	)

	ScanBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecscope",
			Name:      "scan_batches_total",
			Help:      "Batches delivered by scans",
		},
		[]string{"collection"},
	)
)

// ExecutorCollectors lists every executor collector.
func ExecutorCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		ExecutorRequestsTotal,
		ExecutorRequestDuration,
		ExecutorHitsTotal,
		ScanBatchesTotal,
	}
}
