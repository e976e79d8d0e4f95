package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysisOpsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pungsu_analysis_ops_total",
			Help: "Total number of analysis operations executed",
		},
		[]string{"operation", "status"},
	)

	r.AnalysisOpDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pungsu_analysis_op_duration_seconds",
			Help:    "Analysis operation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		},
		[]string{"operation"},
	)

	r.AnalysisNodesScanned = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pungsu_analysis_nodes_scanned",
			Help:    "Number of lattice or site nodes scanned per operation",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		},
		[]string{"operation"},
	)

	r.AnalysisFeaturesProduced = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pungsu_analysis_features_produced",
			Help:    "Number of output features produced per operation",
			Buckets: []float64{1, 10, 100, 1000, 10000},
		},
		[]string{"operation"},
	)

	r.SlowOperations = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "pungsu_slow_operations_total",
			Help: "Total number of slow analysis operations (>5s)",
		},
		[]string{"operation"},
	)
}
