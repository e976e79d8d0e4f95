package metrics

import (
	"time"
)

// RecordOperation records one analysis operation with its duration and
// the amount of work it did
func (r *Registry) RecordOperation(operation, status string, duration time.Duration, nodesScanned, featuresProduced int) {
	r.AnalysisOpsTotal.WithLabelValues(operation, status).Inc()
	r.AnalysisOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
	r.AnalysisNodesScanned.WithLabelValues(operation).Observe(float64(nodesScanned))
	r.AnalysisFeaturesProduced.WithLabelValues(operation).Observe(float64(featuresProduced))

	if duration > 5*time.Second {
		r.SlowOperations.WithLabelValues(operation).Inc()
	}
}

// RecordDEMSamples adds to the DEM sample counters
func (r *Registry) RecordDEMSamples(samples, nodata int) {
	r.DEMSamplesTotal.Add(float64(samples))
	r.DEMNoDataTotal.Add(float64(nodata))
}

// SetLatticeNodes records the node count of the latest lattice built
// for a network type
func (r *Registry) SetLatticeNodes(network string, nodes int) {
	r.LatticeNodes.WithLabelValues(network).Set(float64(nodes))
}
