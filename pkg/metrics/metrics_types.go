package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the analysis engine
type Registry struct {
	// Analysis operation metrics
	AnalysisOpsTotal         *prometheus.CounterVec
	AnalysisOpDuration       *prometheus.HistogramVec
	AnalysisNodesScanned     *prometheus.HistogramVec
	AnalysisFeaturesProduced *prometheus.HistogramVec
	SlowOperations           *prometheus.CounterVec

	// DEM access metrics
	DEMSamplesTotal prometheus.Counter
	DEMNoDataTotal  prometheus.Counter
	LatticeNodes    *prometheus.GaugeVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initAnalysisMetrics()
	r.initDEMMetrics()

	return r
}

// Gatherer exposes the underlying prometheus registry for scraping.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
