package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDEMMetrics() {
	r.DEMSamplesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pungsu_dem_samples_total",
			Help: "Total number of DEM point samples taken",
		},
	)

	r.DEMNoDataTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "pungsu_dem_nodata_total",
			Help: "Total number of DEM samples that hit nodata or fell outside the raster",
		},
	)

	r.LatticeNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pungsu_lattice_nodes",
			Help: "Node count of the most recent sampling lattice per network type",
		},
		[]string{"network"},
	)
}
