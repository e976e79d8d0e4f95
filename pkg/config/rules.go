// Package config holds the immutable parameter tables the engine is
// driven by: sampling and metric rules, named weight profiles, the
// landmark term catalog, and the culture/period context tables.
// Everything has compiled-in defaults; YAML files can override them.
package config

import (
	"github.com/jparkgeo/pungsu/pkg/validation"
)

// GaussianSpec is a target/sigma pair for Gaussian scoring.
type GaussianSpec struct {
	Target float64 `yaml:"target"`
	Sigma  float64 `yaml:"sigma"`
}

// SamplingRules controls the ring sampling geometry.
type SamplingRules struct {
	// Ring radii are DEM step × factor × context multiplier.
	MicroRadiusFactor float64 `yaml:"micro_radius_factor"`
	MacroRadiusFactor float64 `yaml:"macro_radius_factor"`
	// Bearing steps in degrees for the full-circle rings.
	MacroBearingStep int `yaml:"macro_bearing_step"`
	MicroBearingStep int `yaml:"micro_bearing_step"`
}

// MetricRules are the Gaussian targets for the terrain metrics.
type MetricRules struct {
	FormBack  GaussianSpec `yaml:"form_back"`
	FormFront GaussianSpec `yaml:"form_front"`
	FormSide  GaussianSpec `yaml:"form_side"`
	// Xue scores the normalized TPI of a sheltered hollow.
	Xue       GaussianSpec `yaml:"xue"`
	Hierarchy GaussianSpec `yaml:"hierarchy"`
	Wetness   GaussianSpec `yaml:"wetness"`
	// SlopeDenominator converts slope degrees to the wetness damping
	// factor: factor = 1 - min(1, slope/denominator), floored at 0.25.
	SlopeDenominator float64 `yaml:"slope_denominator"`
}

// CandidateRules bound the candidate search.
type CandidateRules struct {
	TPIMin    float64 `yaml:"tpi_min"`
	TPIMax    float64 `yaml:"tpi_max"`
	TPITarget float64 `yaml:"tpi_target"`
	TPISigma  float64 `yaml:"tpi_sigma"`
	// MaxCells caps the scan lattice; spacing grows to stay under it.
	MaxCells int `yaml:"max_cells"`
}

// Rules bundles every analysis rule table.
type Rules struct {
	Sampling  SamplingRules  `yaml:"sampling"`
	Metrics   MetricRules    `yaml:"dem_metrics"`
	Candidate CandidateRules `yaml:"hyeol_candidate"`
}

// DefaultRules returns the compiled-in rule set.
func DefaultRules() Rules {
	return Rules{
		Sampling: SamplingRules{
			MicroRadiusFactor: 2.0,
			MacroRadiusFactor: 12.0,
			MacroBearingStep:  22,
			MicroBearingStep:  45,
		},
		Metrics: MetricRules{
			FormBack:         GaussianSpec{Target: 0.20, Sigma: 0.35},
			FormFront:        GaussianSpec{Target: 0.15, Sigma: 0.35},
			FormSide:         GaussianSpec{Target: 0.05, Sigma: 0.25},
			Xue:              GaussianSpec{Target: -0.10, Sigma: 0.30},
			Hierarchy:        GaussianSpec{Target: 0.55, Sigma: 0.30},
			Wetness:          GaussianSpec{Target: 0.60, Sigma: 0.28},
			SlopeDenominator: 35.0,
		},
		Candidate: CandidateRules{
			TPIMin:    -0.45,
			TPIMax:    0.35,
			TPITarget: -0.08,
			TPISigma:  0.30,
			MaxCells:  12000,
		},
	}
}

// Validate checks the rule set for internal consistency.
func (r Rules) Validate() error {
	cv := validation.NewConfigValidator("Rules")
	cv.Positive("Sampling.MicroRadiusFactor", r.Sampling.MicroRadiusFactor).
		Positive("Sampling.MacroRadiusFactor", r.Sampling.MacroRadiusFactor).
		PositiveInt("Sampling.MacroBearingStep", r.Sampling.MacroBearingStep).
		PositiveInt("Sampling.MicroBearingStep", r.Sampling.MicroBearingStep).
		Check(r.Sampling.MicroRadiusFactor < r.Sampling.MacroRadiusFactor,
			"Sampling", "micro radius factor must be below macro")
	for name, spec := range map[string]GaussianSpec{
		"Metrics.FormBack":  r.Metrics.FormBack,
		"Metrics.FormFront": r.Metrics.FormFront,
		"Metrics.FormSide":  r.Metrics.FormSide,
		"Metrics.Xue":       r.Metrics.Xue,
		"Metrics.Hierarchy": r.Metrics.Hierarchy,
		"Metrics.Wetness":   r.Metrics.Wetness,
	} {
		cv.Positive(name+".Sigma", spec.Sigma)
	}
	cv.Positive("Metrics.SlopeDenominator", r.Metrics.SlopeDenominator).
		Ordered("Candidate.TPIBand", r.Candidate.TPIMin, r.Candidate.TPIMax).
		Positive("Candidate.TPISigma", r.Candidate.TPISigma).
		PositiveInt("Candidate.MaxCells", r.Candidate.MaxCells)
	return cv.Result()
}
