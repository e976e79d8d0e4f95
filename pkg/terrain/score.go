package terrain

import (
	"math"

	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/optional"
)

// sigmaFloor keeps Gaussian scoring defined for degenerate sigmas.
const sigmaFloor = 1e-9

// Gaussian scores how closely value matches target:
// exp(-((value-target)/sigma)^2). The result is 1.0 exactly at the
// target and decays strictly monotonically with |value-target|.
func Gaussian(value, target, sigma float64) float64 {
	if sigma < sigmaFloor {
		sigma = sigmaFloor
	}
	d := (value - target) / sigma
	return math.Exp(-d * d)
}

// GaussianOpt applies Gaussian to a possibly absent value.
func GaussianOpt(value optional.Float, target, sigma float64) optional.Float {
	if !value.Valid {
		return optional.None()
	}
	return optional.Some(Gaussian(value.Value, target, sigma))
}

// GaussianSpecOpt scores an optional value against a config spec.
func GaussianSpecOpt(value optional.Float, spec config.GaussianSpec) optional.Float {
	return GaussianOpt(value, spec.Target, spec.Sigma)
}

// stddev returns the population standard deviation; absent for empty
// input, zero for a single sample.
func stddev(values []float64) optional.Float {
	if len(values) == 0 {
		return optional.None()
	}
	if len(values) == 1 {
		return optional.Some(0)
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return optional.Some(math.Sqrt(variance))
}
