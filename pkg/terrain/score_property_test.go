package terrain

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestGaussianPeakAtTarget(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("score(target, target, sigma) == 1 exactly", prop.ForAll(
		func(target, sigma float64) bool {
			return Gaussian(target, target, sigma) == 1.0
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(1e-6, 1e3),
	))

	properties.Property("score strictly decreases with distance from target", prop.ForAll(
		func(target, sigma, d1, d2 float64) bool {
			if d2 <= d1 {
				d1, d2 = d2, d1+1e-3
			}
			near := Gaussian(target+d1, target, sigma)
			far := Gaussian(target+d2, target, sigma)
			return far < near
		},
		gen.Float64Range(-1e3, 1e3),
		gen.Float64Range(1e-3, 100),
		gen.Float64Range(1e-3, 10),
		gen.Float64Range(1e-3, 10),
	))

	properties.Property("score lies in (0, 1]", prop.ForAll(
		func(value, target, sigma float64) bool {
			s := Gaussian(value, target, sigma)
			return s > 0 && s <= 1 && !math.IsNaN(s)
		},
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(-1e4, 1e4),
		gen.Float64Range(1e-6, 1e3),
	))

	properties.TestingRun(t)
}

func TestGaussianDegenerateSigma(t *testing.T) {
	// Sigma at or below the floor must not divide by zero.
	if got := Gaussian(5, 5, 0); got != 1.0 {
		t.Errorf("Gaussian(5, 5, 0) = %v, want 1", got)
	}
	if got := Gaussian(5.1, 5, 0); got != 0 {
		// Far off-target with a floored sigma underflows to zero.
		t.Errorf("Gaussian(5.1, 5, 0) = %v, want 0", got)
	}
}
