// Package terrain computes the shape metrics of a site from ring
// samples of the surrounding elevation: relief, directional form,
// longitudinal structure (TPI and scale hierarchy), and a
// convergence-derived wetness score.
package terrain

import (
	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/optional"
	"github.com/jparkgeo/pungsu/pkg/sampling"
)

// Metrics is the output bundle of one site evaluation. Every field
// may be absent; a missing center sample leaves all of them absent.
type Metrics struct {
	Form        optional.Float // directional enclosure score
	Long        optional.Float // TPI + hierarchy score
	Wetness     optional.Float // convergence-based moisture score
	TPINorm     optional.Float // (center − ring mean) / relief
	Convergence optional.Float // share of ring mass above center
}

// Engine evaluates terrain metrics around single points.
type Engine struct {
	sampler *sampling.Sampler
	rules   config.Rules
	// step is the characteristic DEM step the ring radii scale from.
	step float64
}

// NewEngine creates a metric engine over a sampler.
func NewEngine(sampler *sampling.Sampler, rules config.Rules, step float64) *Engine {
	return &Engine{sampler: sampler, rules: rules, step: step}
}

// Step returns the engine's characteristic DEM step.
func (e *Engine) Step() float64 { return e.step }

// Sampler exposes the underlying ring sampler.
func (e *Engine) Sampler() *sampling.Sampler { return e.sampler }

// MacroRadius returns the macro ring radius under a context.
func (e *Engine) MacroRadius(ctx config.Context) float64 {
	return e.step * e.rules.Sampling.MacroRadiusFactor * ctx.MacroRadiusMultiplier
}

// MicroRadius returns the micro ring radius under a context.
func (e *Engine) MicroRadius(ctx config.Context) float64 {
	return e.step * e.rules.Sampling.MicroRadiusFactor * ctx.MicroRadiusMultiplier
}

// Evaluate computes the metric bundle for a site. slopeDeg may be
// absent when no slope raster backs the site; the wetness damping
// then uses a neutral factor.
func (e *Engine) Evaluate(site geom.Point, slopeDeg optional.Float, card config.Cardinals, ctx config.Context) Metrics {
	center := e.sampler.At(site)
	if !center.Valid {
		return Metrics{}
	}
	c := center.Value

	macroRadius := e.MacroRadius(ctx)
	microRadius := e.MicroRadius(ctx)
	macro := e.sampler.FullRing(site, macroRadius, e.rules.Sampling.MacroBearingStep)
	micro := e.sampler.FullRing(site, microRadius, e.rules.Sampling.MicroBearingStep)

	relief := optional.None()
	meanMacro := optional.None()
	if len(macro) > 0 {
		lo, hi := macro[0], macro[0]
		sum := 0.0
		for _, v := range macro {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			sum += v
		}
		relief = optional.Some(hi - lo)
		meanMacro = optional.Some(sum / float64(len(macro)))
	}
	stdMacro := stddev(macro)
	stdMicro := stddev(micro)

	m := Metrics{}
	m.Form = e.formScore(site, c, relief, macroRadius, card)
	m.Long, m.TPINorm = e.longScore(c, relief, meanMacro, stdMacro, stdMicro)
	m.Wetness, m.Convergence = e.wetnessScore(c, micro, slopeDeg)
	return m
}

// formScore compares the four directional means against the ideal
// enclosure: higher ground behind, open ground in front, balanced
// flanks. Absent unless relief is positive and all four direction
// means sampled.
func (e *Engine) formScore(site geom.Point, center float64, relief optional.Float, radius float64, card config.Cardinals) optional.Float {
	if !relief.Valid || relief.Value <= 0 {
		return optional.None()
	}
	back := e.sampler.DirectionMean(site, radius, card.Back)
	front := e.sampler.DirectionMean(site, radius, card.Front)
	left := e.sampler.DirectionMean(site, radius, card.Left)
	right := e.sampler.DirectionMean(site, radius, card.Right)
	if !back.Valid || !front.Valid || !left.Valid || !right.Valid {
		return optional.None()
	}

	r := relief.Value
	backNorm := (back.Value - center) / r
	frontNorm := (center - front.Value) / r
	sideNorm := (left.Value - right.Value) / r

	rules := e.rules.Metrics
	return optional.Mean(
		optional.Some(Gaussian(backNorm, rules.FormBack.Target, rules.FormBack.Sigma)),
		optional.Some(Gaussian(frontNorm, rules.FormFront.Target, rules.FormFront.Sigma)),
		optional.Some(Gaussian(sideNorm, rules.FormSide.Target, rules.FormSide.Sigma)),
	)
}

// longScore combines the normalized TPI against the sheltered-hollow
// target with the micro/macro hierarchy ratio. Returns the score and
// the normalized TPI itself.
func (e *Engine) longScore(center float64, relief, meanMacro, stdMacro, stdMicro optional.Float) (optional.Float, optional.Float) {
	if !relief.Valid || relief.Value <= 0 || !meanMacro.Valid {
		return optional.None(), optional.None()
	}
	tpiNorm := optional.Some((center - meanMacro.Value) / relief.Value)

	rules := e.rules.Metrics
	xueScore := GaussianSpecOpt(tpiNorm, rules.Xue)

	hierarchy := optional.None()
	if stdMicro.Valid && stdMacro.Valid && stdMacro.Value > 0 {
		hierarchy = optional.Some(stdMicro.Value / stdMacro.Value)
	}
	hierarchyScore := GaussianSpecOpt(hierarchy, rules.Hierarchy)

	return optional.Mean(xueScore, hierarchyScore), tpiNorm
}

// wetnessScore derives the convergence of the micro ring (how much of
// the surrounding mass sits above the center) and shapes it into a
// moisture score damped by slope. Returns the score and convergence.
func (e *Engine) wetnessScore(center float64, micro []float64, slopeDeg optional.Float) (optional.Float, optional.Float) {
	if len(micro) == 0 {
		return optional.None(), optional.None()
	}
	higher := 0.0
	lower := 0.0
	for _, v := range micro {
		if v > center {
			higher += v - center
		} else {
			lower += center - v
		}
	}
	convergence := higher / (higher + lower + 1e-6)

	rules := e.rules.Metrics
	slopeFactor := 0.75
	if slopeDeg.Valid {
		ratio := slopeDeg.Value / rules.SlopeDenominator
		if ratio > 1 {
			ratio = 1
		}
		slopeFactor = 1 - ratio
		if slopeFactor < 0.25 {
			slopeFactor = 0.25
		}
	}

	shape := Gaussian(convergence, rules.Wetness.Target, rules.Wetness.Sigma)
	score := optional.Some(shape * (0.6 + 0.4*slopeFactor)).Clamp01()
	return score, optional.Some(convergence)
}
