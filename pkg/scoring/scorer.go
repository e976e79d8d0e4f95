// Package scoring combines slope, aspect, water access, and the
// terrain metrics into a single weighted suitability score under a
// named profile and a cultural/period context.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/optional"
	"github.com/jparkgeo/pungsu/pkg/terrain"
)

// Indicators are the per-criterion scores feeding the weighted total.
// Each lies in [0,1] or is absent.
type Indicators struct {
	Slope  optional.Float
	Aspect optional.Float
	Form   optional.Float
	Long   optional.Float
	Water  optional.Float
	Conv   optional.Float
	TPI    optional.Float
}

// byKey returns an indicator by its profile weight key.
func (in Indicators) byKey(key string) optional.Float {
	switch key {
	case config.IndSlope:
		return in.Slope
	case config.IndAspect:
		return in.Aspect
	case config.IndForm:
		return in.Form
	case config.IndLong:
		return in.Long
	case config.IndWater:
		return in.Water
	case config.IndConv:
		return in.Conv
	case config.IndTPI:
		return in.TPI
	}
	return optional.None()
}

// Contextualize applies the context's additive weight bias to a
// profile and renormalizes the weights to sum to 1 over the biased
// entries. Biased weights never go negative.
func Contextualize(profile config.Profile, ctx config.Context) config.Profile {
	adjusted := config.Profile{
		Label:       profile.Label,
		Weights:     make(map[string]float64, len(profile.Weights)),
		SlopeTarget: profile.SlopeTarget,
		SlopeSigma:  profile.SlopeSigma,
		TPITarget:   profile.TPITarget,
		TPISigma:    profile.TPISigma,
	}
	for key, w := range profile.Weights {
		adjusted.Weights[key] = w
	}
	for key, delta := range ctx.WeightBias {
		w := adjusted.Weights[key] + delta
		if w < 0 {
			w = 0
		}
		adjusted.Weights[key] = w
	}

	total := 0.0
	for _, w := range adjusted.Weights {
		total += w
	}
	if total > 0 {
		for key, w := range adjusted.Weights {
			adjusted.Weights[key] = w / total
		}
	}
	return adjusted
}

// ScoreSlope scores slope degrees against the profile target.
func ScoreSlope(slopeDeg optional.Float, profile config.Profile) optional.Float {
	return terrain.GaussianOpt(slopeDeg, profile.SlopeTarget, profile.SlopeSigma)
}

// ScoreTPI scores the normalized TPI against the profile target.
func ScoreTPI(tpiNorm optional.Float, profile config.Profile) optional.Float {
	return terrain.GaussianOpt(tpiNorm, profile.TPITarget, profile.TPISigma)
}

// ScoreAspect scores an aspect (degrees) against the context's target
// azimuth: a cosine of the wrapped angular difference mapped to
// [0,1], sharpened by the context exponent (floored at 0.5).
func ScoreAspect(aspectDeg optional.Float, ctx config.Context) optional.Float {
	if !aspectDeg.Valid {
		return optional.None()
	}
	sharpness := ctx.AspectSharpness
	if sharpness < 0.5 {
		sharpness = 0.5
	}
	diff := math.Abs(math.Mod(aspectDeg.Value-ctx.AspectTarget+180+360, 360) - 180)
	base := (math.Cos(diff*math.Pi/180) + 1) / 2
	return optional.Some(math.Pow(base, sharpness)).Clamp01()
}

// ScoreWaterDistance scores distance to the nearest water feature
// against the context target. Sites closer than 30 m sit in the flood
// fringe and are penalized to at most half value, floored at 0.1.
func ScoreWaterDistance(distanceM optional.Float, ctx config.Context) optional.Float {
	if !distanceM.Valid {
		return optional.None()
	}
	score := terrain.Gaussian(distanceM.Value, ctx.WaterDistanceTarget, ctx.WaterDistanceSigma)
	if distanceM.Value < 30 {
		return optional.Some(math.Max(0.1, score*0.5))
	}
	return optional.Some(score)
}

// CombineHydro blends the distance-based water score with the
// terrain-derived wetness score 70/30, falling back to whichever is
// present.
func CombineHydro(distanceScore, wetnessScore optional.Float) optional.Float {
	if distanceScore.Valid && wetnessScore.Valid {
		return optional.Some(0.7*distanceScore.Value + 0.3*wetnessScore.Value)
	}
	if distanceScore.Valid {
		return distanceScore
	}
	return wetnessScore
}

// WeightedTotal is the weights-normalized average of the present
// indicators scaled to 0..100. Absent when nothing is present.
func WeightedTotal(in Indicators, profile config.Profile) optional.Float {
	num := 0.0
	den := 0.0
	for key, weight := range profile.Weights {
		v := in.byKey(key)
		if !v.Valid {
			continue
		}
		num += weight * v.Value
		den += weight
	}
	if den <= 0 {
		return optional.None()
	}
	return optional.Some(num / den * 100)
}

// Confidence is the fraction of total profile weight backed by a
// present indicator.
func Confidence(in Indicators, profile config.Profile) optional.Float {
	total := 0.0
	present := 0.0
	for key, weight := range profile.Weights {
		total += weight
		if in.byKey(key).Valid {
			present += weight
		}
	}
	if total <= 0 {
		return optional.None()
	}
	return optional.Some(present / total)
}

// ExplainTop returns the two largest weight×score contributors as
// "key:score" pairs, or "no-data" when nothing is present.
func ExplainTop(in Indicators, profile config.Profile) string {
	type contribution struct {
		weighted float64
		key      string
		score    float64
	}
	var contribs []contribution
	for key, weight := range profile.Weights {
		v := in.byKey(key)
		if !v.Valid {
			continue
		}
		contribs = append(contribs, contribution{weight * v.Value, key, v.Value})
	}
	if len(contribs) == 0 {
		return "no-data"
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].weighted != contribs[j].weighted {
			return contribs[i].weighted > contribs[j].weighted
		}
		return contribs[i].key < contribs[j].key
	})
	if len(contribs) > 2 {
		contribs = contribs[:2]
	}
	parts := make([]string, len(contribs))
	for i, c := range contribs {
		parts[i] = fmt.Sprintf("%s:%.2f", c.key, c.score)
	}
	return strings.Join(parts, ",")
}
