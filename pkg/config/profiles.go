package config

import (
	"github.com/jparkgeo/pungsu/pkg/validation"
)

// Indicator keys used by profiles and the site scorer.
const (
	IndSlope  = "slope"
	IndAspect = "aspect"
	IndForm   = "form"
	IndLong   = "long"
	IndWater  = "water"
	IndConv   = "conv"
	IndTPI    = "tpi"
)

// IndicatorKeys lists all indicator keys in canonical order.
func IndicatorKeys() []string {
	return []string{IndSlope, IndAspect, IndForm, IndLong, IndWater, IndConv, IndTPI}
}

// Profile is a named scoring model: indicator weights plus the
// Gaussian targets for the slope and TPI indicators.
type Profile struct {
	Label       string             `yaml:"label"`
	Weights     map[string]float64 `yaml:"weights"`
	SlopeTarget float64            `yaml:"slope_target"`
	SlopeSigma  float64            `yaml:"slope_sigma"`
	TPITarget   float64            `yaml:"tpi_target"`
	TPISigma    float64            `yaml:"tpi_sigma"`
}

// DefaultProfiles returns the compiled-in profile catalog.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"general": {
			Label: "General suitability",
			Weights: map[string]float64{
				IndSlope:  0.18,
				IndAspect: 0.14,
				IndForm:   0.20,
				IndLong:   0.14,
				IndWater:  0.18,
				IndConv:   0.06,
				IndTPI:    0.10,
			},
			SlopeTarget: 8.0,
			SlopeSigma:  10.0,
			TPITarget:   0.0,
			TPISigma:    0.40,
		},
		"settlement": {
			Label: "Settlement ground",
			Weights: map[string]float64{
				IndSlope:  0.26,
				IndAspect: 0.16,
				IndForm:   0.14,
				IndLong:   0.08,
				IndWater:  0.22,
				IndConv:   0.06,
				IndTPI:    0.08,
			},
			SlopeTarget: 4.0,
			SlopeSigma:  7.0,
			TPITarget:   -0.05,
			TPISigma:    0.35,
		},
		"burial": {
			Label: "Burial ground",
			Weights: map[string]float64{
				IndSlope:  0.12,
				IndAspect: 0.16,
				IndForm:   0.26,
				IndLong:   0.18,
				IndWater:  0.10,
				IndConv:   0.06,
				IndTPI:    0.12,
			},
			SlopeTarget: 12.0,
			SlopeSigma:  9.0,
			TPITarget:   0.10,
			TPISigma:    0.35,
		},
	}
}

// ProfileOrDefault resolves a profile key, falling back to "general"
// and finally to a minimal slope/aspect/water model so scoring always
// has a profile to work with.
func ProfileOrDefault(profiles map[string]Profile, key string) Profile {
	if p, ok := profiles[key]; ok {
		return p
	}
	if p, ok := profiles["general"]; ok {
		return p
	}
	for _, p := range profiles {
		return p
	}
	return Profile{
		Label: "Default",
		Weights: map[string]float64{
			IndSlope:  0.4,
			IndAspect: 0.3,
			IndWater:  0.3,
		},
		SlopeTarget: 8.0,
		SlopeSigma:  10.0,
		TPITarget:   0.0,
		TPISigma:    0.40,
	}
}

// ValidateProfiles checks every profile in a catalog.
func ValidateProfiles(profiles map[string]Profile) error {
	cv := validation.NewConfigValidator("Profiles")
	known := map[string]bool{}
	for _, k := range IndicatorKeys() {
		known[k] = true
	}
	for name, p := range profiles {
		cv.Check(len(p.Weights) > 0, name+".Weights", "profile has no weights")
		for key, w := range p.Weights {
			cv.Check(known[key], name+".Weights."+key, "unknown indicator key")
			cv.NonNegative(name+".Weights."+key, w)
		}
		cv.Positive(name+".SlopeSigma", p.SlopeSigma).
			Positive(name+".TPISigma", p.TPISigma)
	}
	return cv.Result()
}
