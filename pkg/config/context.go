package config

import (
	"github.com/jparkgeo/pungsu/pkg/optional"
)

// Hemisphere selects which compass direction counts as "front".
type Hemisphere string

const (
	HemisphereNorth Hemisphere = "north"
	HemisphereSouth Hemisphere = "south"
)

// Cardinals maps the structural directions to azimuths for one
// hemisphere.
type Cardinals struct {
	Front float64
	Back  float64
	Left  float64
	Right float64
}

// CardinalsFor returns the directional azimuths for a hemisphere,
// defaulting to north.
func CardinalsFor(h Hemisphere) Cardinals {
	if h == HemisphereSouth {
		return Cardinals{Front: 0, Back: 180, Left: 270, Right: 90}
	}
	return Cardinals{Front: 180, Back: 0, Left: 90, Right: 270}
}

// Azimuth resolves a Direction against the cardinal set.
func (c Cardinals) Azimuth(d Direction) float64 {
	switch d {
	case DirBack:
		return c.Back
	case DirLeft:
		return c.Left
	case DirRight:
		return c.Right
	default:
		return c.Front
	}
}

// Culture holds the per-culture scoring parameters.
type Culture struct {
	AspectTargets         map[Hemisphere]float64 `yaml:"aspect_targets"`
	AspectSharpness       float64                `yaml:"aspect_sharpness"`
	WaterDistanceTarget   float64                `yaml:"water_distance_target"`
	WaterDistanceSigma    float64                `yaml:"water_distance_sigma"`
	MacroRadiusMultiplier float64                `yaml:"macro_radius_multiplier"`
	MicroRadiusMultiplier float64                `yaml:"micro_radius_multiplier"`
	HyeolThreshold        float64                `yaml:"hyeol_threshold"`
	WeightBias            map[string]float64     `yaml:"weight_bias"`
	TermBias              map[string]float64     `yaml:"term_bias"`
	TermTargetShift       float64                `yaml:"term_target_shift"`
}

// Period holds the per-period parameter shifts applied on top of a
// culture.
type Period struct {
	WaterTargetShift      float64            `yaml:"water_target_shift"`
	WaterSigmaShift       float64            `yaml:"water_sigma_shift"`
	MacroRadiusMultiplier float64            `yaml:"macro_radius_multiplier"`
	MicroRadiusMultiplier float64            `yaml:"micro_radius_multiplier"`
	HyeolThresholdShift   float64            `yaml:"hyeol_threshold_shift"`
	WeightBias            map[string]float64 `yaml:"weight_bias"`
	TermTargetShift       float64            `yaml:"term_target_shift"`
}

// Context is the merged, per-call parameter set every component takes
// explicitly. It is built once per operation and never mutated.
type Context struct {
	CultureKey            string
	PeriodKey             string
	AspectTarget          float64
	AspectSharpness       float64
	WaterDistanceTarget   float64
	WaterDistanceSigma    float64
	MacroRadiusMultiplier float64
	MicroRadiusMultiplier float64
	HyeolThreshold        float64
	WeightBias            map[string]float64
	TermBias              map[string]float64
	TermTargetShift       float64
}

// BaseCultureKey and BasePeriodKey are the fallbacks for unknown keys.
const (
	BaseCultureKey = "east_asia"
	BasePeriodKey  = "early_modern"
)

// DefaultCultures returns the compiled-in culture table.
func DefaultCultures() map[string]Culture {
	return map[string]Culture{
		"east_asia": {
			AspectTargets:         map[Hemisphere]float64{HemisphereNorth: 180, HemisphereSouth: 0},
			AspectSharpness:       1.00,
			WaterDistanceTarget:   220,
			WaterDistanceSigma:    350,
			MacroRadiusMultiplier: 1.00,
			MicroRadiusMultiplier: 1.00,
			HyeolThreshold:        0.62,
		},
		"china": {
			AspectTargets:         map[Hemisphere]float64{HemisphereNorth: 180, HemisphereSouth: 0},
			AspectSharpness:       1.10,
			WaterDistanceTarget:   260,
			WaterDistanceSigma:    420,
			MacroRadiusMultiplier: 1.20,
			MicroRadiusMultiplier: 1.05,
			HyeolThreshold:        0.64,
			WeightBias:            map[string]float64{IndLong: 0.07, IndWater: 0.05, IndForm: 0.03, IndTPI: -0.03},
			TermBias: map[string]float64{
				TermJusan: 0.04, TermJojongsan: 0.06, TermNaesugu: 0.03, TermOesugu: 0.04,
			},
			TermTargetShift: 0.03,
		},
		"korea": {
			AspectTargets:         map[Hemisphere]float64{HemisphereNorth: 180, HemisphereSouth: 0},
			AspectSharpness:       1.15,
			WaterDistanceTarget:   210,
			WaterDistanceSigma:    330,
			MacroRadiusMultiplier: 1.10,
			MicroRadiusMultiplier: 1.00,
			HyeolThreshold:        0.64,
			WeightBias: map[string]float64{
				IndForm: 0.06, IndLong: 0.04, IndWater: 0.02, IndAspect: 0.02, IndSlope: -0.03,
			},
			TermBias: map[string]float64{
				TermAnsan: 0.05, TermJosan: 0.05, TermNaecheongyong: 0.04,
				TermNaebaekho: 0.04, TermNaesugu: 0.04,
			},
			TermTargetShift: 0.01,
		},
		"japan": {
			AspectTargets:         map[Hemisphere]float64{HemisphereNorth: 170, HemisphereSouth: 350},
			AspectSharpness:       0.85,
			WaterDistanceTarget:   240,
			WaterDistanceSigma:    360,
			MacroRadiusMultiplier: 1.00,
			MicroRadiusMultiplier: 0.95,
			HyeolThreshold:        0.60,
			WeightBias:            map[string]float64{IndAspect: 0.05, IndForm: 0.03, IndWater: -0.03, IndLong: 0.01},
			TermBias: map[string]float64{
				TermNaecheongyong: 0.03, TermOecheongyong: 0.02,
				TermNaebaekho: 0.03, TermOebaekho: 0.02, TermAnsan: 0.02,
			},
			TermTargetShift: -0.01,
		},
		"ryukyu": {
			AspectTargets:         map[Hemisphere]float64{HemisphereNorth: 165, HemisphereSouth: 345},
			AspectSharpness:       0.90,
			WaterDistanceTarget:   180,
			WaterDistanceSigma:    310,
			MacroRadiusMultiplier: 0.90,
			MicroRadiusMultiplier: 1.05,
			HyeolThreshold:        0.59,
			WeightBias:            map[string]float64{IndWater: 0.10, IndConv: 0.04, IndLong: -0.05, IndForm: 0.01},
			TermBias:              map[string]float64{TermIpsu: 0.06, TermNaesugu: 0.05, TermOesugu: 0.05},
			TermTargetShift:       -0.03,
		},
	}
}

// DefaultPeriods returns the compiled-in period table.
func DefaultPeriods() map[string]Period {
	return map[string]Period{
		"ancient": {
			WaterTargetShift:      30,
			WaterSigmaShift:       20,
			MacroRadiusMultiplier: 1.15,
			MicroRadiusMultiplier: 1.00,
			HyeolThresholdShift:   0.02,
			WeightBias:            map[string]float64{IndLong: 0.05, IndForm: 0.03, IndWater: -0.02, IndAspect: -0.02},
			TermTargetShift:       0.02,
		},
		"medieval": {
			WaterTargetShift:      10,
			WaterSigmaShift:       10,
			MacroRadiusMultiplier: 1.05,
			MicroRadiusMultiplier: 1.00,
			HyeolThresholdShift:   0.01,
			WeightBias:            map[string]float64{IndForm: 0.03, IndLong: 0.03},
			TermTargetShift:       0.01,
		},
		"early_modern": {
			MacroRadiusMultiplier: 1.00,
			MicroRadiusMultiplier: 1.00,
			WeightBias:            map[string]float64{IndAspect: 0.02, IndWater: 0.01},
		},
		"modern": {
			WaterTargetShift:      -15,
			WaterSigmaShift:       -20,
			MacroRadiusMultiplier: 0.90,
			MicroRadiusMultiplier: 1.00,
			HyeolThresholdShift:   -0.03,
			WeightBias:            map[string]float64{IndWater: 0.03, IndConv: 0.03, IndLong: -0.04, IndForm: -0.02},
			TermTargetShift:       -0.02,
		},
	}
}

// Catalog bundles the full parameter surface of the engine.
type Catalog struct {
	Rules    Rules
	Profiles map[string]Profile
	Terms    TermCatalog
	Cultures map[string]Culture
	Periods  map[string]Period
}

// DefaultCatalog returns every compiled-in table.
func DefaultCatalog() Catalog {
	return Catalog{
		Rules:    DefaultRules(),
		Profiles: DefaultProfiles(),
		Terms:    DefaultTermCatalog(),
		Cultures: DefaultCultures(),
		Periods:  DefaultPeriods(),
	}
}

// Validate checks every table in the catalog.
func (c Catalog) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if err := ValidateProfiles(c.Profiles); err != nil {
		return err
	}
	return c.Terms.Validate()
}

// BuildContext merges a culture and a period into the per-call
// context. Unknown keys fall back to the base culture/period, the
// threshold is clamped to [0.50, 0.90], and the water sigma is
// floored at 120 m.
func (c Catalog) BuildContext(cultureKey, periodKey string, hemisphere Hemisphere) Context {
	culture, ok := c.Cultures[cultureKey]
	if !ok {
		cultureKey = BaseCultureKey
		culture = c.Cultures[cultureKey]
	}
	period, ok := c.Periods[periodKey]
	if !ok {
		periodKey = BasePeriodKey
		period = c.Periods[periodKey]
	}

	aspectTarget, ok := culture.AspectTargets[hemisphere]
	if !ok {
		if hemisphere == HemisphereSouth {
			aspectTarget = 0
		} else {
			aspectTarget = 180
		}
	}

	sigma := culture.WaterDistanceSigma + period.WaterSigmaShift
	if sigma < 120 {
		sigma = 120
	}

	termBias := make(map[string]float64, len(culture.TermBias))
	for k, v := range culture.TermBias {
		termBias[k] = v
	}

	return Context{
		CultureKey:            cultureKey,
		PeriodKey:             periodKey,
		AspectTarget:          aspectTarget,
		AspectSharpness:       culture.AspectSharpness,
		WaterDistanceTarget:   culture.WaterDistanceTarget + period.WaterTargetShift,
		WaterDistanceSigma:    sigma,
		MacroRadiusMultiplier: culture.MacroRadiusMultiplier * period.MacroRadiusMultiplier,
		MicroRadiusMultiplier: culture.MicroRadiusMultiplier * period.MicroRadiusMultiplier,
		HyeolThreshold:        optional.Clamp(culture.HyeolThreshold+period.HyeolThresholdShift, 0.50, 0.90),
		WeightBias:            mergeBias(culture.WeightBias, period.WeightBias),
		TermBias:              termBias,
		TermTargetShift:       culture.TermTargetShift + period.TermTargetShift,
	}
}

func mergeBias(first, second map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(first)+len(second))
	for k, v := range first {
		merged[k] += v
	}
	for k, v := range second {
		merged[k] += v
	}
	return merged
}
