package config

import (
	"github.com/jparkgeo/pungsu/pkg/validation"
)

// Landmark term identifiers. The catalog is fixed; cultural context
// only biases scores, it never adds terms.
const (
	TermHyeol         = "hyeol"         // core point, the candidate itself
	TermMyeongdang    = "myeongdang"    // open basin in front of the core
	TermJusan         = "jusan"         // near main peak behind
	TermDunoe         = "dunoe"         // brain mound directly behind
	TermJojongsan     = "jojongsan"     // far ancestral peak behind
	TermNaecheongyong = "naecheongnyong" // left inner flank
	TermOecheongyong  = "oecheongnyong"  // left outer flank
	TermNaebaekho     = "naebaekho"     // right inner flank
	TermOebaekho      = "oebaekho"      // right outer flank
	TermAnsan         = "ansan"         // near frontal peak
	TermJosan         = "josan"         // far frontal peak
	TermNaesugu       = "naesugu"       // near outlet
	TermOesugu        = "oesugu"        // far outlet
	TermIpsu          = "ipsu"          // inflow point, ring minimum
	TermMisa          = "misa"          // gentle frontal apron
)

// ExtractionMode selects how a term point is located.
type ExtractionMode string

const (
	ModeMax    ExtractionMode = "max"    // sector/ring maximum
	ModeMin    ExtractionMode = "min"    // sector/ring minimum
	ModeGentle ExtractionMode = "gentle" // closest to reference elevation
	ModeRefine ExtractionMode = "refine" // fixed frontal offset
)

// RadiusClass names the search radius band of a term.
type RadiusClass string

const (
	RadiusInner RadiusClass = "inner"
	RadiusOuter RadiusClass = "outer"
	RadiusFar   RadiusClass = "far"
)

// Direction names which cardinal a term is sought toward.
type Direction string

const (
	DirFront Direction = "front"
	DirBack  Direction = "back"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// TermSpec describes one catalog entry searched by sector extremum.
type TermSpec struct {
	TermID    string         `yaml:"term_id"`
	Radius    RadiusClass    `yaml:"radius"`
	Direction Direction      `yaml:"direction"`
	Mode      ExtractionMode `yaml:"mode"`
	// Target is the expected relative elevation (elev − center)/relief.
	Target float64 `yaml:"target"`
	Sigma  float64 `yaml:"sigma"`
}

// RadiusScales maps radius classes to DEM-step multiples.
type RadiusScales struct {
	Inner float64 `yaml:"inner"`
	Outer float64 `yaml:"outer"`
	Far   float64 `yaml:"far"`
}

// TermCatalog is the full landmark catalog.
type TermCatalog struct {
	Specs  []TermSpec        `yaml:"term_specs"`
	Scales RadiusScales      `yaml:"radius_scales"`
	Labels map[string]string `yaml:"term_labels"`
}

// DefaultTermCatalog returns the compiled-in landmark catalog.
func DefaultTermCatalog() TermCatalog {
	return TermCatalog{
		Specs: []TermSpec{
			{TermID: TermJusan, Radius: RadiusOuter, Direction: DirBack, Mode: ModeMax, Target: 0.45, Sigma: 0.30},
			{TermID: TermDunoe, Radius: RadiusInner, Direction: DirBack, Mode: ModeMax, Target: 0.18, Sigma: 0.22},
			{TermID: TermJojongsan, Radius: RadiusFar, Direction: DirBack, Mode: ModeMax, Target: 0.60, Sigma: 0.35},
			{TermID: TermNaecheongyong, Radius: RadiusInner, Direction: DirLeft, Mode: ModeMax, Target: 0.15, Sigma: 0.25},
			{TermID: TermOecheongyong, Radius: RadiusOuter, Direction: DirLeft, Mode: ModeMax, Target: 0.30, Sigma: 0.30},
			{TermID: TermNaebaekho, Radius: RadiusInner, Direction: DirRight, Mode: ModeMax, Target: 0.15, Sigma: 0.25},
			{TermID: TermOebaekho, Radius: RadiusOuter, Direction: DirRight, Mode: ModeMax, Target: 0.30, Sigma: 0.30},
			{TermID: TermAnsan, Radius: RadiusOuter, Direction: DirFront, Mode: ModeMax, Target: 0.12, Sigma: 0.25},
			{TermID: TermJosan, Radius: RadiusFar, Direction: DirFront, Mode: ModeMax, Target: 0.35, Sigma: 0.35},
			{TermID: TermNaesugu, Radius: RadiusOuter, Direction: DirFront, Mode: ModeMin, Target: -0.15, Sigma: 0.28},
			{TermID: TermOesugu, Radius: RadiusFar, Direction: DirFront, Mode: ModeMin, Target: -0.25, Sigma: 0.32},
		},
		Scales: RadiusScales{Inner: 18.0, Outer: 38.0, Far: 65.0},
		Labels: map[string]string{
			TermHyeol:         "core point",
			TermMyeongdang:    "bright court",
			TermJusan:         "main mountain",
			TermDunoe:         "brain mound",
			TermJojongsan:     "ancestral peak",
			TermNaecheongyong: "inner azure dragon",
			TermOecheongyong:  "outer azure dragon",
			TermNaebaekho:     "inner white tiger",
			TermOebaekho:      "outer white tiger",
			TermAnsan:         "table mountain",
			TermJosan:         "facing peak",
			TermNaesugu:       "inner water gate",
			TermOesugu:        "outer water gate",
			TermIpsu:          "inflow point",
			TermMisa:          "gentle apron",
		},
	}
}

// Label resolves a term's display name, defaulting to the id.
func (c TermCatalog) Label(termID string) string {
	if label, ok := c.Labels[termID]; ok && label != "" {
		return label
	}
	return termID
}

// RadiusFor maps a radius class to its step multiple.
func (c TermCatalog) RadiusFor(class RadiusClass) float64 {
	switch class {
	case RadiusOuter:
		return c.Scales.Outer
	case RadiusFar:
		return c.Scales.Far
	default:
		return c.Scales.Inner
	}
}

// Validate checks the catalog.
func (c TermCatalog) Validate() error {
	cv := validation.NewConfigValidator("TermCatalog")
	cv.Positive("Scales.Inner", c.Scales.Inner).
		Positive("Scales.Outer", c.Scales.Outer).
		Positive("Scales.Far", c.Scales.Far).
		Check(c.Scales.Inner < c.Scales.Outer && c.Scales.Outer < c.Scales.Far,
			"Scales", "radius classes must increase inner < outer < far")
	seen := map[string]bool{}
	for _, spec := range c.Specs {
		cv.NotEmpty("Specs.TermID", spec.TermID).
			Positive("Specs."+spec.TermID+".Sigma", spec.Sigma).
			OneOf("Specs."+spec.TermID+".Mode", string(spec.Mode), string(ModeMax), string(ModeMin)).
			OneOf("Specs."+spec.TermID+".Radius", string(spec.Radius),
				string(RadiusInner), string(RadiusOuter), string(RadiusFar)).
			OneOf("Specs."+spec.TermID+".Direction", string(spec.Direction),
				string(DirFront), string(DirBack), string(DirLeft), string(DirRight)).
			Check(!seen[spec.TermID], "Specs."+spec.TermID, "duplicate term id")
		seen[spec.TermID] = true
	}
	return cv.Result()
}
