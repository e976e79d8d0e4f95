// Package terms derives the named landmark points around each
// selected core site and connects them into the fixed structural link
// plan. Every landmark is located by a sector or ring search on the
// DEM and scored by how well its relative elevation fits the catalog
// target.
package terms

import (
	"fmt"
	"math"

	"github.com/jparkgeo/pungsu/pkg/candidate"
	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/optional"
	"github.com/jparkgeo/pungsu/pkg/sampling"
	"github.com/jparkgeo/pungsu/pkg/terrain"
)

const (
	// sectorSpan and sectorSamples parameterize the extremum fan.
	sectorSpan    = 80.0
	sectorSamples = 17
	// reliefRingStep samples the relief ring every 12 degrees.
	reliefRingStep = 12
)

// Landmark is one derived term point, tied to its parent core site.
type Landmark struct {
	TermID   string
	Label    string
	Culture  string
	Period   string
	ParentID int
	Rank     int
	Point    geom.Point
	Score    float64
	Elev     float64

	BaseScore float64
	DeltaRel  optional.Float
	TargetRel optional.Float
	FitScore  optional.Float
	RadiusM   optional.Float
	Azimuth   optional.Float
	Mode      config.ExtractionMode
	ReliefM   float64
	Note      string
	Reason    string
}

// Deriver locates landmarks around selected core candidates.
type Deriver struct {
	sampler *sampling.Sampler
	catalog config.TermCatalog
	step    float64
}

// NewDeriver creates a landmark deriver.
func NewDeriver(sampler *sampling.Sampler, catalog config.TermCatalog, step float64) *Deriver {
	return &Deriver{sampler: sampler, catalog: catalog, step: step}
}

// MinScore is the drop threshold for optional landmarks: weak fits are
// left off the layer entirely.
func MinScore(cctx config.Context) float64 {
	return math.Max(0.42, cctx.HyeolThreshold*0.72)
}

// radii resolves the three search radii under a context. The inner
// band scales with the micro multiplier, outer and far with macro.
func (d *Deriver) radii(cctx config.Context) (inner, outer, far float64) {
	inner = d.step * d.catalog.Scales.Inner * cctx.MicroRadiusMultiplier
	outer = d.step * d.catalog.Scales.Outer * cctx.MacroRadiusMultiplier
	far = d.step * d.catalog.Scales.Far * cctx.MacroRadiusMultiplier
	return inner, outer, far
}

// Derive walks the selected candidates in rank order and emits every
// landmark that either is mandatory (the core point and its court) or
// clears the context minimum score.
func (d *Deriver) Derive(selected []candidate.Candidate, card config.Cardinals, cctx config.Context) []Landmark {
	inner, outer, far := d.radii(cctx)
	minScore := MinScore(cctx)
	total := len(selected)
	if total < 1 {
		total = 1
	}

	var out []Landmark
	add := func(l Landmark, mandatory bool) {
		l.Score = optional.Clamp(l.Score+cctx.TermBias[l.TermID], 0.0, 1.0)
		if !mandatory && l.Score < minScore {
			return
		}
		l.Label = d.catalog.Label(l.TermID)
		l.Culture = cctx.CultureKey
		l.Period = cctx.PeriodKey
		if l.Reason == "" {
			l.Reason = composeReason(l)
		}
		out = append(out, l)
	}

	for i, item := range selected {
		rank := i + 1
		center := item.Point
		centerElev := item.Elev
		base := item.Score

		relief := 1.0
		if ring := d.sampler.FullRing(center, outer, reliefRingStep); len(ring) > 0 {
			lo, hi := ring[0], ring[0]
			for _, v := range ring {
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			relief = math.Max(1.0, hi-lo)
		}

		m := item.Metrics
		add(Landmark{
			TermID: config.TermHyeol, ParentID: rank, Rank: rank,
			Point: center, Score: base, Elev: centerElev,
			BaseScore: base, ReliefM: relief, Note: "core candidate",
			Reason: fmt.Sprintf(
				"core candidate #%d/%d. score=%.3f, form=%s, long=%s, wetness=%s, tpi=%s, conv=%s, relief=%.1fm, elev=%.2fm, threshold>=%.3f met",
				rank, total, base,
				fmtScore(m.Form), fmtScore(m.Long), fmtScore(m.Wetness),
				fmtTPI(m.TPINorm), fmtScore(m.Convergence),
				relief, centerElev, cctx.HyeolThreshold),
		}, true)

		// The court sits a short step in front of the core, scored by
		// how level it lies.
		courtPoint := center.Offset(inner*0.35, card.Front)
		courtElev := d.sampler.At(courtPoint)
		if !courtElev.Valid {
			courtPoint = center
			courtElev = optional.Some(centerElev)
		}
		courtDelta := (courtElev.Value - centerElev) / relief
		courtTarget := -0.03 + cctx.TermTargetShift*0.4
		courtFit := terrain.Gaussian(courtDelta, courtTarget, 0.24)
		add(Landmark{
			TermID: config.TermMyeongdang, ParentID: rank, Rank: rank,
			Point: courtPoint, Score: (base + courtFit) / 2, Elev: courtElev.Value,
			BaseScore: base,
			DeltaRel:  optional.Some(courtDelta), TargetRel: optional.Some(courtTarget),
			FitScore: optional.Some(courtFit),
			RadiusM:  optional.Some(inner * 0.35), Azimuth: optional.Some(card.Front),
			Mode: config.ModeRefine, ReliefM: relief, Note: "open core basin",
		}, true)

		radiusMap := map[config.RadiusClass]float64{
			config.RadiusInner: inner,
			config.RadiusOuter: outer,
			config.RadiusFar:   far,
		}
		for _, spec := range d.catalog.Specs {
			radius := radiusMap[spec.Radius]
			azimuth := card.Azimuth(spec.Direction)
			mode := sampling.Max
			if spec.Mode == config.ModeMin {
				mode = sampling.Min
			}
			ext, found := d.sampler.SectorExtreme(center, radius, azimuth, mode, sectorSpan, sectorSamples)
			if !found {
				continue
			}
			delta := (ext.Elevation - centerElev) / relief
			targetRel := spec.Target + cctx.TermTargetShift
			fit := terrain.Gaussian(delta, targetRel, spec.Sigma)
			add(Landmark{
				TermID: spec.TermID, ParentID: rank, Rank: rank,
				Point: ext.Point, Score: (base + fit) / 2, Elev: ext.Elevation,
				BaseScore: base,
				DeltaRel:  optional.Some(delta), TargetRel: optional.Some(targetRel),
				FitScore: optional.Some(fit),
				RadiusM:  optional.Some(radius), Azimuth: optional.Some(azimuth),
				Mode: spec.Mode, ReliefM: relief,
				Note: fmt.Sprintf("delta=%.3f", delta),
			}, false)
		}

		if ext, found := d.sampler.RingExtreme(center, outer, sampling.Min); found {
			delta := (ext.Elevation - centerElev) / relief
			targetRel := -0.22 + cctx.TermTargetShift
			fit := terrain.Gaussian(delta, targetRel, 0.35)
			add(Landmark{
				TermID: config.TermIpsu, ParentID: rank, Rank: rank,
				Point: ext.Point, Score: (base + fit) / 2, Elev: ext.Elevation,
				BaseScore: base,
				DeltaRel:  optional.Some(delta), TargetRel: optional.Some(targetRel),
				FitScore: optional.Some(fit),
				RadiusM:  optional.Some(outer),
				Mode:     config.ModeMin, ReliefM: relief,
				Note: fmt.Sprintf("ring_min delta=%.3f", delta),
			}, false)
		}

		if ext, found := d.sampler.SectorGentle(center, inner, card.Front, centerElev); found {
			delta := (ext.Elevation - centerElev) / relief
			targetRel := -0.03 + cctx.TermTargetShift*0.5
			fit := terrain.Gaussian(delta, targetRel, 0.20)
			add(Landmark{
				TermID: config.TermMisa, ParentID: rank, Rank: rank,
				Point: ext.Point, Score: (base + fit) / 2, Elev: ext.Elevation,
				BaseScore: base,
				DeltaRel:  optional.Some(delta), TargetRel: optional.Some(targetRel),
				FitScore: optional.Some(fit),
				RadiusM:  optional.Some(inner), Azimuth: optional.Some(card.Front),
				Mode: config.ModeGentle, ReliefM: relief,
				Note: fmt.Sprintf("gentle delta=%.3f", delta),
			}, false)
		}
	}
	return out
}

func fmtScore(v optional.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v.Value)
}

func fmtTPI(v optional.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v.Value)
}

func composeReason(l Landmark) string {
	az := "n/a"
	if l.Azimuth.Valid {
		az = fmt.Sprintf("%.1f", l.Azimuth.Value)
	}
	radius := "n/a"
	if l.RadiusM.Valid {
		radius = fmt.Sprintf("%.0fm", l.RadiusM.Value)
	}
	return fmt.Sprintf(
		"landmark %s for site #%d. score=%.3f, base=%.3f, delta=%s, target=%s, fit=%s, radius=%s, azimuth=%s, mode=%s. %s",
		l.TermID, l.ParentID, l.Score, l.BaseScore,
		fmtTPI(l.DeltaRel), fmtTPI(l.TargetRel), fmtScore(l.FitScore),
		radius, az, l.Mode, l.Note)
}
