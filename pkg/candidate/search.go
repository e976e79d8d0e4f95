// Package candidate scans a DEM on an adaptive grid for sheltered
// hollow sites: cells whose shape metrics clear a context threshold,
// ranked by score and thinned by spatial suppression.
package candidate

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/grid"
	"github.com/jparkgeo/pungsu/pkg/optional"
	"github.com/jparkgeo/pungsu/pkg/raster"
	"github.com/jparkgeo/pungsu/pkg/terrain"
)

// Candidate is one grid cell that cleared the shape threshold.
type Candidate struct {
	Point   geom.Point
	Elev    float64
	Score   float64
	Metrics terrain.Metrics
}

// Searcher runs the candidate scan over one DEM.
type Searcher struct {
	engine *terrain.Engine
	dem    raster.Provider
	rules  config.CandidateRules
}

// NewSearcher creates a searcher bound to a terrain engine and its DEM.
func NewSearcher(engine *terrain.Engine, dem raster.Provider, rules config.CandidateRules) *Searcher {
	return &Searcher{engine: engine, dem: dem, rules: rules}
}

// Spacing returns the adaptive sample spacing: ten DEM steps or
// 1/180th of the shorter extent side, whichever is larger, widened to
// keep the scan under the rules' cell cap.
func (s *Searcher) Spacing() float64 {
	ext := s.dem.Extent()
	step := s.engine.Step()
	minSpan := math.Min(ext.Width(), ext.Height())
	spacing := math.Max(step*10.0, minSpan/180.0)
	if spacing <= 0 {
		return math.Max(step*10.0, 1.0)
	}
	return grid.CapSpacing(ext, spacing, s.rules.MaxCells)
}

// RecommendedCount suggests how many sites a DEM of this size
// supports: dense grids get fewer, so results stay far apart.
func (s *Searcher) RecommendedCount(spacing float64) int {
	ext := s.dem.Extent()
	cols := int(ext.Width() / math.Max(spacing, 1e-6))
	rows := int(ext.Height() / math.Max(spacing, 1e-6))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	switch nodes := cols * rows; {
	case nodes >= 22000:
		return 2
	case nodes >= 12000:
		return 3
	case nodes >= 5000:
		return 4
	default:
		return 5
	}
}

// EffectiveKeep clamps the requested site count to [1, recommended].
func EffectiveKeep(requested, recommended int) int {
	keep := requested
	if keep > recommended {
		keep = recommended
	}
	if keep < 1 {
		keep = 1
	}
	return keep
}

// SuppressDistance returns the minimum spacing between kept sites.
// Small keep counts spread further apart.
func SuppressDistance(spacing float64, keep int) float64 {
	if keep <= 3 {
		return spacing * 10.5
	}
	return spacing * 9.0
}

// Collect scans the grid and returns every candidate clearing the
// context threshold, sorted by score descending. Ties keep grid order.
func (s *Searcher) Collect(ctx context.Context, cctx config.Context, card config.Cardinals, spacing float64) ([]Candidate, error) {
	ext := s.dem.Extent()
	var out []Candidate
	for x := ext.MinX + spacing*0.5; x < ext.MaxX; x += spacing {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("candidate scan: %w", err)
		}
		for y := ext.MinY + spacing*0.5; y < ext.MaxY; y += spacing {
			p := geom.Pt(x, y)
			elev, ok := s.dem.Sample(p)
			if !ok {
				continue
			}
			m := s.engine.Evaluate(p, optional.None(), card, cctx)
			if m.TPINorm.Valid && (m.TPINorm.Value < s.rules.TPIMin || m.TPINorm.Value > s.rules.TPIMax) {
				continue
			}
			shape := optional.Mean(m.Form, m.Long, m.Wetness)
			tpiScore := terrain.GaussianOpt(m.TPINorm, s.rules.TPITarget, s.rules.TPISigma)
			score := optional.Mean(shape, tpiScore)
			if !score.Valid || score.Value < cctx.HyeolThreshold {
				continue
			}
			out = append(out, Candidate{Point: p, Elev: elev, Score: score.Value, Metrics: m})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Suppress walks the score-ordered candidates and keeps the first
// `keep` that sit at least minDistance from every earlier keeper.
func Suppress(candidates []Candidate, minDistance float64, keep int) []Candidate {
	var selected []Candidate
	minSq := minDistance * minDistance
	for _, c := range candidates {
		tooClose := false
		for _, kept := range selected {
			dx := c.Point.X - kept.Point.X
			dy := c.Point.Y - kept.Point.Y
			if dx*dx+dy*dy < minSq {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		selected = append(selected, c)
		if len(selected) >= keep {
			break
		}
	}
	return selected
}
