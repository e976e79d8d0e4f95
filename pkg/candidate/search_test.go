package candidate

import (
	"context"
	"math"
	"testing"

	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/raster"
	"github.com/jparkgeo/pungsu/pkg/sampling"
	"github.com/jparkgeo/pungsu/pkg/terrain"
)

func newSearcher(t *testing.T, dem raster.Provider) *Searcher {
	t.Helper()
	rules := config.DefaultRules()
	eng := terrain.NewEngine(sampling.New(dem), rules, raster.Step(dem))
	return NewSearcher(eng, dem, rules.Candidate)
}

func testContext(threshold float64) config.Context {
	cctx := config.DefaultCatalog().BuildContext("east_asia", "early_modern", config.HemisphereNorth)
	cctx.HyeolThreshold = threshold
	return cctx
}

func TestSpacingUsesStepFloor(t *testing.T) {
	// 40x40 cells of 10 m: minSpan/180 ~ 2.2, so step*10 wins.
	dem := raster.Uniform(40, 40, 10, 100)
	s := newSearcher(t, dem)
	if got := s.Spacing(); math.Abs(got-100) > 1e-9 {
		t.Errorf("Spacing = %v, want 100", got)
	}
}

func TestRecommendedCountTiers(t *testing.T) {
	dem := raster.Uniform(4, 4, 10, 100) // 40x40 extent
	s := newSearcher(t, dem)

	cases := []struct {
		spacing float64
		want    int
	}{
		{0.26, 2}, // ~153x153 = 23409 nodes
		{0.35, 3}, // ~114x114 = 12996
		{0.55, 4}, // ~72x72 = 5184
		{10, 5},   // 4x4 = 16
	}
	for _, c := range cases {
		if got := s.RecommendedCount(c.spacing); got != c.want {
			t.Errorf("RecommendedCount(%v) = %d, want %d", c.spacing, got, c.want)
		}
	}
}

func TestEffectiveKeep(t *testing.T) {
	if got := EffectiveKeep(5, 3); got != 3 {
		t.Errorf("EffectiveKeep(5,3) = %d, want 3", got)
	}
	if got := EffectiveKeep(2, 4); got != 2 {
		t.Errorf("EffectiveKeep(2,4) = %d, want 2", got)
	}
	if got := EffectiveKeep(0, 4); got != 1 {
		t.Errorf("EffectiveKeep(0,4) = %d, want 1", got)
	}
}

func TestSuppressDistanceWidensForFewSites(t *testing.T) {
	if got := SuppressDistance(100, 3); got != 1050 {
		t.Errorf("keep 3 distance = %v, want 1050", got)
	}
	if got := SuppressDistance(100, 4); got != 900 {
		t.Errorf("keep 4 distance = %v, want 900", got)
	}
}

func TestCollectFlatRasterFindsNothing(t *testing.T) {
	dem := raster.Uniform(30, 30, 10, 100)
	s := newSearcher(t, dem)
	cctx := testContext(0.0)
	card := config.CardinalsFor(config.HemisphereNorth)

	got, err := s.Collect(context.Background(), cctx, card, s.Spacing())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	// Flat terrain has zero relief, so form and long stay absent and
	// only the wetness mean would remain; that alone cannot pass a
	// positive threshold paired with an absent TPI score.
	for _, c := range got {
		if c.Metrics.Form.Valid || c.Metrics.Long.Valid {
			t.Errorf("flat terrain produced shape metrics at %v", c.Point)
		}
	}
}

func TestCollectRankedDescending(t *testing.T) {
	dem := raster.Peak(60, 60, 10, 500, 2)
	s := newSearcher(t, dem)
	cctx := testContext(0.0)
	card := config.CardinalsFor(config.HemisphereNorth)

	got, err := s.Collect(context.Background(), cctx, card, 60)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected candidates on sloped terrain with zero threshold")
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Fatalf("scores out of order at %d: %v < %v", i-1, got[i-1].Score, got[i].Score)
		}
	}
	for _, c := range got {
		if c.Metrics.TPINorm.Valid {
			tpi := c.Metrics.TPINorm.Value
			if tpi < s.rules.TPIMin || tpi > s.rules.TPIMax {
				t.Errorf("candidate at %v outside TPI band: %v", c.Point, tpi)
			}
		}
	}
}

func TestCollectHonorsThreshold(t *testing.T) {
	dem := raster.Peak(60, 60, 10, 500, 2)
	s := newSearcher(t, dem)
	card := config.CardinalsFor(config.HemisphereNorth)

	all, err := s.Collect(context.Background(), testContext(0.0), card, 60)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	strict, err := s.Collect(context.Background(), testContext(0.99), card, 60)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(strict) > len(all) {
		t.Errorf("stricter threshold kept more: %d > %d", len(strict), len(all))
	}
	for _, c := range strict {
		if c.Score < 0.99 {
			t.Errorf("candidate below threshold: %v", c.Score)
		}
	}
}

func TestCollectCancellation(t *testing.T) {
	dem := raster.Uniform(30, 30, 10, 100)
	s := newSearcher(t, dem)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Collect(ctx, testContext(0.5), config.CardinalsFor(config.HemisphereNorth), 50); err == nil {
		t.Fatal("cancelled scan should fail")
	}
}

func TestSuppressKeepsHighestFirst(t *testing.T) {
	cands := []Candidate{
		{Point: geom.Pt(0, 0), Score: 0.9},
		{Point: geom.Pt(10, 0), Score: 0.8},  // too close to first
		{Point: geom.Pt(500, 0), Score: 0.7},
		{Point: geom.Pt(505, 0), Score: 0.6}, // too close to third
		{Point: geom.Pt(0, 500), Score: 0.5},
	}
	got := Suppress(cands, 100, 10)
	if len(got) != 3 {
		t.Fatalf("kept %d, want 3", len(got))
	}
	if got[0].Score != 0.9 || got[1].Score != 0.7 || got[2].Score != 0.5 {
		t.Errorf("wrong survivors: %+v", got)
	}

	capped := Suppress(cands, 100, 2)
	if len(capped) != 2 {
		t.Errorf("keep cap ignored: %d", len(capped))
	}
}
