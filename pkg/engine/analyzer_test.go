package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/logging"
	"github.com/jparkgeo/pungsu/pkg/metrics"
	"github.com/jparkgeo/pungsu/pkg/optional"
	"github.com/jparkgeo/pungsu/pkg/raster"
	"github.com/jparkgeo/pungsu/pkg/vector"
)

// slopeDEM is a south-facing style tilt along +X: 1800 m square,
// 30 m cells, falling east at 0.05 m/m.
func slopeDEM() *raster.MemDEM {
	return raster.Slope(60, 60, 30, 500, 1.5)
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(slopeDEM(), config.DefaultCatalog(), Options{Metrics: metrics.NewRegistry()})
	require.NoError(t, err)
	return a
}

func baseRequest() Request {
	return Request{
		Culture:    "east_asia",
		Period:     "early_modern",
		Hemisphere: config.HemisphereNorth,
		Profile:    "settlement",
	}
}

func TestNewRejectsNilDEM(t *testing.T) {
	_, err := New(nil, config.DefaultCatalog(), Options{})
	require.Error(t, err)
}

func TestNewRejectsInvalidCatalog(t *testing.T) {
	catalog := config.DefaultCatalog()
	catalog.Rules.Metrics.Wetness.Sigma = 0
	_, err := New(slopeDEM(), catalog, Options{})
	require.Error(t, err)
}

func TestScoreSites(t *testing.T) {
	a := newTestAnalyzer(t)
	sites := []vector.SiteFeature{
		{ID: 1, Point: geom.Pt(900, 900), SlopeDeg: optional.Some(3.0), AspectDeg: optional.Some(180)},
		{ID: 2, Point: geom.Pt(600, 1200), SlopeDeg: optional.Some(12.0), AspectDeg: optional.Some(90)},
	}
	water := []vector.Feature{
		{ID: 1, Geom: vector.LineString{Points: []geom.Point{geom.Pt(0, 600), geom.Pt(1800, 600)}}},
	}

	records, err := a.ScoreSites(context.Background(), baseRequest(), sites, water)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 1, first.SiteID)
	assert.Equal(t, "east_asia", first.Culture)
	assert.Equal(t, "early_modern", first.Period)
	assert.Equal(t, "settlement", first.Model)
	require.True(t, first.WaterM.Valid)
	assert.InDelta(t, 300.0, first.WaterM.Value, 1e-9)
	assert.True(t, first.Slope.Valid)
	assert.True(t, first.Aspect.Valid)
	assert.True(t, first.Water.Valid)
	require.True(t, first.Total.Valid)
	assert.GreaterOrEqual(t, first.Total.Value, 0.0)
	assert.LessOrEqual(t, first.Total.Value, 100.0)
	require.True(t, first.Confidence.Valid)
	assert.Greater(t, first.Confidence.Value, 0.0)
	assert.NotEmpty(t, first.Note)
	assert.Contains(t, first.Reason, "model=settlement")

	// A gentle south-facing site beats a steep east-facing one under
	// the settlement profile.
	require.True(t, records[1].Total.Valid)
	assert.Greater(t, first.Total.Value, records[1].Total.Value)
}

func TestScoreSitesNoWaterFeatures(t *testing.T) {
	a := newTestAnalyzer(t)
	sites := []vector.SiteFeature{{ID: 7, Point: geom.Pt(900, 900)}}

	records, err := a.ScoreSites(context.Background(), baseRequest(), sites, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.False(t, rec.WaterM.Valid)
	assert.False(t, rec.Slope.Valid)
	assert.False(t, rec.Aspect.Valid)
	// The blended water indicator falls back to the terrain wetness.
	assert.Equal(t, rec.DemWater, rec.Water)
}

func TestScoreSitesUnknownProfileFallsBack(t *testing.T) {
	a := newTestAnalyzer(t)
	req := baseRequest()
	req.Profile = "no-such-model"

	records, err := a.ScoreSites(context.Background(), req, []vector.SiteFeature{{ID: 1, Point: geom.Pt(900, 900)}}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "general", records[0].Model)
}

func TestScoreSitesCancellation(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ScoreSites(ctx, baseRequest(), []vector.SiteFeature{{ID: 1, Point: geom.Pt(900, 900)}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractCandidates(t *testing.T) {
	a := newTestAnalyzer(t)

	extraction, err := a.ExtractCandidates(context.Background(), baseRequest(), 3)
	require.NoError(t, err)
	assert.Greater(t, extraction.Spacing, 0.0)
	assert.GreaterOrEqual(t, extraction.Recommended, 2)
	assert.LessOrEqual(t, extraction.Recommended, 5)
	require.GreaterOrEqual(t, extraction.Kept, 1)
	assert.LessOrEqual(t, extraction.Kept, 3)
	assert.GreaterOrEqual(t, extraction.Scanned, extraction.Kept)

	for i := 1; i < len(extraction.Selected); i++ {
		assert.GreaterOrEqual(t, extraction.Selected[i-1].Score, extraction.Selected[i].Score)
	}
}

func TestDeriveTerms(t *testing.T) {
	a := newTestAnalyzer(t)

	set, err := a.DeriveTerms(context.Background(), baseRequest(), 2)
	require.NoError(t, err)
	require.GreaterOrEqual(t, set.Extraction.Kept, 1)
	require.NotEmpty(t, set.Landmarks)

	// Every kept site carries its core point and court.
	perParent := map[int]map[string]bool{}
	for _, l := range set.Landmarks {
		if perParent[l.ParentID] == nil {
			perParent[l.ParentID] = map[string]bool{}
		}
		perParent[l.ParentID][l.TermID] = true
	}
	require.Len(t, perParent, set.Extraction.Kept)
	for parent, ids := range perParent {
		assert.True(t, ids[config.TermHyeol], "parent %d missing core point", parent)
		assert.True(t, ids[config.TermMyeongdang], "parent %d missing court", parent)
	}

	// Links only ever join landmarks that exist.
	byID := map[string]bool{}
	for _, l := range set.Landmarks {
		byID[l.TermID] = true
	}
	for _, link := range set.Links {
		assert.True(t, byID[link.SrcID], "link source %s not derived", link.SrcID)
		assert.True(t, byID[link.DstID], "link target %s not derived", link.DstID)
		assert.GreaterOrEqual(t, len(link.Path), 2)
	}
}

func TestDeriveTermsCancellation(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.DeriveTerms(ctx, baseRequest(), 2)
	require.Error(t, err)
}

func TestBuildHydroNetworkFlat(t *testing.T) {
	a, err := New(raster.Uniform(60, 60, 30, 200), config.DefaultCatalog(), Options{Metrics: metrics.NewRegistry()})
	require.NoError(t, err)

	net, err := a.BuildHydroNetwork(context.Background())
	require.NoError(t, err)
	require.NotNil(t, net)
	assert.Empty(t, net.Streams)
}

func TestBuildRidgeNetworkFlat(t *testing.T) {
	a, err := New(raster.Uniform(60, 60, 30, 200), config.DefaultCatalog(), Options{Metrics: metrics.NewRegistry()})
	require.NoError(t, err)

	net, err := a.BuildRidgeNetwork(context.Background())
	require.NoError(t, err)
	require.NotNil(t, net)
	assert.Empty(t, net.Ridges)
}

func TestNetworkCancellation(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.BuildHydroNetwork(ctx)
	require.Error(t, err)
	_, err = a.BuildRidgeNetwork(ctx)
	require.Error(t, err)
}

func TestOperationsLogAndRecordMetrics(t *testing.T) {
	var buf bytes.Buffer
	registry := metrics.NewRegistry()
	a, err := New(slopeDEM(), config.DefaultCatalog(), Options{
		Logger:  logging.New(&buf, logging.DebugLevel),
		Metrics: registry,
	})
	require.NoError(t, err)

	_, err = a.ScoreSites(context.Background(), baseRequest(), []vector.SiteFeature{{ID: 1, Point: geom.Pt(900, 900)}}, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "score_sites")
	assert.Contains(t, out, `"run_id"`)
	assert.True(t, strings.Contains(out, `"component":"engine"`), "component field missing: %s", out)

	families, err := registry.Gatherer().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["pungsu_analysis_ops_total"])
	assert.True(t, names["pungsu_dem_samples_total"])
}
