// Package engine is the top-level facade tying the analysis
// components together: site scoring, candidate extraction, landmark
// derivation and linking, and the drainage and ridge network builders.
// Every operation takes a context for cancellation, logs structured
// progress, and records its outcome in the metrics registry.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jparkgeo/pungsu/pkg/candidate"
	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/hydro"
	"github.com/jparkgeo/pungsu/pkg/logging"
	"github.com/jparkgeo/pungsu/pkg/metrics"
	"github.com/jparkgeo/pungsu/pkg/raster"
	"github.com/jparkgeo/pungsu/pkg/ridge"
	"github.com/jparkgeo/pungsu/pkg/sampling"
	"github.com/jparkgeo/pungsu/pkg/scoring"
	"github.com/jparkgeo/pungsu/pkg/terms"
	"github.com/jparkgeo/pungsu/pkg/terrain"
	"github.com/jparkgeo/pungsu/pkg/vector"
)

// Request selects the cultural model an operation runs under.
type Request struct {
	Culture    string
	Period     string
	Hemisphere config.Hemisphere
	Profile    string
}

// Options configures an Analyzer. Zero values fall back to a nop
// logger and the shared default metrics registry.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Analyzer runs every analysis operation over one DEM.
type Analyzer struct {
	dem      raster.Provider
	catalog  config.Catalog
	log      logging.Logger
	registry *metrics.Registry
	sampler  *sampling.Sampler
	terrain  *terrain.Engine
	step     float64
}

// New creates an analyzer over a DEM with a validated catalog.
func New(dem raster.Provider, catalog config.Catalog, opts Options) (*Analyzer, error) {
	if dem == nil {
		return nil, fmt.Errorf("engine: nil DEM provider")
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop{}
	}
	registry := opts.Metrics
	if registry == nil {
		registry = metrics.DefaultRegistry()
	}

	step := raster.Step(dem)
	sampler := sampling.New(dem)
	return &Analyzer{
		dem:      dem,
		catalog:  catalog,
		log:      log.With(logging.Component("engine")),
		registry: registry,
		sampler:  sampler,
		terrain:  terrain.NewEngine(sampler, catalog.Rules, step),
		step:     step,
	}, nil
}

// Catalog returns the parameter catalog the analyzer runs under.
func (a *Analyzer) Catalog() config.Catalog { return a.catalog }

// context resolves the request into the merged per-call context and
// its cardinal directions.
func (a *Analyzer) context(req Request) (config.Context, config.Cardinals) {
	return a.catalog.BuildContext(req.Culture, req.Period, req.Hemisphere),
		config.CardinalsFor(req.Hemisphere)
}

// recordSamples adds the sampler tallies taken since the snapshot to
// the DEM counters.
func (a *Analyzer) recordSamples(samples0, nodata0 uint64) {
	samples, nodata := a.sampler.Counts()
	a.registry.RecordDEMSamples(int(samples-samples0), int(nodata-nodata0))
}

// finish records the operation outcome in logs and metrics.
func (a *Analyzer) finish(op, runID string, start time.Time, scanned, produced int, err error) {
	elapsed := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
		a.log.Error(op+" failed",
			logging.Operation(op), logging.RunID(runID),
			logging.Duration("elapsed", elapsed), logging.Err(err))
	} else {
		a.log.Info(op+" done",
			logging.Operation(op), logging.RunID(runID),
			logging.Duration("elapsed", elapsed),
			logging.NodeCount(scanned), logging.FeatureCount(produced))
	}
	a.registry.RecordOperation(op, status, elapsed, scanned, produced)
}

// ScoreSites scores every input site under the request's profile and
// context. Water features feed the distance indicator; a nil or empty
// set leaves it absent and the blend falls back to the terrain wetness.
func (a *Analyzer) ScoreSites(ctx context.Context, req Request, sites []vector.SiteFeature, water []vector.Feature) ([]scoring.SiteRecord, error) {
	const op = "score_sites"
	runID := uuid.NewString()
	start := time.Now()
	a.log.Info("scoring sites",
		logging.Operation(op), logging.RunID(runID),
		logging.Int("sites", len(sites)), logging.Int("water_features", len(water)))

	samples0, nodata0 := a.sampler.Counts()
	defer func() { a.recordSamples(samples0, nodata0) }()

	cctx, card := a.context(req)
	profileKey := req.Profile
	if _, ok := a.catalog.Profiles[profileKey]; !ok {
		profileKey = "general"
	}
	profile := scoring.Contextualize(config.ProfileOrDefault(a.catalog.Profiles, profileKey), cctx)
	waterIndex := vector.NewIndex(water)

	records := make([]scoring.SiteRecord, 0, len(sites))
	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("score sites: %w", err)
			a.finish(op, runID, start, len(records), 0, err)
			return nil, err
		}

		m := a.terrain.Evaluate(site.Point, site.SlopeDeg, card, cctx)
		waterM := waterIndex.NearestDistance(site.Point, 12)

		in := scoring.Indicators{
			Slope:  scoring.ScoreSlope(site.SlopeDeg, profile),
			Aspect: scoring.ScoreAspect(site.AspectDeg, cctx),
			Form:   m.Form,
			Long:   m.Long,
			Conv:   m.Convergence,
			TPI:    scoring.ScoreTPI(m.TPINorm, profile),
			Water:  scoring.CombineHydro(scoring.ScoreWaterDistance(waterM, cctx), m.Wetness),
		}

		rec := scoring.SiteRecord{
			SiteID:     site.ID,
			Culture:    cctx.CultureKey,
			Period:     cctx.PeriodKey,
			Model:      profileKey,
			WaterM:     waterM,
			Slope:      in.Slope,
			Aspect:     in.Aspect,
			Form:       in.Form,
			Long:       in.Long,
			DemWater:   m.Wetness,
			TPINorm:    m.TPINorm,
			Conv:       m.Convergence,
			Water:      in.Water,
			Total:      scoring.WeightedTotal(in, profile),
			Confidence: scoring.Confidence(in, profile),
			Note:       scoring.ExplainTop(in, profile),
		}
		rec.Reason = scoring.ComposeReason(rec, site.SlopeDeg, site.AspectDeg)
		records = append(records, rec)
	}

	a.finish(op, runID, start, len(sites), len(records), nil)
	return records, nil
}

// Extraction is a candidate search result with the parameters the
// search ran under.
type Extraction struct {
	Selected    []candidate.Candidate
	Spacing     float64
	Recommended int
	Kept        int
	Scanned     int
}

// ExtractCandidates scans the DEM for sheltered hollow sites, keeping
// at most the requested count after spatial suppression. A requested
// count above the DEM's recommended maximum is clamped down.
func (a *Analyzer) ExtractCandidates(ctx context.Context, req Request, requested int) (Extraction, error) {
	const op = "extract_candidates"
	runID := uuid.NewString()
	start := time.Now()

	samples0, nodata0 := a.sampler.Counts()
	defer func() { a.recordSamples(samples0, nodata0) }()

	cctx, card := a.context(req)
	searcher := candidate.NewSearcher(a.terrain, a.dem, a.catalog.Rules.Candidate)
	spacing := searcher.Spacing()
	recommended := searcher.RecommendedCount(spacing)
	keep := candidate.EffectiveKeep(requested, recommended)
	a.log.Info("extracting candidates",
		logging.Operation(op), logging.RunID(runID),
		logging.Spacing(spacing), logging.Int("requested", requested),
		logging.Int("recommended", recommended), logging.Int("keep", keep))

	all, err := searcher.Collect(ctx, cctx, card, spacing)
	if err != nil {
		a.finish(op, runID, start, 0, 0, err)
		return Extraction{}, err
	}
	selected := candidate.Suppress(all, candidate.SuppressDistance(spacing, keep), keep)
	for rank, c := range selected {
		a.log.Debug("candidate kept",
			logging.RunID(runID), logging.CandidateRank(rank+1),
			logging.Float64("score", c.Score))
	}

	a.finish(op, runID, start, len(all), len(selected), nil)
	return Extraction{
		Selected:    selected,
		Spacing:     spacing,
		Recommended: recommended,
		Kept:        len(selected),
		Scanned:     len(all),
	}, nil
}

// TermSet is the landmark layer derived for one extraction: the
// landmarks themselves plus the structural links between them.
type TermSet struct {
	Landmarks  []terms.Landmark
	Links      []terms.Link
	Extraction Extraction
}

// DeriveTerms extracts candidate sites and derives the landmark
// catalog and its structural links around each kept site.
func (a *Analyzer) DeriveTerms(ctx context.Context, req Request, requested int) (TermSet, error) {
	const op = "derive_terms"
	runID := uuid.NewString()
	start := time.Now()

	extraction, err := a.ExtractCandidates(ctx, req, requested)
	if err != nil {
		a.finish(op, runID, start, 0, 0, err)
		return TermSet{}, err
	}

	samples0, nodata0 := a.sampler.Counts()
	defer func() { a.recordSamples(samples0, nodata0) }()

	cctx, card := a.context(req)
	deriver := terms.NewDeriver(a.sampler, a.catalog.Terms, a.step)
	landmarks := deriver.Derive(extraction.Selected, card, cctx)
	links := terms.BuildLinks(landmarks, a.catalog.Terms)

	a.finish(op, runID, start, extraction.Scanned, len(landmarks)+len(links), nil)
	return TermSet{Landmarks: landmarks, Links: links, Extraction: extraction}, nil
}

// BuildHydroNetwork derives the drainage network from the DEM. Small
// or flat rasters yield an empty network, not an error.
func (a *Analyzer) BuildHydroNetwork(ctx context.Context) (*hydro.Network, error) {
	const op = "hydro_network"
	runID := uuid.NewString()
	start := time.Now()

	net, err := hydro.Build(ctx, a.dem)
	if err != nil {
		a.finish(op, runID, start, 0, 0, err)
		return nil, err
	}
	a.registry.SetLatticeNodes("hydro", net.Params.NodeCount)
	a.finish(op, runID, start, net.Params.NodeCount, len(net.Streams), nil)
	return net, nil
}

// BuildRidgeNetwork derives the ridge-line network from the DEM. Small
// or flat rasters yield an empty network, not an error.
func (a *Analyzer) BuildRidgeNetwork(ctx context.Context) (*ridge.Network, error) {
	const op = "ridge_network"
	runID := uuid.NewString()
	start := time.Now()

	net, err := ridge.Build(ctx, a.dem)
	if err != nil {
		a.finish(op, runID, start, 0, 0, err)
		return nil, err
	}
	a.registry.SetLatticeNodes("ridge", net.Params.NodeCount)
	a.finish(op, runID, start, net.Params.NodeCount, len(net.Ridges), nil)
	return net, nil
}
