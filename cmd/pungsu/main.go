// Command pungsu runs terrain-suitability analysis over an ASCII-grid
// DEM: site scoring, candidate extraction with landmark derivation,
// and drainage/ridge network building, with optional PNG map output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/engine"
	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/logging"
	"github.com/jparkgeo/pungsu/pkg/optional"
	"github.com/jparkgeo/pungsu/pkg/raster"
	"github.com/jparkgeo/pungsu/pkg/render"
	"github.com/jparkgeo/pungsu/pkg/vector"
)

// siteInput is one row of the -sites JSON file.
type siteInput struct {
	ID        int            `json:"id"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	SlopeDeg  optional.Float `json:"slope_deg"`
	AspectDeg optional.Float `json:"aspect_deg"`
}

// waterInput is one polyline of the -water JSON file.
type waterInput struct {
	ID     int          `json:"id"`
	Points [][2]float64 `json:"points"`
}

func main() {
	demPath := flag.String("dem", "", "ASCII-grid DEM path (required)")
	ops := flag.String("ops", "terms,hydro,ridge", "comma-separated operations: score,terms,hydro,ridge")
	culture := flag.String("culture", config.BaseCultureKey, "culture key")
	period := flag.String("period", config.BasePeriodKey, "period key")
	hemisphere := flag.String("hemisphere", "north", "hemisphere: north or south")
	profile := flag.String("profile", "general", "scoring profile key")
	sitesPath := flag.String("sites", "", "sites JSON path (required for score)")
	waterPath := flag.String("water", "", "water polylines JSON path")
	configPath := flag.String("config", "", "YAML config overlay path")
	outDir := flag.String("out", ".", "output directory")
	keep := flag.Int("keep", 3, "candidate sites to keep for terms")
	mapPath := flag.String("map", "", "write a PNG map to this path")
	mapWidth := flag.Int("map-width", 1200, "PNG map width in pixels")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if *demPath == "" {
		fmt.Fprintln(os.Stderr, "❌ -dem is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(*logLevel))

	catalog, err := config.LoadCatalog(*configPath)
	if err != nil {
		fail("load config: %v", err)
	}

	fmt.Printf("📂 Loading DEM %s...\n", *demPath)
	dem, err := raster.LoadASCIIGrid(*demPath)
	if err != nil {
		fail("load DEM: %v", err)
	}
	ext := dem.Extent()
	fmt.Printf("✅ DEM loaded: %dx%d cells, extent %.0fx%.0f m\n",
		dem.Cols(), dem.Rows(), ext.Width(), ext.Height())

	analyzer, err := engine.New(dem, catalog, engine.Options{Logger: logger})
	if err != nil {
		fail("init engine: %v", err)
	}

	req := engine.Request{
		Culture:    *culture,
		Period:     *period,
		Hemisphere: config.Hemisphere(*hemisphere),
		Profile:    *profile,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fail("create output dir: %v", err)
	}

	var canvas *render.Canvas
	if *mapPath != "" {
		canvas, err = render.NewCanvas(ext, *mapWidth)
		if err != nil {
			fail("init map canvas: %v", err)
		}
		canvas.DrawElevation(dem)
	}

	for _, op := range strings.Split(*ops, ",") {
		switch strings.TrimSpace(op) {
		case "score":
			runScore(ctx, analyzer, req, *sitesPath, *waterPath, *outDir)
		case "terms":
			runTerms(ctx, analyzer, req, *keep, *outDir, canvas)
		case "hydro":
			runHydro(ctx, analyzer, *outDir, canvas)
		case "ridge":
			runRidge(ctx, analyzer, *outDir, canvas)
		case "":
		default:
			fail("unknown operation %q", op)
		}
	}

	if canvas != nil {
		if err := canvas.SavePNG(*mapPath); err != nil {
			fail("write map: %v", err)
		}
		fmt.Printf("🗺️  Map written to %s\n", *mapPath)
	}
}

func runScore(ctx context.Context, analyzer *engine.Analyzer, req engine.Request, sitesPath, waterPath, outDir string) {
	if sitesPath == "" {
		fail("-sites is required for the score operation")
	}
	var rawSites []siteInput
	if err := readJSON(sitesPath, &rawSites); err != nil {
		fail("load sites: %v", err)
	}
	sites := make([]vector.SiteFeature, len(rawSites))
	for i, s := range rawSites {
		sites[i] = vector.SiteFeature{
			ID:        s.ID,
			Point:     geom.Pt(s.X, s.Y),
			SlopeDeg:  s.SlopeDeg,
			AspectDeg: s.AspectDeg,
		}
	}

	var water []vector.Feature
	if waterPath != "" {
		var rawWater []waterInput
		if err := readJSON(waterPath, &rawWater); err != nil {
			fail("load water: %v", err)
		}
		for _, w := range rawWater {
			points := make([]geom.Point, len(w.Points))
			for i, p := range w.Points {
				points[i] = geom.Pt(p[0], p[1])
			}
			water = append(water, vector.Feature{ID: w.ID, Geom: vector.LineString{Points: points}})
		}
	}

	records, err := analyzer.ScoreSites(ctx, req, sites, water)
	if err != nil {
		fail("score sites: %v", err)
	}
	writeJSON(filepath.Join(outDir, "site_scores.json"), records)
	fmt.Printf("✅ Scored %d sites\n", len(records))
}

func runTerms(ctx context.Context, analyzer *engine.Analyzer, req engine.Request, keep int, outDir string, canvas *render.Canvas) {
	set, err := analyzer.DeriveTerms(ctx, req, keep)
	if err != nil {
		fail("derive terms: %v", err)
	}
	writeJSON(filepath.Join(outDir, "terms.json"), set.Landmarks)
	writeJSON(filepath.Join(outDir, "term_links.json"), set.Links)
	fmt.Printf("✅ Derived %d landmarks and %d links for %d sites\n",
		len(set.Landmarks), len(set.Links), set.Extraction.Kept)
	if canvas != nil {
		canvas.DrawLinks(set.Links)
		canvas.DrawLandmarks(set.Landmarks)
	}
}

func runHydro(ctx context.Context, analyzer *engine.Analyzer, outDir string, canvas *render.Canvas) {
	net, err := analyzer.BuildHydroNetwork(ctx)
	if err != nil {
		fail("hydro network: %v", err)
	}
	writeJSON(filepath.Join(outDir, "hydro_network.json"), net)
	fmt.Printf("✅ Drainage network: %d streams\n", len(net.Streams))
	if canvas != nil {
		canvas.DrawHydro(net)
	}
}

func runRidge(ctx context.Context, analyzer *engine.Analyzer, outDir string, canvas *render.Canvas) {
	net, err := analyzer.BuildRidgeNetwork(ctx)
	if err != nil {
		fail("ridge network: %v", err)
	}
	writeJSON(filepath.Join(outDir, "ridge_network.json"), net)
	fmt.Printf("✅ Ridge network: %d ridges\n", len(net.Ridges))
	if canvas != nil {
		canvas.DrawRidges(net)
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail("encode %s: %v", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		fail("write %s: %v", path, err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	os.Exit(1)
}
