package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/hydro"
	"github.com/jparkgeo/pungsu/pkg/raster"
	"github.com/jparkgeo/pungsu/pkg/ridge"
	"github.com/jparkgeo/pungsu/pkg/terms"
)

func testExtent() raster.Extent {
	return raster.Extent{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 500}
}

func TestNewCanvasDimensions(t *testing.T) {
	c, err := NewCanvas(testExtent(), 400)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	img := c.Image()
	if img.Width() != 400 {
		t.Errorf("width = %d, want 400", img.Width())
	}
	if img.Height() != 200 {
		t.Errorf("height = %d, want 200", img.Height())
	}
}

func TestNewCanvasEmptyExtent(t *testing.T) {
	_, err := NewCanvas(raster.Extent{MinX: 10, MinY: 10, MaxX: 10, MaxY: 50}, 400)
	if err == nil {
		t.Fatal("expected error for empty extent")
	}
}

func TestNewCanvasMinimumWidth(t *testing.T) {
	c, err := NewCanvas(testExtent(), 2)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	if c.Image().Width() < 16 {
		t.Errorf("width = %d, want >= 16", c.Image().Width())
	}
}

func TestProjectFlipsY(t *testing.T) {
	c, err := NewCanvas(testExtent(), 400)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}

	// Southwest corner maps to the bottom-left pixel.
	x, y := c.project(geom.Pt(0, 0))
	if x != 0 {
		t.Errorf("x = %v, want 0", x)
	}
	if y != 200 {
		t.Errorf("y = %v, want 200", y)
	}

	// Northeast corner maps to the top-right pixel.
	x, y = c.project(geom.Pt(1000, 500))
	if x != 400 {
		t.Errorf("x = %v, want 400", x)
	}
	if y != 0 {
		t.Errorf("y = %v, want 0", y)
	}
}

func TestDrawHydroChangesPixels(t *testing.T) {
	c, err := NewCanvas(testExtent(), 400)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	before := c.Image().Image().At(200, 100)

	net := &hydro.Network{Streams: []hydro.Stream{
		{
			ID:    1,
			Class: hydro.ClassMain,
			Path:  []geom.Point{geom.Pt(100, 250), geom.Pt(900, 250)},
		},
	}}
	c.DrawHydro(net)

	after := c.Image().Image().At(200, 100)
	if before == after {
		t.Error("main stream did not change the pixel it crosses")
	}
}

func TestDrawHydroNilNetwork(t *testing.T) {
	c, err := NewCanvas(testExtent(), 400)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	c.DrawHydro(nil)
	c.DrawRidges(nil)
}

func TestDrawRidgesUnknownClassFallback(t *testing.T) {
	c, err := NewCanvas(testExtent(), 400)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	before := c.Image().Image().At(200, 40)

	net := &ridge.Network{Ridges: []ridge.Ridge{
		{
			ID:    1,
			Class: "unclassified",
			Path:  []geom.Point{geom.Pt(100, 400), geom.Pt(900, 400)},
		},
	}}
	c.DrawRidges(net)

	after := c.Image().Image().At(200, 40)
	if before == after {
		t.Error("fallback ridge style did not draw")
	}
}

func TestDrawLandmarksAndLinks(t *testing.T) {
	c, err := NewCanvas(testExtent(), 400)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}

	landmarks := []terms.Landmark{
		{TermID: "hyeol", Point: geom.Pt(500, 250)},
		{TermID: "jusan", Point: geom.Pt(500, 400)},
		{TermID: "unknown-term", Point: geom.Pt(200, 100)},
	}
	links := []terms.Link{
		{
			StyleID: "jusan",
			Path:    []geom.Point{geom.Pt(500, 400), geom.Pt(500, 250)},
		},
		{
			StyleID: "not-in-catalog",
			Path:    []geom.Point{geom.Pt(200, 100), geom.Pt(500, 250)},
		},
	}
	c.DrawLinks(links)
	c.DrawLandmarks(landmarks)

	// The core marker covers its pixel.
	r, g, b, _ := c.Image().Image().At(200, 100).RGBA()
	if r == g && g == b && r>>8 == 255 {
		t.Error("landmark pixel still background white")
	}
}

func TestDrawElevation(t *testing.T) {
	dem := raster.NewMemDEM(0, 0, 50, 20, 10)
	for col := 0; col < 20; col++ {
		for row := 0; row < 10; row++ {
			dem.Set(col, row, float64(col)*10)
		}
	}
	c, err := NewCanvas(dem.Extent(), 200)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	c.DrawElevation(dem)

	// Low west side must shade darker than the high east side.
	lr, _, _, _ := c.Image().Image().At(10, 50).RGBA()
	hr, _, _, _ := c.Image().Image().At(190, 50).RGBA()
	if lr >= hr {
		t.Errorf("west shade %d not darker than east shade %d", lr>>8, hr>>8)
	}
}

func TestSavePNG(t *testing.T) {
	c, err := NewCanvas(testExtent(), 100)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.png")
	if err := c.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("saved PNG is empty")
	}
}
