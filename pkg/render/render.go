// Package render rasterizes analysis results to PNG images with a
// simple planar projection: elevation shading, stream and ridge
// networks, landmark points, and structural links.
package render

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/hydro"
	"github.com/jparkgeo/pungsu/pkg/parallel"
	"github.com/jparkgeo/pungsu/pkg/raster"
	"github.com/jparkgeo/pungsu/pkg/ridge"
	"github.com/jparkgeo/pungsu/pkg/terms"
)

// lineStyle pairs a hex color with a stroke width and opacity.
type lineStyle struct {
	color   string
	width   float64
	opacity float64
}

// hydroStyles maps stream classes to their draw style.
var hydroStyles = map[string]lineStyle{
	hydro.ClassMain:      {"#0b3d91", 1.6, 0.48},
	hydro.ClassSecondary: {"#1456b8", 1.2, 0.40},
	hydro.ClassBranch:    {"#2b7bd8", 0.9, 0.32},
	hydro.ClassMinor:     {"#63a5ff", 0.7, 0.24},
}

var hydroFallback = lineStyle{"#5f93d2", 0.6, 0.20}

// ridgeStyles maps ridge classes to their draw style.
var ridgeStyles = map[string]lineStyle{
	ridge.ClassDaegan:    {"#000000", 3.8, 0.55},
	ridge.ClassJeongmaek: {"#171717", 3.0, 0.45},
	ridge.ClassGimaek:    {"#292929", 2.2, 0.36},
	ridge.ClassJimaek:    {"#404040", 1.5, 0.28},
}

var ridgeFallback = lineStyle{"#3d3d3d", 1.3, 0.24}

// pointStyle describes a landmark marker.
type pointStyle struct {
	fill   string
	size   float64
	stroke string
}

// termStyles maps landmark term ids to marker styles. The core point
// and its court draw largest; supporting landmarks stay subdued.
var termStyles = map[string]pointStyle{
	"hyeol":          {"#d7263d", 7.0, "#5c0a14"},
	"myeongdang":     {"#f4a259", 6.0, "#8a4b14"},
	"jusan":          {"#2a6f4e", 4.5, "#143726"},
	"dunoe":          {"#3e8e68", 4.0, "#1d4733"},
	"jojongsan":      {"#1d5c3c", 4.5, "#0e2e1e"},
	"naecheongnyong": {"#2e6fb0", 4.0, "#16375a"},
	"oecheongnyong":  {"#5b93c9", 4.0, "#2d4a66"},
	"naebaekho":      {"#8e68b0", 4.0, "#47345a"},
	"oebaekho":       {"#b195cc", 4.0, "#584a66"},
	"ansan":          {"#c77f3b", 4.0, "#643f1d"},
	"josan":          {"#a2672e", 4.0, "#513317"},
	"naesugu":        {"#2b7bd8", 4.0, "#153d6c"},
	"oesugu":         {"#63a5ff", 4.0, "#315280"},
	"ipsu":           {"#0b3d91", 4.0, "#051e48"},
	"misa":           {"#d8c46a", 4.0, "#6c6235"},
}

var termFallback = pointStyle{"#cccccc", 3.5, "#555555"}

// Canvas projects planar coordinates onto an image and draws features.
type Canvas struct {
	ctx    *gg.Context
	ext    raster.Extent
	scale  float64
	height float64
}

// NewCanvas creates a canvas of the given pixel width covering the
// extent; height follows the extent aspect ratio.
func NewCanvas(ext raster.Extent, width int) (*Canvas, error) {
	if ext.Width() <= 0 || ext.Height() <= 0 {
		return nil, fmt.Errorf("render canvas: empty extent")
	}
	if width < 16 {
		width = 16
	}
	scale := float64(width) / ext.Width()
	height := ext.Height() * scale
	ctx := gg.NewContext(width, int(height+0.5))
	ctx.SetColor(color.White)
	ctx.Clear()
	return &Canvas{ctx: ctx, ext: ext, scale: scale, height: height}, nil
}

// project maps a planar point to pixel coordinates, flipping Y so
// north is up.
func (c *Canvas) project(p geom.Point) (float64, float64) {
	return (p.X - c.ext.MinX) * c.scale, c.height - (p.Y-c.ext.MinY)*c.scale
}

// DrawElevation shades the DEM in grayscale, light high and dark low.
// Pixel rows are sampled in parallel, then painted in order.
func (c *Canvas) DrawElevation(dem raster.Provider) {
	w := c.ctx.Width()
	h := c.ctx.Height()

	sampleRow := func(py int) []float64 {
		row := make([]float64, w)
		y := c.ext.MinY + (c.height-float64(py)-0.5)/c.scale
		for px := 0; px < w; px++ {
			x := c.ext.MinX + (float64(px)+0.5)/c.scale
			if v, ok := dem.Sample(geom.Pt(x, y)); ok {
				row[px] = v
			} else {
				row[px] = math.NaN()
			}
		}
		return row
	}
	rows, _ := parallel.MapOrdered(context.Background(), h, 0, func(py int) ([]float64, error) {
		return sampleRow(py), nil
	})

	lo, hi := 0.0, 0.0
	first := true
	for _, row := range rows {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if first || v < lo {
				lo = v
			}
			if first || v > hi {
				hi = v
			}
			first = false
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	for py, row := range rows {
		for px, v := range row {
			if math.IsNaN(v) {
				continue
			}
			shade := 0.35 + 0.55*(v-lo)/span
			c.ctx.SetRGB(shade, shade, shade*0.96)
			c.ctx.SetPixel(px, py)
		}
	}
}

func (c *Canvas) strokePath(points []geom.Point, style lineStyle) {
	if len(points) < 2 {
		return
	}
	c.setHexWithAlpha(style.color, style.opacity)
	c.ctx.SetLineWidth(style.width)
	x, y := c.project(points[0])
	c.ctx.MoveTo(x, y)
	for _, p := range points[1:] {
		x, y = c.project(p)
		c.ctx.LineTo(x, y)
	}
	c.ctx.Stroke()
}

// setHexWithAlpha sets the draw color from a hex string with an
// explicit opacity.
func (c *Canvas) setHexWithAlpha(hex string, opacity float64) {
	var r, g, b int
	fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	c.ctx.SetRGBA(float64(r)/255, float64(g)/255, float64(b)/255, opacity)
}

// DrawHydro strokes every stream in its class style.
func (c *Canvas) DrawHydro(net *hydro.Network) {
	if net == nil {
		return
	}
	for _, s := range net.Streams {
		style, ok := hydroStyles[s.Class]
		if !ok {
			style = hydroFallback
		}
		c.strokePath(s.Path, style)
	}
}

// DrawRidges strokes every ridge in its class style, weakest classes
// first so the main lines draw on top.
func (c *Canvas) DrawRidges(net *ridge.Network) {
	if net == nil {
		return
	}
	for i := len(net.Ridges) - 1; i >= 0; i-- {
		r := net.Ridges[i]
		style, ok := ridgeStyles[r.Class]
		if !ok {
			style = ridgeFallback
		}
		c.strokePath(r.Path, style)
	}
}

// DrawLinks strokes the structural links under the landmark markers.
func (c *Canvas) DrawLinks(links []terms.Link) {
	for _, l := range links {
		style, ok := termStyles[l.StyleID]
		width := 1.4
		hex := "#777777"
		if ok {
			hex = style.fill
		}
		c.strokePath(l.Path, lineStyle{hex, width, 0.38})
	}
}

// DrawLandmarks draws every landmark as a filled circle with an
// outline, core points largest.
func (c *Canvas) DrawLandmarks(landmarks []terms.Landmark) {
	for _, l := range landmarks {
		style, ok := termStyles[l.TermID]
		if !ok {
			style = termFallback
		}
		x, y := c.project(l.Point)
		c.setHexWithAlpha(style.fill, 0.9)
		c.ctx.DrawCircle(x, y, style.size)
		c.ctx.FillPreserve()
		c.setHexWithAlpha(style.stroke, 0.95)
		c.ctx.SetLineWidth(1.0)
		c.ctx.Stroke()
	}
}

// Image returns the rendered image context.
func (c *Canvas) Image() *gg.Context { return c.ctx }

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	if err := c.ctx.SavePNG(path); err != nil {
		return fmt.Errorf("render save: %w", err)
	}
	return nil
}
