// Package raster defines the elevation access boundary the analysis
// engine consumes: point sampling with an ok flag, pixel resolution,
// and the raster extent. It also provides an in-memory DEM used by
// tests and by the ASCII-grid loader.
package raster

import (
	"github.com/jparkgeo/pungsu/pkg/geom"
)

// Extent is an axis-aligned bounding box in planar coordinates.
type Extent struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Width returns the X span of the extent.
func (e Extent) Width() float64 { return e.MaxX - e.MinX }

// Height returns the Y span of the extent.
func (e Extent) Height() float64 { return e.MaxY - e.MinY }

// Contains reports whether the point lies inside the extent.
func (e Extent) Contains(p geom.Point) bool {
	return p.X >= e.MinX && p.X < e.MaxX && p.Y >= e.MinY && p.Y < e.MaxY
}

// Provider is the narrow elevation interface the engine samples
// through. Sample returns ok=false for points outside the raster or
// at nodata cells; that absence propagates as a missing value through
// every downstream metric.
type Provider interface {
	Sample(p geom.Point) (elevation float64, ok bool)
	PixelSizeX() float64
	PixelSizeY() float64
	Extent() Extent
}

// Step returns the characteristic sampling step of a provider: the
// larger of the pixel sizes, floored at 1 so ring radii stay usable
// on degenerate rasters.
func Step(p Provider) float64 {
	sx := p.PixelSizeX()
	if sx < 0 {
		sx = -sx
	}
	sy := p.PixelSizeY()
	if sy < 0 {
		sy = -sy
	}
	step := sx
	if sy > step {
		step = sy
	}
	if step <= 0 {
		return 1.0
	}
	return step
}
