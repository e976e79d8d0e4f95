// Package geom provides the small planar geometry vocabulary used by
// the analysis engine: points in a locally Euclidean, meter-based
// coordinate system, compass azimuths (degrees, 0 = grid north,
// increasing clockwise), and polyline helpers.
package geom

import (
	"math"

	"github.com/golang/geo/r2"
)

// Point is a planar coordinate in meters.
type Point struct {
	X float64
	Y float64
}

// Pt constructs a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec returns the point as an r2 vector for vector arithmetic.
func (p Point) Vec() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// FromVec converts an r2 vector back to a Point.
func FromVec(v r2.Point) Point {
	return Point{X: v.X, Y: v.Y}
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(q Point) float64 {
	return p.Vec().Sub(q.Vec()).Norm()
}

// Equal reports exact coordinate equality.
func (p Point) Equal(q Point) bool {
	return p.X == q.X && p.Y == q.Y
}

// Offset returns the point displaced by distance meters along the
// given azimuth. Azimuth 0 points along +Y and increases clockwise,
// so east (+X) is 90.
func (p Point) Offset(distance, azimuthDeg float64) Point {
	rad := azimuthDeg * math.Pi / 180.0
	return Point{
		X: p.X + distance*math.Sin(rad),
		Y: p.Y + distance*math.Cos(rad),
	}
}

// AzimuthTo returns the compass azimuth from p toward q in [0, 360).
func (p Point) AzimuthTo(q Point) float64 {
	dx := q.X - p.X
	dy := q.Y - p.Y
	deg := math.Atan2(dx, dy) * 180.0 / math.Pi
	return math.Mod(deg+360.0, 360.0)
}

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	return FromVec(p.Vec().Add(q.Vec()).Mul(0.5))
}

// AngularDiff returns the absolute difference between two azimuths,
// wrapped so the result lies in [0, 180].
func AngularDiff(a, b float64) float64 {
	d := math.Mod(a-b+180.0, 360.0)
	if d < 0 {
		d += 360.0
	}
	return math.Abs(d - 180.0)
}
