// Package vector provides the engine's minimal vector geometry store:
// point and polyline geometries, site features, and a bucketed
// nearest-neighbor index used for distance-to-water queries.
package vector

import (
	"math"

	"github.com/jparkgeo/pungsu/pkg/geom"
)

// Geometry is anything a site point can measure distance to.
type Geometry interface {
	// DistanceTo returns the Euclidean distance from p to the geometry.
	DistanceTo(p geom.Point) float64
	// Centroid returns a representative point for coarse indexing.
	Centroid() geom.Point
}

// PointGeom is a single point geometry.
type PointGeom struct {
	P geom.Point
}

func (g PointGeom) DistanceTo(p geom.Point) float64 { return p.DistanceTo(g.P) }
func (g PointGeom) Centroid() geom.Point            { return g.P }

// LineString is an open polyline geometry.
type LineString struct {
	Points []geom.Point
}

// DistanceTo returns the distance from p to the nearest segment.
func (g LineString) DistanceTo(p geom.Point) float64 {
	if len(g.Points) == 0 {
		return math.Inf(1)
	}
	if len(g.Points) == 1 {
		return p.DistanceTo(g.Points[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(g.Points); i++ {
		if d := segmentDistance(p, g.Points[i-1], g.Points[i]); d < best {
			best = d
		}
	}
	return best
}

// Centroid returns the midpoint of the polyline's vertices.
func (g LineString) Centroid() geom.Point {
	if len(g.Points) == 0 {
		return geom.Point{}
	}
	sx, sy := 0.0, 0.0
	for _, p := range g.Points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(g.Points))
	return geom.Pt(sx/n, sy/n)
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b geom.Point) float64 {
	ab := b.Vec().Sub(a.Vec())
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.DistanceTo(a)
	}
	t := p.Vec().Sub(a.Vec()).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a.Vec().Add(ab.Mul(t))
	return p.Vec().Sub(closest).Norm()
}
