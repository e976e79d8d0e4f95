package vector

import (
	"math"
	"sort"

	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/optional"
)

// Feature is a geometry with a caller-assigned id.
type Feature struct {
	ID   int
	Geom Geometry
}

// Index is a nearest-neighbor index over a fixed feature set, built
// once and queried read-only. Feature centroids are bucketed on a
// uniform grid; queries expand outward ring by ring until enough
// candidates are found.
type Index struct {
	features []Feature
	cellSize float64
	minX     float64
	minY     float64
	cols     int
	rows     int
	buckets  map[int][]int // bucket index -> feature offsets
}

// NewIndex builds an index over the features. Returns nil for an
// empty set; callers treat a nil index as "no features".
func NewIndex(features []Feature) *Index {
	if len(features) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, f := range features {
		c := f.Geom.Centroid()
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}

	// Aim for roughly one feature per cell.
	span := math.Max(maxX-minX, maxY-minY)
	cellSize := span / math.Max(1, math.Sqrt(float64(len(features))))
	if cellSize <= 0 {
		cellSize = 1
	}

	idx := &Index{
		features: features,
		cellSize: cellSize,
		minX:     minX,
		minY:     minY,
		cols:     int((maxX-minX)/cellSize) + 1,
		rows:     int((maxY-minY)/cellSize) + 1,
		buckets:  make(map[int][]int),
	}
	for i, f := range features {
		b := idx.bucketOf(f.Geom.Centroid())
		idx.buckets[b] = append(idx.buckets[b], i)
	}
	return idx
}

func (idx *Index) bucketOf(p geom.Point) int {
	col := optional.Clamp(int((p.X-idx.minX)/idx.cellSize), 0, idx.cols-1)
	row := optional.Clamp(int((p.Y-idx.minY)/idx.cellSize), 0, idx.rows-1)
	return row*idx.cols + col
}

// NearestNeighbors returns up to k feature offsets ordered by
// centroid distance to p.
func (idx *Index) NearestNeighbors(p geom.Point, k int) []int {
	if idx == nil || k <= 0 {
		return nil
	}
	col := optional.Clamp(int((p.X-idx.minX)/idx.cellSize), 0, idx.cols-1)
	row := optional.Clamp(int((p.Y-idx.minY)/idx.cellSize), 0, idx.rows-1)

	var found []int
	maxRing := idx.cols
	if idx.rows > maxRing {
		maxRing = idx.rows
	}
	for ring := 0; ring <= maxRing; ring++ {
		for r := row - ring; r <= row+ring; r++ {
			for c := col - ring; c <= col+ring; c++ {
				if r < 0 || r >= idx.rows || c < 0 || c >= idx.cols {
					continue
				}
				// Only the ring boundary is new at this radius.
				if ring > 0 && r != row-ring && r != row+ring && c != col-ring && c != col+ring {
					continue
				}
				found = append(found, idx.buckets[r*idx.cols+c]...)
			}
		}
		// One extra ring after reaching k guards against a nearer
		// centroid sitting just across a cell boundary.
		if len(found) >= k && ring >= 1 {
			break
		}
	}

	sort.Slice(found, func(i, j int) bool {
		di := idx.features[found[i]].Geom.Centroid().DistanceTo(p)
		dj := idx.features[found[j]].Geom.Centroid().DistanceTo(p)
		if di != dj {
			return di < dj
		}
		return idx.features[found[i]].ID < idx.features[found[j]].ID
	})
	if len(found) > k {
		found = found[:k]
	}
	return found
}

// NearestDistance returns the exact distance from p to the closest of
// the k nearest-by-centroid features. Absent when the index is empty.
func (idx *Index) NearestDistance(p geom.Point, k int) optional.Float {
	if idx == nil {
		return optional.None()
	}
	offsets := idx.NearestNeighbors(p, k)
	if len(offsets) == 0 {
		return optional.None()
	}
	best := math.Inf(1)
	for _, off := range offsets {
		if d := idx.features[off].Geom.DistanceTo(p); d < best {
			best = d
		}
	}
	return optional.Some(best)
}
