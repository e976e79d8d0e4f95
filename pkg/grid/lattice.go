// Package grid builds regular sampling lattices over a DEM. Network
// builders walk these lattices instead of the raw raster so their cost
// is bounded by a node cap rather than by raster resolution.
package grid

import (
	"context"
	"fmt"
	"math"

	"github.com/boljen/go-bitmap"

	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/raster"
)

// Key identifies a lattice cell by column and row.
type Key struct {
	Col int
	Row int
}

// Node is one lattice cell that sampled a valid elevation.
type Node struct {
	Key   Key
	Point geom.Point
	Elev  float64
}

// Lattice holds the sampled nodes of a regular grid laid over a DEM
// extent. Cells whose sample fell on nodata are absent; presence is
// tracked in a bitmap so neighbor lookups stay cheap.
type Lattice struct {
	spacing float64
	cols    int
	rows    int
	present bitmap.Bitmap
	index   []int32
	nodes   []Node
	elevMin float64
	elevMax float64
}

// neighborOffsets is the 8-neighborhood used by every lattice walk.
var neighborOffsets = [8]Key{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Build samples a lattice at the given spacing. Cell centers start at
// extent minimum plus half a spacing on each axis. A lattice narrower
// than two columns or rows comes back empty, not as an error.
func Build(ctx context.Context, dem raster.Provider, spacing float64) (*Lattice, error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("build lattice: spacing %v must be positive", spacing)
	}
	ext := dem.Extent()

	var xs, ys []float64
	for x := ext.MinX + spacing*0.5; x < ext.MaxX; x += spacing {
		xs = append(xs, x)
	}
	for y := ext.MinY + spacing*0.5; y < ext.MaxY; y += spacing {
		ys = append(ys, y)
	}

	lat := &Lattice{
		spacing: spacing,
		cols:    len(xs),
		rows:    len(ys),
		elevMin: math.Inf(1),
		elevMax: math.Inf(-1),
	}
	if lat.cols < 2 || lat.rows < 2 {
		return lat, nil
	}

	total := lat.cols * lat.rows
	lat.present = bitmap.New(total)
	lat.index = make([]int32, total)
	for i := range lat.index {
		lat.index[i] = -1
	}

	for col, x := range xs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build lattice: %w", err)
		}
		for row, y := range ys {
			p := geom.Pt(x, y)
			elev, ok := dem.Sample(p)
			if !ok {
				continue
			}
			cell := col*lat.rows + row
			lat.present.Set(cell, true)
			lat.index[cell] = int32(len(lat.nodes))
			lat.nodes = append(lat.nodes, Node{Key: Key{col, row}, Point: p, Elev: elev})
			if elev < lat.elevMin {
				lat.elevMin = elev
			}
			if elev > lat.elevMax {
				lat.elevMax = elev
			}
		}
	}
	return lat, nil
}

// Spacing returns the cell spacing in map units.
func (l *Lattice) Spacing() float64 { return l.spacing }

// Cols returns the lattice column count.
func (l *Lattice) Cols() int { return l.cols }

// Rows returns the lattice row count.
func (l *Lattice) Rows() int { return l.rows }

// Len returns the number of present nodes.
func (l *Lattice) Len() int { return len(l.nodes) }

// Nodes returns all present nodes in column-major build order. The
// slice is shared; callers must not mutate it.
func (l *Lattice) Nodes() []Node { return l.nodes }

// Has reports whether the cell sampled a valid elevation.
func (l *Lattice) Has(k Key) bool {
	if k.Col < 0 || k.Col >= l.cols || k.Row < 0 || k.Row >= l.rows {
		return false
	}
	return l.present.Get(k.Col*l.rows + k.Row)
}

// At returns the node at a cell, if present.
func (l *Lattice) At(k Key) (Node, bool) {
	if !l.Has(k) {
		return Node{}, false
	}
	return l.nodes[l.index[k.Col*l.rows+k.Row]], true
}

// Neighbors appends the present 8-neighborhood of a cell to dst and
// returns it. Pass a reused slice to avoid per-call allocation.
func (l *Lattice) Neighbors(k Key, dst []Node) []Node {
	for _, off := range neighborOffsets {
		if n, ok := l.At(Key{k.Col + off.Col, k.Row + off.Row}); ok {
			dst = append(dst, n)
		}
	}
	return dst
}

// ElevRange returns the min and max sampled elevation. Both are
// infinities when the lattice is empty.
func (l *Lattice) ElevRange() (min, max float64) { return l.elevMin, l.elevMax }

// ElevSpan returns the elevation range floored at 1e-6 so ratio
// computations never divide by zero.
func (l *Lattice) ElevSpan() float64 {
	span := l.elevMax - l.elevMin
	if !(span > 1e-6) {
		return 1e-6
	}
	return span
}

// CellCount returns the lattice dimensions a spacing implies for an
// extent, each at least 1.
func CellCount(ext raster.Extent, spacing float64) (cols, rows int) {
	cols = int(ext.Width()/spacing) + 1
	rows = int(ext.Height()/spacing) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// CapSpacing widens a spacing until the implied cell count fits under
// maxCells.
func CapSpacing(ext raster.Extent, spacing float64, maxCells int) float64 {
	cols, rows := CellCount(ext, spacing)
	total := cols * rows
	if total > maxCells {
		spacing *= math.Sqrt(float64(total) / float64(maxCells))
	}
	return spacing
}

// CoarseSpacing is the base analysis spacing: ten DEM steps or 1/180th
// of the shorter extent side, whichever is larger, capped at 12000
// cells.
func CoarseSpacing(ext raster.Extent, step float64) float64 {
	minSpan := math.Min(ext.Width(), ext.Height())
	spacing := math.Max(step*10.0, minSpan/180.0)
	if spacing <= 0 {
		return math.Max(step*10.0, 1.0)
	}
	return CapSpacing(ext, spacing, 12000)
}
