package raster

import (
	"math"

	"github.com/jparkgeo/pungsu/pkg/geom"
)

// MemDEM is an in-memory elevation grid. Cells are square, stored
// row-major with row 0 at the bottom (minimum Y). NaN marks nodata.
type MemDEM struct {
	originX  float64
	originY  float64
	cellSize float64
	cols     int
	rows     int
	values   []float64
}

// NewMemDEM allocates a DEM of cols×rows cells anchored at
// (originX, originY) with every cell initialized to nodata.
func NewMemDEM(originX, originY, cellSize float64, cols, rows int) *MemDEM {
	values := make([]float64, cols*rows)
	for i := range values {
		values[i] = math.NaN()
	}
	return &MemDEM{
		originX:  originX,
		originY:  originY,
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		values:   values,
	}
}

// Set writes an elevation into a cell.
func (d *MemDEM) Set(col, row int, elevation float64) {
	if col < 0 || col >= d.cols || row < 0 || row >= d.rows {
		return
	}
	d.values[row*d.cols+col] = elevation
}

// SetNoData marks a cell as nodata.
func (d *MemDEM) SetNoData(col, row int) {
	d.Set(col, row, math.NaN())
}

// Fill sets every cell from fn(col, row).
func (d *MemDEM) Fill(fn func(col, row int) float64) {
	for row := 0; row < d.rows; row++ {
		for col := 0; col < d.cols; col++ {
			d.values[row*d.cols+col] = fn(col, row)
		}
	}
}

// Cols returns the column count.
func (d *MemDEM) Cols() int { return d.cols }

// Rows returns the row count.
func (d *MemDEM) Rows() int { return d.rows }

// CellCenter returns the planar center of a cell.
func (d *MemDEM) CellCenter(col, row int) geom.Point {
	return geom.Pt(
		d.originX+(float64(col)+0.5)*d.cellSize,
		d.originY+(float64(row)+0.5)*d.cellSize,
	)
}

// Sample returns the elevation of the cell containing p, with
// ok=false outside the grid or at nodata cells.
func (d *MemDEM) Sample(p geom.Point) (float64, bool) {
	col := int(math.Floor((p.X - d.originX) / d.cellSize))
	row := int(math.Floor((p.Y - d.originY) / d.cellSize))
	if col < 0 || col >= d.cols || row < 0 || row >= d.rows {
		return 0, false
	}
	v := d.values[row*d.cols+col]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (d *MemDEM) PixelSizeX() float64 { return d.cellSize }
func (d *MemDEM) PixelSizeY() float64 { return d.cellSize }

// Extent returns the bounding box of the grid.
func (d *MemDEM) Extent() Extent {
	return Extent{
		MinX: d.originX,
		MinY: d.originY,
		MaxX: d.originX + float64(d.cols)*d.cellSize,
		MaxY: d.originY + float64(d.rows)*d.cellSize,
	}
}

// Synthetic DEM builders for tests and demos.

// Uniform returns a flat DEM at a constant elevation.
func Uniform(cols, rows int, cellSize, elevation float64) *MemDEM {
	d := NewMemDEM(0, 0, cellSize, cols, rows)
	d.Fill(func(int, int) float64 { return elevation })
	return d
}

// Slope returns a DEM falling linearly along +X at dropPerCell.
func Slope(cols, rows int, cellSize, top, dropPerCell float64) *MemDEM {
	d := NewMemDEM(0, 0, cellSize, cols, rows)
	d.Fill(func(col, _ int) float64 {
		return top - float64(col)*dropPerCell
	})
	return d
}

// Peak returns a DEM with a single cone-shaped summit at the center,
// decreasing with distance from it.
func Peak(cols, rows int, cellSize, summit, dropPerCell float64) *MemDEM {
	d := NewMemDEM(0, 0, cellSize, cols, rows)
	cx := float64(cols-1) / 2
	cy := float64(rows-1) / 2
	d.Fill(func(col, row int) float64 {
		dist := math.Hypot(float64(col)-cx, float64(row)-cy)
		return summit - dist*dropPerCell
	})
	return d
}

// Basin returns the inverse of Peak: a single depression at the
// center rising outward.
func Basin(cols, rows int, cellSize, floor, risePerCell float64) *MemDEM {
	d := NewMemDEM(0, 0, cellSize, cols, rows)
	cx := float64(cols-1) / 2
	cy := float64(rows-1) / 2
	d.Fill(func(col, row int) float64 {
		dist := math.Hypot(float64(col)-cx, float64(row)-cy)
		return floor + dist*risePerCell
	})
	return d
}
