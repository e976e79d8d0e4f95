package raster

import (
	"math"
	"strings"
	"testing"

	"github.com/jparkgeo/pungsu/pkg/geom"
)

func TestMemDEMSampleInsideAndOutside(t *testing.T) {
	dem := Uniform(4, 3, 10, 55)

	if v, ok := dem.Sample(geom.Pt(5, 5)); !ok || v != 55 {
		t.Errorf("Sample inside = (%v, %v), want (55, true)", v, ok)
	}
	if _, ok := dem.Sample(geom.Pt(-1, 5)); ok {
		t.Error("Sample west of grid should be nodata")
	}
	if _, ok := dem.Sample(geom.Pt(5, 31)); ok {
		t.Error("Sample north of grid should be nodata")
	}
}

func TestMemDEMNoData(t *testing.T) {
	dem := Uniform(3, 3, 1, 10)
	dem.SetNoData(1, 1)
	if _, ok := dem.Sample(geom.Pt(1.5, 1.5)); ok {
		t.Error("nodata cell should sample as absent")
	}
}

func TestStepFloorsAtOne(t *testing.T) {
	dem := Uniform(2, 2, 0.25, 0)
	if got := Step(dem); got != 1.0 {
		t.Errorf("Step on sub-meter raster = %v, want floor 1.0", got)
	}
	big := Uniform(2, 2, 30, 0)
	if got := Step(big); got != 30 {
		t.Errorf("Step = %v, want 30", got)
	}
}

func TestPeakSummitIsHighest(t *testing.T) {
	dem := Peak(5, 5, 10, 100, 5)
	summit, ok := dem.Sample(dem.CellCenter(2, 2))
	if !ok || summit != 100 {
		t.Fatalf("summit = (%v, %v), want (100, true)", summit, ok)
	}
	for col := 0; col < 5; col++ {
		for row := 0; row < 5; row++ {
			if col == 2 && row == 2 {
				continue
			}
			v, ok := dem.Sample(dem.CellCenter(col, row))
			if !ok || v >= summit {
				t.Errorf("cell (%d,%d) = %v not below summit", col, row, v)
			}
		}
	}
}

func TestReadASCIIGrid(t *testing.T) {
	src := `ncols 3
nrows 2
xllcorner 100
yllcorner 200
cellsize 10
NODATA_value -9999
1 2 3
4 -9999 6
`
	dem, err := ReadASCIIGrid(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadASCIIGrid: %v", err)
	}
	if dem.Cols() != 3 || dem.Rows() != 2 {
		t.Fatalf("size = %dx%d, want 3x2", dem.Cols(), dem.Rows())
	}

	ext := dem.Extent()
	if ext.MinX != 100 || ext.MinY != 200 || ext.MaxX != 130 || ext.MaxY != 220 {
		t.Errorf("extent = %+v", ext)
	}

	// First data row is the top (northern) row.
	if v, ok := dem.Sample(geom.Pt(105, 215)); !ok || v != 1 {
		t.Errorf("top-left = (%v, %v), want (1, true)", v, ok)
	}
	if v, ok := dem.Sample(geom.Pt(105, 205)); !ok || v != 4 {
		t.Errorf("bottom-left = (%v, %v), want (4, true)", v, ok)
	}
	if _, ok := dem.Sample(geom.Pt(115, 205)); ok {
		t.Error("nodata cell should be absent")
	}
}

func TestReadASCIIGridBadCount(t *testing.T) {
	src := "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n"
	if _, err := ReadASCIIGrid(strings.NewReader(src)); err == nil {
		t.Error("expected error for wrong value count")
	}
}

func TestBasinCenterIsLowest(t *testing.T) {
	dem := Basin(5, 5, 1, 10, 2)
	center, _ := dem.Sample(dem.CellCenter(2, 2))
	corner, _ := dem.Sample(dem.CellCenter(0, 0))
	if !(center < corner) {
		t.Errorf("basin center %v should be below corner %v", center, corner)
	}
	if math.IsNaN(center) {
		t.Error("center should be present")
	}
}
