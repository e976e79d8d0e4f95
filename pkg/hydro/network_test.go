package hydro

import (
	"context"
	"math"
	"testing"

	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/grid"
	"github.com/jparkgeo/pungsu/pkg/raster"
)

// valleyDEM builds a V-shaped valley draining along +X: every cell
// falls toward the center row and toward higher columns.
func valleyDEM(cols, rows int, cellSize float64) *raster.MemDEM {
	d := raster.NewMemDEM(0, 0, cellSize, cols, rows)
	mid := float64(rows-1) / 2
	d.Fill(func(col, row int) float64 {
		return 500 - float64(col)*5 + math.Abs(float64(row)-mid)*3
	})
	return d
}

func TestBuildValleyNetwork(t *testing.T) {
	dem := valleyDEM(40, 40, 10)
	net, err := Build(context.Background(), dem)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(net.Streams) == 0 {
		t.Fatal("expected streams in a convergent valley")
	}
	if net.Params.AccThreshold < 8.0 {
		t.Errorf("threshold = %v, want floor 8.0", net.Params.AccThreshold)
	}
	if net.Params.NodeCount < 9 {
		t.Errorf("node count = %d", net.Params.NodeCount)
	}

	maxOrder := 0
	for _, s := range net.Streams {
		if len(s.Path) < 2 {
			t.Errorf("stream %d has %d points", s.ID, len(s.Path))
		}
		if s.LengthM <= 0 {
			t.Errorf("stream %d length %v", s.ID, s.LengthM)
		}
		if s.Class == "" {
			t.Errorf("stream %d missing class", s.ID)
		}
		if s.MaxOrder > maxOrder {
			maxOrder = s.MaxOrder
		}
	}
	// Side slopes merge into the channel, so order must rise above 1.
	if maxOrder < 2 {
		t.Errorf("max order = %d, want >= 2 after confluences", maxOrder)
	}
}

func TestBuildNoDuplicateEdges(t *testing.T) {
	dem := valleyDEM(40, 40, 10)
	net, err := Build(context.Background(), dem)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	type edge struct{ a, b geom.Point }
	seen := map[edge]bool{}
	for _, s := range net.Streams {
		for i := 1; i < len(s.Path); i++ {
			e := edge{s.Path[i-1], s.Path[i]}
			if seen[e] {
				t.Fatalf("edge %v traced twice", e)
			}
			seen[e] = true
		}
	}
}

func TestBuildFlatTerrainIsEmpty(t *testing.T) {
	dem := raster.Uniform(40, 40, 10, 100)
	net, err := Build(context.Background(), dem)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(net.Streams) != 0 {
		t.Errorf("flat terrain produced %d streams", len(net.Streams))
	}
	if net.Params.MinDrop != 0.15 {
		t.Errorf("flat min drop = %v, want floor 0.15", net.Params.MinDrop)
	}
}

func TestBuildTooFewNodes(t *testing.T) {
	dem := raster.Uniform(3, 3, 10, 100)
	net, err := Build(context.Background(), dem)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(net.Streams) != 0 {
		t.Error("undersized lattice should yield no streams")
	}
}

func TestBuildCancellation(t *testing.T) {
	dem := valleyDEM(40, 40, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, dem); err == nil {
		t.Fatal("cancelled build should fail")
	}
}

func TestStreamOrderConfluence(t *testing.T) {
	// Two headwaters a, b merge at c, which drains to outlet d.
	a, b := grid.Key{Col: 0, Row: 0}, grid.Key{Col: 2, Row: 0}
	c, d := grid.Key{Col: 1, Row: 1}, grid.Key{Col: 1, Row: 2}
	byElev := []grid.Node{
		{Key: a, Elev: 100},
		{Key: b, Elev: 99},
		{Key: c, Elev: 50},
		{Key: d, Elev: 10},
	}
	downstream := map[grid.Key]grid.Key{a: c, b: c, c: d}
	upstream := map[grid.Key][]grid.Key{c: {a, b}, d: {c}}

	order := streamOrder(byElev, downstream, upstream)
	if order[a] != 1 || order[b] != 1 {
		t.Errorf("headwater orders = %d,%d, want 1,1", order[a], order[b])
	}
	if order[c] != 2 {
		t.Errorf("confluence order = %d, want 2 (two order-1 inflows)", order[c])
	}
	if order[d] != 2 {
		t.Errorf("outlet order = %d, want 2 (single max inflow passes through)", order[d])
	}
}

func TestStreamOrderSingleChain(t *testing.T) {
	a, b, c := grid.Key{Col: 0, Row: 0}, grid.Key{Col: 0, Row: 1}, grid.Key{Col: 0, Row: 2}
	byElev := []grid.Node{{Key: a, Elev: 30}, {Key: b, Elev: 20}, {Key: c, Elev: 10}}
	downstream := map[grid.Key]grid.Key{a: b, b: c}
	upstream := map[grid.Key][]grid.Key{b: {a}, c: {b}}

	order := streamOrder(byElev, downstream, upstream)
	for _, k := range []grid.Key{a, b, c} {
		if order[k] != 1 {
			t.Errorf("chain order at %v = %d, want 1", k, order[k])
		}
	}
}

func TestTracePathStopsAtMerge(t *testing.T) {
	a, b, c := grid.Key{Col: 0, Row: 0}, grid.Key{Col: 0, Row: 1}, grid.Key{Col: 0, Row: 2}
	m := grid.Key{Col: 1, Row: 1}
	selected := map[grid.Key]grid.Key{a: b, b: c, m: c}
	inflow := map[grid.Key]int{b: 1, c: 2}

	visited := map[[2]grid.Key]bool{}
	path := tracePath(a, selected, inflow, visited)
	if len(path) != 3 || path[2] != c {
		t.Fatalf("path = %v, want a,b,c", path)
	}
	// c has two inflows: the trace must stop there, leaving c's own
	// outflow (none here) and the other inflow untouched.
	if visited[[2]grid.Key{m, c}] {
		t.Error("merge trace consumed the sibling edge")
	}
	// Second trace over the same edges dies immediately.
	if again := tracePath(a, selected, inflow, visited); again != nil {
		t.Errorf("re-trace returned %v, want nil", again)
	}
}

func TestThresholdHelpers(t *testing.T) {
	if q := KeepQuantile(25000); q != 0.95 {
		t.Errorf("KeepQuantile(25000) = %v", q)
	}
	if q := KeepQuantile(100); q != 0.86 {
		t.Errorf("KeepQuantile(100) = %v", q)
	}
	if o := MinOrder(20000); o != 4 {
		t.Errorf("MinOrder(20000) = %d", o)
	}
	if o := MinOrder(100); o != 2 {
		t.Errorf("MinOrder(100) = %d", o)
	}
	if c := classOf(6); c != ClassMain {
		t.Errorf("classOf(6) = %s", c)
	}
	if c := classOf(5); c != ClassSecondary {
		t.Errorf("classOf(5) = %s", c)
	}
	if c := classOf(4); c != ClassBranch {
		t.Errorf("classOf(4) = %s", c)
	}
	if c := classOf(1); c != ClassMinor {
		t.Errorf("classOf(1) = %s", c)
	}

	ext := raster.Extent{MaxX: 1000, MaxY: 1000}
	if l := MinPathLength(ext, 50, 100); l != 200 {
		t.Errorf("MinPathLength = %v, want spacing*4", l)
	}
	if l := MinPathLength(ext, 50, 20000); l != 500 {
		t.Errorf("dense MinPathLength = %v, want spacing*10", l)
	}
}
