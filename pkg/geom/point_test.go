package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestOffsetCardinalDirections(t *testing.T) {
	origin := Pt(100, 200)

	cases := []struct {
		name    string
		azimuth float64
		want    Point
	}{
		{"north", 0, Pt(100, 210)},
		{"east", 90, Pt(110, 200)},
		{"south", 180, Pt(100, 190)},
		{"west", 270, Pt(90, 200)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := origin.Offset(10, tc.azimuth)
			if !almostEqual(got.X, tc.want.X, 1e-9) || !almostEqual(got.Y, tc.want.Y, 1e-9) {
				t.Errorf("Offset(10, %v) = %+v, want %+v", tc.azimuth, got, tc.want)
			}
		})
	}
}

func TestAzimuthToRoundTrip(t *testing.T) {
	origin := Pt(0, 0)
	for az := 0.0; az < 360.0; az += 15.0 {
		target := origin.Offset(50, az)
		got := origin.AzimuthTo(target)
		if AngularDiff(got, az) > 1e-6 {
			t.Errorf("AzimuthTo(Offset(50, %v)) = %v", az, got)
		}
	}
}

func TestAngularDiffWraps(t *testing.T) {
	if d := AngularDiff(350, 10); !almostEqual(d, 20, 1e-9) {
		t.Errorf("AngularDiff(350, 10) = %v, want 20", d)
	}
	if d := AngularDiff(0, 180); !almostEqual(d, 180, 1e-9) {
		t.Errorf("AngularDiff(0, 180) = %v, want 180", d)
	}
	if d := AngularDiff(90, 90); d != 0 {
		t.Errorf("AngularDiff(90, 90) = %v, want 0", d)
	}
}

func TestPathLength(t *testing.T) {
	path := []Point{Pt(0, 0), Pt(3, 4), Pt(3, 14)}
	if got := PathLength(path); !almostEqual(got, 15, 1e-9) {
		t.Errorf("PathLength = %v, want 15", got)
	}
	if got := PathLength(path[:1]); got != 0 {
		t.Errorf("PathLength of single point = %v, want 0", got)
	}
}

func TestBentPath(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(10, 0)

	straight := BentPath(a, b, nil)
	if len(straight) != 2 {
		t.Fatalf("straight path has %d points, want 2", len(straight))
	}

	center := Pt(5, 10)
	bent := BentPath(a, b, &center)
	if len(bent) != 3 {
		t.Fatalf("bent path has %d points, want 3", len(bent))
	}
	// Control point is midpoint pulled 35% toward center.
	if !almostEqual(bent[1].X, 5, 1e-9) || !almostEqual(bent[1].Y, 3.5, 1e-9) {
		t.Errorf("control point = %+v, want (5, 3.5)", bent[1])
	}
}
