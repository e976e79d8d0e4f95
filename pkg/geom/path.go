package geom

// PathLength returns the total length of a polyline.
func PathLength(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceTo(points[i])
	}
	return total
}

// BentPath returns the connecting path from origin to destination.
// When center is non-nil the path gains a single control point pulled
// 35% of the way from the segment midpoint toward center, giving the
// link a gentle inward bow. Otherwise the path is a straight segment.
func BentPath(origin, destination Point, center *Point) []Point {
	if center == nil {
		return []Point{origin, destination}
	}
	mid := origin.Midpoint(destination)
	ctrl := Point{
		X: mid.X + (center.X-mid.X)*0.35,
		Y: mid.Y + (center.Y-mid.Y)*0.35,
	}
	return []Point{origin, ctrl, destination}
}
