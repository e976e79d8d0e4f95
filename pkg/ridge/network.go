// Package ridge extracts the ridge-line network of a DEM: locally
// prominent lattice nodes linked into segments, endpoint-bridged
// across small gaps, traced into polylines, and ranked into classes by
// combined length and ridge strength.
package ridge

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/grid"
	"github.com/jparkgeo/pungsu/pkg/raster"
)

// maxCells caps the ridge lattice size.
const maxCells = 22000

// maxBridgeEndpoints disables bridging on degenerate graphs with too
// many loose ends.
const maxBridgeEndpoints = 1800

// Ridge class identifiers, strongest first.
const (
	ClassDaegan    = "daegan"
	ClassJeongmaek = "jeongmaek"
	ClassGimaek    = "gimaek"
	ClassJimaek    = "jimaek"
)

// segmentOffsets are the half-plane offsets scanned when linking ridge
// nodes; each link is added symmetrically.
var segmentOffsets = [12]grid.Key{
	{Col: 1, Row: 0}, {Col: 0, Row: 1}, {Col: 1, Row: 1}, {Col: 1, Row: -1},
	{Col: 2, Row: 0}, {Col: 0, Row: 2}, {Col: 2, Row: 1}, {Col: 1, Row: 2},
	{Col: 2, Row: -1}, {Col: 1, Row: -2}, {Col: 2, Row: 2}, {Col: 2, Row: -2},
}

// Params records the thresholds a ridge network was built with.
type Params struct {
	Spacing            float64
	ProminenceMin      float64
	NeighborDelta      float64
	MaxSegmentDistance float64
	MaxSegmentDrop     float64
	BridgedCount       int
	NodeCount          int
	RidgeNodeCount     int
}

// Ridge is one ranked ridge polyline.
type Ridge struct {
	ID       int
	Rank     int
	Class    string
	Score    float64
	Strength float64
	ElevA    float64
	ElevB    float64
	LengthM  float64
	Path     []geom.Point
	Reason   string
}

// Network is the full ridge extraction result.
type Network struct {
	Ridges []Ridge
	Params Params
}

type ridgeNode struct {
	point    geom.Point
	elev     float64
	strength float64
}

// Spacing returns the ridge lattice spacing, capped at 22000 cells.
func Spacing(ext raster.Extent, step float64) float64 {
	coarse := grid.CoarseSpacing(ext, step)
	spacing := math.Max(step*4.0, coarse*0.70)
	if spacing <= 0 {
		return math.Max(step*4.0, 1.0)
	}
	return grid.CapSpacing(ext, spacing, maxCells)
}

// Build extracts the ridge network of a DEM. Fewer than 9 lattice
// nodes, or no ridge-worthy nodes, yield an empty network without
// error.
func Build(ctx context.Context, dem raster.Provider) (*Network, error) {
	ext := dem.Extent()
	step := raster.Step(dem)
	spacing := Spacing(ext, step)

	lat, err := grid.Build(ctx, dem, spacing)
	if err != nil {
		return nil, fmt.Errorf("ridge network: %w", err)
	}
	nodes := lat.Nodes()
	params := Params{Spacing: spacing, NodeCount: len(nodes)}
	if len(nodes) < 9 {
		return &Network{Params: params}, nil
	}

	elevRange := lat.ElevSpan()
	params.ProminenceMin = math.Max(0.6, elevRange*0.010)
	params.NeighborDelta = math.Max(0.05, elevRange*0.0022)

	// Prominent nodes: higher than most neighbors by the delta and
	// lifted above their mean, with a softened fallback for saddle-ish
	// crests.
	ridgeNodes := map[grid.Key]ridgeNode{}
	var nbrs []grid.Node
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ridge network: %w", err)
		}
		nbrs = lat.Neighbors(n.Key, nbrs[:0])
		if len(nbrs) < 4 {
			continue
		}
		sum := 0.0
		higher := 0
		for _, nb := range nbrs {
			sum += nb.Elev
			if n.Elev >= nb.Elev+params.NeighborDelta {
				higher++
			}
		}
		prominence := n.Elev - sum/float64(len(nbrs))
		required := maxInt(3, int(float64(len(nbrs))*0.55))
		soft := maxInt(2, int(float64(len(nbrs))*0.45))
		if (higher < required || prominence < params.ProminenceMin) &&
			(higher < soft || prominence < params.ProminenceMin*0.78) {
			continue
		}
		promNorm := math.Min(1.0, prominence/(params.ProminenceMin*2.0))
		localRatio := float64(higher) / float64(len(nbrs))
		ridgeNodes[n.Key] = ridgeNode{
			point:    n.Point,
			elev:     n.Elev,
			strength: 0.45*localRatio + 0.55*promNorm,
		}
	}
	if len(ridgeNodes) < 2 {
		return &Network{Params: params}, nil
	}

	// Drop isolated ridge nodes: a crest point with no ridge neighbor
	// in its 8-neighborhood cannot anchor a line.
	for key := range ridgeNodes {
		linked := 0
		for _, off := range neighborOffsets {
			if _, ok := ridgeNodes[grid.Key{Col: key.Col + off.Col, Row: key.Row + off.Row}]; ok {
				linked++
			}
		}
		if linked == 0 {
			delete(ridgeNodes, key)
		}
	}
	if len(ridgeNodes) < 2 {
		return &Network{Params: params}, nil
	}
	params.RidgeNodeCount = len(ridgeNodes)

	params.MaxSegmentDistance = spacing * 2.9
	params.MaxSegmentDrop = math.Max(2.0, elevRange*0.14)

	adjacency := map[grid.Key]map[grid.Key]bool{}
	for key := range ridgeNodes {
		adjacency[key] = map[grid.Key]bool{}
	}
	for keyA, a := range ridgeNodes {
		for _, off := range segmentOffsets {
			keyB := grid.Key{Col: keyA.Col + off.Col, Row: keyA.Row + off.Row}
			b, ok := ridgeNodes[keyB]
			if !ok {
				continue
			}
			if a.point.DistanceTo(b.point) > params.MaxSegmentDistance {
				continue
			}
			if math.Abs(a.elev-b.elev) > params.MaxSegmentDrop {
				continue
			}
			adjacency[keyA][keyB] = true
			adjacency[keyB][keyA] = true
		}
	}
	linked := false
	for _, set := range adjacency {
		if len(set) > 0 {
			linked = true
			break
		}
	}
	if !linked {
		return &Network{Params: params}, nil
	}

	params.BridgedCount = bridgeEndpoints(adjacency, ridgeNodes, spacing, elevRange)

	paths := tracePaths(adjacency)

	type rawPath struct {
		points   []geom.Point
		length   float64
		strength float64
		elevA    float64
		elevB    float64
	}
	var raw []rawPath
	for _, path := range paths {
		if len(path) < 2 {
			continue
		}
		points := make([]geom.Point, 0, len(path))
		strengthSum := 0.0
		for _, key := range path {
			node := ridgeNodes[key]
			points = append(points, node.point)
			strengthSum += node.strength
		}
		length := geom.PathLength(points)
		if length <= 0 {
			continue
		}
		raw = append(raw, rawPath{
			points:   points,
			length:   length,
			strength: strengthSum / float64(len(path)),
			elevA:    ridgeNodes[path[0]].elev,
			elevB:    ridgeNodes[path[len(path)-1]].elev,
		})
	}
	net := &Network{Params: params}
	if len(raw) == 0 {
		return net, nil
	}

	maxLen := 1e-6
	for _, r := range raw {
		if r.length > maxLen {
			maxLen = r.length
		}
	}
	scores := make([]float64, len(raw))
	idx := make([]int, len(raw))
	for i, r := range raw {
		scores[i] = 0.62*(r.length/maxLen) + 0.38*r.strength
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return scores[idx[i]] > scores[idx[j]] })

	total := len(idx)
	for rank, i := range idx {
		r := raw[i]
		percentile := float64(rank+1) / float64(total)
		class := classOf(percentile)
		net.Ridges = append(net.Ridges, Ridge{
			ID:       rank + 1,
			Rank:     rank + 1,
			Class:    class,
			Score:    scores[i],
			Strength: r.strength,
			ElevA:    r.elevA,
			ElevB:    r.elevB,
			LengthM:  r.length,
			Path:     r.points,
			Reason: fmt.Sprintf(
				"ridge score=%.3f (length+crest combined), rank=%d/%d, top_pct=%.1f%%, class=%s, link=dist<=%.1fm elev<=%.1fm, bridged=%d",
				scores[i], rank+1, total, percentile*100, class,
				params.MaxSegmentDistance, params.MaxSegmentDrop, params.BridgedCount),
		})
	}
	return net, nil
}

// classOf maps a rank percentile to a ridge class.
func classOf(percentile float64) string {
	switch {
	case percentile <= 0.05:
		return ClassDaegan
	case percentile <= 0.22:
		return ClassJeongmaek
	case percentile <= 0.52:
		return ClassGimaek
	default:
		return ClassJimaek
	}
}

// neighborOffsets is the 8-neighborhood used for the isolation filter.
var neighborOffsets = [8]grid.Key{
	{Col: -1, Row: -1}, {Col: -1, Row: 0}, {Col: -1, Row: 1},
	{Col: 0, Row: -1}, {Col: 0, Row: 1},
	{Col: 1, Row: -1}, {Col: 1, Row: 0}, {Col: 1, Row: 1},
}

// bridgeEndpoints greedily joins nearby loose ends of the ridge graph:
// each endpoint pairs with at most one other, chosen by the cheapest
// blend of distance, elevation gap, and strength mismatch.
func bridgeEndpoints(adjacency map[grid.Key]map[grid.Key]bool, ridgeNodes map[grid.Key]ridgeNode, spacing, elevRange float64) int {
	var endpoints []grid.Key
	for key, set := range adjacency {
		if len(set) == 1 {
			endpoints = append(endpoints, key)
		}
	}
	if len(endpoints) < 2 || len(endpoints) > maxBridgeEndpoints {
		return 0
	}
	sort.Slice(endpoints, func(i, j int) bool { return keyLess(endpoints[i], endpoints[j]) })

	maxDistance := spacing * 3.6
	maxDistanceSq := maxDistance * maxDistance
	elevTolerance := math.Max(2.0, elevRange*0.16)
	used := map[grid.Key]bool{}
	bridged := 0

	for _, key := range endpoints {
		if used[key] {
			continue
		}
		node := ridgeNodes[key]
		bestSet := false
		var best grid.Key
		bestCost := 0.0
		for _, other := range endpoints {
			if other == key || used[other] || adjacency[key][other] {
				continue
			}
			otherNode := ridgeNodes[other]
			elevGap := math.Abs(node.elev - otherNode.elev)
			if elevGap > elevTolerance {
				continue
			}
			dx := node.point.X - otherNode.point.X
			dy := node.point.Y - otherNode.point.Y
			distSq := dx*dx + dy*dy
			if distSq > maxDistanceSq {
				continue
			}
			cost := 0.55*(math.Sqrt(distSq)/maxDistance) +
				0.25*(elevGap/elevTolerance) +
				0.20*math.Abs(node.strength-otherNode.strength)
			if !bestSet || cost < bestCost {
				best = other
				bestCost = cost
				bestSet = true
			}
		}
		if !bestSet {
			continue
		}
		adjacency[key][best] = true
		adjacency[best][key] = true
		used[key] = true
		used[best] = true
		bridged++
	}
	return bridged
}

// tracePaths walks the ridge graph into polylines: branch nodes first,
// then a sweep over everything, claiming each undirected edge once and
// following pass-through chains until a branch or a dead end.
func tracePaths(adjacency map[grid.Key]map[grid.Key]bool) [][]grid.Key {
	visited := map[[2]grid.Key]bool{}
	var paths [][]grid.Key

	trace := func(start, neighbor grid.Key) []grid.Key {
		edge := edgeKey(start, neighbor)
		if visited[edge] {
			return nil
		}
		visited[edge] = true
		path := []grid.Key{start, neighbor}
		prev, current := start, neighbor
		for {
			var candidates []grid.Key
			for n := range adjacency[current] {
				if n != prev {
					candidates = append(candidates, n)
				}
			}
			if len(candidates) != 1 {
				break
			}
			next := candidates[0]
			nextEdge := edgeKey(current, next)
			if visited[nextEdge] {
				break
			}
			visited[nextEdge] = true
			path = append(path, next)
			prev, current = current, next
		}
		return path
	}

	allKeys := make([]grid.Key, 0, len(adjacency))
	for key := range adjacency {
		allKeys = append(allKeys, key)
	}
	sort.Slice(allKeys, func(i, j int) bool { return keyLess(allKeys[i], allKeys[j]) })

	for _, start := range allKeys {
		if len(adjacency[start]) == 2 || len(adjacency[start]) == 0 {
			continue
		}
		for _, neighbor := range sortedNeighbors(adjacency[start]) {
			if path := trace(start, neighbor); len(path) > 1 {
				paths = append(paths, path)
			}
		}
	}
	for _, key := range allKeys {
		for _, neighbor := range sortedNeighbors(adjacency[key]) {
			if path := trace(key, neighbor); len(path) > 1 {
				paths = append(paths, path)
			}
		}
	}
	return paths
}

func sortedNeighbors(set map[grid.Key]bool) []grid.Key {
	keys := make([]grid.Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

func keyLess(a, b grid.Key) bool {
	if a.Col != b.Col {
		return a.Col < b.Col
	}
	return a.Row < b.Row
}

func edgeKey(a, b grid.Key) [2]grid.Key {
	if keyLess(b, a) {
		return [2]grid.Key{b, a}
	}
	return [2]grid.Key{a, b}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
