// Package hydro derives a drainage network from a DEM: steepest-
// descent flow routing on a sampling lattice, flow accumulation,
// stream ordering, and quantile-based pruning into classed stream
// polylines.
package hydro

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/grid"
	"github.com/jparkgeo/pungsu/pkg/raster"
)

// maxCells caps the drainage lattice size.
const maxCells = 26000

// Stream class identifiers, ordered by rank.
const (
	ClassMain      = "main"
	ClassSecondary = "secondary"
	ClassBranch    = "branch"
	ClassMinor     = "minor"
)

// Params records the derived thresholds a network was built with; they
// are echoed on every stream for inspection.
type Params struct {
	Spacing       float64
	MinDrop       float64
	AccThreshold  float64
	KeepQuantile  float64
	MinPathLength float64
	MinOrder      int
	NodeCount     int
}

// Stream is one traced drainage polyline.
type Stream struct {
	ID       int
	Path     []geom.Point
	LengthM  float64
	FlowAcc  float64
	MaxOrder int
	Class    string
	Reason   string
}

// Network is the full drainage result.
type Network struct {
	Streams []Stream
	Params  Params
}

// Spacing returns the drainage lattice spacing: denser than the
// coarse analysis grid but capped at 26000 cells.
func Spacing(ext raster.Extent, step float64) float64 {
	coarse := grid.CoarseSpacing(ext, step)
	spacing := math.Max(step*3.2, coarse*0.58)
	if spacing <= 0 {
		return math.Max(step*3.2, 1.0)
	}
	return grid.CapSpacing(ext, spacing, maxCells)
}

// KeepQuantile returns the accumulation percentile kept for a lattice
// of the given node count. Denser lattices keep a thinner top slice.
func KeepQuantile(nodeCount int) float64 {
	switch {
	case nodeCount >= 20000:
		return 0.95
	case nodeCount >= 12000:
		return 0.93
	case nodeCount >= 7000:
		return 0.91
	case nodeCount >= 3000:
		return 0.89
	default:
		return 0.86
	}
}

// MinOrder returns the stream order floor for a lattice size.
func MinOrder(nodeCount int) int {
	switch {
	case nodeCount >= 18000:
		return 4
	case nodeCount >= 4000:
		return 3
	default:
		return 2
	}
}

// MinPathLength returns the shortest stream worth keeping, scaled up
// on dense lattices where short fragments proliferate.
func MinPathLength(ext raster.Extent, spacing float64, nodeCount int) float64 {
	diag := math.Hypot(ext.Width(), ext.Height())
	length := math.Max(spacing*4.0, diag*0.006)
	switch {
	case nodeCount >= 18000:
		length = math.Max(length, spacing*10.0)
	case nodeCount >= 9000:
		length = math.Max(length, spacing*7.0)
	case nodeCount >= 4000:
		length = math.Max(length, spacing*5.5)
	}
	return length
}

// classOf maps a stream order to its class.
func classOf(order int) string {
	switch {
	case order >= 6:
		return ClassMain
	case order >= 5:
		return ClassSecondary
	case order >= 4:
		return ClassBranch
	default:
		return ClassMinor
	}
}

// Build routes flow over a lattice sampled from the DEM and returns
// the pruned stream network. Fewer than 9 lattice nodes yield an empty
// network without error.
func Build(ctx context.Context, dem raster.Provider) (*Network, error) {
	ext := dem.Extent()
	step := raster.Step(dem)
	spacing := Spacing(ext, step)

	lat, err := grid.Build(ctx, dem, spacing)
	if err != nil {
		return nil, fmt.Errorf("hydro network: %w", err)
	}
	nodes := lat.Nodes()
	params := Params{Spacing: spacing, NodeCount: len(nodes)}
	if len(nodes) < 9 {
		return &Network{Params: params}, nil
	}

	params.MinDrop = math.Max(0.15, lat.ElevSpan()*0.0012)

	// Steepest descent: each node drains to its lowest neighbor that
	// sits at least minDrop below it. Ties keep the first neighbor in
	// scan order.
	downstream := map[grid.Key]grid.Key{}
	upstream := map[grid.Key][]grid.Key{}
	var nbrs []grid.Node
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("hydro network: %w", err)
		}
		nbrs = lat.Neighbors(n.Key, nbrs[:0])
		bestSet := false
		var best grid.Node
		for _, nb := range nbrs {
			if nb.Elev >= n.Elev-params.MinDrop {
				continue
			}
			if !bestSet || nb.Elev < best.Elev {
				best = nb
				bestSet = true
			}
		}
		if !bestSet {
			continue
		}
		downstream[n.Key] = best.Key
		upstream[best.Key] = append(upstream[best.Key], n.Key)
	}
	if len(downstream) == 0 {
		return &Network{Params: params}, nil
	}

	// Flow accumulation: sweep nodes from high to low, pushing each
	// node's contribution onto its drain target.
	byElev := make([]grid.Node, len(nodes))
	copy(byElev, nodes)
	sort.SliceStable(byElev, func(i, j int) bool { return byElev[i].Elev > byElev[j].Elev })
	contrib := map[grid.Key]float64{}
	for _, n := range nodes {
		contrib[n.Key] = 1.0
	}
	for _, n := range byElev {
		target, ok := downstream[n.Key]
		if !ok {
			continue
		}
		contrib[target] += contrib[n.Key]
	}

	order := streamOrder(byElev, downstream, upstream)

	accValues := make([]float64, 0, len(downstream))
	for _, n := range nodes {
		if _, ok := downstream[n.Key]; ok {
			accValues = append(accValues, contrib[n.Key])
		}
	}
	sort.Float64s(accValues)
	params.KeepQuantile = KeepQuantile(len(nodes))
	params.MinOrder = MinOrder(len(nodes))
	params.MinPathLength = MinPathLength(ext, spacing, len(nodes))

	cut := int(float64(len(accValues)) * params.KeepQuantile)
	if cut > len(accValues)-1 {
		cut = len(accValues) - 1
	}
	if cut < 0 {
		cut = 0
	}
	params.AccThreshold = math.Max(8.0, accValues[cut])

	// Keep a drain edge when its accumulation clears the threshold,
	// its order clears the floor, or it nearly does both.
	selected := map[grid.Key]grid.Key{}
	for _, n := range nodes {
		target, ok := downstream[n.Key]
		if !ok {
			continue
		}
		ord := orderOf(order, n.Key)
		acc := contrib[n.Key]
		keep := acc >= params.AccThreshold
		if !keep && ord >= params.MinOrder {
			keep = true
		}
		if !keep && ord >= maxInt(2, params.MinOrder-1) && acc >= params.AccThreshold*0.82 {
			keep = true
		}
		if keep {
			selected[n.Key] = target
		}
	}
	if len(selected) == 0 {
		return &Network{Params: params}, nil
	}

	inflow := map[grid.Key]int{}
	for _, target := range selected {
		inflow[target]++
	}

	// Trace from heads first: kept nodes whose drain target is not a
	// simple pass-through. Strong heads go first so long main stems
	// claim their edges before side branches.
	var heads []grid.Key
	for _, n := range nodes {
		if _, ok := selected[n.Key]; ok && inflow[n.Key] != 1 {
			heads = append(heads, n.Key)
		}
	}
	sort.SliceStable(heads, func(i, j int) bool {
		oi, oj := orderOf(order, heads[i]), orderOf(order, heads[j])
		if oi != oj {
			return oi > oj
		}
		return contrib[heads[i]] > contrib[heads[j]]
	})

	visited := map[[2]grid.Key]bool{}
	var paths [][]grid.Key
	for _, start := range heads {
		if path := tracePath(start, selected, inflow, visited); len(path) > 1 {
			paths = append(paths, path)
		}
	}
	for _, n := range nodes {
		if _, ok := selected[n.Key]; !ok {
			continue
		}
		if path := tracePath(n.Key, selected, inflow, visited); len(path) > 1 {
			paths = append(paths, path)
		}
	}

	net := &Network{Params: params}
	streamID := 1
	for _, path := range paths {
		points := make([]geom.Point, 0, len(path))
		maxAcc := 0.0
		maxOrder := 0
		for _, key := range path {
			n, ok := lat.At(key)
			if !ok {
				continue
			}
			points = append(points, n.Point)
			if contrib[key] > maxAcc {
				maxAcc = contrib[key]
			}
			if o := orderOf(order, key); o > maxOrder {
				maxOrder = o
			}
		}
		if len(points) < 2 {
			continue
		}
		length := geom.PathLength(points)
		if length <= 0 {
			continue
		}
		if length < params.MinPathLength && maxOrder < params.MinOrder {
			continue
		}
		class := classOf(maxOrder)
		net.Streams = append(net.Streams, Stream{
			ID:       streamID,
			Path:     points,
			LengthM:  length,
			FlowAcc:  maxAcc,
			MaxOrder: maxOrder,
			Class:    class,
			Reason: fmt.Sprintf(
				"DEM flow-direction stream. flow_acc=%.2f, threshold=%.2f, keep_pct=%.1f%%, order=%d(min %d), length=%.1fm(min %.1fm), class=%s",
				maxAcc, params.AccThreshold, params.KeepQuantile*100,
				maxOrder, params.MinOrder, length, params.MinPathLength, class),
		})
		streamID++
	}
	return net, nil
}

// streamOrder computes stream orders with a pending-count topological
// sweep: headwaters are order 1, and a node's order increments only
// when two or more inflows tie at the maximum.
func streamOrder(byElev []grid.Node, downstream map[grid.Key]grid.Key, upstream map[grid.Key][]grid.Key) map[grid.Key]int {
	pending := map[grid.Key]int{}
	var queue []grid.Key
	for _, n := range byElev {
		pending[n.Key] = len(upstream[n.Key])
		if pending[n.Key] == 0 {
			queue = append(queue, n.Key)
		}
	}

	order := map[grid.Key]int{}
	collected := map[grid.Key][]int{}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]

		incoming := collected[key]
		if len(incoming) == 0 {
			order[key] = 1
		} else {
			maxValue := incoming[0]
			for _, v := range incoming {
				if v > maxValue {
					maxValue = v
				}
			}
			ties := 0
			for _, v := range incoming {
				if v == maxValue {
					ties++
				}
			}
			if ties >= 2 {
				order[key] = maxValue + 1
			} else {
				order[key] = maxValue
			}
		}

		target, ok := downstream[key]
		if !ok {
			continue
		}
		collected[target] = append(collected[target], order[key])
		pending[target]--
		if pending[target] == 0 {
			queue = append(queue, target)
		}
	}
	return order
}

// tracePath follows the selected drain chain from start, claiming
// edges as it goes. It stops at visited edges and wherever the target
// is a merge or a branch point.
func tracePath(start grid.Key, selected map[grid.Key]grid.Key, inflow map[grid.Key]int, visited map[[2]grid.Key]bool) []grid.Key {
	if _, ok := selected[start]; !ok {
		return nil
	}
	path := []grid.Key{start}
	current := start
	for {
		target, ok := selected[current]
		if !ok {
			break
		}
		edge := [2]grid.Key{current, target}
		if visited[edge] {
			break
		}
		visited[edge] = true
		path = append(path, target)
		if inflow[target] != 1 {
			break
		}
		current = target
	}
	if len(path) < 2 {
		return nil
	}
	return path
}

func orderOf(order map[grid.Key]int, key grid.Key) int {
	if o, ok := order[key]; ok {
		return o
	}
	return 1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
