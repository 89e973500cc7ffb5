// Grid pathfinding: A* over walkable cells with an octile heuristic and a
// diagonal-corner rule. Paths can be cached under a semantic destination key
// ("structure:granary", "special:village-center") shared across citizens
// heading to the same class of destination; the cache is dropped whenever
// terrain or structures change.
package world

import (
	"container/heap"
	"math"
)

// Step is one cell of a computed path.
type Step struct {
	X, Y int
}

type pathKey struct {
	semantic       string
	ox, oy, tx, ty int
}

// invalidatePaths drops every cached path. Called on any terrain or
// structure mutation.
func (g *Grid) invalidatePaths() {
	g.terrainGen++
	g.pathCache = make(map[pathKey][]Step)
}

// FindPath returns the ordered steps from origin to target, excluding the
// origin cell, or false when no path exists. A non-empty cacheKey caches the
// result for reuse by citizens sharing the same origin and destination
// class.
func (g *Grid) FindPath(ox, oy, tx, ty int, cacheKey string) ([]Step, bool) {
	if !g.InBounds(ox, oy) || !g.WalkableAt(tx, ty) {
		return nil, false
	}
	if ox == tx && oy == ty {
		return nil, true
	}

	var key pathKey
	if cacheKey != "" {
		key = pathKey{semantic: cacheKey, ox: ox, oy: oy, tx: tx, ty: ty}
		if cached, ok := g.pathCache[key]; ok {
			out := make([]Step, len(cached))
			copy(out, cached)
			return out, true
		}
	}

	steps, ok := g.astar(ox, oy, tx, ty)
	if !ok {
		return nil, false
	}
	if cacheKey != "" {
		stored := make([]Step, len(steps))
		copy(stored, steps)
		g.pathCache[key] = stored
	}
	return steps, true
}

type navNode struct {
	x, y   int
	g, f   float64
	index  int
	parent *navNode
}

type navQueue []*navNode

func (q navQueue) Len() int            { return len(q) }
func (q navQueue) Less(i, j int) bool  { return q[i].f < q[j].f }
func (q navQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *navQueue) Push(x any) {
	n := x.(*navNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *navQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

var navOffsets = [8]struct {
	dx, dy   int
	cost     float64
	diagonal bool
}{
	{0, -1, 1, false}, {1, 0, 1, false}, {0, 1, 1, false}, {-1, 0, 1, false},
	{1, -1, math.Sqrt2, true}, {1, 1, math.Sqrt2, true},
	{-1, 1, math.Sqrt2, true}, {-1, -1, math.Sqrt2, true},
}

func octile(x1, y1, x2, y2 int) float64 {
	dx := math.Abs(float64(x1 - x2))
	dy := math.Abs(float64(y1 - y2))
	if dx > dy {
		return dx + (math.Sqrt2-1)*dy
	}
	return dy + (math.Sqrt2-1)*dx
}

// stepCost biases the search away from slow terrain so paths prefer dry
// ground over fording rivers.
func (g *Grid) stepCost(x, y int, base float64) float64 {
	return base * FatigueCost(g.At(x, y).Terrain)
}

func (g *Grid) astar(ox, oy, tx, ty int) ([]Step, bool) {
	idx := func(x, y int) int { return y*g.Size + x }

	open := &navQueue{}
	heap.Init(open)
	heap.Push(open, &navNode{x: ox, y: oy, f: octile(ox, oy, tx, ty)})
	gScore := map[int]float64{idx(ox, oy): 0}
	closed := make(map[int]struct{})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*navNode)
		ci := idx(cur.x, cur.y)
		if _, seen := closed[ci]; seen {
			continue
		}
		closed[ci] = struct{}{}

		if cur.x == tx && cur.y == ty {
			return reconstruct(cur), true
		}

		for _, off := range navOffsets {
			nx, ny := cur.x+off.dx, cur.y+off.dy
			if !g.WalkableAt(nx, ny) {
				continue
			}
			// Diagonal moves need both adjacent orthogonals open.
			if off.diagonal && (!g.WalkableAt(cur.x+off.dx, cur.y) || !g.WalkableAt(cur.x, cur.y+off.dy)) {
				continue
			}
			ni := idx(nx, ny)
			if _, seen := closed[ni]; seen {
				continue
			}
			tentative := cur.g + g.stepCost(nx, ny, off.cost)
			if prev, ok := gScore[ni]; ok && tentative >= prev {
				continue
			}
			gScore[ni] = tentative
			heap.Push(open, &navNode{
				x: nx, y: ny,
				g:      tentative,
				f:      tentative + octile(nx, ny, tx, ty),
				parent: cur,
			})
		}
	}
	return nil, false
}

func reconstruct(end *navNode) []Step {
	var rev []Step
	for n := end; n != nil; n = n.parent {
		rev = append(rev, Step{X: n.x, Y: n.y})
	}
	// Reverse and drop the origin cell.
	steps := make([]Step, 0, len(rev)-1)
	for i := len(rev) - 2; i >= 0; i-- {
		steps = append(steps, rev[i])
	}
	return steps
}
