// Package nav implements the navigation field (C9): a discretized Eikonal
// distance-to-target field, a separate distance-to-obstacle field, their
// gradient-derived direction fields, an obstacle-avoidance blend, and a
// lookup at an arbitrary agent position.
//
// The Eikonal equation ‖∇S‖ = 1/f is solved here as a multi-source
// shortest-path search over the grid's 8-neighbor graph (edge weight h on
// the 4 axis neighbors, h*sqrt(2) on the 4 diagonals) rather than a true
// fast-marching sweep; spec.md §9 sanctions "Dijkstra on grid graph with
// 8-neighbor heuristic" as a conforming substitute when no fast-marching
// library is available.
package nav

import (
	"container/heap"
	"math"

	"github.com/akmonengine/crowdsim/simerr"
	"github.com/akmonengine/crowdsim/vec2"
)

// Field is a discretized navigation field over a rectangular grid, row
// (y) major: the cell at (row, col), flat index idx(row, col), corresponds to world position
// (origin.X + col*Step, origin.Y + row*Step).
type Field struct {
	Origin vec2.Vec2
	Step   float64
	Rows   int
	Cols   int

	Mask []bool // true where an obstacle cell lies; blocks the target solve.

	DistTarget   []float64  // S: distance-to-target, +Inf where unreachable/masked.
	DistObstacle []float64  // Φ: distance-to-nearest-obstacle-cell, everywhere.
	DirTarget    []vec2.Vec2
	DirObstacle  []vec2.Vec2
	DirMerged    []vec2.Vec2
}

func (f *Field) idx(row, col int) int { return row*f.Cols + col }

// NewGrid allocates an empty field covering [origin, origin+(cols-1,rows-1)*step].
func NewGrid(origin vec2.Vec2, step float64, rows, cols int) *Field {
	n := rows * cols
	return &Field{
		Origin: origin, Step: step, Rows: rows, Cols: cols,
		Mask:         make([]bool, n),
		DistTarget:   make([]float64, n),
		DistObstacle: make([]float64, n),
		DirTarget:    make([]vec2.Vec2, n),
		DirObstacle:  make([]vec2.Vec2, n),
		DirMerged:    make([]vec2.Vec2, n),
	}
}

// Solve builds the full navigation field: the masked Eikonal distance-to-
// target (targetCells, excluding Mask), the unmasked distance-to-obstacle
// (obstacleCells), their direction fields, and the merged blend with the
// given obstacle-avoidance strength and radius.
func (f *Field) Solve(targetCells, obstacleCells []int, value, radius float64) error {
	if len(targetCells) == 0 {
		return &simerr.DomainInvalidError{Reason: "navigation field has no target cells"}
	}

	f.DistTarget = f.dijkstra(targetCells, f.Mask)
	f.DistObstacle = f.dijkstra(obstacleCells, nil)

	f.DirTarget = f.gradientDirections(f.DistTarget)
	f.DirObstacle = f.gradientDirections(f.DistObstacle)
	f.DirMerged = make([]vec2.Vec2, len(f.DirTarget))
	for i := range f.DirMerged {
		x := math.Abs(f.DistObstacle[i])
		lambda := blendWeight(x, value, radius)
		f.DirMerged[i] = f.DirObstacle[i].Mul(-lambda).Add(f.DirTarget[i].Mul(1 - lambda))
	}
	return nil
}

// blendWeight implements λ(x) = value^(x/radius) for x < 1.1*radius, else 0.
func blendWeight(x, value, radius float64) float64 {
	if radius <= 0 || x >= 1.1*radius {
		return 0
	}
	return math.Pow(value, x/radius)
}

type heapItem struct {
	cell int
	dist float64
}

type cellHeap []heapItem

func (h cellHeap) Len() int            { return len(h) }
func (h cellHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h cellHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *cellHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// dijkstra runs a multi-source shortest-path search from sources over the
// 8-neighbor grid graph, treating mask (if non-nil) cells as impassable.
// Unreachable cells are left at +Inf.
func (f *Field) dijkstra(sources []int, mask []bool) []float64 {
	n := f.Rows * f.Cols
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}

	blocked := func(c int) bool { return mask != nil && mask[c] }

	h := &cellHeap{}
	heap.Init(h)
	for _, s := range sources {
		if blocked(s) {
			continue
		}
		if dist[s] > 0 {
			dist[s] = 0
			heap.Push(h, heapItem{cell: s, dist: 0})
		}
	}

	straight := f.Step
	diagonal := f.Step * math.Sqrt2

	for h.Len() > 0 {
		top := heap.Pop(h).(heapItem)
		if top.dist > dist[top.cell] {
			continue
		}
		row, col := top.cell/f.Cols, top.cell%f.Cols
		for _, nb := range neighbors8(row, col, f.Rows, f.Cols) {
			if blocked(nb.cell) {
				continue
			}
			w := straight
			if nb.diagonal {
				w = diagonal
			}
			nd := dist[top.cell] + w
			if nd < dist[nb.cell] {
				dist[nb.cell] = nd
				heap.Push(h, heapItem{cell: nb.cell, dist: nd})
			}
		}
	}
	return dist
}

type neighbor struct {
	cell     int
	diagonal bool
}

func neighbors8(row, col, rows, cols int) []neighbor {
	out := make([]neighbor, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || r >= rows || c < 0 || c >= cols {
				continue
			}
			out = append(out, neighbor{cell: r*cols + c, diagonal: dr != 0 && dc != 0})
		}
	}
	return out
}

// gradientDirections computes, per cell, the unit direction of steepest
// descent of the scalar field via centered differences, with the axis flip
// from (row, col) index space to (x, y) world space per spec.md §4.7: the
// raw gradient (u, v) = (d/drow, d/dcol) is remapped to (v, u) before
// normalization. Zero-magnitude gradients map to the zero vector.
func (f *Field) gradientDirections(field []float64) []vec2.Vec2 {
	out := make([]vec2.Vec2, len(field))
	at := func(row, col int) float64 {
		row = clampInt(row, 0, f.Rows-1)
		col = clampInt(col, 0, f.Cols-1)
		v := field[f.idx(row, col)]
		if math.IsInf(v, 1) {
			return 0
		}
		return v
	}
	for row := 0; row < f.Rows; row++ {
		for col := 0; col < f.Cols; col++ {
			u := (at(row+1, col) - at(row-1, col)) / (2 * f.Step)
			v := (at(row, col+1) - at(row, col-1)) / (2 * f.Step)
			g := vec2.Vec2{v, u}
			out[f.idx(row, col)] = vec2.Unit(g.Mul(-1))
		}
	}
	return out
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lookup returns the merged target direction at world position p, clamping
// the rounded grid index to the field bounds rather than indexing outside.
func (f *Field) Lookup(p vec2.Vec2) vec2.Vec2 {
	col := clampInt(int(math.Round((p[0]-f.Origin[0])/f.Step)), 0, f.Cols-1)
	row := clampInt(int(math.Round((p[1]-f.Origin[1])/f.Step)), 0, f.Rows-1)
	return f.DirMerged[f.idx(row, col)]
}
