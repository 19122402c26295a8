// Package grid implements the uniform spatial partition (C7): a "block
// list" bucketing agent positions into square cells, plus deterministic
// near-pair enumeration over the 3x3 cell neighborhood (reduced to 5
// forward offsets to avoid double-counting), and a brute-force enumerator
// for small populations and cross-checking.
package grid

import (
	"math"
	"sort"

	"github.com/akmonengine/crowdsim/vec2"
)

// CellKey identifies a grid cell by its integer (x, y) coordinates.
type CellKey struct {
	X, Y int
}

// BlockList maps each occupied cell to the ascending-sorted indices of the
// agents it contains.
type BlockList struct {
	CellSize float64
	cells    map[CellKey][]int
}

// Build buckets every position into cells of the given size, keyed by
// floor(position/cellSize). Bucket contents are sorted ascending so that
// iteration order is deterministic regardless of insertion order.
func Build(positions []vec2.Vec2, cellSize float64) *BlockList {
	bl := &BlockList{CellSize: cellSize, cells: make(map[CellKey][]int)}
	for i, p := range positions {
		key := bl.cellOf(p)
		bl.cells[key] = append(bl.cells[key], i)
	}
	for key := range bl.cells {
		sort.Ints(bl.cells[key])
	}
	return bl
}

func (bl *BlockList) cellOf(p vec2.Vec2) CellKey {
	return CellKey{
		X: int(math.Floor(p[0] / bl.CellSize)),
		Y: int(math.Floor(p[1] / bl.CellSize)),
	}
}

// Cell returns the (sorted) agent indices bucketed in the given cell.
func (bl *BlockList) Cell(key CellKey) []int {
	return bl.cells[key]
}

// Pair is an ordered agent index pair with i < j.
type Pair struct {
	I, J int
}

// forwardOffsets are the 5 of the 9 cell-neighborhood offsets that, applied
// from every occupied cell, cover each unordered cell-pair exactly once:
// the cell itself, plus east, north, north-east, and north-west.
var forwardOffsets = []CellKey{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// Pairs enumerates all near-pairs (i, j) with i < j whose agents occupy the
// same or a neighboring cell, in a deterministic order: ascending cell key
// order (as returned by Go's map iteration is not itself ordered, so the
// occupied-cell set is sorted first), then ascending offset order, then
// ascending bucket order within each cell.
func (bl *BlockList) Pairs() []Pair {
	keys := make([]CellKey, 0, len(bl.cells))
	for k := range bl.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].X != keys[b].X {
			return keys[a].X < keys[b].X
		}
		return keys[a].Y < keys[b].Y
	})

	var pairs []Pair
	for _, c := range keys {
		bucketC := bl.cells[c]
		for _, off := range forwardOffsets {
			c2 := CellKey{c.X + off.X, c.Y + off.Y}
			if off == (CellKey{0, 0}) {
				for a := 0; a < len(bucketC); a++ {
					for b := a + 1; b < len(bucketC); b++ {
						pairs = append(pairs, makePair(bucketC[a], bucketC[b]))
					}
				}
				continue
			}
			bucketC2, ok := bl.cells[c2]
			if !ok {
				continue
			}
			for _, i := range bucketC {
				for _, j := range bucketC2 {
					pairs = append(pairs, makePair(i, j))
				}
			}
		}
	}
	return pairs
}

func makePair(i, j int) Pair {
	if i < j {
		return Pair{i, j}
	}
	return Pair{j, i}
}

// BruteForcePairs enumerates all i<j pairs among n agents directly, with no
// spatial acceleration. Used for small populations and to cross-check the
// block-list enumerator: both must produce the same multiset of pairs.
func BruteForcePairs(n int) []Pair {
	pairs := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Pair{i, j})
		}
	}
	return pairs
}
