package navigation

import (
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/parameter"
)

const costUnreachable = 1<<30 - 1

// Oracle reports static terrain walkability, dynamic occupancy is ignored
type Oracle interface {
	IsWalkable(c core.Cell) bool
}

// CostOracle adds a per-cell entry cost on top of the 10/14 step cost
type CostOracle interface {
	Oracle
	MoveCost(c core.Cell) int
}

// Bounded oracles clip every field to their extent
type Bounded interface {
	Bounds() core.Rect
}

// Stats describes the last rebuild
type Stats struct {
	Expanded       int  // Cells finalized
	CapHit         bool // Search stopped at the expansion cap
	Targets        int  // Distinct in-bounds targets requested
	TargetsReached int  // Targets finalized before termination
}

// DistanceField stores cost-to-source for every reachable cell within bounds
// Always rebuilt whole, never patched
type DistanceField struct {
	oracle       Oracle
	costs        CostOracle // nil when oracle has no per-cell cost
	connectivity int
	expansionCap int

	source core.Cell
	bounds core.Rect
	valid  bool

	dist   []int32 // Weighted distance from source (cardinal=10, diagonal=14, plus entry cost)
	closed []bool  // Finalized by Dijkstra

	// Reusable buffers across rebuilds
	heap    minHeap
	pending map[int32]struct{}

	stats Stats
}

// Option configures a DistanceField
type Option func(*DistanceField)

// WithConnectivity selects 4- or 8-connected search, other values are ignored
func WithConnectivity(n int) Option {
	return func(f *DistanceField) {
		if n == 4 || n == 8 {
			f.connectivity = n
		}
	}
}

// WithExpansionCap overrides the absolute cap on finalized cells
func WithExpansionCap(n int) Option {
	return func(f *DistanceField) {
		if n > 0 {
			f.expansionCap = n
		}
	}
}

// New creates an empty field over the given terrain oracle
func New(oracle Oracle, opts ...Option) *DistanceField {
	f := &DistanceField{
		oracle:       oracle,
		connectivity: parameter.NavConnectivity,
		expansionCap: parameter.NavExpansionCap,
		pending:      make(map[int32]struct{}),
	}
	if co, ok := oracle.(CostOracle); ok {
		f.costs = co
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ComputeMargin returns the farthest target's Chebyshev distance plus buffer, clamped to [NavMarginMin, NavMarginMax]
func ComputeMargin(source core.Cell, targets []core.Cell, buffer int) int {
	farthest := 0
	for _, t := range targets {
		farthest = max(farthest, source.Chebyshev(t))
	}
	return min(max(farthest+buffer, parameter.NavMarginMin), parameter.NavMarginMax)
}

// Rebuild runs uniform-cost search outward from source within source ± margin,
// widened to cover every target ± margin and clipped to Bounded oracles
// Terminates once all in-bounds targets are finalized or the expansion cap is reached
func (f *DistanceField) Rebuild(source core.Cell, targets []core.Cell, margin int) {
	margin = max(margin, 0)

	bounds := core.RectAround(source, margin)
	for _, t := range targets {
		bounds = bounds.Union(core.RectAround(t, margin))
	}
	if b, ok := f.oracle.(Bounded); ok {
		bounds = bounds.Intersect(b.Bounds())
	}

	f.source = source
	f.bounds = bounds
	f.stats = Stats{}

	if bounds.Empty() || !bounds.Contains(source) {
		f.valid = false
		return
	}

	f.reset(bounds.Width() * bounds.Height())

	clear(f.pending)
	for _, t := range targets {
		if idx := bounds.Index(t); idx >= 0 {
			f.pending[int32(idx)] = struct{}{}
		}
	}
	f.stats.Targets = len(f.pending)
	earlyExit := len(f.pending) > 0

	w := bounds.Width()
	srcIdx := int32(bounds.Index(source))
	f.dist[srcIdx] = 0

	f.heap = f.heap[:0]
	f.heap.push(heapEntry{idx: srcIdx, dist: 0})

	for len(f.heap) > 0 {
		if f.stats.Expanded >= f.expansionCap {
			f.stats.CapHit = true
			break
		}

		entry := f.heap.pop()
		if f.closed[entry.idx] || entry.dist > f.dist[entry.idx] {
			continue // Stale entry
		}
		f.closed[entry.idx] = true
		f.stats.Expanded++

		if _, ok := f.pending[entry.idx]; ok {
			delete(f.pending, entry.idx)
			f.stats.TargetsReached++
			if earlyExit && len(f.pending) == 0 {
				break
			}
		}

		cur := core.Cell{X: bounds.MinX + int(entry.idx)%w, Y: bounds.MinY + int(entry.idx)/w}

		for d := core.Direction(0); d < core.DirCount; d++ {
			diagonal := d.Diagonal()
			if diagonal && f.connectivity == 4 {
				continue
			}

			next := d.Step(cur)
			nIdx := bounds.Index(next)
			if nIdx < 0 || f.closed[nIdx] {
				continue
			}
			if !f.oracle.IsWalkable(next) {
				continue
			}
			if diagonal && CutsCorner(f.oracle, cur, d) {
				continue
			}

			step := parameter.NavCostOrthogonal
			if diagonal {
				step = parameter.NavCostDiagonal
			}
			if f.costs != nil {
				step += f.costs.MoveCost(next)
			}

			newDist := entry.dist + int32(step)
			if newDist < f.dist[nIdx] {
				f.dist[nIdx] = newDist
				f.heap.push(heapEntry{idx: int32(nIdx), dist: newDist})
			}
		}
	}

	f.valid = true
}

func (f *DistanceField) reset(size int) {
	if cap(f.dist) < size {
		f.dist = make([]int32, size)
		f.closed = make([]bool, size)
	} else {
		f.dist = f.dist[:size]
		f.closed = f.closed[:size]
	}
	for i := 0; i < size; i++ {
		f.dist[i] = costUnreachable
		f.closed[i] = false
	}
}

// CutsCorner reports whether a diagonal step from c in direction d has a blocked shoulder
// Orthogonal directions never cut corners
func CutsCorner(o Oracle, c core.Cell, d core.Direction) bool {
	if !d.Diagonal() {
		return false
	}
	dx, dy := d.Vector()
	return !o.IsWalkable(c.Add(dx, 0)) || !o.IsWalkable(c.Add(0, dy))
}

// Distance returns cost-to-source, NavUnreachable (-1) if never finalized,
// NavOutOfBounds (-2) outside the field or before the first rebuild
func (f *DistanceField) Distance(c core.Cell) int {
	if !f.valid {
		return parameter.NavOutOfBounds
	}
	idx := f.bounds.Index(c)
	if idx < 0 {
		return parameter.NavOutOfBounds
	}
	if !f.closed[idx] {
		return parameter.NavUnreachable
	}
	return int(f.dist[idx])
}

// NextStepTowardSource returns the improving neighbor of from with minimum distance
// Ties: alignment with the clamped direction to the source (higher first), orthogonal before diagonal,
// then direction index. Returns from unchanged at the source or when no neighbor improves
func (f *DistanceField) NextStepTowardSource(from core.Cell) core.Cell {
	d := f.Distance(from)
	if d <= 0 {
		return from
	}

	dirX := core.Sign(f.source.X - from.X)
	dirY := core.Sign(f.source.Y - from.Y)

	best := from
	bestDist := d
	bestAlign := -3
	bestDiagonal := true
	found := false

	for dir := core.Direction(0); dir < core.DirCount; dir++ {
		diagonal := dir.Diagonal()
		if diagonal && f.connectivity == 4 {
			continue
		}

		next := dir.Step(from)
		if !f.oracle.IsWalkable(next) {
			continue
		}
		if diagonal && CutsCorner(f.oracle, from, dir) {
			continue
		}

		nd := f.Distance(next)
		if nd < 0 || nd >= d {
			continue
		}

		dx, dy := dir.Vector()
		align := dx*dirX + dy*dirY

		better := !found
		if !better {
			switch {
			case nd != bestDist:
				better = nd < bestDist
			case align != bestAlign:
				better = align > bestAlign
			case diagonal != bestDiagonal:
				better = !diagonal
			}
		}
		if better {
			best, bestDist, bestAlign, bestDiagonal = next, nd, align, diagonal
			found = true
		}
	}

	return best
}

// PathToSource follows greedy descent from c, at most limit steps
// The returned path excludes c and ends at the source when reachable
func (f *DistanceField) PathToSource(c core.Cell, limit int) []core.Cell {
	var path []core.Cell
	for i := 0; i < limit; i++ {
		next := f.NextStepTowardSource(c)
		if next == c {
			break
		}
		path = append(path, next)
		c = next
	}
	return path
}

// Source returns the cell of the last rebuild
func (f *DistanceField) Source() core.Cell {
	return f.source
}

// Bounds returns the rect searched by the last rebuild
func (f *DistanceField) Bounds() core.Rect {
	return f.bounds
}

// Valid reports whether a rebuild has produced a usable field
func (f *DistanceField) Valid() bool {
	return f.valid
}

// Stats returns counters of the last rebuild
func (f *DistanceField) Stats() Stats {
	return f.stats
}

// Invalidate drops the field, every query reports out of bounds until the next rebuild
func (f *DistanceField) Invalidate() {
	f.valid = false
}
