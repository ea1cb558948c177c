package navigation

import (
	"slices"

	"github.com/lixenwraith/vi-tactics/core"
)

// FieldCache skips rebuilds whose inputs match the last one
// Rebuild is deterministic, so identical source, targets and margin reproduce the stored field exactly.
// Terrain edits must be followed by Invalidate on the field or the cache
type FieldCache struct {
	Field *DistanceField

	lastSource  core.Cell
	lastTargets []core.Cell
	lastMargin  int
	primed      bool

	Rebuilds int
	Reuses   int
}

// NewFieldCache wraps field
func NewFieldCache(field *DistanceField) *FieldCache {
	return &FieldCache{
		Field:       field,
		lastTargets: make([]core.Cell, 0, 8),
	}
}

// Refresh rebuilds the field unless the previous rebuild already used these inputs
// Returns true if the field was recomputed
func (c *FieldCache) Refresh(source core.Cell, targets []core.Cell, margin int) bool {
	sorted := slices.Clone(targets)
	slices.SortFunc(sorted, compareCells)
	sorted = slices.Compact(sorted)

	if c.primed && c.Field.Valid() && source == c.lastSource && margin == c.lastMargin &&
		slices.Equal(sorted, c.lastTargets) {
		c.Reuses++
		return false
	}

	c.Field.Rebuild(source, targets, margin)
	c.lastSource = source
	c.lastMargin = margin
	c.lastTargets = append(c.lastTargets[:0], sorted...)
	c.primed = true
	c.Rebuilds++
	return true
}

// Invalidate forces the next Refresh to rebuild
func (c *FieldCache) Invalidate() {
	c.primed = false
	c.Field.Invalidate()
}

func compareCells(a, b core.Cell) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	}
	return 1
}
