package terrain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lixenwraith/vi-tactics/core"
)

// Cost is a per-cell movement cost
// Negative = impassable, >= 0 = walkable with additive entry cost
type Cost int32

const (
	// Blocked is the canonical impassable cost
	Blocked Cost = -1
	// Floor is plain walkable ground
	Floor Cost = 0
)

// ErrBadLayout is returned by Parse for malformed rows
var ErrBadLayout = errors.New("terrain: bad layout")

// Grid is a dense rectangular terrain map anchored at (0,0)
// Cells outside the grid are impassable
type Grid struct {
	Width, Height int
	costs         []Cost
}

// NewGrid creates an all-floor grid
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		costs:  make([]Cost, width*height),
	}
}

// Bounds returns the rect covered by the grid
func (g *Grid) Bounds() core.Rect {
	return core.Rect{MinX: 0, MinY: 0, MaxX: g.Width - 1, MaxY: g.Height - 1}
}

// InBounds reports whether c lies on the grid
func (g *Grid) InBounds(c core.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// Set assigns the cost of a cell, ignored out of bounds
func (g *Grid) Set(c core.Cell, cost Cost) {
	if !g.InBounds(c) {
		return
	}
	g.costs[c.Y*g.Width+c.X] = cost
}

// Fill assigns cost to every cell of r clipped to the grid
func (g *Grid) Fill(r core.Rect, cost Cost) {
	r = r.Intersect(g.Bounds())
	for y := r.MinY; y <= r.MaxY; y++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			g.costs[y*g.Width+x] = cost
		}
	}
}

// CostAt returns the cell cost, Blocked out of bounds
func (g *Grid) CostAt(c core.Cell) Cost {
	if !g.InBounds(c) {
		return Blocked
	}
	return g.costs[c.Y*g.Width+c.X]
}

// IsWalkable ignores dynamic occupancy
func (g *Grid) IsWalkable(c core.Cell) bool {
	return g.CostAt(c) >= 0
}

// MoveCost returns the additive cost of entering c, 0 for impassable cells
func (g *Grid) MoveCost(c core.Cell) int {
	cost := g.CostAt(c)
	if cost < 0 {
		return 0
	}
	return int(cost)
}

// Legend maps layout runes to costs
// '#' wall, '.' floor, digits 1-9 floor with that additive cost
var Legend = map[rune]Cost{
	'#': Blocked,
	'.': Floor,
	' ': Floor,
}

// Parse builds a grid from ASCII rows, all rows must share one width
// Runes not in Legend that are not digits are treated as floor so that
// actor glyphs can be drawn directly on the layout
func Parse(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrBadLayout)
	}
	width := len([]rune(strings.TrimRight(rows[0], "\r")))
	if width == 0 {
		return nil, fmt.Errorf("%w: empty first row", ErrBadLayout)
	}

	g := NewGrid(width, len(rows))
	for y, row := range rows {
		runes := []rune(strings.TrimRight(row, "\r"))
		if len(runes) != width {
			return nil, fmt.Errorf("%w: row %d has width %d, want %d", ErrBadLayout, y, len(runes), width)
		}
		for x, r := range runes {
			g.costs[y*width+x] = runeCost(r)
		}
	}
	return g, nil
}

func runeCost(r rune) Cost {
	if cost, ok := Legend[r]; ok {
		return cost
	}
	if r >= '1' && r <= '9' {
		return Cost(r - '0')
	}
	return Floor
}

// String renders the grid back to layout rows
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			switch cost := g.costs[y*g.Width+x]; {
			case cost < 0:
				b.WriteByte('#')
			case cost == 0:
				b.WriteByte('.')
			case cost < 10:
				b.WriteByte(byte('0' + cost))
			default:
				b.WriteByte('9')
			}
		}
		if y < g.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
