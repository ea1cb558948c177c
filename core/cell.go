package core

import "fmt"

// Cell is an integer grid coordinate
// Compared and hashed by value, safe as a map key
type Cell struct {
	X, Y int
}

// C is shorthand for Cell{X: x, Y: y}
func C(x, y int) Cell {
	return Cell{X: x, Y: y}
}

// Add returns the cell offset by (dx, dy)
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Sub returns the component-wise difference c - o
func (c Cell) Sub(o Cell) (dx, dy int) {
	return c.X - o.X, c.Y - o.Y
}

// Chebyshev returns the king-move distance between two cells
func (c Cell) Chebyshev(o Cell) int {
	return max(Abs(c.X-o.X), Abs(c.Y-o.Y))
}

// Manhattan returns the orthogonal-move distance between two cells
func (c Cell) Manhattan(o Cell) int {
	return Abs(c.X-o.X) + Abs(c.Y-o.Y)
}

// Adjacent reports whether o is one of the 8 neighbors of c
func (c Cell) Adjacent(o Cell) bool {
	return c != o && c.Chebyshev(o) == 1
}

// Less orders cells row-major (Y, then X), used for deterministic iteration
func (c Cell) Less(o Cell) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Abs returns the absolute value of an int
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Sign returns -1, 0 or 1
func Sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
