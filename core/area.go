package core

// Rect is an inclusive rectangular region of cells
type Rect struct {
	MinX, MinY int
	MaxX, MaxY int
}

// RectAround returns the square of cells within margin of center
func RectAround(center Cell, margin int) Rect {
	return Rect{
		MinX: center.X - margin,
		MinY: center.Y - margin,
		MaxX: center.X + margin,
		MaxY: center.Y + margin,
	}
}

// Width returns the number of columns, 0 for an empty rect
func (r Rect) Width() int {
	if r.MaxX < r.MinX {
		return 0
	}
	return r.MaxX - r.MinX + 1
}

// Height returns the number of rows, 0 for an empty rect
func (r Rect) Height() int {
	if r.MaxY < r.MinY {
		return 0
	}
	return r.MaxY - r.MinY + 1
}

// Empty reports whether the rect contains no cells
func (r Rect) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Contains reports whether c lies inside the rect
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.MinX && c.X <= r.MaxX && c.Y >= r.MinY && c.Y <= r.MaxY
}

// Union returns the smallest rect covering both r and o
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		MinX: min(r.MinX, o.MinX),
		MinY: min(r.MinY, o.MinY),
		MaxX: max(r.MaxX, o.MaxX),
		MaxY: max(r.MaxY, o.MaxY),
	}
}

// Intersect returns the overlap of r and o, possibly empty
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinX: max(r.MinX, o.MinX),
		MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX),
		MaxY: min(r.MaxY, o.MaxY),
	}
}

// Index returns the flat row-major index of c within the rect, -1 if outside
func (r Rect) Index(c Cell) int {
	if !r.Contains(c) {
		return -1
	}
	return (c.Y-r.MinY)*r.Width() + (c.X - r.MinX)
}

// CellAt is the inverse of Index
func (r Rect) CellAt(idx int) Cell {
	w := r.Width()
	return Cell{X: r.MinX + idx%w, Y: r.MinY + idx/w}
}
