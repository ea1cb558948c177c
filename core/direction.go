package core

// Direction indexes the 8 neighbor offsets: N=0, NE=1, E=2, SE=3, S=4, SW=5, W=6, NW=7
type Direction int8

const (
	DirNone  Direction = -1
	DirN     Direction = 0
	DirNE    Direction = 1
	DirE     Direction = 2
	DirSE    Direction = 3
	DirS     Direction = 4
	DirSW    Direction = 5
	DirW     Direction = 6
	DirNW    Direction = 7
	DirCount Direction = 8
)

// DirVectors matches DirN..DirNW
var DirVectors = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// OrthogonalDirs are the 4-connected subset
var OrthogonalDirs = [4]Direction{DirN, DirE, DirS, DirW}

var dirNames = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Vector returns the (dx, dy) offset, zero for DirNone
func (d Direction) Vector() (int, int) {
	if d < 0 || d >= DirCount {
		return 0, 0
	}
	return DirVectors[d][0], DirVectors[d][1]
}

// Diagonal reports whether the direction moves on both axes
func (d Direction) Diagonal() bool {
	return d >= 0 && d < DirCount && d%2 == 1
}

// Step returns the neighbor of c in this direction
func (d Direction) Step(c Cell) Cell {
	dx, dy := d.Vector()
	return c.Add(dx, dy)
}

func (d Direction) String() string {
	if d < 0 || d >= DirCount {
		return "none"
	}
	return dirNames[d]
}

// DirectionTo returns the direction of the unit step from -> to
// Non-adjacent targets are reduced to their sign vector, DirNone when equal
func DirectionTo(from, to Cell) Direction {
	dx, dy := Sign(to.X-from.X), Sign(to.Y-from.Y)
	for i, v := range DirVectors {
		if v[0] == dx && v[1] == dy {
			return Direction(i)
		}
	}
	return DirNone
}
