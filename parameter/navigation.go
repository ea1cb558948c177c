package parameter

// Navigation - Distance Field
const (
	// NavCostOrthogonal is the step cost of a cardinal move
	NavCostOrthogonal = 10

	// NavCostDiagonal is the step cost of a diagonal move (≈10√2)
	NavCostDiagonal = 14

	// NavExpansionCap bounds the number of cells finalized by one rebuild
	NavExpansionCap = 300_000

	// NavMarginMin and NavMarginMax clamp the rebuild margin around the source (cells)
	NavMarginMin = 8
	NavMarginMax = 64

	// NavMarginBuffer is added to the farthest tracked target when computing the margin (cells)
	NavMarginBuffer = 4

	// NavConnectivity is the default neighbor count (4 or 8)
	NavConnectivity = 8
)

// Distance sentinels
const (
	// NavUnreachable is reported for cells inside bounds that were never finalized
	NavUnreachable = -1

	// NavOutOfBounds is reported for cells outside the computed field
	NavOutOfBounds = -2
)
