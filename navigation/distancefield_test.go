package navigation

import (
	"testing"

	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/parameter"
	"github.com/lixenwraith/vi-tactics/terrain"
)

func mustParse(t *testing.T, rows ...string) *terrain.Grid {
	t.Helper()
	g, err := terrain.Parse(rows)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return g
}

// countingOracle counts walkability queries to observe early termination
type countingOracle struct {
	grid  *terrain.Grid
	calls int
}

func (o *countingOracle) IsWalkable(c core.Cell) bool {
	o.calls++
	return o.grid.IsWalkable(c)
}

func TestRebuild_OpenFloorDistances(t *testing.T) {
	f := New(terrain.NewGrid(20, 20))
	f.Rebuild(core.C(10, 10), nil, 8)

	tests := []struct {
		cell core.Cell
		want int
	}{
		{core.C(10, 10), 0},
		{core.C(11, 10), 10},
		{core.C(11, 11), 14},
		{core.C(13, 11), 34}, // one diagonal + two cardinal
		{core.C(10, 18), 80},
	}
	for _, tt := range tests {
		if got := f.Distance(tt.cell); got != tt.want {
			t.Errorf("Distance(%v) = %d, want %d", tt.cell, got, tt.want)
		}
	}
}

func TestDistance_Sentinels(t *testing.T) {
	g := mustParse(t,
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	)

	f := New(g)
	if got := f.Distance(core.C(0, 0)); got != parameter.NavOutOfBounds {
		t.Errorf("Expected out-of-bounds before first rebuild, got %d", got)
	}

	f.Rebuild(core.C(0, 0), nil, 10)

	if got := f.Distance(core.C(2, 2)); got != parameter.NavUnreachable {
		t.Errorf("Expected enclosed cell unreachable, got %d", got)
	}
	if got := f.Distance(core.C(1, 1)); got != parameter.NavUnreachable {
		t.Errorf("Expected wall cell unreachable, got %d", got)
	}
	if got := f.Distance(core.C(-3, 0)); got != parameter.NavOutOfBounds {
		t.Errorf("Expected out-of-bounds outside grid, got %d", got)
	}
	if got := f.Distance(core.C(4, 4)); got < 0 {
		t.Errorf("Expected far corner reachable, got %d", got)
	}
}

func TestRebuild_BoundsFromMargin(t *testing.T) {
	f := New(terrain.NewGrid(100, 100))
	f.Rebuild(core.C(50, 50), nil, 8)

	if got := f.Distance(core.C(58, 50)); got != 80 {
		t.Errorf("Expected edge of margin reachable at 80, got %d", got)
	}
	if got := f.Distance(core.C(59, 50)); got != parameter.NavOutOfBounds {
		t.Errorf("Expected beyond margin out of bounds, got %d", got)
	}

	// Targets widen the bounds
	f.Rebuild(core.C(50, 50), []core.Cell{core.C(70, 50)}, 8)
	if got := f.Distance(core.C(70, 50)); got != 200 {
		t.Errorf("Expected target reachable at 200, got %d", got)
	}
}

func TestRebuild_NoCornerCutting(t *testing.T) {
	// Source at (0,0), (1,1) only reachable diagonally past the wall at (1,0)
	g := mustParse(t,
		".#",
		"..",
	)
	f := New(g)
	f.Rebuild(core.C(0, 0), nil, 4)

	// Must go (0,0)->(0,1)->(1,1) = 20 rather than the cut diagonal 14
	if got := f.Distance(core.C(1, 1)); got != 20 {
		t.Errorf("Expected 20 without corner cutting, got %d", got)
	}
	if next := f.NextStepTowardSource(core.C(1, 1)); next != core.C(0, 1) {
		t.Errorf("Expected step to (0,1), got %v", next)
	}
}

func TestNextStep_AlignmentScenario(t *testing.T) {
	f := New(terrain.NewGrid(100, 100))
	f.Rebuild(core.C(32, 31), nil, 100)

	got := f.NextStepTowardSource(core.C(31, 28))
	if got != core.C(32, 29) {
		t.Fatalf("Expected aligned step (32,29), got %v", got)
	}
	if f.Distance(got) >= f.Distance(core.C(31, 28)) {
		t.Errorf("Expected step to reduce distance")
	}
}

func TestNextStep_OrthogonalPreferredOnFullTie(t *testing.T) {
	// The cost-4 cell makes N, NE and NW all 14 from the source with equal alignment
	g := mustParse(t,
		".......",
		"...4...",
		".......",
		".......",
	)
	f := New(g)
	f.Rebuild(core.C(3, 0), nil, 10)

	for _, c := range []core.Cell{core.C(2, 1), core.C(3, 1), core.C(4, 1)} {
		if got := f.Distance(c); got != 14 {
			t.Fatalf("Expected tie distance 14 at %v, got %d", c, got)
		}
	}
	if got := f.NextStepTowardSource(core.C(3, 2)); got != core.C(3, 1) {
		t.Errorf("Expected orthogonal step (3,1), got %v", got)
	}
}

func TestNextStep_StaysPut(t *testing.T) {
	g := mustParse(t,
		"...#.",
		"...#.",
		"...#.",
	)
	f := New(g)
	f.Rebuild(core.C(0, 0), nil, 8)

	if got := f.NextStepTowardSource(core.C(0, 0)); got != core.C(0, 0) {
		t.Errorf("Expected source to stay put, got %v", got)
	}
	if got := f.NextStepTowardSource(core.C(4, 1)); got != core.C(4, 1) {
		t.Errorf("Expected unreachable cell to stay put, got %v", got)
	}
	if got := f.NextStepTowardSource(core.C(40, 40)); got != core.C(40, 40) {
		t.Errorf("Expected out-of-bounds cell to stay put, got %v", got)
	}
}

func TestNextStep_GreedyDescentNeverIncreases(t *testing.T) {
	g := mustParse(t,
		"..........",
		".####.###.",
		".#......#.",
		".#.####.#.",
		".#.#..#.#.",
		".#.#..#...",
		".#.##.###.",
		".#........",
		".########.",
		"..........",
	)
	f := New(g)
	f.Rebuild(core.C(4, 4), nil, 16)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := core.C(x, y)
			d := f.Distance(c)
			if d < 0 {
				continue
			}
			next := f.NextStepTowardSource(c)
			nd := f.Distance(next)
			if nd > d {
				t.Errorf("Step from %v (%d) to %v (%d) increased distance", c, d, next, nd)
			}
			if nd == d && next != c {
				t.Errorf("Equal-distance step from %v to %v", c, next)
			}
			if d > 0 && next == c {
				t.Errorf("Reachable cell %v (%d) has no descent", c, d)
			}
			if !c.Adjacent(next) && next != c {
				t.Errorf("Non-adjacent step from %v to %v", c, next)
			}
		}
	}

	path := f.PathToSource(core.C(0, 9), 100)
	if len(path) == 0 || path[len(path)-1] != core.C(4, 4) {
		t.Errorf("Expected path to end at source, got %v", path)
	}
}

func TestRebuild_FourConnected(t *testing.T) {
	f := New(terrain.NewGrid(10, 10), WithConnectivity(4))
	f.Rebuild(core.C(0, 0), nil, 9)

	if got := f.Distance(core.C(3, 3)); got != 60 {
		t.Errorf("Expected manhattan cost 60, got %d", got)
	}
	next := f.NextStepTowardSource(core.C(3, 3))
	if next.Manhattan(core.C(3, 3)) != 1 {
		t.Errorf("Expected orthogonal step, got %v", next)
	}
}

func TestRebuild_TerrainCost(t *testing.T) {
	g := mustParse(t,
		".5.",
		"...",
	)
	f := New(g)
	f.Rebuild(core.C(0, 0), nil, 4)

	// Entering the cost-5 cell costs 15, crossing it (25) still beats the diagonal detour (28)
	if got := f.Distance(core.C(1, 0)); got != 15 {
		t.Errorf("Expected 15 into cost cell, got %d", got)
	}
	if got := f.Distance(core.C(2, 0)); got != 25 {
		t.Errorf("Expected cost 25, got %d", got)
	}
}

func TestRebuild_EarlyExitOnTargets(t *testing.T) {
	oracle := &countingOracle{grid: terrain.NewGrid(200, 200)}
	f := New(oracle)
	f.Rebuild(core.C(100, 100), []core.Cell{core.C(101, 100)}, 64)

	stats := f.Stats()
	if stats.TargetsReached != 1 || stats.Targets != 1 {
		t.Fatalf("Expected target reached, got %+v", stats)
	}
	if stats.Expanded > 16 {
		t.Errorf("Expected early exit after few expansions, got %d", stats.Expanded)
	}
	if got := f.Distance(core.C(101, 100)); got != 10 {
		t.Errorf("Expected target distance 10, got %d", got)
	}
	if got := f.Distance(core.C(140, 100)); got != parameter.NavUnreachable {
		t.Errorf("Expected unexpanded cell unreachable, got %d", got)
	}
}

func TestRebuild_ExpansionCap(t *testing.T) {
	f := New(terrain.NewGrid(100, 100), WithExpansionCap(50))
	target := core.C(90, 90)
	f.Rebuild(core.C(10, 10), []core.Cell{target}, 64)

	stats := f.Stats()
	if !stats.CapHit {
		t.Fatalf("Expected cap hit, got %+v", stats)
	}
	if stats.Expanded != 50 {
		t.Errorf("Expected exactly 50 expansions, got %d", stats.Expanded)
	}
	if got := f.Distance(target); got != parameter.NavUnreachable {
		t.Errorf("Expected unreached target to report -1, got %d", got)
	}
}

func TestComputeMargin_Clamped(t *testing.T) {
	src := core.C(0, 0)
	if got := ComputeMargin(src, nil, 2); got != parameter.NavMarginMin {
		t.Errorf("Expected min clamp, got %d", got)
	}
	if got := ComputeMargin(src, []core.Cell{core.C(20, -3)}, 4); got != 24 {
		t.Errorf("Expected 24, got %d", got)
	}
	if got := ComputeMargin(src, []core.Cell{core.C(500, 0)}, 4); got != parameter.NavMarginMax {
		t.Errorf("Expected max clamp, got %d", got)
	}
}

func TestCutsCorner(t *testing.T) {
	g := mustParse(t,
		".#",
		"..",
	)
	if !CutsCorner(g, core.C(0, 0), core.DirSE) {
		t.Errorf("Expected SE from (0,0) to cut the corner")
	}
	if CutsCorner(g, core.C(0, 0), core.DirS) {
		t.Errorf("Orthogonal moves never cut corners")
	}
	if CutsCorner(g, core.C(0, 1), core.DirNE) {
		t.Errorf("Expected NE from (0,1) blocked only at target, not shoulders")
	}
}
