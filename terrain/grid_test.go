package terrain

import (
	"errors"
	"testing"

	"github.com/lixenwraith/vi-tactics/core"
)

func TestParse_Layout(t *testing.T) {
	g, err := Parse([]string{
		"#####",
		"#.3@#",
		"#####",
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if g.Width != 5 || g.Height != 3 {
		t.Fatalf("Expected 5x3 grid, got %dx%d", g.Width, g.Height)
	}
	if g.IsWalkable(core.C(0, 0)) {
		t.Errorf("Expected wall at (0,0)")
	}
	if !g.IsWalkable(core.C(1, 1)) {
		t.Errorf("Expected floor at (1,1)")
	}
	if got := g.MoveCost(core.C(2, 1)); got != 3 {
		t.Errorf("Expected cost 3 at (2,1), got %d", got)
	}
	if !g.IsWalkable(core.C(3, 1)) {
		t.Errorf("Expected actor glyph to parse as floor")
	}
	if g.IsWalkable(core.C(-1, 1)) || g.IsWalkable(core.C(5, 1)) {
		t.Errorf("Expected out-of-bounds cells to be impassable")
	}
}

func TestParse_RaggedRows(t *testing.T) {
	_, err := Parse([]string{"...", ".."})
	if !errors.Is(err, ErrBadLayout) {
		t.Fatalf("Expected ErrBadLayout, got %v", err)
	}
}

func TestGrid_StringRoundTrip(t *testing.T) {
	rows := []string{"#..", ".5#"}
	g, err := Parse(rows)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got, want := g.String(), "#..\n.5#"; got != want {
		t.Errorf("String mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestGrid_Fill(t *testing.T) {
	g := NewGrid(4, 4)
	g.Fill(core.Rect{MinX: 1, MinY: 1, MaxX: 10, MaxY: 1}, Blocked)

	for x := 1; x < 4; x++ {
		if g.IsWalkable(core.C(x, 1)) {
			t.Errorf("Expected (%d,1) blocked", x)
		}
	}
	if !g.IsWalkable(core.C(0, 1)) {
		t.Errorf("Expected (0,1) untouched")
	}
}
