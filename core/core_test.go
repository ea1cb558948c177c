package core

import "testing"

func TestCell_Distances(t *testing.T) {
	a, b := C(1, 2), C(4, -2)
	if d := a.Chebyshev(b); d != 4 {
		t.Errorf("Chebyshev = %d, want 4", d)
	}
	if d := a.Manhattan(b); d != 7 {
		t.Errorf("Manhattan = %d, want 7", d)
	}
	if !a.Adjacent(C(2, 3)) || a.Adjacent(a) || a.Adjacent(C(3, 2)) {
		t.Errorf("Adjacent wrong around %v", a)
	}
}

func TestCell_LessRowMajor(t *testing.T) {
	if !C(5, 0).Less(C(0, 1)) {
		t.Errorf("Expected lower row first")
	}
	if !C(0, 1).Less(C(1, 1)) || C(1, 1).Less(C(1, 1)) {
		t.Errorf("Expected column order within a row, strict")
	}
}

func TestDirectionTo(t *testing.T) {
	tests := []struct {
		to   Cell
		want Direction
	}{
		{C(0, -1), DirN},
		{C(3, -3), DirNE},
		{C(5, 0), DirE},
		{C(-1, 1), DirSW},
		{C(-2, 7), DirSW},
		{C(0, 0), DirNone},
	}
	for _, tt := range tests {
		if got := DirectionTo(C(0, 0), tt.to); got != tt.want {
			t.Errorf("DirectionTo(%v) = %v, want %v", tt.to, got, tt.want)
		}
	}
	for d := Direction(0); d < DirCount; d++ {
		if got := DirectionTo(C(0, 0), d.Step(C(0, 0))); got != d {
			t.Errorf("Step/DirectionTo mismatch for %v", d)
		}
	}
}

func TestRect_IndexRoundTrip(t *testing.T) {
	r := RectAround(C(3, 3), 2)
	if r.Width() != 5 || r.Height() != 5 {
		t.Fatalf("Expected 5x5, got %dx%d", r.Width(), r.Height())
	}
	for idx := range r.Width() * r.Height() {
		if got := r.Index(r.CellAt(idx)); got != idx {
			t.Fatalf("Index(CellAt(%d)) = %d", idx, got)
		}
	}
	if r.Index(C(0, 0)) != -1 {
		t.Errorf("Expected -1 outside rect")
	}
}

func TestRect_UnionIntersect(t *testing.T) {
	a := Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3}
	b := Rect{MinX: 2, MinY: 2, MaxX: 6, MaxY: 5}

	if u := a.Union(b); u != (Rect{MinX: 0, MinY: 0, MaxX: 6, MaxY: 5}) {
		t.Errorf("Union = %+v", u)
	}
	if i := a.Intersect(b); i != (Rect{MinX: 2, MinY: 2, MaxX: 3, MaxY: 3}) {
		t.Errorf("Intersect = %+v", i)
	}
	if !a.Intersect(Rect{MinX: 10, MinY: 10, MaxX: 11, MaxY: 11}).Empty() {
		t.Errorf("Expected disjoint intersect empty")
	}
	var empty Rect
	empty.MaxX = -1
	if a.Union(empty) != a {
		t.Errorf("Expected union with empty unchanged")
	}
}

func TestActorID_String(t *testing.T) {
	if NoActor.String() != "actor:none" || ActorID(7).String() != "actor:7" {
		t.Errorf("Unexpected ActorID strings")
	}
}
