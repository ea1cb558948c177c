package actor

import (
	"errors"
	"sync"
	"testing"

	"github.com/lixenwraith/vi-tactics/core"
)

func TestArena_SpawnDespawn(t *testing.T) {
	a := NewArena()
	hero := a.Spawn(Actor{Name: "hero", Player: true})
	imp := a.Spawn(Actor{Name: "imp", Speed: 2})

	if hero == core.NoActor || imp == hero {
		t.Fatalf("Expected distinct non-zero handles, got %v %v", hero, imp)
	}
	rec, ok := a.Get(hero)
	if !ok || rec.ID != hero || rec.Speed != 1 || rec.Thinker == nil {
		t.Errorf("Expected defaults applied, got %+v", rec)
	}

	a.Despawn(hero)
	if _, ok := a.Get(hero); ok {
		t.Errorf("Expected despawned actor absent")
	}
	if _, ok := a.Player(); ok {
		t.Errorf("Expected no player after despawn")
	}
	if next := a.Spawn(Actor{Name: "late"}); next == hero {
		t.Errorf("Expected handle not reused")
	}
}

func TestArena_LiveSorted(t *testing.T) {
	a := NewArena()
	var ids []core.ActorID
	for range 5 {
		ids = append(ids, a.Spawn(Actor{}))
	}
	a.Despawn(ids[1])

	live := a.Live()
	if len(live) != 4 {
		t.Fatalf("Expected 4 live actors, got %d", len(live))
	}
	for i := 1; i < len(live); i++ {
		if live[i-1].ID >= live[i].ID {
			t.Errorf("Expected ascending handles, got %v then %v", live[i-1].ID, live[i].ID)
		}
	}
}

func TestArena_Face(t *testing.T) {
	a := NewArena()
	id := a.Spawn(Actor{})
	if err := a.Face(id, core.DirE); err != nil {
		t.Fatalf("Face failed: %v", err)
	}
	if rec, _ := a.Get(id); rec.Facing != core.DirE {
		t.Errorf("Expected facing E, got %v", rec.Facing)
	}
	if err := a.Face(99, core.DirE); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestActor_ActsIn(t *testing.T) {
	fast := Actor{Speed: 2}
	slow := Actor{Speed: 1}
	if !fast.ActsIn(1) || slow.ActsIn(1) || !slow.ActsIn(0) {
		t.Errorf("Unexpected slot participation")
	}
}

func TestStore_RemoveBatch(t *testing.T) {
	s := NewStore[int]()
	for i := 1; i <= 6; i++ {
		s.Set(core.ActorID(i), i*10)
	}
	s.RemoveBatch([]core.ActorID{2, 4, 99})

	if s.Count() != 4 {
		t.Fatalf("Expected 4 remaining, got %d", s.Count())
	}
	want := []core.ActorID{1, 3, 5, 6}
	got := s.Handles()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Handles()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore[int]()
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id core.ActorID) {
			defer wg.Done()
			s.Set(id, int(id))
			s.Update(id, func(v *int) { *v *= 2 })
			s.Get(id)
		}(core.ActorID(i))
	}
	wg.Wait()

	if s.Count() != 50 {
		t.Errorf("Expected 50 entries, got %d", s.Count())
	}
	if v, _ := s.Get(7); v != 14 {
		t.Errorf("Expected updated value 14, got %d", v)
	}
}
