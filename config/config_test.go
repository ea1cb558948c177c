package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/think"
)

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Expected defaults valid, got %v", err)
	}
	cfg, err := Load("")
	if err != nil || cfg != Default() {
		t.Errorf("Expected empty path to yield defaults, got %+v %v", cfg, err)
	}
}

func TestParse_Overlay(t *testing.T) {
	cfg, err := Parse([]byte(`
turn:
  max_time_slots: 3
  barrier_timeout: 500ms
navigation:
  connectivity: 4
log:
  verbose: true
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Turn.MaxTimeSlots != 3 || cfg.Turn.BarrierTimeout != 500*time.Millisecond {
		t.Errorf("Expected overlay applied, got %+v", cfg.Turn)
	}
	if cfg.Turn.BarrierPoll != Default().Turn.BarrierPoll {
		t.Errorf("Expected unset field to keep default, got %v", cfg.Turn.BarrierPoll)
	}
	if cfg.Navigation.Connectivity != 4 || !cfg.Log.Verbose {
		t.Errorf("Unexpected values %+v", cfg)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero slots", "turn: {max_time_slots: 0}"},
		{"connectivity", "navigation: {connectivity: 6}"},
		{"timeout below poll", "turn: {barrier_poll: 1s, barrier_timeout: 10ms}"},
		{"attack range", "combat: {attack_range: 0}"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}

	if _, err := Parse([]byte("turn: [")); err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("Expected syntax error, got %v", err)
	}
}

const duel = `
name: duel
turns: 5
guid_namespace: 6ba7b812-9dad-11d1-80b4-00c04fd430c8
terrain:
  - "#######"
  - "#.....#"
  - "#..2..#"
  - "#######"
actors:
  - {name: hero, x: 1, y: 1, player: true}
  - {name: imp, x: 5, y: 2, speed: 2}
  - {name: rock, x: 3, y: 1, thinker: idle}
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(duel))
	if err != nil {
		t.Fatalf("ParseScenario failed: %v", err)
	}
	if sc.Name != "duel" || sc.Turns != 5 || len(sc.Actors) != 3 {
		t.Errorf("Unexpected scenario %+v", sc)
	}
	if sc.Namespace() != uuid.NameSpaceOID {
		t.Errorf("Expected OID namespace, got %v", sc.Namespace())
	}
	g, err := sc.Grid()
	if err != nil {
		t.Fatalf("Grid failed: %v", err)
	}
	if g.MoveCost(core.C(3, 2)) != 2 {
		t.Errorf("Expected cost 2 at (3,2), got %d", g.MoveCost(core.C(3, 2)))
	}

	cc := Default().Combat
	th, _ := sc.Actors[0].NewThinker(cc)
	if _, ok := th.(*think.InputThinker); !ok {
		t.Errorf("Expected player input thinker, got %T", th)
	}
	th, _ = sc.Actors[1].NewThinker(cc)
	if ch, ok := th.(*think.ChaseThinker); !ok || ch.Priority != cc.ChaserPriority {
		t.Errorf("Expected default chaser, got %#v", th)
	}
	th, _ = sc.Actors[2].NewThinker(cc)
	obs := think.Observation{Actor: 3, Cell: core.C(3, 1), PlayerCell: core.C(2, 1)}
	if th == nil || th.DecideIntent(obs).Kind != action.Wait {
		t.Errorf("Expected idle thinker to wait")
	}
}

func TestParseScenario_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing actors", "name: x\nterrain: [\"...\"]"},
		{"unknown thinker", "name: x\nterrain: [\"...\"]\nactors: [{name: a, x: 0, y: 0, thinker: smart}]"},
		{"negative coordinate", "name: x\nterrain: [\"...\"]\nactors: [{name: a, x: -1, y: 0}]"},
		{"unknown field", "name: x\nterrain: [\"...\"]\nactors: [{name: a, x: 0, y: 0}]\nfog: true"},
		{"bad namespace", "name: x\nguid_namespace: nope\nterrain: [\"...\"]\nactors: [{name: a, x: 0, y: 0}]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tc.yaml)); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestParseScenario_SemanticViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"on wall", "name: x\nterrain: [\".#.\"]\nactors: [{name: a, x: 1, y: 0}]"},
		{"off board", "name: x\nterrain: [\"...\"]\nactors: [{name: a, x: 7, y: 0}]"},
		{"shared cell", "name: x\nterrain: [\"...\"]\nactors: [{name: a, x: 0, y: 0}, {name: b, x: 0, y: 0}]"},
		{"two players", "name: x\nterrain: [\"...\"]\nactors: [{name: a, x: 0, y: 0, player: true}, {name: b, x: 2, y: 0, player: true}]"},
		{"ragged rows", "name: x\nterrain: [\"...\", \"..\"]\nactors: [{name: a, x: 0, y: 0}]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tc.yaml)); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadScenario_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.yaml")
	if err := os.WriteFile(path, []byte(duel), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestNewThinker_Unknown(t *testing.T) {
	_, err := ActorSpec{Name: "a", Thinker: "oracle"}.NewThinker(Default().Combat)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
}
