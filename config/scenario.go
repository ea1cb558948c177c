package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/terrain"
	"github.com/lixenwraith/vi-tactics/think"
)

//go:embed scenario.schema.json
var scenarioSchema string

const scenarioSchemaURL = "scenario.schema.json"

// Scenario is a board layout plus the actors placed on it
type Scenario struct {
	Name          string      `yaml:"name"`
	Turns         int         `yaml:"turns"`
	GUIDNamespace string      `yaml:"guid_namespace"`
	Terrain       []string    `yaml:"terrain"`
	Actors        []ActorSpec `yaml:"actors"`
}

// ActorSpec describes one actor of a scenario
type ActorSpec struct {
	Name     string `yaml:"name"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Player   bool   `yaml:"player"`
	Speed    int    `yaml:"speed"`
	Priority *int   `yaml:"priority"`
	Thinker  string `yaml:"thinker"`
}

// Cell returns the spawn cell
func (a ActorSpec) Cell() core.Cell {
	return core.C(a.X, a.Y)
}

// NewThinker builds the actor's intent source, players default to input and others to chase
func (a ActorSpec) NewThinker(c CombatConfig) (think.Thinker, error) {
	kind := a.Thinker
	if kind == "" {
		kind = "chase"
		if a.Player {
			kind = "input"
		}
	}

	switch kind {
	case "input":
		p := think.NewInputThinker()
		p.Priority = c.PlayerPriority
		if a.Priority != nil {
			p.Priority = *a.Priority
		}
		return p, nil
	case "chase", "dash":
		ch := &think.ChaseThinker{
			AttackRange: c.AttackRange,
			Priority:    c.ChaserPriority,
			Dash:        kind == "dash",
		}
		if a.Priority != nil {
			ch.Priority = *a.Priority
		}
		return ch, nil
	case "idle":
		return think.Idle, nil
	default:
		return nil, fmt.Errorf("%w: actor %q: unknown thinker %q", ErrInvalid, a.Name, kind)
	}
}

// LoadScenario reads and validates a scenario file
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario validates YAML bytes against the scenario schema, then decodes them
func ParseScenario(b []byte) (*Scenario, error) {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	// Schema validation needs JSON value types
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	var jsonDoc any
	if err := json.Unmarshal(raw, &jsonDoc); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	schema, err := compileScenarioSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(jsonDoc); err != nil {
		return nil, fmt.Errorf("%w: scenario: %v", ErrInvalid, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func compileScenarioSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(scenarioSchemaURL, strings.NewReader(scenarioSchema)); err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}
	s, err := c.Compile(scenarioSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}
	return s, nil
}

// Validate checks what the schema cannot: actors on walkable, distinct cells and at most one player
func (s *Scenario) Validate() error {
	grid, err := s.Grid()
	if err != nil {
		return err
	}
	if s.GUIDNamespace != "" {
		if _, err := uuid.Parse(s.GUIDNamespace); err != nil {
			return fmt.Errorf("%w: guid_namespace: %v", ErrInvalid, err)
		}
	}

	seen := make(map[core.Cell]string, len(s.Actors))
	players := 0
	for _, a := range s.Actors {
		c := a.Cell()
		if !grid.IsWalkable(c) {
			return fmt.Errorf("%w: actor %q on unwalkable %v", ErrInvalid, a.Name, c)
		}
		if other, dup := seen[c]; dup {
			return fmt.Errorf("%w: actors %q and %q share %v", ErrInvalid, other, a.Name, c)
		}
		seen[c] = a.Name
		if a.Player {
			players++
		}
	}
	if players > 1 {
		return fmt.Errorf("%w: %d players, at most one allowed", ErrInvalid, players)
	}
	return nil
}

// Grid parses the terrain rows
func (s *Scenario) Grid() (*terrain.Grid, error) {
	g, err := terrain.Parse(s.Terrain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return g, nil
}

// Namespace returns the GUID namespace, uuid.Nil when GUIDs should be random
func (s *Scenario) Namespace() uuid.UUID {
	ns, err := uuid.Parse(s.GUIDNamespace)
	if err != nil {
		return uuid.Nil
	}
	return ns
}
