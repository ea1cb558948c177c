// Package config loads engine tuning and scenario files
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/vi-tactics/parameter"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("config: invalid")

// Config is the engine tuning, every field has a working default
type Config struct {
	Turn       TurnConfig       `yaml:"turn"`
	Navigation NavigationConfig `yaml:"navigation"`
	Combat     CombatConfig     `yaml:"combat"`
	Log        LogConfig        `yaml:"log"`
}

type TurnConfig struct {
	MaxTimeSlots         int           `yaml:"max_time_slots"`
	BarrierPoll          time.Duration `yaml:"barrier_poll"`
	BarrierTimeout       time.Duration `yaml:"barrier_timeout"`
	QuiescenceRetryDelay time.Duration `yaml:"quiescence_retry_delay"`
	InitRetryDelay       time.Duration `yaml:"init_retry_delay"`
	InitMaxAttempts      int           `yaml:"init_max_attempts"`
}

type NavigationConfig struct {
	Connectivity int `yaml:"connectivity"`
	ExpansionCap int `yaml:"expansion_cap"`
	MarginBuffer int `yaml:"margin_buffer"`
}

type CombatConfig struct {
	AttackRange    int `yaml:"attack_range"`
	PlayerPriority int `yaml:"player_priority"`
	ChaserPriority int `yaml:"chaser_priority"`
}

type LogConfig struct {
	Prefix  string `yaml:"prefix"`
	Verbose bool   `yaml:"verbose"` // Log every phase transition
}

// Default returns the built-in tuning
func Default() Config {
	return Config{
		Turn: TurnConfig{
			MaxTimeSlots:         parameter.MaxTimeSlots,
			BarrierPoll:          parameter.BarrierPollInterval,
			BarrierTimeout:       parameter.BarrierTimeout,
			QuiescenceRetryDelay: parameter.QuiescenceRetryDelay,
			InitRetryDelay:       parameter.InitRetryDelay,
			InitMaxAttempts:      parameter.InitMaxAttempts,
		},
		Navigation: NavigationConfig{
			Connectivity: parameter.NavConnectivity,
			ExpansionCap: parameter.NavExpansionCap,
			MarginBuffer: parameter.NavMarginBuffer,
		},
		Combat: CombatConfig{
			AttackRange:    parameter.AttackRange,
			PlayerPriority: parameter.PlayerPriority,
			ChaserPriority: parameter.ChaserPriority,
		},
		Log: LogConfig{Prefix: "vi-tactics "},
	}
}

// Load overlays the YAML file at path on Default, an empty path yields the defaults
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(b)
}

// Parse overlays YAML bytes on Default and validates the result
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Turn.MaxTimeSlots >= 1, "turn.max_time_slots %d < 1", c.Turn.MaxTimeSlots)
	check(c.Turn.BarrierPoll > 0, "turn.barrier_poll must be positive")
	check(c.Turn.BarrierTimeout >= c.Turn.BarrierPoll, "turn.barrier_timeout %v shorter than poll %v", c.Turn.BarrierTimeout, c.Turn.BarrierPoll)
	check(c.Turn.QuiescenceRetryDelay >= 0, "turn.quiescence_retry_delay negative")
	check(c.Turn.InitRetryDelay >= 0, "turn.init_retry_delay negative")
	check(c.Turn.InitMaxAttempts >= 1, "turn.init_max_attempts %d < 1", c.Turn.InitMaxAttempts)
	check(c.Navigation.Connectivity == 4 || c.Navigation.Connectivity == 8, "navigation.connectivity %d not 4 or 8", c.Navigation.Connectivity)
	check(c.Navigation.ExpansionCap > 0, "navigation.expansion_cap must be positive")
	check(c.Navigation.MarginBuffer >= 0, "navigation.margin_buffer negative")
	check(c.Combat.AttackRange >= 1, "combat.attack_range %d < 1", c.Combat.AttackRange)

	return errors.Join(errs...)
}
