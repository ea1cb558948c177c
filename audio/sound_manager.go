// Package audio plays short cues for resolved turn actions
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// Cue identifies one sound effect
type Cue uint8

const (
	CueStep Cue = iota
	CueAttack
	CueReject
	CueTimeout
)

// SoundManager owns the speaker mixer, every Play is a no-op before Initialize
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	muted       bool
}

// NewSoundManager creates a new sound manager
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100))
	if err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	// beep has no speaker Close, clearing the mixer silences everything
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// SetMuted toggles output without tearing the speaker down
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.muted = muted
}

// Play queues the cue on the mixer
func (sm *SoundManager) Play(c Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted {
		return
	}
	s := CueStreamer(c)
	if s == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// CueStreamer returns the finite streamer for c, nil for unknown cues
func CueStreamer(c Cue) beep.Streamer {
	switch c {
	case CueStep:
		tone, err := generators.SineTone(sampleRate, 440)
		if err != nil {
			return nil
		}
		return beep.Take(sampleRate.N(time.Millisecond*25), &gain{s: tone, level: 0.08})
	case CueAttack:
		return beep.Take(sampleRate.N(time.Millisecond*120), NewStrikeGenerator(sampleRate))
	case CueReject:
		return beep.Take(sampleRate.N(time.Millisecond*150), NewBuzzGenerator(sampleRate, 120))
	case CueTimeout:
		return beep.Take(sampleRate.N(time.Millisecond*300), NewBuzzGenerator(sampleRate, 70))
	}
	return nil
}

// gain scales a streamer by a constant level
type gain struct {
	s     beep.Streamer
	level float64
}

func (g *gain) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.s.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] *= g.level
		samples[i][1] *= g.level
	}
	return n, ok
}

func (g *gain) Err() error {
	return g.s.Err()
}

// BuzzGenerator generates a low-pitch buzz sound
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz sound generator
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{
		sr:   sr,
		freq: freq,
	}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Odd harmonics for a harsh edge
		sample := 0.0
		sample += 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)

		envelope := math.Min(float64(g.pos)/float64(g.sr)/0.02, 1.0)
		sample *= envelope * 0.2

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}

// StrikeGenerator generates a short percussive hit
type StrikeGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
}

// NewStrikeGenerator creates a strike sound generator
func NewStrikeGenerator(sr beep.SampleRate) *StrikeGenerator {
	return &StrikeGenerator{
		sr:   sr,
		seed: 0x5eed,
	}
}

func (g *StrikeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Fast attack, exponential tail
		envelope := math.Exp(-t * 30)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		// Pitch drops from 220Hz over the hit
		thump := math.Sin(2 * math.Pi * 220 * (1 - t*2) * t)

		sample := envelope * (0.2*noise + 0.35*thump)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *StrikeGenerator) Err() error {
	return nil
}
