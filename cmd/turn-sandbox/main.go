// turn-sandbox loads a scenario and steps it turn by turn in the terminal
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/audio"
	"github.com/lixenwraith/vi-tactics/config"
	"github.com/lixenwraith/vi-tactics/core"
	"github.com/lixenwraith/vi-tactics/pipeline"
	"github.com/lixenwraith/vi-tactics/think"
)

//go:embed arena.yaml
var builtinArena []byte

const frameInterval = 50 * time.Millisecond

// Wall time each ability "plays" before the executor reports it complete
var animDurations = map[action.AbilityKind]time.Duration{
	action.Move:   60 * time.Millisecond,
	action.Dash:   90 * time.Millisecond,
	action.Attack: 120 * time.Millisecond,
}

var moveKeys = map[rune]core.Direction{
	'h': core.DirW, 'j': core.DirS, 'k': core.DirN, 'l': core.DirE,
	'y': core.DirNW, 'u': core.DirNE, 'b': core.DirSW, 'n': core.DirSE,
}

// turnEvent is posted to the screen when a turn finishes
type turnEvent struct {
	tcell.EventTime
	out pipeline.TurnOutcome
	err error
}

func main() {
	defer func() { core.HandleCrash(recover()) }()

	scenarioPath := flag.String("scenario", "", "scenario YAML file, built-in arena when empty")
	configPath := flag.String("config", "", "engine config YAML file")
	logPath := flag.String("log", "", "append engine log to this file")
	mute := flag.Bool("mute", false, "disable audio cues")
	headless := flag.Int("headless", 0, "run N turns without a terminal, 0 for interactive; -1 uses the scenario's turn count")
	dump := flag.Bool("metrics", false, "print metrics on exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var sc *config.Scenario
	if *scenarioPath == "" {
		sc, err = config.ParseScenario(builtinArena)
	} else {
		sc, err = config.LoadScenario(*scenarioPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenario: %v\n", err)
		os.Exit(1)
	}

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	} else if *headless != 0 {
		logOut = os.Stderr
	}
	logger := log.New(logOut, cfg.Log.Prefix, log.LstdFlags|log.Lmicroseconds)

	sound := audio.NewSoundManager()
	if !*mute && *headless == 0 {
		if err := sound.Initialize(); err != nil {
			// Non-fatal, the sandbox runs silent
			logger.Printf("[WARN] audio initialization failed: %v", err)
		}
	}
	defer sound.Cleanup()

	durations := animDurations
	if *headless != 0 {
		durations = nil
	}
	s, err := newSession(cfg, sc, newAnimExecutor(sound, durations), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *headless != 0 {
		n := *headless
		if n < 0 {
			n = max(sc.Turns, 1)
		}
		err = s.runHeadless(ctx, n, os.Stdout)
	} else {
		err = runInteractive(ctx, s, sound)
	}
	if *dump {
		s.orch.Metrics().Dump(os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runInteractive(ctx context.Context, s *session, sound *audio.SoundManager) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	core.SetCrashCleanup(screen.Fini)
	defer core.SetCrashCleanup(nil)
	defer screen.Fini()

	// Redraw ticks keep hit flashes animating while a turn resolves
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	core.Go(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	})

	busy := false
	muted := false
	showPaths := false
	start := func() {
		busy = true
		core.Go(func() {
			out, err := s.step(ctx)
			ev := &turnEvent{out: out, err: err}
			ev.SetEventNow()
			screen.PostEvent(ev)
		})
	}

	for {
		draw(screen, s, busy, showPaths)

		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
		case *turnEvent:
			busy = false
			if ev.err != nil {
				return ev.err
			}
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			if ev.Key() != tcell.KeyRune {
				continue
			}
			r := ev.Rune()
			switch {
			case r == 'q':
				return nil
			case r == 'm':
				muted = !muted
				sound.SetMuted(muted)
			case r == 'p':
				showPaths = !showPaths
			case busy:
			case r == '.':
				s.submit(think.Command{Kind: action.Wait})
				start()
			default:
				dir, ok := moveKeys[r]
				dist := 1
				if !ok {
					dir, ok = moveKeys[r+('a'-'A')]
					dist = 2
				}
				if !ok {
					continue
				}
				if cmd, ok := s.moveCommand(dir, dist); ok && s.submit(cmd) {
					start()
				}
			}
		}
	}
}
