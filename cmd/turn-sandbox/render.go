package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-tactics/core"
)

const (
	boardX = 1
	boardY = 1
)

var (
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleCost    = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleChaser  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStruck  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorRed)
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDimText = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePath    = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
)

var facingArrows = [core.DirCount]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// draw renders terrain, chaser paths, actors, the status line, phase timings and turn history
func draw(screen tcell.Screen, s *session, busy, showPaths bool) {
	screen.Clear()

	b := s.grid.Bounds()
	for y := b.MinY; y <= b.MaxY; y++ {
		for x := b.MinX; x <= b.MaxX; x++ {
			c := core.C(x, y)
			r, st := '.', styleFloor
			switch cost := s.grid.CostAt(c); {
			case cost < 0:
				r, st = '#', styleWall
			case cost > 0:
				r, st = rune('0'+min(int(cost), 9)), styleCost
			}
			screen.SetContent(boardX+x, boardY+y, r, nil, st)
		}
	}

	if showPaths && !busy {
		for _, path := range s.paths() {
			for _, c := range path {
				screen.SetContent(boardX+c.X, boardY+c.Y, '·', nil, stylePath)
			}
		}
	}

	for _, rec := range s.deps.Arena.Live() {
		c, ok := s.deps.Occupancy.GetActorCell(rec.ID)
		if !ok {
			continue
		}
		st := styleChaser
		if rec.Player {
			st = stylePlayer
		}
		if s.exec.Struck(rec.ID) {
			st = styleStruck
		}
		screen.SetContent(boardX+c.X, boardY+c.Y, s.glyphs[rec.ID], nil, st)
	}

	row := boardY + b.Height() + 1
	status := fmt.Sprintf("%s  turn %d", s.scenario.Name, s.lastOutcome().TurnID)
	if rec, ok := s.deps.Arena.Get(s.player); ok && rec.Facing >= 0 && rec.Facing < core.DirCount {
		status += fmt.Sprintf("  facing %c", facingArrows[rec.Facing])
	}
	if busy {
		status += "  resolving..."
	}
	drawText(screen, boardX, row, status, styleText)
	drawText(screen, boardX, row+1, "hjklyubn move  HJKLYUBN dash  . wait  p paths  m mute  q quit", styleDimText)
	drawText(screen, boardX, row+2, strings.Join(s.drainPhases(), "  "), styleDimText)

	for i, line := range s.recent() {
		drawText(screen, boardX, row+4+i, line, styleDimText)
	}
	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, st tcell.Style) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, st)
		x++
	}
}
