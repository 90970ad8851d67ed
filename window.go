package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/olivierh59500/gravity-puzzle-go/game"
	"github.com/olivierh59500/gravity-puzzle-go/logging"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// Render constants
const (
	PulseFrames    = 20  // Frames a merge ring stays on screen
	PulseGrowth    = 1.5 // Ring radius gained per frame
	AttractorSize  = 6.0
	TrailAlphaStep = 10 // Alpha lost per trail step, newest is brightest
)

var (
	backgroundColor = color.RGBA{10, 10, 25, 255}
	attractorColor  = color.RGBA{200, 200, 255, 255}
	pointerColor    = color.RGBA{255, 255, 255, 60}
)

// Pulse is a merge flash expanding from the contact point
type Pulse struct {
	Pos  r2.Vec
	Life int
}

// Window hosts a session inside an Ebitengine window
type Window struct {
	session *game.Session
	sinks   []game.Sink
	logger  *zap.Logger
	palette int
	pulses  []Pulse
	quit    bool
}

// NewWindow creates the ebiten.Game for session. Extra sinks receive every drained event.
func NewWindow(session *game.Session, palette int, logger *zap.Logger, sinks ...game.Sink) *Window {
	if palette < 1 {
		palette = 1
	}
	logger = logging.OrNop(logger)
	return &Window{
		session: session,
		sinks:   sinks,
		logger:  logger,
		palette: palette,
	}
}

// Update is called each tick by Ebitengine
func (w *Window) Update() error {
	w.handleInput()
	if w.quit {
		return ebiten.Termination
	}
	w.step()
	return nil
}

// step runs one session frame and fans out its events
func (w *Window) step() {
	w.session.Tick()
	game.Dispatch(w.session.Drain(), append([]game.Sink{w}, w.sinks...)...)
	w.agePulses()
}

func (w *Window) HandleEvent(ev game.Event) {
	switch ev.Type {
	case game.EventMerge:
		w.pulses = append(w.pulses, Pulse{Pos: ev.Merge.Point, Life: PulseFrames})
	case game.EventLevelStart:
		w.pulses = w.pulses[:0]
	}
}

func (w *Window) agePulses() {
	live := w.pulses[:0]
	for _, p := range w.pulses {
		p.Life--
		if p.Life > 0 {
			live = append(live, p)
		}
	}
	w.pulses = live
}

// Draw is called each frame by Ebitengine
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	snap := w.session.Snapshot()

	if snap.Phase.Visible() {
		for _, a := range snap.Attractors {
			vector.StrokeCircle(screen, float32(a.Pos.X), float32(a.Pos.Y), AttractorSize, 1, attractorColor, true)
			vector.DrawFilledCircle(screen, float32(a.Pos.X), float32(a.Pos.Y), 2, attractorColor, true)
		}

		for _, p := range snap.Particles {
			col := w.particleColor(p.Color)
			for i := 1; i < len(p.Trail); i++ {
				prev, curr := p.Trail[i-1], p.Trail[i]
				fade := col
				fade.A = trailAlpha(i, len(p.Trail))
				vector.StrokeLine(screen, float32(prev.X), float32(prev.Y), float32(curr.X), float32(curr.Y), 1, fade, true)
			}
			vector.DrawFilledCircle(screen, float32(p.Pos.X), float32(p.Pos.Y), float32(p.Radius), col, true)
		}

		for _, p := range w.pulses {
			age := PulseFrames - p.Life
			ring := color.RGBA{255, 255, 255, uint8(255 * p.Life / PulseFrames)}
			vector.StrokeCircle(screen, float32(p.Pos.X), float32(p.Pos.Y), float32(4+PulseGrowth*float64(age)), 2, ring, true)
		}

		if snap.Pointer != nil {
			vector.StrokeCircle(screen, float32(snap.Pointer.X), float32(snap.Pointer.Y),
				float32(w.session.PointerRadius()), 1, pointerColor, true)
		}
	}

	ebitenutil.DebugPrintAt(screen, hudText(snap), 8, 8)
}

// Layout returns the screen size
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	arena := w.session.Arena()
	return int(arena.Width), int(arena.Height)
}

// handleInput processes keyboard and mouse input
func (w *Window) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.quit = true
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		w.apply(w.session.TogglePause())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		w.advance()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		w.session.Reset()
	}

	mx, my := ebiten.CursorPosition()
	arena := w.session.Arena()
	x, y := float64(mx), float64(my)
	if x < 0 || y < 0 || x > arena.Width || y > arena.Height {
		w.session.ClearPointer()
		return
	}
	w.session.SetPointer(x, y)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if w.session.Phase() == game.PhaseMenu {
			w.advance()
			return
		}
		w.session.Click(x, y)
	}
}

func (w *Window) advance() {
	switch w.session.Phase() {
	case game.PhaseMenu:
		w.apply(w.session.Start())
	case game.PhaseWin:
		w.apply(w.session.NextLevel())
	}
}

func (w *Window) apply(err error) {
	if err != nil && !errors.Is(err, game.ErrInvalidTransition) {
		w.logger.Error("Input failed", zap.Error(err))
	}
}

func hudText(snap game.Snapshot) string {
	switch snap.Phase {
	case game.PhaseMenu:
		return fmt.Sprintf("GRAVITY PUZZLE\nMerge every particle into one.\nClick or press Enter to start.\nBest: %d", snap.HighScore)
	case game.PhaseWin:
		return fmt.Sprintf("Level %d clear!  Score: %d\nPress Enter for the next level.", snap.Level, snap.Score)
	case game.PhaseComplete:
		return fmt.Sprintf("All levels clear!  Score: %d  Best: %d\nPress R for the menu.", snap.Score, snap.HighScore)
	case game.PhasePaused:
		return fmt.Sprintf("Level %d  Particles %d  Score %d\nPAUSED (space to resume)", snap.Level, len(snap.Particles), snap.Score)
	default:
		return fmt.Sprintf("Level %d  Particles %d  Score %d", snap.Level, len(snap.Particles), snap.Score)
	}
}

func trailAlpha(i, n int) uint8 {
	a := 255 - TrailAlphaStep*(n-i)
	if a < 0 {
		return 0
	}
	return uint8(a)
}

// particleColor returns color for a colour identifier
func (w *Window) particleColor(id int) color.RGBA {
	// Simple hue-based colors
	h := float64(id%w.palette) / float64(w.palette) * 360
	r, g, b := hsvToRGB(h, 0.8, 1)
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

// hsvToRGB helper
func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
