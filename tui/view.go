// Package tui renders a session in a terminal and feeds mouse and keyboard
// input back into it.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/olivierh59500/gravity-puzzle-go/driver"
	"github.com/olivierh59500/gravity-puzzle-go/game"
	"github.com/olivierh59500/gravity-puzzle-go/logging"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	pulseFrames = 12 // Frames a merge flash stays visible
	hudRows     = 1
)

// Palette for particle colour identifiers
var palette = []tcell.Color{
	tcell.ColorRed,
	tcell.ColorOrange,
	tcell.ColorYellow,
	tcell.ColorGreen,
	tcell.ColorAqua,
	tcell.ColorBlue,
	tcell.ColorFuchsia,
	tcell.ColorWhite,
}

type pulse struct {
	pos  r2.Vec
	life int
}

// View draws a session onto a tcell screen. It implements driver.Stepper and game.Sink.
type View struct {
	screen  tcell.Screen
	session *game.Session
	sinks   []game.Sink
	logger  *zap.Logger
	pulses  []pulse
	pressed bool // Button1 state from the previous mouse event
}

// NewView binds a screen to a session. Extra sinks receive every drained event.
func NewView(screen tcell.Screen, session *game.Session, logger *zap.Logger, sinks ...game.Sink) *View {
	logger = logging.OrNop(logger)
	return &View{
		screen:  screen,
		session: session,
		sinks:   sinks,
		logger:  logger,
	}
}

// Tick advances the session one frame, fans out its events and redraws
func (v *View) Tick() {
	v.session.Tick()
	game.Dispatch(v.session.Drain(), append([]game.Sink{v}, v.sinks...)...)
	v.Draw()
}

func (v *View) HandleEvent(ev game.Event) {
	switch ev.Type {
	case game.EventMerge:
		v.pulses = append(v.pulses, pulse{pos: ev.Merge.Point, life: pulseFrames})
	case game.EventLevelStart:
		v.pulses = v.pulses[:0]
	}
}

// Draw renders the current snapshot and HUD
func (v *View) Draw() {
	v.screen.Clear()
	snap := v.session.Snapshot()

	if snap.Phase.Visible() {
		for _, a := range snap.Attractors {
			if x, y, ok := v.cellFor(a.Pos); ok {
				v.screen.SetContent(x, y, '+', nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
			}
		}
		for _, p := range snap.Particles {
			style := tcell.StyleDefault.Foreground(palette[p.Color%len(palette)])
			for _, pt := range p.Trail {
				if x, y, ok := v.cellFor(pt); ok {
					v.screen.SetContent(x, y, '·', nil, style.Dim(true))
				}
			}
		}
		for _, p := range snap.Particles {
			if x, y, ok := v.cellFor(p.Pos); ok {
				v.screen.SetContent(x, y, particleRune(p.Radius), nil,
					tcell.StyleDefault.Foreground(palette[p.Color%len(palette)]).Bold(true))
			}
		}
		v.drawPulses()
	}

	v.drawHUD(snap)
	v.screen.Show()
}

func (v *View) drawPulses() {
	live := v.pulses[:0]
	for _, p := range v.pulses {
		if x, y, ok := v.cellFor(p.pos); ok {
			v.screen.SetContent(x, y, '*', nil, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
		}
		p.life--
		if p.life > 0 {
			live = append(live, p)
		}
	}
	v.pulses = live
}

func (v *View) drawHUD(snap game.Snapshot) {
	w, h := v.screen.Size()
	if h < 1 {
		return
	}
	var text string
	switch snap.Phase {
	case game.PhaseMenu:
		text = fmt.Sprintf(" GRAVITY PUZZLE  [enter] start  [q] quit  best %d", snap.HighScore)
	case game.PhaseWin:
		text = fmt.Sprintf(" LEVEL %d CLEAR  score %d  [enter] next", snap.Level, snap.Score)
	case game.PhaseComplete:
		text = fmt.Sprintf(" ALL LEVELS CLEAR  score %d  best %d  [r] menu", snap.Score, snap.HighScore)
	default:
		text = fmt.Sprintf(" level %d  particles %d  score %d  %s  [space] pause [r] menu",
			snap.Level, len(snap.Particles), snap.Score, snap.Phase)
	}
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range text {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-hudRows, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, h-hudRows, ' ', nil, style)
	}
}

// HandleInput applies a terminal event to the session. It returns true on quit.
func (v *View) HandleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q'):
			return true
		case ev.Key() == tcell.KeyEnter:
			v.advance()
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			v.logIgnored(v.session.TogglePause())
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
			v.session.Reset()
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		world, ok := v.worldFor(x, y)
		if !ok {
			v.session.ClearPointer()
			v.pressed = false
			return false
		}
		v.session.SetPointer(world.X, world.Y)
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !v.pressed {
			v.session.Click(world.X, world.Y)
		}
		v.pressed = down
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

func (v *View) advance() {
	switch v.session.Phase() {
	case game.PhaseMenu:
		v.logIgnored(v.session.Start())
	case game.PhaseWin:
		v.logIgnored(v.session.NextLevel())
	}
}

func (v *View) logIgnored(err error) {
	if err != nil && !errors.Is(err, game.ErrInvalidTransition) {
		v.logger.Error("Input failed", zap.Error(err))
	}
}

// Run polls terminal input and ticks the view on loop until quit or ctx ends
func (v *View) Run(ctx context.Context, loop *driver.Loop) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v.screen.EnableMouse()
	commands := make(chan driver.Command)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			cmd := func() {
				if v.HandleInput(ev) {
					cancel()
				}
			}
			select {
			case commands <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.Draw()
	err := loop.Run(ctx, v, commands)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// cellFor maps an arena position to a screen cell above the HUD
func (v *View) cellFor(pos r2.Vec) (int, int, bool) {
	w, h := v.screen.Size()
	h -= hudRows
	arena := v.session.Arena()
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	x := int(math.Floor(pos.X / arena.Width * float64(w)))
	y := int(math.Floor(pos.Y / arena.Height * float64(h)))
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, 0, false
	}
	return x, y, true
}

// worldFor maps a screen cell to the arena position at its centre
func (v *View) worldFor(x, y int) (r2.Vec, bool) {
	w, h := v.screen.Size()
	h -= hudRows
	if x < 0 || y < 0 || x >= w || y >= h {
		return r2.Vec{}, false
	}
	arena := v.session.Arena()
	return r2.Vec{
		X: (float64(x) + 0.5) / float64(w) * arena.Width,
		Y: (float64(y) + 0.5) / float64(h) * arena.Height,
	}, true
}

func particleRune(radius float64) rune {
	switch {
	case radius >= 30:
		return '@'
	case radius >= 18:
		return 'O'
	default:
		return 'o'
	}
}

var (
	_ game.Sink      = (*View)(nil)
	_ driver.Stepper = (*View)(nil)
)
