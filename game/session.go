package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/olivierh59500/gravity-puzzle-go/logging"
	"github.com/olivierh59500/gravity-puzzle-go/simulation"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

var ErrInvalidTransition = errors.New("game: invalid phase transition")

// Options configures a Session
type Options struct {
	Arena           simulation.Arena
	Params          simulation.Params
	Level           simulation.LevelConfig
	StartLevel      int
	MergeBonus      int
	LevelBonus      int // Multiplied by the level number on completion
	WinAdvanceTicks int // 0 keeps the win screen until NextLevel is called
}

// DefaultOptions returns the stock session settings
func DefaultOptions() Options {
	return Options{
		Arena:           simulation.Arena{Width: 800, Height: 600},
		Params:          simulation.DefaultParams(),
		Level:           simulation.DefaultLevelConfig(),
		StartLevel:      1,
		MergeBonus:      100,
		LevelBonus:      1000,
		WinAdvanceTicks: 120,
	}
}

// Session drives levels through the game state machine and keeps score.
// It is not safe for concurrent use; hosts serialise input between ticks.
type Session struct {
	opts   Options
	logger *zap.Logger
	runID  string
	events *EventQueue

	phase     Phase
	level     int
	score     int
	highScore int
	ticks     int
	winTicks  int
	state     *simulation.State

	// Input buffered between ticks
	pointer       r2.Vec
	pointerActive bool
	clicks        []r2.Vec
}

// Snapshot is a read-only copy of what a render sink draws
type Snapshot struct {
	Phase      Phase                  `yaml:"phase"`
	Level      int                    `yaml:"level"`
	Score      int                    `yaml:"score"`
	HighScore  int                    `yaml:"high_score"`
	Tick       int                    `yaml:"tick"`
	Arena      simulation.Arena       `yaml:"arena"`
	Pointer    *r2.Vec                `yaml:"pointer,omitempty"`
	Particles  []simulation.Particle  `yaml:"particles"`
	Attractors []simulation.Attractor `yaml:"attractors"`
}

// NewSession creates a session in the menu phase
func NewSession(opts Options, logger *zap.Logger) (*Session, error) {
	if err := opts.Arena.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Level.Validate(); err != nil {
		return nil, err
	}
	if opts.StartLevel < 1 || opts.StartLevel > simulation.MaxLevel {
		return nil, fmt.Errorf("%w: start level %d", simulation.ErrInvalidLevel, opts.StartLevel)
	}
	logger = logging.OrNop(logger)

	runID := uuid.NewString()
	return &Session{
		opts:   opts,
		logger: logger.With(zap.String("run", runID)),
		runID:  runID,
		events: NewEventQueue(),
		phase:  PhaseMenu,
	}, nil
}

// Start begins a new game at the configured start level
func (s *Session) Start() error {
	if s.phase != PhaseMenu {
		return s.transitionError(PhasePlaying)
	}
	s.score = 0
	if err := s.loadLevel(s.opts.StartLevel); err != nil {
		return err
	}
	s.setPhase(PhasePlaying)
	return nil
}

// Pause freezes the tick pipeline
func (s *Session) Pause() error {
	if s.phase != PhasePlaying {
		return s.transitionError(PhasePaused)
	}
	s.setPhase(PhasePaused)
	return nil
}

// Resume continues a paused level
func (s *Session) Resume() error {
	if s.phase != PhasePaused {
		return s.transitionError(PhasePlaying)
	}
	s.setPhase(PhasePlaying)
	return nil
}

// TogglePause flips between playing and paused
func (s *Session) TogglePause() error {
	if s.phase == PhasePaused {
		return s.Resume()
	}
	return s.Pause()
}

// NextLevel leaves the win screen and starts the following level
func (s *Session) NextLevel() error {
	if s.phase != PhaseWin {
		return s.transitionError(PhasePlaying)
	}
	if err := s.loadLevel(s.level + 1); err != nil {
		return err
	}
	s.setPhase(PhasePlaying)
	return nil
}

// Reset abandons the current game and returns to the menu
func (s *Session) Reset() {
	if s.phase == PhaseMenu {
		return
	}
	s.recordHighScore()
	s.state = nil
	s.clicks = nil
	s.setPhase(PhaseMenu)
}

// Tick advances the session by one host frame. Only the playing phase runs
// the simulation; the win phase counts down to the next level.
func (s *Session) Tick() {
	s.ticks++
	switch s.phase {
	case PhasePlaying:
		s.step()
	case PhaseWin:
		if s.opts.WinAdvanceTicks <= 0 {
			return
		}
		s.winTicks++
		if s.winTicks >= s.opts.WinAdvanceTicks {
			if err := s.NextLevel(); err != nil {
				s.logger.Error("Failed to advance level", zap.Error(err))
				s.Reset()
			}
		}
	}
}

func (s *Session) step() {
	in := simulation.Input{
		Pointer:       s.pointer,
		PointerActive: s.pointerActive,
		Clicks:        s.clicks,
	}
	s.clicks = nil

	res := s.state.Step(in)

	for _, m := range res.Merges {
		s.push(Event{Type: EventMerge, Merge: m})
		s.addScore(s.opts.MergeBonus)
	}

	switch res.Outcome {
	case simulation.OutcomeLevelComplete:
		bonus := s.opts.LevelBonus * s.level
		s.addScore(bonus)
		s.push(Event{Type: EventLevelComplete, Delta: bonus})
		s.winTicks = 0
		s.setPhase(PhaseWin)
	case simulation.OutcomeGameComplete:
		bonus := s.opts.LevelBonus * s.level
		s.addScore(bonus)
		s.push(Event{Type: EventGameComplete, Delta: bonus})
		s.recordHighScore()
		s.setPhase(PhaseComplete)
	}
}

// SetPointer records the latest pointer position for the next tick
func (s *Session) SetPointer(x, y float64) {
	s.pointer = r2.Vec{X: x, Y: y}
	s.pointerActive = true
}

// ClearPointer stops pointer repulsion, e.g. when the cursor leaves the arena
func (s *Session) ClearPointer() {
	s.pointerActive = false
}

// Click queues an impulse for the next tick. Ignored unless playing.
func (s *Session) Click(x, y float64) {
	if s.phase != PhasePlaying {
		return
	}
	s.clicks = append(s.clicks, r2.Vec{X: x, Y: y})
}

// Drain returns and clears the events raised since the last call
func (s *Session) Drain() []Event {
	return s.events.Consume()
}

// Snapshot copies the state a render sink needs
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:     s.phase,
		Level:     s.level,
		Score:     s.score,
		HighScore: s.highScore,
		Tick:      s.ticks,
		Arena:     s.opts.Arena,
	}
	if s.pointerActive {
		p := s.pointer
		snap.Pointer = &p
	}
	if s.state != nil {
		snap.Particles = s.state.Particles()
		snap.Attractors = s.state.Attractors()
	}
	return snap
}

func (s *Session) Phase() Phase            { return s.phase }
func (s *Session) Level() int              { return s.level }
func (s *Session) Score() int              { return s.score }
func (s *Session) HighScore() int          { return s.highScore }
func (s *Session) Ticks() int              { return s.ticks }
func (s *Session) RunID() string           { return s.runID }
func (s *Session) Arena() simulation.Arena { return s.opts.Arena }

// PointerRadius is the reach of the pointer repulsion field
func (s *Session) PointerRadius() float64 { return s.opts.Params.PointerRadius }

// Count returns the active particle count, 0 outside a level
func (s *Session) Count() int {
	if s.state == nil {
		return 0
	}
	return s.state.Count()
}

func (s *Session) loadLevel(level int) error {
	state, err := simulation.NewLevel(s.opts.Arena, level, s.opts.Level, s.opts.Params)
	if err != nil {
		return fmt.Errorf("failed to build level %d: %w", level, err)
	}
	s.state = state
	s.level = level
	s.clicks = nil
	s.winTicks = 0
	s.push(Event{Type: EventLevelStart})
	return nil
}

func (s *Session) setPhase(next Phase) {
	prev := s.phase
	s.phase = next
	s.logger.Info("Phase changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.Int("level", s.level),
		zap.Int("score", s.score))
	s.push(Event{Type: EventPhase, Phase: next})
}

func (s *Session) addScore(delta int) {
	if delta == 0 {
		return
	}
	s.score += delta
	s.push(Event{Type: EventScore, Delta: delta})
}

func (s *Session) recordHighScore() {
	if s.score > s.highScore {
		s.highScore = s.score
	}
}

// push stamps tick, level and running score onto ev
func (s *Session) push(ev Event) {
	ev.Tick = s.ticks
	ev.Level = s.level
	ev.Score = s.score
	if ev.Type != EventPhase {
		ev.Phase = s.phase
	}
	s.events.Push(ev)
}

func (s *Session) transitionError(to Phase) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.phase, to)
}
