package game

import (
	"testing"

	"github.com/olivierh59500/gravity-puzzle-go/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r2"
)

func newTestSession(t *testing.T, mutate func(*Options)) *Session {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	s, err := NewSession(opts, zap.NewNop())
	require.NoError(t, err)
	return s
}

// injectLevel swaps the generated level for a hand-built one
func injectLevel(t *testing.T, s *Session, level int, particles []simulation.Particle) {
	t.Helper()
	st, err := simulation.NewState(s.opts.Arena, level, particles, nil, s.opts.Params)
	require.NoError(t, err)
	s.state = st
	s.level = level
}

func mergingPair() []simulation.Particle {
	return []simulation.Particle{
		{ID: 1, Pos: r2.Vec{X: 100, Y: 100}, Radius: 5, Mass: 1},
		{ID: 2, Pos: r2.Vec{X: 104, Y: 100}, Radius: 5, Mass: 1},
	}
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestNewSession_Rejects(t *testing.T) {
	opts := DefaultOptions()
	opts.StartLevel = 0
	_, err := NewSession(opts, nil)
	assert.ErrorIs(t, err, simulation.ErrInvalidLevel)

	opts = DefaultOptions()
	opts.Arena.Width = -1
	_, err = NewSession(opts, nil)
	assert.ErrorIs(t, err, simulation.ErrInvalidArena)
}

func TestSession_Transitions(t *testing.T) {
	s := newTestSession(t, nil)
	assert.Equal(t, PhaseMenu, s.Phase())
	assert.NotEmpty(t, s.RunID())

	assert.ErrorIs(t, s.Pause(), ErrInvalidTransition)
	assert.ErrorIs(t, s.NextLevel(), ErrInvalidTransition)

	require.NoError(t, s.Start())
	assert.Equal(t, PhasePlaying, s.Phase())
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, simulation.ParticleCount(1), s.Count())
	assert.ErrorIs(t, s.Start(), ErrInvalidTransition)

	require.NoError(t, s.TogglePause())
	assert.Equal(t, PhasePaused, s.Phase())
	assert.ErrorIs(t, s.Pause(), ErrInvalidTransition)
	require.NoError(t, s.TogglePause())
	assert.Equal(t, PhasePlaying, s.Phase())

	s.Reset()
	assert.Equal(t, PhaseMenu, s.Phase())
	assert.Zero(t, s.Count())
	assert.ErrorIs(t, s.Resume(), ErrInvalidTransition)
}

func TestSession_FrozenPhasesDoNotStep(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tick()
	assert.Nil(t, s.state)

	require.NoError(t, s.Start())
	before := s.Snapshot().Particles
	require.NoError(t, s.Pause())
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	assert.Equal(t, 0, s.state.Ticks())
	assert.Equal(t, before, s.Snapshot().Particles)

	require.NoError(t, s.Resume())
	s.Tick()
	assert.Equal(t, 1, s.state.Ticks())
}

func TestSession_WinAwardsLevelBonus(t *testing.T) {
	s := newTestSession(t, func(o *Options) { o.WinAdvanceTicks = 0 })
	require.NoError(t, s.Start())
	injectLevel(t, s, 3, mergingPair())
	s.Drain()
	before := s.Score()

	s.Tick()

	assert.Equal(t, PhaseWin, s.Phase())
	assert.Equal(t, 3, s.Level())
	// The level bonus is exactly 1000*level; the extra 100 is the merge bonus of
	// the final merge that produced the win on the same tick
	assert.Equal(t, before+100+3000, s.Score())

	events := s.Drain()
	assert.Equal(t, 100, events[1].Delta)
	assert.Equal(t, 3000, events[2].Delta)
	assert.Equal(t, []EventType{EventMerge, EventScore, EventScore, EventLevelComplete, EventPhase}, eventTypes(events))
	assert.Equal(t, 3000, events[3].Delta)
	assert.Equal(t, 3, events[3].Level)
	assert.Equal(t, PhaseWin, events[4].Phase)

	// Win renders the last frame without stepping
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	assert.Equal(t, PhaseWin, s.Phase())
	assert.Equal(t, 1, s.state.Ticks())

	require.NoError(t, s.NextLevel())
	assert.Equal(t, PhasePlaying, s.Phase())
	assert.Equal(t, 4, s.Level())
	assert.Equal(t, simulation.ParticleCount(4), s.Count())
}

func TestSession_WinAutoAdvances(t *testing.T) {
	s := newTestSession(t, func(o *Options) { o.WinAdvanceTicks = 3 })
	require.NoError(t, s.Start())
	injectLevel(t, s, 1, mergingPair())

	s.Tick()
	require.Equal(t, PhaseWin, s.Phase())
	s.Tick()
	s.Tick()
	assert.Equal(t, PhaseWin, s.Phase())
	s.Tick()
	assert.Equal(t, PhasePlaying, s.Phase())
	assert.Equal(t, 2, s.Level())
}

func TestSession_FinalLevelCompletesGame(t *testing.T) {
	s := newTestSession(t, func(o *Options) { o.WinAdvanceTicks = 1 })
	require.NoError(t, s.Start())
	injectLevel(t, s, simulation.MaxLevel, mergingPair())

	s.Tick()
	assert.Equal(t, PhaseComplete, s.Phase())
	assert.Equal(t, 100+10000, s.Score())
	assert.Equal(t, s.Score(), s.HighScore())
	assert.Contains(t, eventTypes(s.Drain()), EventGameComplete)

	s.Tick()
	assert.Equal(t, PhaseComplete, s.Phase())
	assert.ErrorIs(t, s.NextLevel(), ErrInvalidTransition)

	s.Reset()
	assert.Equal(t, PhaseMenu, s.Phase())
	require.NoError(t, s.Start())
	assert.Zero(t, s.Score())
	assert.Equal(t, 10100, s.HighScore())
}

func TestSession_InputSampledPerTick(t *testing.T) {
	s := newTestSession(t, nil)
	s.Click(1, 1)
	assert.Empty(t, s.clicks)

	require.NoError(t, s.Start())
	injectLevel(t, s, 2, []simulation.Particle{
		{ID: 1, Pos: r2.Vec{X: 100, Y: 100}, Radius: 5, Mass: 1},
		{ID: 2, Pos: r2.Vec{X: 300, Y: 300}, Radius: 5, Mass: 1},
	})

	s.SetPointer(90, 100)
	snap := s.Snapshot()
	require.NotNil(t, snap.Pointer)
	assert.Equal(t, r2.Vec{X: 90, Y: 100}, *snap.Pointer)

	s.Click(400, 100)
	s.Click(400, 100)
	require.Len(t, s.clicks, 2)
	s.Tick()
	assert.Empty(t, s.clicks)

	// Pulled toward the click and pushed from the pointer, both along +x
	p := s.Snapshot().Particles[0]
	assert.Greater(t, p.Vel.X, 0.0)

	s.ClearPointer()
	assert.Nil(t, s.Snapshot().Pointer)

	require.NoError(t, s.Pause())
	s.Click(1, 1)
	assert.Empty(t, s.clicks)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(zap.New(core))

	Dispatch([]Event{
		{Type: EventMerge, Merge: simulation.MergeEvent{SurvivorID: 1, AbsorbedID: 2}},
		{Type: EventLevelComplete, Level: 2, Delta: 2000},
		{Type: EventScore, Delta: 100},
	}, sink, nil)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "Particles merged", logs.All()[0].Message)
	assert.Equal(t, "Level complete", logs.All()[1].Message)
	assert.Equal(t, int64(2000), logs.All()[1].ContextMap()["bonus"])
}
