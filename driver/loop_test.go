package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olivierh59500/gravity-puzzle-go/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewLoop_Interval(t *testing.T) {
	assert.Equal(t, time.Second/60, NewLoop(60, nil).Interval())
	assert.Equal(t, time.Second/60, NewLoop(0, nil).Interval())
	assert.Equal(t, 10*time.Millisecond, NewLoop(100, nil).Interval())
}

func TestLoop_TicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticks := 0
	stepper := StepperFunc(func() {
		ticks++
		if ticks == 5 {
			cancel()
		}
	})

	err := NewLoop(1000, zap.NewNop()).Run(ctx, stepper, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 5, ticks)
}

func TestLoop_CommandsRunBetweenTicks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var log []string
	inTick := false
	commands := make(chan Command, 4)

	stepper := StepperFunc(func() {
		inTick = true
		log = append(log, "tick")
		inTick = false
		if count(log, "cmd") == 3 && count(log, "tick") >= 3 {
			cancel()
		}
	})

	for i := 0; i < 3; i++ {
		commands <- func() {
			assert.False(t, inTick, "command ran inside a tick")
			log = append(log, "cmd")
		}
	}
	close(commands)

	err := NewLoop(500, nil).Run(ctx, stepper, commands)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, count(log, "cmd"))
	assert.GreaterOrEqual(t, count(log, "tick"), 3)
}

func TestLoop_DrivesSession(t *testing.T) {
	s, err := game.NewSession(game.DefaultOptions(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	commands := make(chan Command)
	done := make(chan error, 1)
	go func() {
		done <- NewLoop(1000, nil).Run(ctx, StepperFunc(func() {
			s.Tick()
			if s.Ticks() >= 20 {
				cancel()
			}
		}), commands)
	}()

	select {
	case commands <- func() { s.SetPointer(400, 300) }:
	case <-ctx.Done():
	}
	require.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, s.Ticks(), 20)
	assert.NotNil(t, s.Snapshot().Pointer)
}

func TestRunTicks(t *testing.T) {
	n := 0
	RunTicks(StepperFunc(func() { n++ }), 7)
	assert.Equal(t, 7, n)
}

func count(log []string, want string) int {
	n := 0
	for _, s := range log {
		if s == want {
			n++
		}
	}
	return n
}
