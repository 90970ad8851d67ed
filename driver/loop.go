// Package driver runs a session's tick pipeline off a fixed-rate timer for
// hosts without their own frame callback.
package driver

import (
	"context"
	"time"

	"github.com/olivierh59500/gravity-puzzle-go/logging"
	"go.uber.org/zap"
)

// Stepper advances one frame
type Stepper interface {
	Tick()
}

// StepperFunc adapts a function to Stepper
type StepperFunc func()

func (f StepperFunc) Tick() { f() }

// Command mutates the stepper's inputs; it always runs between ticks
type Command func()

// Loop ticks a Stepper at a fixed interval
type Loop struct {
	interval time.Duration
	logger   *zap.Logger
}

// NewLoop creates a loop running tps ticks per second
func NewLoop(tps int, logger *zap.Logger) *Loop {
	if tps <= 0 {
		tps = 60
	}
	logger = logging.OrNop(logger)
	return &Loop{
		interval: time.Second / time.Duration(tps),
		logger:   logger,
	}
}

// Interval returns the time between ticks
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run ticks s until ctx is cancelled. Commands are applied in arrival order
// between ticks, never during one. A closed commands channel is ignored.
func (l *Loop) Run(ctx context.Context, s Stepper, commands <-chan Command) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("Tick loop started", zap.Duration("interval", l.interval))
	frames := 0
	defer func() {
		l.logger.Debug("Tick loop stopped", zap.Int("frames", frames))
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if cmd != nil {
				cmd()
			}
		case <-ticker.C:
			s.Tick()
			frames++
		}
	}
}

// RunTicks advances s n times synchronously
func RunTicks(s Stepper, n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}
