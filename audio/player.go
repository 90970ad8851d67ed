// Package audio plays short synthesized cues for merges and level completions.
package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/olivierh59500/gravity-puzzle-go/config"
	"github.com/olivierh59500/gravity-puzzle-go/game"
	"github.com/olivierh59500/gravity-puzzle-go/logging"
	"go.uber.org/zap"
)

// Player is a game.Sink that turns events into sounds. Until Init succeeds it
// drops every event, so the game runs silent without an audio device.
type Player struct {
	rate    beep.SampleRate
	volume  float64
	enabled bool
	ready   bool
	logger  *zap.Logger
}

// NewPlayer creates a player from cfg
func NewPlayer(cfg config.AudioConfig, logger *zap.Logger) *Player {
	logger = logging.OrNop(logger)
	return &Player{
		rate:    beep.SampleRate(cfg.SampleRate),
		volume:  cfg.Volume,
		enabled: cfg.Enabled,
		logger:  logger,
	}
}

// Init opens the speaker. A disabled player succeeds without touching the device.
func (p *Player) Init() error {
	if !p.enabled || p.ready {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	p.ready = true
	p.logger.Debug("Audio initialized", zap.Int("sample_rate", int(p.rate)))
	return nil
}

// Ready reports whether cues are being played
func (p *Player) Ready() bool {
	return p.ready
}

// Close releases the speaker
func (p *Player) Close() {
	if p.ready {
		speaker.Close()
		p.ready = false
	}
}

// Cue builds the sound for ev, or nil when the event is silent
func (p *Player) Cue(ev game.Event) (beep.Streamer, error) {
	switch ev.Type {
	case game.EventMerge:
		return MergeCue(p.rate, ev.Merge.Mass, p.volume)
	case game.EventLevelComplete, game.EventGameComplete:
		return FanfareCue(p.rate, ev.Level, p.volume)
	}
	return nil, nil
}

func (p *Player) HandleEvent(ev game.Event) {
	if !p.ready {
		return
	}
	s, err := p.Cue(ev)
	if err != nil {
		p.logger.Warn("Failed to build audio cue", zap.Stringer("event", ev.Type), zap.Error(err))
		return
	}
	if s != nil {
		speaker.Play(s)
	}
}
