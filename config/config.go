package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olivierh59500/gravity-puzzle-go/simulation"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration
const DefaultPath = "gravity.yaml"

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all game configuration.
type Config struct {
	Arena   simulation.Arena       `yaml:"arena"`
	Physics simulation.Params      `yaml:"physics"`
	Level   simulation.LevelConfig `yaml:"level"`
	Scoring ScoringConfig          `yaml:"scoring"`
	Game    GameConfig             `yaml:"game"`
	Audio   AudioConfig            `yaml:"audio"`
	Logging LoggingConfig          `yaml:"logging"`
}

// ScoringConfig sets the score awards.
type ScoringConfig struct {
	MergeBonus int `yaml:"merge_bonus"` // Per merge
	LevelBonus int `yaml:"level_bonus"` // Multiplied by the completed level number
}

// GameConfig configures the session and host loop.
type GameConfig struct {
	StartLevel      int `yaml:"start_level"`
	TPS             int `yaml:"tps"`               // Ticks per second for headless and terminal drivers
	WinAdvanceTicks int `yaml:"win_advance_ticks"` // Frames spent on the win screen, 0 waits for input
}

// AudioConfig configures cue playback.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"` // Linear gain in [0,1]
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // Empty logs to stderr
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Arena:   simulation.Arena{Width: 800, Height: 600},
		Physics: simulation.DefaultParams(),
		Level:   simulation.DefaultLevelConfig(),
		Scoring: ScoringConfig{
			MergeBonus: 100,
			LevelBonus: 1000,
		},
		Game: GameConfig{
			StartLevel:      1,
			TPS:             60,
			WinAdvanceTicks: 120,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("GRAVITY_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: GRAVITY_SEED=%q: %v", ErrInvalidConfig, v, err)
		}
		c.Level.Seed = seed
	}
	if v := os.Getenv("GRAVITY_START_LEVEL"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: GRAVITY_START_LEVEL=%q: %v", ErrInvalidConfig, v, err)
		}
		c.Game.StartLevel = level
	}
	if v := os.Getenv("GRAVITY_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("GRAVITY_AUDIO"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: GRAVITY_AUDIO=%q: %v", ErrInvalidConfig, v, err)
		}
		c.Audio.Enabled = enabled
	}
	return nil
}

// Validate checks the configuration for values the game cannot run with.
func (c *Config) Validate() error {
	if err := c.Arena.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Level.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Game.StartLevel < 1 || c.Game.StartLevel > simulation.MaxLevel {
		return fmt.Errorf("%w: start_level %d not in [1,%d]", ErrInvalidConfig, c.Game.StartLevel, simulation.MaxLevel)
	}
	if c.Game.TPS <= 0 {
		return fmt.Errorf("%w: tps must be positive", ErrInvalidConfig)
	}
	if c.Game.WinAdvanceTicks < 0 {
		return fmt.Errorf("%w: win_advance_ticks must be non-negative", ErrInvalidConfig)
	}
	if c.Scoring.MergeBonus < 0 || c.Scoring.LevelBonus < 0 {
		return fmt.Errorf("%w: score bonuses must be non-negative", ErrInvalidConfig)
	}
	if c.Audio.SampleRate <= 0 || c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio sample_rate must be positive and volume in [0,1]", ErrInvalidConfig)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}
