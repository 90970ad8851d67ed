package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 800.0, cfg.Arena.Width)
	assert.Equal(t, 0.99, cfg.Physics.Damping)
	assert.Equal(t, 0.8, cfg.Physics.Restitution)
	assert.Equal(t, 20, cfg.Physics.TrailLength)
	assert.Equal(t, 100, cfg.Scoring.MergeBonus)
	assert.Equal(t, 1000, cfg.Scoring.LevelBonus)
	assert.Equal(t, 60, cfg.Game.TPS)
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("GRAVITY_SEED", "")
	t.Setenv("GRAVITY_START_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "gravity.yaml")

	cfg := DefaultConfig()
	cfg.Level.Seed = 1234
	cfg.Game.StartLevel = 4
	cfg.Physics.PointerRadius = 80
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), loaded.Level.Seed)
	assert.Equal(t, 4, loaded.Game.StartLevel)
	assert.Equal(t, 80.0, loaded.Physics.PointerRadius)
	assert.Equal(t, cfg.Level, loaded.Level)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Arena, cfg.Arena)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arena:\n  width: 1024\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024.0, cfg.Arena.Width)
	assert.Equal(t, 600.0, cfg.Arena.Height)
	assert.Equal(t, 0.99, cfg.Physics.Damping)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics:\n  damping: 2\n"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	require.NoError(t, os.WriteFile(path, []byte("arena: [not, a, map]\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("values applied", func(t *testing.T) {
		t.Setenv("GRAVITY_SEED", "42")
		t.Setenv("GRAVITY_START_LEVEL", "3")
		t.Setenv("GRAVITY_LOG_LEVEL", "DEBUG")
		t.Setenv("GRAVITY_AUDIO", "false")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())

		assert.Equal(t, int64(42), cfg.Level.Seed)
		assert.Equal(t, 3, cfg.Game.StartLevel)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.False(t, cfg.Audio.Enabled)
	})

	t.Run("malformed seed rejected", func(t *testing.T) {
		t.Setenv("GRAVITY_SEED", "abc")
		cfg := DefaultConfig()
		assert.ErrorIs(t, cfg.applyEnvOverrides(), ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"start level too high", func(c *Config) { c.Game.StartLevel = 11 }},
		{"zero tps", func(c *Config) { c.Game.TPS = 0 }},
		{"negative bonus", func(c *Config) { c.Scoring.MergeBonus = -1 }},
		{"loud audio", func(c *Config) { c.Audio.Volume = 2 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"flat arena", func(c *Config) { c.Arena.Height = 0 }},
		{"inverted radius range", func(c *Config) { c.Level.MaxRadius = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
