package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	maxSpawnAttempts = 64
	spawnGap         = 2.0 // Minimum free space between freshly spawned discs

	// Perlin parameters: smoothness, frequency scaling, octaves
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// LevelConfig controls how a level's bodies are generated
type LevelConfig struct {
	Seed         int64   `yaml:"seed"`
	BaseStrength float64 `yaml:"base_strength"` // Attractor strength on level 1
	StrengthStep float64 `yaml:"strength_step"` // Added per level
	RingFraction float64 `yaml:"ring_fraction"` // Attractor ring radius as a fraction of min(W,H)
	MinRadius    float64 `yaml:"min_radius"`
	MaxRadius    float64 `yaml:"max_radius"`
	Density      float64 `yaml:"density"`     // mass = density * radius²
	NoiseScale   float64 `yaml:"noise_scale"` // World units per perlin lattice cell
	SpawnSpeed   float64 `yaml:"spawn_speed"`
	Palette      int     `yaml:"palette"` // Number of colour identifiers to cycle through
}

// DefaultLevelConfig returns the stock level generator
func DefaultLevelConfig() LevelConfig {
	return LevelConfig{
		Seed:         1,
		BaseStrength: 400,
		StrengthStep: 50,
		RingFraction: 0.3,
		MinRadius:    6,
		MaxRadius:    14,
		Density:      0.01,
		NoiseScale:   150,
		SpawnSpeed:   1.5,
		Palette:      8,
	}
}

// ParticleCount is the number of particles a level starts with
func ParticleCount(level int) int {
	return min(5+level*2, MaxParticles)
}

// AttractorCount is the number of attractors a level places
func AttractorCount(level int) int {
	return min(2+level/3, MaxAttractors)
}

// AttractorStrength is the pull every attractor of a level shares
func (c LevelConfig) AttractorStrength(level int) float64 {
	return c.BaseStrength + c.StrengthStep*float64(level-1)
}

// Validate rejects generator settings that cannot produce a legal level
func (c LevelConfig) Validate() error {
	switch {
	case !(c.MinRadius > 0) || c.MaxRadius < c.MinRadius:
		return fmt.Errorf("%w: radius range [%v,%v]", ErrInvalidRadius, c.MinRadius, c.MaxRadius)
	case !(c.Density > 0):
		return fmt.Errorf("%w: density %v", ErrInvalidMass, c.Density)
	case c.BaseStrength < 0 || c.AttractorStrength(MaxLevel) < 0:
		return fmt.Errorf("%w: base %v step %v", ErrInvalidStrength, c.BaseStrength, c.StrengthStep)
	case !(c.NoiseScale > 0) || c.Palette < 1 || c.SpawnSpeed < 0 || c.RingFraction < 0:
		return fmt.Errorf("%w: noise scale, palette, spawn speed and ring fraction", ErrInvalidParams)
	}
	return nil
}

// NewLevel builds the starting state of a level. The same seed and level always
// produce the same bodies.
func NewLevel(arena Arena, level int, cfg LevelConfig, params Params) (*State, error) {
	if err := arena.Validate(); err != nil {
		return nil, err
	}
	if level < 1 || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d not in [1,%d]", ErrInvalidLevel, level, MaxLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if 2*cfg.MaxRadius >= math.Min(arena.Width, arena.Height) {
		return nil, fmt.Errorf("%w: %vx%v too small for radius %v", ErrInvalidArena, arena.Width, arena.Height, cfg.MaxRadius)
	}

	seed := cfg.Seed*1000 + int64(level)
	rng := rand.New(rand.NewSource(seed))
	noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)

	attractors, err := placeAttractors(arena, level, cfg, noise)
	if err != nil {
		return nil, err
	}
	particles, err := spawnParticles(arena, level, cfg, rng, noise)
	if err != nil {
		return nil, err
	}
	return NewState(arena, level, particles, attractors, params)
}

// placeAttractors spaces attractors evenly on a ring around the centre, each
// nudged in angle and radius by noise
func placeAttractors(arena Arena, level int, cfg LevelConfig, noise *perlin.Perlin) ([]Attractor, error) {
	n := AttractorCount(level)
	center := arena.Center()
	ring := cfg.RingFraction * math.Min(arena.Width, arena.Height)
	strength := cfg.AttractorStrength(level)

	out := make([]Attractor, 0, n)
	for i := 0; i < n; i++ {
		// Lattice points are always zero, sample between them
		u := float64(i) + 0.5
		angle := 2*math.Pi*float64(i)/float64(n) + noise.Noise1D(u)*math.Pi/float64(n)
		radius := ring * (1 + 0.25*noise.Noise2D(u, float64(level)+0.5))
		pos := r2.Add(center, r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)})
		a, err := NewAttractor(pos, strength)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// spawnParticles scatters discs without overlap and seeds their velocity from a
// perlin flow field
func spawnParticles(arena Arena, level int, cfg LevelConfig, rng *rand.Rand, noise *perlin.Perlin) ([]Particle, error) {
	n := ParticleCount(level)
	out := make([]Particle, 0, n)
	for id := 1; id <= n; id++ {
		radius := cfg.MinRadius + rng.Float64()*(cfg.MaxRadius-cfg.MinRadius)

		var pos r2.Vec
		for attempt := 0; attempt < maxSpawnAttempts; attempt++ {
			pos = r2.Vec{
				X: radius + rng.Float64()*(arena.Width-2*radius),
				Y: radius + rng.Float64()*(arena.Height-2*radius),
			}
			if !crowded(pos, radius, out) {
				break
			}
		}

		angle := noise.Noise2D(pos.X/cfg.NoiseScale, pos.Y/cfg.NoiseScale) * 2 * math.Pi
		vel := r2.Vec{X: cfg.SpawnSpeed * math.Cos(angle), Y: cfg.SpawnSpeed * math.Sin(angle)}

		p, err := NewParticle(id, pos, vel, radius, cfg.Density*radius*radius, (id-1)%cfg.Palette)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// crowded reports whether a disc at pos would touch any placed particle
func crowded(pos r2.Vec, radius float64, placed []Particle) bool {
	for _, p := range placed {
		if r2.Norm(r2.Sub(pos, p.Pos)) < radius+p.Radius+spawnGap {
			return true
		}
	}
	return false
}
