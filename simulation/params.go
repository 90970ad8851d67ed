package simulation

import (
	"errors"
	"fmt"
)

var ErrInvalidParams = errors.New("simulation: invalid parameters")

// Simulation constants
const (
	MaxLevel      = 10
	MaxParticles  = 20
	MaxAttractors = 6
)

// Params holds the tunables of the tick pipeline
type Params struct {
	Damping         float64 `yaml:"damping"`          // Velocity multiplier per tick
	Restitution     float64 `yaml:"restitution"`      // Velocity fraction kept after a wall bounce
	Softening       float64 `yaml:"softening"`        // Added to r² in the attractor force
	PointerRadius   float64 `yaml:"pointer_radius"`   // Repulsion only acts inside this distance
	PointerStrength float64 `yaml:"pointer_strength"` // Repulsion numerator
	ClickStrength   float64 `yaml:"click_strength"`   // Click impulse numerator
	TrailLength     int     `yaml:"trail_length"`
	Epsilon         float64 `yaml:"epsilon"` // Distances below this contribute no force
}

// DefaultParams returns the stock game tuning
func DefaultParams() Params {
	return Params{
		Damping:         0.99,
		Restitution:     0.8,
		Softening:       100,
		PointerRadius:   100,
		PointerStrength: 50,
		ClickStrength:   500,
		TrailLength:     20,
		Epsilon:         1e-9,
	}
}

// Validate rejects tunings that break the pipeline invariants
func (p Params) Validate() error {
	switch {
	case !(p.Damping > 0 && p.Damping <= 1):
		return fmt.Errorf("%w: damping %v not in (0,1]", ErrInvalidParams, p.Damping)
	case !(p.Restitution >= 0 && p.Restitution <= 1):
		return fmt.Errorf("%w: restitution %v not in [0,1]", ErrInvalidParams, p.Restitution)
	case !(p.Softening >= 0):
		return fmt.Errorf("%w: softening %v is negative", ErrInvalidParams, p.Softening)
	case !(p.PointerRadius >= 0) || !(p.PointerStrength >= 0) || !(p.ClickStrength >= 0):
		return fmt.Errorf("%w: pointer and click settings must be non-negative", ErrInvalidParams)
	case p.TrailLength < 0:
		return fmt.Errorf("%w: trail length %d is negative", ErrInvalidParams, p.TrailLength)
	case !(p.Epsilon > 0):
		return fmt.Errorf("%w: epsilon must be positive", ErrInvalidParams)
	}
	return nil
}
