package simulation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrInvalidRadius   = errors.New("simulation: radius must be positive")
	ErrInvalidMass     = errors.New("simulation: mass must be positive")
	ErrInvalidStrength = errors.New("simulation: attractor strength must be non-negative")
	ErrInvalidArena    = errors.New("simulation: arena dimensions must be positive")
	ErrInvalidLevel    = errors.New("simulation: level out of range")
	ErrNonFinite       = errors.New("simulation: position and velocity must be finite")
	ErrDuplicateID     = errors.New("simulation: duplicate particle id")
)

// Particle struct: a circular mass-bearing body
type Particle struct {
	ID     int      `yaml:"id"`
	Pos    r2.Vec   `yaml:"pos"`
	Vel    r2.Vec   `yaml:"vel"`
	Radius float64  `yaml:"radius"`
	Mass   float64  `yaml:"mass"`
	Color  int      `yaml:"color"`           // Palette index, resolved by the render sink
	Trail  []r2.Vec `yaml:"trail,omitempty"` // Past positions, oldest first
}

// NewParticle validates and builds a particle with an empty trail
func NewParticle(id int, pos, vel r2.Vec, radius, mass float64, color int) (Particle, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Particle{}, fmt.Errorf("%w: particle %d has radius %v", ErrInvalidRadius, id, radius)
	}
	if !(mass > 0) || math.IsInf(mass, 0) {
		return Particle{}, fmt.Errorf("%w: particle %d has mass %v", ErrInvalidMass, id, mass)
	}
	if !finite(pos) || !finite(vel) {
		return Particle{}, fmt.Errorf("%w: particle %d", ErrNonFinite, id)
	}
	return Particle{
		ID:     id,
		Pos:    pos,
		Vel:    vel,
		Radius: radius,
		Mass:   mass,
		Color:  color,
	}, nil
}

// Speed returns the velocity magnitude
func (p Particle) Speed() float64 {
	return r2.Norm(p.Vel)
}

// clone returns a copy that shares no trail storage with p
func (p Particle) clone() Particle {
	if p.Trail != nil {
		p.Trail = append([]r2.Vec(nil), p.Trail...)
	}
	return p
}

// pushTrail appends pt, evicting the oldest entries beyond limit
func (p *Particle) pushTrail(pt r2.Vec, limit int) {
	if limit <= 0 {
		return
	}
	if len(p.Trail) >= limit {
		n := copy(p.Trail, p.Trail[len(p.Trail)-limit+1:])
		p.Trail = p.Trail[:n]
	}
	p.Trail = append(p.Trail, pt)
}

// Attractor is a fixed point pulling every particle toward it
type Attractor struct {
	Pos      r2.Vec  `yaml:"pos"`
	Strength float64 `yaml:"strength"`
}

// NewAttractor validates and builds an attractor. A zero strength is allowed and exerts no pull.
func NewAttractor(pos r2.Vec, strength float64) (Attractor, error) {
	if !(strength >= 0) || math.IsInf(strength, 0) {
		return Attractor{}, fmt.Errorf("%w: %v", ErrInvalidStrength, strength)
	}
	if !finite(pos) {
		return Attractor{}, fmt.Errorf("%w: attractor at %v", ErrNonFinite, pos)
	}
	return Attractor{Pos: pos, Strength: strength}, nil
}

// Arena is the rectangle [0,Width]x[0,Height] particles are kept inside
type Arena struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Validate rejects non-positive or non-finite dimensions
func (a Arena) Validate() error {
	if !(a.Width > 0) || !(a.Height > 0) || math.IsInf(a.Width, 0) || math.IsInf(a.Height, 0) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidArena, a.Width, a.Height)
	}
	return nil
}

// Center returns the arena midpoint
func (a Arena) Center() r2.Vec {
	return r2.Vec{X: a.Width / 2, Y: a.Height / 2}
}

// Contains reports whether the whole disc of p lies inside the arena
func (a Arena) Contains(p Particle) bool {
	return p.Pos.X-p.Radius >= 0 && p.Pos.X+p.Radius <= a.Width &&
		p.Pos.Y-p.Radius >= 0 && p.Pos.Y+p.Radius <= a.Height
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
