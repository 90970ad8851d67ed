package simulation

import (
	"fmt"
)

// State owns the particles and attractors of one level
type State struct {
	Arena Arena
	Level int

	params     Params
	particles  []Particle
	attractors []Attractor
	ticks      int
}

// StepResult is everything a tick produced besides the new state
type StepResult struct {
	Merges  []MergeEvent
	Outcome Outcome
	Count   int // Particles left after the tick
}

// NewState validates inputs and takes private copies of them
func NewState(arena Arena, level int, particles []Particle, attractors []Attractor, params Params) (*State, error) {
	if err := arena.Validate(); err != nil {
		return nil, err
	}
	if level < 1 || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d not in [1,%d]", ErrInvalidLevel, level, MaxLevel)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &State{
		Arena:      arena,
		Level:      level,
		params:     params,
		particles:  make([]Particle, 0, len(particles)),
		attractors: make([]Attractor, 0, len(attractors)),
	}

	seen := make(map[int]struct{}, len(particles))
	for _, p := range particles {
		// Re-run construction checks for literals built outside NewParticle
		if _, err := NewParticle(p.ID, p.Pos, p.Vel, p.Radius, p.Mass, p.Color); err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
		s.particles = append(s.particles, p.clone())
	}
	for _, a := range attractors {
		if _, err := NewAttractor(a.Pos, a.Strength); err != nil {
			return nil, err
		}
		s.attractors = append(s.attractors, a)
	}
	return s, nil
}

// Step runs one tick: clicks, forces, walls, merges, then the win check
func (s *State) Step(in Input) StepResult {
	ApplyClicks(s.particles, in.Clicks, s.params)
	Integrate(s.particles, s.attractors, in, s.params)
	ResolveBoundaries(s.particles, s.Arena, s.params.Restitution)
	for i := range s.particles {
		s.particles[i].pushTrail(s.particles[i].Pos, s.params.TrailLength)
	}

	next, merges := MergeCollisions(s.particles)
	s.particles = next
	s.ticks++

	return StepResult{
		Merges:  merges,
		Outcome: DetectWin(len(next), s.Level),
		Count:   len(next),
	}
}

// Particles returns a deep copy of the active particles in list order
func (s *State) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.clone()
	}
	return out
}

// Attractors returns a copy of the level's attractors
func (s *State) Attractors() []Attractor {
	return append([]Attractor(nil), s.attractors...)
}

// Count returns the number of active particles
func (s *State) Count() int {
	return len(s.particles)
}

// Ticks returns how many steps this state has run
func (s *State) Ticks() int {
	return s.ticks
}

// Params returns the tuning the state was built with
func (s *State) Params() Params {
	return s.params
}

// TotalMass sums the mass of all active particles
func (s *State) TotalMass() float64 {
	var m float64
	for _, p := range s.particles {
		m += p.Mass
	}
	return m
}
