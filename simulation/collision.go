package simulation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MergeEvent describes one inelastic merge resolved during a tick
type MergeEvent struct {
	SurvivorID int     `yaml:"survivor"`
	AbsorbedID int     `yaml:"absorbed"`
	Point      r2.Vec  `yaml:"point"` // Contact point between the two discs
	Mass       float64 `yaml:"mass"`  // Mass of the merged particle
	Radius     float64 `yaml:"radius"`
}

// Overlapping reports whether the discs of a and b intersect
func Overlapping(a, b Particle) bool {
	return r2.Norm(r2.Sub(a.Pos, b.Pos)) < a.Radius+b.Radius
}

// Merge combines b into a. Area and momentum are conserved; position, id, colour
// and trail come from a.
func Merge(a, b Particle) Particle {
	m := a.Mass + b.Mass
	a.Vel = r2.Scale(1/m, r2.Add(r2.Scale(a.Mass, a.Vel), r2.Scale(b.Mass, b.Vel)))
	a.Radius = math.Sqrt(a.Radius*a.Radius + b.Radius*b.Radius)
	a.Mass = m
	return a
}

// MergeCollisions scans pairs in list order and rebuilds the particle list.
// Each particle takes part in at most one merge per call; a particle overlapping
// several others merges with the lowest index and the rest wait for the next tick.
func MergeCollisions(particles []Particle) ([]Particle, []MergeEvent) {
	absorbed := make([]bool, len(particles))
	next := make([]Particle, 0, len(particles))
	var events []MergeEvent

	for i := range particles {
		if absorbed[i] {
			continue
		}
		survivor := particles[i]
		for j := i + 1; j < len(particles); j++ {
			if absorbed[j] || !Overlapping(particles[i], particles[j]) {
				continue
			}
			absorbed[j] = true
			survivor = Merge(particles[i], particles[j])
			events = append(events, MergeEvent{
				SurvivorID: particles[i].ID,
				AbsorbedID: particles[j].ID,
				Point:      contactPoint(particles[i], particles[j]),
				Mass:       survivor.Mass,
				Radius:     survivor.Radius,
			})
			break
		}
		next = append(next, survivor)
	}
	return next, events
}

// contactPoint lies on the centre line, split in proportion to the radii
func contactPoint(a, b Particle) r2.Vec {
	t := a.Radius / (a.Radius + b.Radius)
	return r2.Add(a.Pos, r2.Scale(t, r2.Sub(b.Pos, a.Pos)))
}
