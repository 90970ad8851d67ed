package simulation

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Input is the pointer state sampled once at the start of a tick
type Input struct {
	Pointer       r2.Vec
	PointerActive bool
	Clicks        []r2.Vec // Click points received since the previous tick
}

// ApplyClicks gives every particle a one-shot impulse toward each click point
func ApplyClicks(particles []Particle, clicks []r2.Vec, params Params) {
	for _, c := range clicks {
		for i := range particles {
			p := &particles[i]
			d := r2.Sub(c, p.Pos)
			dist := r2.Norm(d)
			if dist < params.Epsilon {
				continue
			}
			f := params.ClickStrength / (dist + 1) / p.Mass
			p.Vel = r2.Add(p.Vel, r2.Scale(f/dist, d))
		}
	}
}

// Integrate accumulates attractor pull and pointer repulsion into each velocity,
// applies damping, then advances positions by one unit step
func Integrate(particles []Particle, attractors []Attractor, in Input, params Params) {
	for i := range particles {
		p := &particles[i]
		prev := p.Pos

		for _, a := range attractors {
			p.Vel = r2.Add(p.Vel, attraction(p.Pos, a, params))
		}
		if in.PointerActive {
			p.Vel = r2.Add(p.Vel, repulsion(*p, in.Pointer, params))
		}

		p.Vel = r2.Scale(params.Damping, p.Vel)
		p.Pos = r2.Add(p.Pos, p.Vel)

		sanitize(p, prev)
	}
}

// attraction returns the velocity increment toward a, zero when coincident
func attraction(pos r2.Vec, a Attractor, params Params) r2.Vec {
	d := r2.Sub(a.Pos, pos)
	r := r2.Norm(d)
	if r < params.Epsilon {
		return r2.Vec{}
	}
	f := a.Strength / (r*r + params.Softening)
	return r2.Scale(f/r, d)
}

// repulsion returns the velocity increment away from the pointer, zero outside its radius
func repulsion(p Particle, pointer r2.Vec, params Params) r2.Vec {
	d := r2.Sub(p.Pos, pointer)
	dist := r2.Norm(d)
	if dist >= params.PointerRadius || dist < params.Epsilon {
		return r2.Vec{}
	}
	f := params.PointerStrength / (dist + 1) / p.Mass
	return r2.Scale(f/dist, d)
}

// sanitize drops non-finite motion so one bad particle cannot poison later ticks
func sanitize(p *Particle, prev r2.Vec) {
	if !finite(p.Vel) {
		p.Vel = r2.Vec{}
	}
	if !finite(p.Pos) {
		p.Pos = prev
	}
}
