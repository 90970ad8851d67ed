package simulation

import "math"

// ResolveBoundaries reflects particles off the arena walls with energy loss and
// clamps them back inside. Axes are resolved independently.
func ResolveBoundaries(particles []Particle, arena Arena, restitution float64) {
	for i := range particles {
		p := &particles[i]
		p.Pos.X, p.Vel.X = resolveAxis(p.Pos.X, p.Vel.X, p.Radius, arena.Width, restitution)
		p.Pos.Y, p.Vel.Y = resolveAxis(p.Pos.Y, p.Vel.Y, p.Radius, arena.Height, restitution)
	}
}

// resolveAxis bounces one coordinate. The reflected velocity always points back
// into the arena so a particle already heading inward is not sent outward again.
func resolveAxis(pos, vel, radius, extent, restitution float64) (float64, float64) {
	if 2*radius >= extent {
		// Wider than the arena on this axis: pin to the middle
		return extent / 2, 0
	}
	switch {
	case pos-radius < 0:
		return radius, math.Abs(vel) * restitution
	case pos+radius > extent:
		return extent - radius, -math.Abs(vel) * restitution
	}
	return pos, vel
}
