package invaders

import "github.com/plus3/invaders/ecs"

// SwarmBoundary bounces the swarm anchor between minX and maxX. When the anchor has
// crossed a bound its horizontal velocity flips, it steps down by descent and is
// clamped back onto the bound so the next tick moves it away. It reports whether
// the anchor turned. A stale anchor is ignored.
//
// It runs outside the scheduler: the sweep is choreography for a single entity.
func SwarmBoundary(w *ecs.World, anchor ecs.Entity, minX, maxX, descent float64) bool {
	pos, ok := ecs.Get[Position](w, anchor)
	if !ok {
		return false
	}
	vel, ok := ecs.Get[Velocity](w, anchor)
	if !ok {
		return false
	}

	var bound float64
	switch {
	case pos.PosX > maxX:
		bound = maxX
	case pos.PosX < minX:
		bound = minX
	default:
		return false
	}

	vel.XVel = -vel.XVel
	pos.PosY += descent
	pos.PosX = bound
	return true
}

// SwarmLimits converts the configured offsets from the left edge into the
// center-origin bounds SwarmBoundary expects.
func SwarmLimits(width, minOffset, maxOffset float64) (minX, maxX float64) {
	return minOffset - width/2, maxOffset - width/2
}
