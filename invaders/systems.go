package invaders

import (
	"fmt"

	"github.com/plus3/invaders/ecs"
)

// LossConditionSystem queues OnLoss on the frame's commands for the first enemy
// found right of and below a player, then stops scanning. OnLoss runs after the
// frame's last system. This is a coarse proximity test, not a box overlap.
type LossConditionSystem struct {
	Enemies ecs.Query[struct {
		*Position
		IsEnemy
	}]
	Players ecs.Query[struct {
		*Position
		IsPlayer
	}]
	OnLoss func()
}

func (s *LossConditionSystem) Execute(frame *ecs.UpdateFrame) {
	for enemy := range s.Enemies.Values() {
		for player := range s.Players.Values() {
			if enemy.Position.PosX > player.Position.PosX && enemy.Position.PosY > player.Position.PosY {
				if s.OnLoss != nil {
					frame.Commands.Defer(s.OnLoss)
				}
				return
			}
		}
	}
}

// ProjectileEnemySystem marks every overlapping enemy and projectile as destroyed.
// A projectile destroys at most one enemy.
type ProjectileEnemySystem struct {
	Enemies ecs.Query[struct {
		*AABB
		*DestroyedStatus
		IsEnemy
	}]
	Projectiles ecs.Query[struct {
		*AABB
		*DestroyedStatus
		IsProjectile
	}]
}

func (s *ProjectileEnemySystem) Execute(frame *ecs.UpdateFrame) {
	for enemy := range s.Enemies.Values() {
		for projectile := range s.Projectiles.Values() {
			if enemy.DestroyedStatus.IsDestroyed {
				break
			}
			if projectile.DestroyedStatus.IsDestroyed {
				continue
			}
			if projectile.AABB.Overlaps(*enemy.AABB) {
				projectile.DestroyedStatus.IsDestroyed = true
				enemy.DestroyedStatus.IsDestroyed = true
			}
		}
	}
}

// MotionSystem integrates velocity over the frame's delta time in milliseconds.
type MotionSystem struct {
	Movers ecs.Query[struct {
		*Position
		*Velocity
	}]
}

func (s *MotionSystem) Execute(frame *ecs.UpdateFrame) {
	for m := range s.Movers.Values() {
		m.Position.PosX += m.Velocity.XVel * frame.DeltaTime
		m.Position.PosY += m.Velocity.YVel * frame.DeltaTime
	}
}

// FollowerSystem places every follower at its target's position plus the edge offset.
type FollowerSystem struct {
	Followers ecs.Query[struct {
		*Position
		Follows ecs.Rel[FollowsTarget]
	}]
}

func (s *FollowerSystem) Execute(frame *ecs.UpdateFrame) {
	for f := range s.Followers.Values() {
		target := ecs.ReadComponent[Position](frame, f.Follows.Target)
		if target == nil {
			panic(fmt.Errorf("%w: follow target %s has no Position", ecs.ErrInvariant, f.Follows.Target))
		}
		f.Position.PosX = target.PosX + f.Follows.Data.Offset.PosX
		f.Position.PosY = target.PosY + f.Follows.Data.Offset.PosY
	}
}

// ControlSystem turns the player's control direction into horizontal velocity.
type ControlSystem struct {
	Players ecs.Query[struct {
		*TwoWayControl
		*ThrustVelocity
		*Velocity
		IsPlayer
	}]
}

func (s *ControlSystem) Execute(frame *ecs.UpdateFrame) {
	for p := range s.Players.Values() {
		switch p.TwoWayControl.Dir {
		case DirEast:
			p.Velocity.XVel = p.ThrustVelocity.Magnitude
		case DirWest:
			p.Velocity.XVel = -p.ThrustVelocity.Magnitude
		case DirNone:
			p.Velocity.XVel = 0
		default:
			panic(fmt.Errorf("%w: %s", ErrUnknownDirection, p.TwoWayControl.Dir))
		}
	}
}

// OutOfBoundsSystem destroys entities positioned outside the viewport. With Every
// above 1 it only runs on every Every-th tick.
type OutOfBoundsSystem struct {
	Entities ecs.Query[struct {
		ecs.Entity
		*Position
	}]
	Viewport ecs.Singleton[Viewport]
	Every    int
	ticks    int
}

func (s *OutOfBoundsSystem) Execute(frame *ecs.UpdateFrame) {
	s.ticks++
	if s.Every > 1 && s.ticks%s.Every != 0 {
		return
	}
	viewport := *s.Viewport.Get()
	for e, item := range s.Entities.Iter() {
		if !viewport.Contains(*item.Position) {
			frame.World.Destroy(e)
		}
	}
}

// DestroyedCullingSystem removes entities marked destroyed.
type DestroyedCullingSystem struct {
	Entities ecs.Query[struct {
		ecs.Entity
		*DestroyedStatus
	}]
}

func (s *DestroyedCullingSystem) Execute(frame *ecs.UpdateFrame) {
	for e, item := range s.Entities.Iter() {
		if item.DestroyedStatus.IsDestroyed {
			frame.World.Destroy(e)
		}
	}
}

// BoundsSyncSystem re-centers every bounding box on its entity's position.
type BoundsSyncSystem struct {
	Boxes ecs.Query[struct {
		*Position
		*AABB
	}]
}

func (s *BoundsSyncSystem) Execute(frame *ecs.UpdateFrame) {
	for b := range s.Boxes.Values() {
		b.AABB.X = b.Position.PosX - b.AABB.Width/2
		b.AABB.Y = b.Position.PosY - b.AABB.Height/2
	}
}
