package invaders

import (
	"github.com/google/uuid"
	"github.com/plus3/invaders/config"
	"github.com/plus3/invaders/ecs"
)

// DroneMeshScale normalizes the drone model so it covers DroneSize pixels.
const DroneMeshScale = 1.0 / 50

func newMesh(model string, scale float64) Mesh {
	return Mesh{Handle: uuid.New(), Model: model, Scale: scale}
}

// SpawnSwarmAnchor creates the invisible entity every drone follows.
func SpawnSwarmAnchor(w *ecs.World, cfg config.GameConfig, pos Position) ecs.Entity {
	return w.Spawn(pos, Velocity{XVel: cfg.SwarmSpeed})
}

// SpawnEnemyDrone creates a destroyable drone at abs that follows target at offset rel.
func SpawnEnemyDrone(w *ecs.World, cfg config.GameConfig, abs Position, rel RelativePosition, target ecs.Entity) ecs.Entity {
	components := []any{
		abs,
		DrawableSquare{Size: cfg.DroneSize, FillColor: DroneColor},
		IsEnemy{},
		DestroyedStatus{},
		ecs.Pair(target, FollowsTarget{Offset: rel}),
	}
	if cfg.Meshes {
		components = append(components, newMesh(ModelDrone, DroneMeshScale))
	}
	components = append(components, centeredBox(abs, cfg.DroneSize))
	return w.Spawn(components...)
}

// SpawnPlayer creates the controllable ship. It has no bounding box.
func SpawnPlayer(w *ecs.World, cfg config.GameConfig, pos Position) ecs.Entity {
	components := []any{
		pos,
		IsPlayer{},
		DrawableSquare{Size: cfg.PlayerSize, FillColor: PlayerColor},
		TwoWayControl{Dir: DirNone},
		Velocity{},
		ThrustVelocity{Magnitude: cfg.PlayerThrust},
	}
	if cfg.Meshes {
		components = append(components, newMesh(ModelPlayer, 1))
	}
	return w.Spawn(components...)
}

// SpawnProjectile creates an upward-moving projectile at pos.
func SpawnProjectile(w *ecs.World, cfg config.GameConfig, pos Position) ecs.Entity {
	components := []any{
		IsProjectile{},
		Velocity{YVel: -cfg.ProjectileSpeed},
		pos,
		DrawableSquare{Size: cfg.ProjectileSize, FillColor: ProjectileColor},
		DestroyedStatus{},
		centeredBox(pos, cfg.ProjectileSize),
	}
	if cfg.Meshes {
		components = append(components, newMesh(ModelProjectile, 1))
	}
	return w.Spawn(components...)
}

// SpawnSwarmGrid fills the columns x rows drone grid column by column. Each drone's
// absolute offset from the anchor equals its relative offset.
func SpawnSwarmGrid(w *ecs.World, cfg config.GameConfig, anchor ecs.Entity) []ecs.Entity {
	origin := *ecs.MustGet[Position](w, anchor)
	drones := make([]ecs.Entity, 0, cfg.SwarmColumns*cfg.SwarmRows)
	for col := 0; col < cfg.SwarmColumns; col++ {
		for row := 0; row < cfg.SwarmRows; row++ {
			rel := RelativePosition{
				PosX: float64(col) * cfg.SwarmSpacing,
				PosY: float64(row) * cfg.SwarmSpacing,
			}
			abs := Position{PosX: origin.PosX + rel.PosX, PosY: origin.PosY + rel.PosY}
			drones = append(drones, SpawnEnemyDrone(w, cfg, abs, rel, anchor))
		}
	}
	return drones
}
