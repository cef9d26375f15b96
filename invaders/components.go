// Package invaders is the simulation core of the arcade game: the component set,
// entity factories, the per-tick system pipeline and the Simulation driver.
package invaders

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/plus3/invaders/ecs"
)

// ErrUnknownDirection is returned (or panicked with, inside ControlSystem) for a
// TwoWayControl direction outside None, East and West.
var ErrUnknownDirection = errors.New("unknown control direction")

// Position is in pixels, origin at the viewport center, y growing downwards.
type Position struct {
	PosX, PosY float64
}

// Velocity is in pixels per millisecond.
type Velocity struct {
	XVel, YVel float64
}

// RelativePosition is an offset from a followed entity's Position.
type RelativePosition struct {
	PosX, PosY float64
}

// FollowsTarget relates a follower to the entity it tracks. The edge carries the
// follower's offset.
type FollowsTarget struct {
	Offset RelativePosition
}

type ThrustVelocity struct {
	Magnitude float64
}

type Direction uint8

const (
	DirNone Direction = iota
	DirEast
	DirWest
)

func (d Direction) Valid() bool {
	return d <= DirWest
}

func (d Direction) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirEast:
		return "e"
	case DirWest:
		return "w"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection accepts "none", "e"/"east" and "w"/"west".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "none", "":
		return DirNone, nil
	case "e", "east":
		return DirEast, nil
	case "w", "west":
		return DirWest, nil
	}
	return DirNone, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

type TwoWayControl struct {
	Dir Direction
}

// DrawableSquare is the 2D render hint: a filled square of Size pixels.
type DrawableSquare struct {
	Size      float64
	FillColor string
}

// Mesh is the 3D render hint. Handle identifies the renderer-side object and is
// released when the entity is destroyed.
type Mesh struct {
	Handle uuid.UUID
	Model  string
	Scale  float64
}

// AABB is an axis-aligned box whose X, Y is the top-left corner.
type AABB struct {
	X, Y          float64
	Width, Height float64
}

// Overlaps reports strict overlap; touching edges do not count.
func (a AABB) Overlaps(b AABB) bool {
	return a.X < b.X+b.Width &&
		a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height &&
		a.Y+a.Height > b.Y
}

// centeredBox returns a size x size box centered on pos
func centeredBox(pos Position, size float64) AABB {
	return AABB{X: pos.PosX - size/2, Y: pos.PosY - size/2, Width: size, Height: size}
}

type DestroyedStatus struct {
	IsDestroyed bool
}

// Tags
type IsEnemy struct{}
type IsPlayer struct{}
type IsProjectile struct{}

// Viewport is the current drawable area, supplied by the host every tick.
type Viewport struct {
	Width, Height float64
}

// Contains reports whether pos lies inside the viewport, edges included.
func (v Viewport) Contains(pos Position) bool {
	return pos.PosX >= -v.Width/2 && pos.PosX <= v.Width/2 &&
		pos.PosY >= -v.Height/2 && pos.PosY <= v.Height/2
}

const (
	DroneColor      = "#00ff1a"
	PlayerColor     = "#fc0303"
	ProjectileColor = "#ff9900"

	ModelDrone      = "drone"
	ModelPlayer     = "player"
	ModelProjectile = "projectile"
)

// NewRegistry registers every component, tag and relation of the game.
func NewRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[ThrustVelocity](registry)
	ecs.RegisterComponent[TwoWayControl](registry)
	ecs.RegisterComponent[DrawableSquare](registry)
	ecs.RegisterComponent[Mesh](registry)
	ecs.RegisterComponent[AABB](registry)
	ecs.RegisterComponent[DestroyedStatus](registry)
	ecs.RegisterTag[IsEnemy](registry)
	ecs.RegisterTag[IsPlayer](registry)
	ecs.RegisterTag[IsProjectile](registry)
	ecs.RegisterRelation[FollowsTarget](registry, ecs.Exclusive)
	return registry
}

// NewWorld returns an empty world over a fresh registry.
func NewWorld() *ecs.World {
	return ecs.NewWorld(NewRegistry())
}
