package ecs_test

import "github.com/plus3/invaders/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Score int32

// Tags
type Hostile struct{}
type Friendly struct{}

// Relations
type ChildOf struct {
	OffsetX, OffsetY float32
}

type Likes struct {
	Weight int
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterTag[Hostile](registry)
	ecs.RegisterTag[Friendly](registry)
	ecs.RegisterRelation[ChildOf](registry, ecs.Exclusive)
	ecs.RegisterRelation[Likes](registry)
	return registry
}

func newTestWorld() *ecs.World {
	return ecs.NewWorld(newTestRegistry())
}
