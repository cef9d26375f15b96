package ecs_test

import (
	"testing"

	"github.com/plus3/invaders/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewComponents(t *testing.T) {
	world := newTestWorld()
	world.Spawn(Position{X: 1}, Velocity{DX: 1})
	world.Spawn(Position{X: 2}, Velocity{DX: 2}, Health{Current: 10})
	world.Spawn(Position{X: 3})

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](world)

	assert.Equal(t, 2, view.Count())

	for item := range view.Values() {
		item.Position.X += item.Velocity.DX
	}

	var xs []float32
	for item := range ecs.NewView[struct{ *Position }](world).Values() {
		xs = append(xs, item.Position.X)
	}
	assert.ElementsMatch(t, []float32{2, 4, 3}, xs)
}

func TestViewOptional(t *testing.T) {
	world := newTestWorld()
	world.Spawn(Position{X: 1}, Health{Current: 5})
	world.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		*Position
		Health *Health `ecs:"optional"`
	}](world)

	withHealth, without := 0, 0
	for item := range view.Values() {
		if item.Health != nil {
			withHealth++
		} else {
			without++
		}
	}
	assert.Equal(t, 1, withHealth)
	assert.Equal(t, 1, without)
}

func TestViewEntityAndTags(t *testing.T) {
	world := newTestWorld()
	h1 := world.Spawn(Position{X: 1}, Hostile{})
	world.Spawn(Position{X: 2}, Friendly{})
	h2 := world.Spawn(Position{X: 3}, Velocity{}, Hostile{}, Friendly{})

	view := ecs.NewView[struct {
		ecs.Entity
		*Position
		Hostile
	}](world)

	var got []ecs.Entity
	for e, item := range view.Iter() {
		assert.Equal(t, e, item.Entity)
		got = append(got, e)
	}
	assert.ElementsMatch(t, []ecs.Entity{h1, h2}, got)

	both := ecs.NewView[struct {
		Hostile
		Friendly
	}](world)
	assert.Equal(t, 1, both.Count())
}

func TestViewRelation(t *testing.T) {
	world := newTestWorld()
	parent := world.Spawn(Position{X: 100})
	child := world.Spawn(Position{}, ecs.Pair(parent, ChildOf{OffsetX: 5}))
	world.Spawn(Position{})

	view := ecs.NewView[struct {
		*Position
		Parent ecs.Rel[ChildOf]
	}](world)

	require.Equal(t, 1, view.Count())
	item := view.Get(child)
	require.NotNil(t, item)
	assert.Equal(t, parent, item.Parent.Target)
	require.NotNil(t, item.Parent.Data)
	assert.Equal(t, float32(5), item.Parent.Data.OffsetX)

	assert.Nil(t, view.Get(parent))

	optional := ecs.NewView[struct {
		ecs.Entity
		Parent ecs.Rel[ChildOf] `ecs:"optional"`
	}](world)
	assert.Equal(t, 3, optional.Count())
	p := optional.Get(parent)
	require.NotNil(t, p)
	assert.Equal(t, ecs.Nil, p.Parent.Target)
	assert.Nil(t, p.Parent.Data)
}

func TestViewDestroyWhileIterating(t *testing.T) {
	world := newTestWorld()
	var all []ecs.Entity
	for i := 0; i < 100; i++ {
		all = append(all, world.Spawn(Position{X: float32(i)}))
	}

	view := ecs.NewView[struct {
		ecs.Entity
		*Position
	}](world)

	visited := 0
	for e := range view.Iter() {
		visited++
		// destroy the entity and its successor
		world.Destroy(e)
		if next := e.Index() + 1; int(next) < len(all) {
			world.Destroy(all[next])
		}
	}

	assert.Equal(t, 50, visited)
	assert.Equal(t, 0, world.Len())
}

func TestViewStaleGet(t *testing.T) {
	world := newTestWorld()
	e := world.Spawn(Position{})
	view := ecs.NewView[struct{ *Position }](world)
	world.Destroy(e)
	assert.Nil(t, view.Get(e))
}

func TestViewInvalidField(t *testing.T) {
	world := newTestWorld()
	assert.Panics(t, func() {
		ecs.NewView[struct{ X int }](world)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"required"`
		}](world)
	})
	assert.Panics(t, func() {
		ecs.NewView[int](world)
	})
}
