package ecs_test

import (
	"testing"

	"github.com/plus3/invaders/ecs"
	"github.com/stretchr/testify/assert"
)

func TestCommandsFlushOrder(t *testing.T) {
	world := newTestWorld()
	doomed := world.Spawn(Name{Value: "doomed"})

	var cmds ecs.Commands
	var trace []string

	cmds.Defer(func() {
		trace = append(trace, "defer")
		assert.False(t, world.Alive(doomed), "destroys run before defers")
		assert.Equal(t, 1, world.Len(), "spawns run before defers")
	})
	cmds.Spawn(Name{Value: "born"})
	cmds.Destroy(doomed)
	cmds.Destroy(doomed)
	assert.Equal(t, 4, cmds.Len())

	cmds.Flush(world)
	assert.Equal(t, []string{"defer"}, trace)
	assert.Equal(t, 0, cmds.Len())

	t.Run("defers can queue more work", func(t *testing.T) {
		ran := 0
		cmds.Defer(func() {
			cmds.Defer(func() { ran++ })
		})
		cmds.Flush(world)
		if ran != 0 {
			t.Errorf("nested defer ran in the same flush")
		}
		cmds.Flush(world)
		assert.Equal(t, 1, ran)
	})
}
