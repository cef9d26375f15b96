package ecs

// Commands buffers operations that must run after every system of the frame has
// finished. The scheduler flushes them at the end of Once.
type Commands struct {
	spawns   [][]any
	destroys []Entity
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Defer queues a function to run at flush, after spawns and destroys.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Destroy queues an entity destruction. Stale handles are ignored at flush.
func (c *Commands) Destroy(e Entity) {
	c.destroys = append(c.destroys, e)
}

// Len returns the number of queued operations
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.destroys) + len(c.defers)
}

// Flush applies all queued operations to world and resets the buffer
func (c *Commands) Flush(world *World) {
	for _, e := range c.destroys {
		world.Destroy(e)
	}

	for _, components := range c.spawns {
		world.Spawn(components...)
	}

	defers := c.defers
	c.spawns = c.spawns[:0]
	c.destroys = c.destroys[:0]
	c.defers = nil

	for _, fn := range defers {
		fn()
	}
}
