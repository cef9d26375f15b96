package canvas

import (
	"github.com/google/uuid"
	"github.com/plus3/invaders/invaders"
)

// spriteCache maps mesh handles to renderer objects. create builds an object on
// first use and release frees it when the mesh's entity dies.
type spriteCache[T any] struct {
	items   map[uuid.UUID]T
	create  func(invaders.Drawable) T
	release func(T)
}

func newSpriteCache[T any](create func(invaders.Drawable) T, release func(T)) *spriteCache[T] {
	return &spriteCache[T]{
		items:   make(map[uuid.UUID]T),
		create:  create,
		release: release,
	}
}

// Get returns the object for d's mesh, creating it on first use. d.Mesh must be set.
func (c *spriteCache[T]) Get(d invaders.Drawable) T {
	if item, ok := c.items[d.Mesh.Handle]; ok {
		return item
	}
	item := c.create(d)
	c.items[d.Mesh.Handle] = item
	return item
}

// Release frees the object for key. Unknown keys are ignored.
func (c *spriteCache[T]) Release(key uuid.UUID) {
	item, ok := c.items[key]
	if !ok {
		return
	}
	delete(c.items, key)
	c.release(item)
}

// Clear releases everything
func (c *spriteCache[T]) Clear() {
	for key := range c.items {
		c.Release(key)
	}
}

func (c *spriteCache[T]) Len() int {
	return len(c.items)
}
