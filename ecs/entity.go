package ecs

import "fmt"

// Entity is a stable handle to an entity. The lower 32 bits hold the slot index in the
// world's entity table and the upper 32 bits hold the slot generation, so a handle to a
// destroyed entity never resolves to an entity spawned later into the same slot.
type Entity uint64

// Nil is the zero handle. It never refers to a live entity.
const Nil Entity = 0

func newEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index extracts the slot index from the handle
func (e Entity) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the slot generation from the handle
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

func (e Entity) String() string {
	if e == Nil {
		return "nil"
	}
	return fmt.Sprintf("%dv%d", e.Index(), e.Generation())
}

// entityRecord locates an entity's component row and carries its tag bits.
type entityRecord struct {
	generation uint32
	alive      bool
	archetype  *Archetype
	row        int
	tags       TagSet
}
