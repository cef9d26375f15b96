package ecs

import (
	"iter"
)

// Query wraps a View with a per-frame snapshot of matching entities.
// Execute records the matching handles; Iter re-resolves each handle as it goes, so
// entities destroyed by earlier iterations (or earlier systems) are skipped and
// component pointers are always current.
type Query[T any] struct {
	view           *View[T]
	world          *World
	cachedEntities []Entity
	cacheValid     bool
}

// NewQuery creates a new Query over world
func NewQuery[T any](world *World) *Query[T] {
	q := &Query[T]{}
	q.Init(world)
	return q
}

// Init initializes or re-initializes the Query with a world.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(world *World) {
	q.view = NewView[T](world)
	q.world = world
	q.cachedEntities = q.cachedEntities[:0]
	q.cacheValid = false
}

// Execute snapshots the matching entities.
// Called automatically by the Scheduler before the owning system runs.
func (q *Query[T]) Execute() {
	q.cachedEntities = q.cachedEntities[:0]
	for e := range q.view.Iter() {
		q.cachedEntities = append(q.cachedEntities, e)
	}
	q.cacheValid = true
}

// Iter returns an iterator over the snapshot.
// Panics if Execute() has not been called.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(Entity, T) bool) {
		var item T
		for _, e := range q.cachedEntities {
			if !q.view.Fill(e, &item) {
				continue
			}
			if !yield(e, item) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute() has not been called.
func (q *Query[T]) Values() iter.Seq[T] {
	seq := q.Iter()
	return func(yield func(T) bool) {
		for _, item := range seq {
			if !yield(item) {
				return
			}
		}
	}
}

// Entities returns a copy of the snapshot's handles, including ones destroyed since
// Execute.
func (q *Query[T]) Entities() []Entity {
	return append([]Entity(nil), q.cachedEntities...)
}

// Len returns the snapshot size
func (q *Query[T]) Len() int {
	return len(q.cachedEntities)
}
