package ecs

import (
	"errors"
	"fmt"
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
)

// ErrInvariant marks a violated structural assumption: a component that must exist by
// construction is missing, or a relation edge would break the one-level-deep rule.
// Invariant violations panic with an error wrapping ErrInvariant.
var ErrInvariant = errors.New("ecs: invariant violation")

func invariant(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...)))
}

// World is the entity store: it owns entity identities, component rows, tag bits,
// relation edges and singletons.
type World struct {
	registry   *ComponentRegistry
	archetypes *intmap.Map[uint64, *Archetype]
	order      []*Archetype
	records    []entityRecord
	free       []uint32
	alive      int
	relations  map[reflect.Type]*relationTable
	singletons map[reflect.Type]*singletonEntry
	onDestroy  []func(Entity)
}

// NewWorld creates an empty world using the given component registry
func NewWorld(registry *ComponentRegistry) *World {
	return &World{
		registry:   registry,
		archetypes: intmap.New[uint64, *Archetype](16),
		relations:  make(map[reflect.Type]*relationTable),
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the registry the world was created with
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// Spawn atomically creates an entity from component values, zero-size tag values and
// relation pairs built with Pair.
func (w *World) Spawn(components ...any) Entity {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	var (
		types  []reflect.Type
		values = make(map[reflect.Type]any, len(components))
		tags   TagSet
		pairs  []RelationPair
	)
	for _, comp := range components {
		if pair, ok := comp.(RelationPair); ok {
			pairs = append(pairs, pair)
			continue
		}
		compType := componentType(comp)
		if bit, ok := w.registry.tagBit(compType); ok {
			tags |= bit
			continue
		}
		if _, dup := values[compType]; !dup {
			types = append(types, compType)
		}
		values[compType] = comp
	}

	for _, pair := range pairs {
		if !w.Alive(pair.target) {
			invariant("spawn relates to dead target %s", pair.target)
		}
		w.table(pair.typ).checkTarget(pair.target)
	}

	id := sortTypes(types)
	archetype := w.archetype(id, types)
	ordered := make([]any, len(types))
	for i, typ := range types {
		ordered[i] = values[typ]
	}

	e := w.allocate()
	rec := &w.records[e.Index()]
	rec.archetype = archetype
	rec.row = archetype.spawn(e, ordered)
	rec.tags = tags

	for _, pair := range pairs {
		w.relate(e, pair)
	}
	return e
}

func (w *World) allocate() Entity {
	w.alive++
	if n := len(w.free); n > 0 {
		index := w.free[n-1]
		w.free = w.free[:n-1]
		rec := &w.records[index]
		rec.alive = true
		return newEntity(index, rec.generation)
	}
	index := uint32(len(w.records))
	w.records = append(w.records, entityRecord{generation: 1, alive: true})
	return newEntity(index, 1)
}

func (w *World) archetype(id uint64, types []reflect.Type) *Archetype {
	archetype, ok := w.archetypes.Get(id)
	if !ok {
		archetype = newArchetype(id, types, w.registry)
		w.archetypes.Put(id, archetype)
		w.order = append(w.order, archetype)
	}
	return archetype
}

func (w *World) lookup(e Entity) *entityRecord {
	index := e.Index()
	if e == Nil || int(index) >= len(w.records) {
		return nil
	}
	rec := &w.records[index]
	if !rec.alive || rec.generation != e.Generation() {
		return nil
	}
	return rec
}

// Alive reports whether the handle refers to an entity that has not been destroyed
func (w *World) Alive(e Entity) bool {
	return w.lookup(e) != nil
}

// Len returns the number of live entities
func (w *World) Len() int {
	return w.alive
}

// Entities yields every live entity in archetype creation order, then row order
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, archetype := range w.order {
			for _, e := range archetype.Iter() {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Archetypes returns every archetype ever created, in creation order
func (w *World) Archetypes() []*Archetype {
	return w.order
}

// ArchetypeOf returns the archetype holding e, or nil for a stale handle
func (w *World) ArchetypeOf(e Entity) *Archetype {
	rec := w.lookup(e)
	if rec == nil {
		return nil
	}
	return rec.archetype
}

// OnDestroy registers fn to run whenever an entity is destroyed. fn runs before the
// entity's components are released, so they can still be read.
func (w *World) OnDestroy(fn func(Entity)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// Destroy removes the entity with its components, tags and relation edges in both
// directions. Destroying a stale handle is a no-op and reports false.
func (w *World) Destroy(e Entity) bool {
	rec := w.lookup(e)
	if rec == nil {
		return false
	}

	for _, fn := range w.onDestroy {
		fn(e)
	}

	for _, table := range w.relations {
		table.dropEntity(e)
	}

	rec.archetype.delete(rec.row)
	rec.alive = false
	rec.archetype = nil
	rec.row = -1
	rec.tags = 0
	rec.generation++
	if rec.generation == 0 {
		rec.generation = 1
	}
	w.free = append(w.free, e.Index())
	w.alive--
	return true
}

// GetComponent returns a pointer to the entity's component of the given type, or nil
func (w *World) GetComponent(e Entity, compType reflect.Type) any {
	rec := w.lookup(e)
	if rec == nil {
		return nil
	}
	return rec.archetype.getComponent(rec.row, compType)
}

// HasComponent checks if an entity has a specific component or tag type
func (w *World) HasComponent(e Entity, compType reflect.Type) bool {
	rec := w.lookup(e)
	if rec == nil {
		return false
	}
	if bit, ok := w.registry.tagBit(compType); ok {
		return rec.tags.Has(bit)
	}
	return rec.archetype.HasComponent(compType)
}

// AddComponent attaches or replaces a component. Attaching a new type moves the
// entity to another archetype, which invalidates component pointers taken earlier.
func (w *World) AddComponent(e Entity, component any) bool {
	rec := w.lookup(e)
	if rec == nil {
		return false
	}

	compType := componentType(component)
	if bit, ok := w.registry.tagBit(compType); ok {
		rec.tags |= bit
		return true
	}

	old := rec.archetype
	if idx := old.columnIndex(compType); idx != -1 {
		reflect.ValueOf(old.columns[idx].Get(rec.row)).Elem().Set(componentValue(component))
		return true
	}

	types := make([]reflect.Type, 0, len(old.types)+1)
	types = append(types, old.types...)
	types = append(types, compType)
	w.move(e, rec, types, component)
	return true
}

// RemoveComponent detaches a component or clears a tag bit
func (w *World) RemoveComponent(e Entity, compType reflect.Type) bool {
	rec := w.lookup(e)
	if rec == nil {
		return false
	}
	if bit, ok := w.registry.tagBit(compType); ok {
		rec.tags &^= bit
		return true
	}
	if !rec.archetype.HasComponent(compType) {
		return false
	}

	types := make([]reflect.Type, 0, len(rec.archetype.types))
	for _, typ := range rec.archetype.types {
		if typ != compType {
			types = append(types, typ)
		}
	}
	w.move(e, rec, types, nil)
	return true
}

// move copies the entity's row into the archetype for types. extra, when non-nil,
// supplies the value for the one type missing from the current archetype.
func (w *World) move(e Entity, rec *entityRecord, types []reflect.Type, extra any) {
	old := rec.archetype
	id := sortTypes(types)
	target := w.archetype(id, types)

	components := make([]any, len(types))
	for i, typ := range types {
		if comp := old.getComponent(rec.row, typ); comp != nil {
			components[i] = comp
		} else {
			components[i] = extra
		}
	}

	row := target.spawn(e, components)
	old.delete(rec.row)
	rec.archetype = target
	rec.row = row
}

// Describe lists the component and tag names of a live entity, for debugging tools
func (w *World) Describe(e Entity) (components []string, tags []string, ok bool) {
	rec := w.lookup(e)
	if rec == nil {
		return nil, nil, false
	}
	for _, typ := range rec.archetype.types {
		components = append(components, typ.Name())
	}
	return components, rec.tags.names(w.registry), true
}

func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType == nil {
		panic("nil component")
	}
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}
	return compType
}

func componentValue(component any) reflect.Value {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return v
}

// Get returns a pointer to the entity's T component. The pointer addresses live
// storage; writes through it are visible to every reader.
func Get[T any](w *World, e Entity) (*T, bool) {
	comp, ok := w.GetComponent(e, reflect.TypeFor[T]()).(*T)
	return comp, ok
}

// MustGet is Get for call sites where the component exists by construction.
// A missing component panics with an error wrapping ErrInvariant.
func MustGet[T any](w *World, e Entity) *T {
	comp, ok := Get[T](w, e)
	if !ok {
		invariant("entity %s has no %s", e, reflect.TypeFor[T]())
	}
	return comp
}

// Has reports whether the entity carries component or tag T
func Has[T any](w *World, e Entity) bool {
	return w.HasComponent(e, reflect.TypeFor[T]())
}

// Set replaces the entity's T component, attaching it if absent.
// Stale handles are ignored.
func Set[T any](w *World, e Entity, value T) bool {
	return w.AddComponent(e, value)
}

// Update merges changes into the entity's existing T component through fn.
// It reports false, without calling fn, when the handle is stale or T is absent.
func Update[T any](w *World, e Entity, fn func(*T)) bool {
	comp, ok := Get[T](w, e)
	if !ok {
		return false
	}
	fn(comp)
	return true
}

// Remove detaches component or tag T from the entity
func Remove[T any](w *World, e Entity) bool {
	return w.RemoveComponent(e, reflect.TypeFor[T]())
}

// ComponentReader is the read side shared by World and UpdateFrame.
type ComponentReader interface {
	GetComponent(Entity, reflect.Type) any
}

// ReadComponent reads T through any ComponentReader, returning nil when absent
func ReadComponent[T any](reader ComponentReader, e Entity) *T {
	comp, _ := reader.GetComponent(e, reflect.TypeFor[T]()).(*T)
	return comp
}
