package ecs

import (
	"iter"
	"reflect"
	"slices"
	"sort"

	"github.com/cespare/xxhash/v2"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype holds the rows of every entity sharing one exact set of component types.
// Tags and relations do not partition archetypes.
type Archetype struct {
	id      uint64
	types   []reflect.Type
	columns []componentColumn
	owners  blockColumn[Entity]
}

// newArchetype creates an archetype for already sorted component types.
func newArchetype(id uint64, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]componentColumn, len(types)),
	}

	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.columns[idx] = factory()
	}

	return a
}

// spawn appends one row. components must be ordered like a.types.
func (a *Archetype) spawn(owner Entity, components []any) int {
	row := a.owners.Append(owner)
	for idx, comp := range components {
		if got := a.columns[idx].Append(comp); got != row {
			panic("archetype columns out of step")
		}
	}
	return row
}

func (a *Archetype) delete(row int) {
	a.owners.Delete(row)
	for _, column := range a.columns {
		column.Delete(row)
	}
}

func (a *Archetype) columnIndex(compType reflect.Type) int {
	for i, typ := range a.types {
		if typ == compType {
			return i
		}
	}
	return -1
}

// getComponent returns a pointer to the row's component of the given type, or nil.
func (a *Archetype) getComponent(row int, compType reflect.Type) any {
	idx := a.columnIndex(compType)
	if idx == -1 {
		return nil
	}
	return a.columns[idx].Get(row)
}

// HasComponent checks if this archetype has the given component type
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's signature hash
func (a *Archetype) ID() uint64 {
	return a.id
}

// Types returns the sorted component types for this archetype
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live rows
func (a *Archetype) Len() int {
	return a.owners.Len()
}

// Iter yields every (row, owner) pair in row order.
func (a *Archetype) Iter() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for row := range a.owners.Iter() {
			if !yield(row, *a.owners.ptr(row)) {
				return
			}
		}
	}
}

// sortTypes sorts in place and returns the archetype signature hash.
func sortTypes(types []reflect.Type) uint64 {
	sort.Sort(byTypeName(types))
	return hashTypes(types)
}

// hashTypes hashes a sorted slice of types by fully-qualified name
func hashTypes(types []reflect.Type) uint64 {
	d := xxhash.New()
	for _, t := range types {
		_, _ = d.WriteString(t.PkgPath())
		_, _ = d.WriteString(".")
		_, _ = d.WriteString(t.String())
		_, _ = d.WriteString(";")
	}
	return d.Sum64()
}
