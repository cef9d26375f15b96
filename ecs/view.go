package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

type fieldKind int

const (
	fieldComponent fieldKind = iota
	fieldEntity
	fieldTag
	fieldRelation
)

type viewField struct {
	kind       fieldKind
	typ        reflect.Type
	offset     uintptr
	optional   bool
	dataOffset uintptr
}

// Rel is a view field that matches entities holding an R edge to any target.
// Target and Data are filled with the edge's target and payload.
type Rel[R any] struct {
	Target Entity
	Data   *R
}

func (Rel[R]) relationType() reflect.Type { return reflect.TypeFor[R]() }

type relField interface {
	relationType() reflect.Type
}

var (
	entityType   = reflect.TypeFor[Entity]()
	relFieldType = reflect.TypeFor[relField]()
)

// View represents a query for entities with a specific combination of components.
// The type T must be a struct whose fields are one of:
//   - *C for a registered component C (required unless tagged `ecs:"optional"`)
//   - an embedded registered tag type, which filters on the tag bit
//   - ecs.Entity, filled with the entity handle
//   - ecs.Rel[R], which filters on an outgoing R edge (optional with `ecs:"optional"`)
type View[T any] struct {
	world  *World
	fields []viewField
	tags   TagSet
}

// NewView creates a new view for the given struct type
func NewView[T any](world *World) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{world: world}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		vf := viewField{typ: field.Type, offset: field.Offset}

		switch tag := field.Tag.Get("ecs"); tag {
		case "":
		case "optional":
			vf.optional = true
		default:
			panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
		}

		switch {
		case field.Type == entityType:
			vf.kind = fieldEntity
		case field.Type.Implements(relFieldType):
			vf.kind = fieldRelation
			vf.typ = reflect.Zero(field.Type).Interface().(relField).relationType()
			world.registry.relation(vf.typ)
			vf.dataOffset = field.Type.Field(1).Offset
		case field.Type.Kind() == reflect.Ptr:
			vf.kind = fieldComponent
			vf.typ = field.Type.Elem()
			if world.registry.getFactory(vf.typ) == nil {
				panic("component type " + vf.typ.String() + " not registered")
			}
		default:
			bit, ok := world.registry.tagBit(field.Type)
			if !ok {
				panic("View field " + field.Name + " is not a component pointer, tag, Entity or Rel")
			}
			vf.kind = fieldTag
			v.tags |= bit
		}
		v.fields = append(v.fields, vf)
	}
	return v
}

// matchesArchetype checks the required component types; tags and relations are
// checked per entity.
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for _, f := range v.fields {
		if f.kind == fieldComponent && !f.optional && !archetype.HasComponent(f.typ) {
			return false
		}
	}
	return true
}

func (v *View[T]) columnIndices(archetype *Archetype) []int {
	indices := make([]int, len(v.fields))
	for i, f := range v.fields {
		indices[i] = -1
		if f.kind == fieldComponent {
			indices[i] = archetype.columnIndex(f.typ)
		}
	}
	return indices
}

// populate writes every field of the struct at resultPtr. It returns false when the
// entity lacks a required tag, component or relation.
func (v *View[T]) populate(resultPtr unsafe.Pointer, e Entity, rec *entityRecord, indices []int) bool {
	if !rec.tags.Has(v.tags) {
		return false
	}
	for i, f := range v.fields {
		fieldPtr := unsafe.Add(resultPtr, f.offset)
		switch f.kind {
		case fieldEntity:
			*(*Entity)(fieldPtr) = e
		case fieldComponent:
			var component any
			if indices[i] != -1 {
				component = rec.archetype.columns[indices[i]].Get(rec.row)
			}
			if component == nil {
				if !f.optional {
					return false
				}
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
		case fieldRelation:
			var edge relationEdge
			ok := false
			if table, exists := v.world.relations[f.typ]; exists {
				edge, ok = table.first(e)
			}
			if !ok {
				if !f.optional {
					return false
				}
				*(*Entity)(fieldPtr) = Nil
				*(*unsafe.Pointer)(unsafe.Add(fieldPtr, f.dataOffset)) = nil
				continue
			}
			*(*Entity)(fieldPtr) = edge.target
			payload := edge.payload
			*(*unsafe.Pointer)(unsafe.Add(fieldPtr, f.dataOffset)) = (*iface)(unsafe.Pointer(&payload)).data
		}
	}
	return true
}

// Fill populates the provided struct pointer with the entity's data.
// Returns false if the entity is stale or does not match the view.
func (v *View[T]) Fill(e Entity, ptr *T) bool {
	rec := v.world.lookup(e)
	if rec == nil || !v.matchesArchetype(rec.archetype) {
		return false
	}
	return v.populate(unsafe.Pointer(ptr), e, rec, v.columnIndices(rec.archetype))
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't match
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// Iter returns an iterator over all matching entities, live. Entities destroyed
// during iteration are not yielded once destroyed.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for _, archetype := range v.world.order {
			if archetype.Len() == 0 || !v.matchesArchetype(archetype) {
				continue
			}

			indices := v.columnIndices(archetype)
			var result T
			resultPtr := unsafe.Pointer(&result)

			for _, e := range archetype.Iter() {
				rec := v.world.lookup(e)
				if rec == nil || rec.archetype != archetype {
					continue
				}
				if !v.populate(resultPtr, e, rec, indices) {
					continue
				}
				if !yield(e, result) {
					return
				}
			}
		}
	}
}

// Values returns an iterator over just the view structs
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Count returns the number of matching entities
func (v *View[T]) Count() int {
	n := 0
	for range v.Iter() {
		n++
	}
	return n
}
