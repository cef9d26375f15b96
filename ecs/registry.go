package ecs

import (
	"math/bits"
	"reflect"
)

// ComponentRegistry manages component, tag and relation registration for an ECS instance.
// Each World has its own ComponentRegistry, allowing multiple independent simulations to
// coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() componentColumn
	tags      map[reflect.Type]TagSet
	tagNames  []string
	relations map[reflect.Type]*relationInfo
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() componentColumn),
		tags:      make(map[reflect.Type]TagSet),
		relations: make(map[reflect.Type]*relationInfo),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		panic("components cannot be pointers, maps, channels, or functions: " + t.String())
	}
	r.factories[t] = func() componentColumn {
		return &blockColumn[T]{}
	}
}

// RegisterTag registers a zero-size marker type as a tag and returns its bit.
// Tags carry no data; an entity either has the bit set or not.
func RegisterTag[T any](r *ComponentRegistry) TagSet {
	t := reflect.TypeFor[T]()
	if t.Size() != 0 {
		panic("tag type " + t.String() + " must be zero-size")
	}
	if bit, ok := r.tags[t]; ok {
		return bit
	}
	if len(r.tags) >= 64 {
		panic("too many tags registered")
	}
	bit := TagSet(1) << len(r.tags)
	r.tags[t] = bit
	r.tagNames = append(r.tagNames, t.Name())
	return bit
}

// RelationOption configures a relation kind at registration.
type RelationOption func(*relationInfo)

// Exclusive limits a relation so that a source has at most one target. Relating an
// exclusive source to a new target replaces its previous edge.
func Exclusive(info *relationInfo) {
	info.exclusive = true
}

// RegisterRelation registers R as a relation kind. R is also the type of the payload
// carried on each edge.
func RegisterRelation[R any](r *ComponentRegistry, opts ...RelationOption) {
	t := reflect.TypeFor[R]()
	info := &relationInfo{typ: t}
	for _, opt := range opts {
		opt(info)
	}
	r.relations[t] = info
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() componentColumn {
	return r.factories[t]
}

func (r *ComponentRegistry) tagBit(t reflect.Type) (TagSet, bool) {
	bit, ok := r.tags[t]
	return bit, ok
}

func (r *ComponentRegistry) relation(t reflect.Type) *relationInfo {
	info := r.relations[t]
	if info == nil {
		panic("relation type " + t.String() + " not registered")
	}
	return info
}

// TagSet is a bitset of registered tags.
type TagSet uint64

// Has reports whether every bit of other is present in s.
func (s TagSet) Has(other TagSet) bool {
	return s&other == other
}

// names resolves the set bits against the registry's tag names.
func (s TagSet) names(r *ComponentRegistry) []string {
	var out []string
	for s != 0 {
		idx := bits.TrailingZeros64(uint64(s))
		if idx < len(r.tagNames) {
			out = append(out, r.tagNames[idx])
		}
		s &^= 1 << idx
	}
	return out
}
