package ecs

import (
	"reflect"
	"sort"
	"unsafe"
)

type singletonEntry struct {
	typ     reflect.Type
	value   reflect.Value
	dataPtr unsafe.Pointer
}

// AddSingleton stores value as the world's single instance of its type, replacing
// any previous instance in place so outstanding accessors stay valid.
func (w *World) AddSingleton(value any) {
	typ := componentType(value)
	if entry, ok := w.singletons[typ]; ok {
		entry.value.Elem().Set(componentValue(value))
		return
	}
	ptr := reflect.New(typ)
	ptr.Elem().Set(componentValue(value))
	w.singletons[typ] = &singletonEntry{
		typ:     typ,
		value:   ptr,
		dataPtr: ptr.UnsafePointer(),
	}
}

func (w *World) getSingletonEntry(typ reflect.Type) *singletonEntry {
	return w.singletons[typ]
}

func (w *World) singletonTypes() []string {
	names := make([]string, 0, len(w.singletons))
	for typ := range w.singletons {
		names = append(names, typ.String())
	}
	sort.Strings(names)
	return names
}

// Singleton provides efficient access to a single component instance
// that is not associated with any entity. Use this for global game state,
// configuration, or other singleton data.
type Singleton[T any] struct {
	world        *World
	componentPtr unsafe.Pointer
}

// NewSingleton creates a new Singleton accessor for the given world.
// If initializer is provided and the singleton doesn't exist in the world,
// it will be created with the initializer value. Otherwise, a zero value is used.
// This guarantees the singleton exists after the call.
func NewSingleton[T any](world *World, initializer ...T) *Singleton[T] {
	typ := reflect.TypeFor[T]()

	entry := world.getSingletonEntry(typ)
	if entry == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		world.AddSingleton(value)
		entry = world.getSingletonEntry(typ)
	}

	return &Singleton[T]{
		world:        world,
		componentPtr: entry.dataPtr,
	}
}

// Init initializes the Singleton with a world reference.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(world *World) {
	s.world = world
	s.updateCache()
}

// Get returns a pointer to the singleton component.
// Returns nil if the singleton has not been added to the world.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil {
		s.updateCache()
	}
	return (*T)(s.componentPtr)
}

func (s *Singleton[T]) updateCache() {
	if s.world == nil {
		return
	}
	if entry := s.world.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.componentPtr = entry.dataPtr
	} else {
		s.componentPtr = nil
	}
}

// Exists returns true if the singleton component has been added to the world
func (s *Singleton[T]) Exists() bool {
	if s.componentPtr == nil {
		s.updateCache()
	}
	return s.componentPtr != nil
}
