package debugui

import (
	"fmt"
	"reflect"
	"sync"
)

type editorKind int

const (
	editNone editorKind = iota
	editInt
	editUint
	editFloat
	editBool
	editString
	editNested
	editStringer // read-only, drawn through String (mesh handles, directions)
)

var stringerType = reflect.TypeFor[fmt.Stringer]()

// FieldInfo describes one exported struct field as the inspector draws it
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
	editor    editorKind
}

// Editable reports whether the inspector offers an input widget for the field.
func (f FieldInfo) Editable() bool {
	return f.editor != editNone && f.editor != editNested && f.editor != editStringer
}

type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]FieldInfo),
	}
}

// GetFields returns the exported fields of t. Non-struct types have none.
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Pointer
			if isPointer {
				fieldType = fieldType.Elem()
			}

			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Type:      fieldType,
				Index:     i,
				IsPointer: isPointer,
				editor:    editorFor(fieldType),
			})
		}
	}

	rc.fieldCache[t] = fields
	return fields
}

func editorFor(t reflect.Type) editorKind {
	if t.Implements(stringerType) {
		return editStringer
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return editInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return editUint
	case reflect.Float32, reflect.Float64:
		return editFloat
	case reflect.Bool:
		return editBool
	case reflect.String:
		return editString
	case reflect.Struct:
		return editNested
	}
	return editNone
}

var globalReflectionCache = NewReflectionCache()
