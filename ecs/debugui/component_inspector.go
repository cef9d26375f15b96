package debugui

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/invaders/ecs"
)

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (ci *ComponentInspector) Render(world *ecs.World, selected ecs.Entity) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selected = selected

	if ci.selected == ecs.Nil {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	archetype := world.ArchetypeOf(ci.selected)
	if archetype == nil {
		imgui.Text(fmt.Sprintf("Entity %s was destroyed", ci.selected))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", ci.selected))
	imgui.Text(fmt.Sprintf("Archetype: 0x%X", archetype.ID()))
	if _, tags, ok := world.Describe(ci.selected); ok && len(tags) > 0 {
		imgui.Text(fmt.Sprintf("Tags: %s", strings.Join(tags, ", ")))
	}
	imgui.Separator()

	for _, compType := range archetype.Types() {
		component := world.GetComponent(ci.selected, compType)
		if component == nil {
			continue
		}

		if imgui.TreeNodeStr(compType.String()) {
			renderValue(reflect.ValueOf(component).Elem())
			imgui.TreePop()
		}
	}

	edges := world.Edges(ci.selected)
	if len(edges) > 0 && imgui.TreeNodeStr(fmt.Sprintf("Relations (%d)", len(edges))) {
		for i, edge := range edges {
			label := fmt.Sprintf("%s -> %s##edge%d", edge.Kind, edge.Target, i)
			if imgui.TreeNodeStr(label) {
				if edge.Payload != nil {
					renderValue(reflect.ValueOf(edge.Payload).Elem())
				}
				imgui.TreePop()
			}
		}
		imgui.TreePop()
	}

	imgui.End()
}

// renderValue draws editors for the exported fields of an addressable struct.
// Edits write straight through to the component storage.
func renderValue(val reflect.Value) {
	for _, field := range globalReflectionCache.GetFields(val.Type()) {
		fieldVal := val.Field(field.Index)
		if field.IsPointer {
			if fieldVal.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			fieldVal = fieldVal.Elem()
		}
		renderField(field, fieldVal)
	}
}

func renderField(field FieldInfo, val reflect.Value) {
	name := field.Name
	id := fmt.Sprintf("##%s", name)
	label := func(width float32) {
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(width)
	}

	switch field.editor {
	case editInt:
		v := int32(val.Int())
		label(150)
		if imgui.InputInt(id, &v) {
			setField(val, int64(v))
		}

	case editUint:
		v := int32(val.Uint())
		label(150)
		if imgui.InputInt(id, &v) && v >= 0 {
			setField(val, uint64(v))
		}

	case editFloat:
		v := float32(val.Float())
		label(150)
		if imgui.InputFloat(id, &v) {
			setField(val, float64(v))
		}

	case editBool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			setField(val, v)
		}

	case editString:
		v := val.String()
		label(200)
		if imgui.InputTextWithHint(id, "", &v, imgui.InputTextFlagsNone, nil) {
			setField(val, v)
		}

	case editStringer:
		imgui.Text(fmt.Sprintf("%s: %s", name, val.Interface().(fmt.Stringer).String()))

	case editNested:
		if imgui.TreeNodeStr(name) {
			renderValue(val)
			imgui.TreePop()
		}

	default:
		switch val.Kind() {
		case reflect.Slice, reflect.Array:
			imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))
		case reflect.Map:
			imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))
		default:
			imgui.Text(fmt.Sprintf("%s: <%s>", name, val.Type()))
		}
	}
}

// setField writes value into field, converting between numeric kinds. It reports
// false when the field is not settable or the value does not fit its kind.
func setField(field reflect.Value, value any) bool {
	if !field.CanSet() {
		return false
	}

	switch v := value.(type) {
	case int64:
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if field.OverflowInt(v) {
				return false
			}
			field.SetInt(v)
			return true
		}
	case uint64:
		switch field.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if field.OverflowUint(v) {
				return false
			}
			field.SetUint(v)
			return true
		}
	case float64:
		switch field.Kind() {
		case reflect.Float32, reflect.Float64:
			field.SetFloat(v)
			return true
		}
	case bool:
		if field.Kind() == reflect.Bool {
			field.SetBool(v)
			return true
		}
	case string:
		if field.Kind() == reflect.String {
			field.SetString(v)
			return true
		}
	}
	return false
}
