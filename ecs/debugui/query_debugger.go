package debugui

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/invaders/ecs"
)

type queryDebuggerCache struct {
	componentTypes     []string
	lastArchetypeCount int
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{
		selected: make(map[string]bool),
		cache: &queryDebuggerCache{
			lastArchetypeCount: -1,
		},
	}
}

func (qd *QueryDebugger) Render(world *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(world)

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selected = make(map[string]bool)
	}

	for _, compType := range qd.cache.componentTypes {
		selected := qd.selected[compType]
		if imgui.Checkbox(compType, &selected) {
			if selected {
				qd.selected[compType] = true
			} else {
				delete(qd.selected, compType)
			}
		}
	}

	imgui.Separator()

	required := selectedTypes(world, qd.selected)
	if len(required) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matching := matchingArchetypes(world, required)
	totalEntities := 0
	for _, arch := range matching {
		totalEntities += arch.Len()
	}

	imgui.Text(fmt.Sprintf("Matching Archetypes: %d", len(matching)))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", totalEntities))

	if imgui.TreeNodeStr("Archetype Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryArchTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Archetype ID")
			imgui.TableSetupColumn("All Components")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, arch := range matching {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("0x%X", arch.ID()))

				imgui.TableSetColumnIndex(1)
				names := make([]string, len(arch.Types()))
				for i, t := range arch.Types() {
					names[i] = t.String()
				}
				imgui.Text(strings.Join(names, ", "))

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("%d", arch.Len()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebugger) rebuildCacheIfNeeded(world *ecs.World) {
	current := len(world.Archetypes())
	if qd.cache.lastArchetypeCount != current {
		qd.cache.componentTypes = nil
		qd.cache.lastArchetypeCount = current
	}

	if qd.cache.componentTypes == nil {
		qd.cache.componentTypes = componentTypeNames(world)
	}
}

// componentTypeNames lists every component type stored in any archetype, sorted
func componentTypeNames(world *ecs.World) []string {
	seen := make(map[string]bool)
	for _, archetype := range world.Archetypes() {
		for _, t := range archetype.Types() {
			seen[t.String()] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// selectedTypes resolves checked type names back to the types the world stores.
// Names of types no archetype holds any more are skipped.
func selectedTypes(world *ecs.World, selected map[string]bool) []reflect.Type {
	var types []reflect.Type
	for _, archetype := range world.Archetypes() {
		for _, t := range archetype.Types() {
			if selected[t.String()] && !slices.Contains(types, t) {
				types = append(types, t)
			}
		}
	}
	return types
}

func matchingArchetypes(world *ecs.World, required []reflect.Type) []*ecs.Archetype {
	var matching []*ecs.Archetype
	for _, archetype := range world.Archetypes() {
		if hasAllTypes(archetype, required) {
			matching = append(matching, archetype)
		}
	}
	return matching
}

func hasAllTypes(archetype *ecs.Archetype, required []reflect.Type) bool {
	for _, t := range required {
		if !archetype.HasComponent(t) {
			return false
		}
	}
	return true
}
