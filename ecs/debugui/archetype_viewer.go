package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/invaders/ecs"
)

type ArchetypeInfo struct {
	ID             uint64
	ComponentTypes []string
	EntityCount    int
}

type archetypeViewerCache struct {
	archetypes         []ArchetypeInfo
	lastArchetypeCount int
	sortColumn         int
	sortAscending      bool
}

// NewArchetypeViewer creates a viewer sorted by entity count, largest first
func NewArchetypeViewer() *ArchetypeViewer {
	return &ArchetypeViewer{
		cache: &archetypeViewerCache{
			sortColumn:    3,
			sortAscending: false,
		},
	}
}

// Render draws the archetype table and returns the archetype ID clicked this
// frame, or nil.
func (av *ArchetypeViewer) Render(world *ecs.World) *uint64 {
	if !imgui.BeginV("Archetype Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return nil
	}

	av.rebuildCacheIfNeeded(world)

	maxEntityCount := 0
	for _, arch := range av.cache.archetypes {
		maxEntityCount = max(maxEntityCount, arch.EntityCount)
	}

	var clicked *uint64

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ArchetypeTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Archetype ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Comp Count")
		imgui.TableSetupColumn("Entity Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			av.cache.sortColumn = int(spec.ColumnIndex())
			av.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			av.sortArchetypes()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, arch := range av.cache.archetypes {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := av.selected != nil && *av.selected == arch.ID
			if imgui.SelectableBoolV(fmt.Sprintf("0x%X", arch.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				id := arch.ID
				clicked = &id
				av.selected = &id
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(arch.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(arch.ComponentTypes)))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", arch.EntityCount))

			if maxEntityCount > 0 {
				barWidth := float32(arch.EntityCount) / float32(maxEntityCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}

func (av *ArchetypeViewer) rebuildCacheIfNeeded(world *ecs.World) {
	current := len(world.Archetypes())
	if av.cache.lastArchetypeCount != current {
		av.cache.archetypes = nil
		av.cache.lastArchetypeCount = current
	}

	if av.cache.archetypes == nil {
		av.rebuildCache(world)
	} else {
		av.updateEntityCounts(world)
	}
}

func (av *ArchetypeViewer) rebuildCache(world *ecs.World) {
	av.cache.archetypes = make([]ArchetypeInfo, 0, len(world.Archetypes()))

	for _, archetype := range world.Archetypes() {
		componentTypes := make([]string, len(archetype.Types()))
		for i, t := range archetype.Types() {
			componentTypes[i] = t.String()
		}

		av.cache.archetypes = append(av.cache.archetypes, ArchetypeInfo{
			ID:             archetype.ID(),
			ComponentTypes: componentTypes,
			EntityCount:    archetype.Len(),
		})
	}

	av.sortArchetypes()
}

func (av *ArchetypeViewer) updateEntityCounts(world *ecs.World) {
	counts := make(map[uint64]int, len(world.Archetypes()))
	for _, archetype := range world.Archetypes() {
		counts[archetype.ID()] = archetype.Len()
	}

	for i := range av.cache.archetypes {
		if n, ok := counts[av.cache.archetypes[i].ID]; ok {
			av.cache.archetypes[i].EntityCount = n
		}
	}

	if av.cache.sortColumn == 3 {
		av.sortArchetypes()
	}
}

func (av *ArchetypeViewer) sortArchetypes() {
	sort.SliceStable(av.cache.archetypes, func(i, j int) bool {
		a, b := av.cache.archetypes[i], av.cache.archetypes[j]
		var less bool

		switch av.cache.sortColumn {
		case 0:
			less = a.ID < b.ID
		case 1:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 2:
			less = len(a.ComponentTypes) < len(b.ComponentTypes)
		default:
			less = a.EntityCount < b.EntityCount
		}

		if !av.cache.sortAscending {
			return !less
		}
		return less
	})
}
