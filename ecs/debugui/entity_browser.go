package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/invaders/ecs"
)

type EntityInfo struct {
	Entity         ecs.Entity
	ArchetypeID    uint64
	ComponentTypes []string
	Tags           []string
}

type entityBrowserCache struct {
	entities           []EntityInfo
	lastArchetypeCount int
	lastEntityCount    int
	sortColumn         int
	sortAscending      bool
}

// NewEntityBrowser creates a browser showing maxEntitiesPerPage rows per page
func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		cache: &entityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowser) Render(world *ecs.World) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(world)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterArchetype = nil
		eb.currentPage = 0
	}

	filtered := eb.filteredEntities()
	eb.clampPage(len(filtered))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Archetype ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Tags")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			sortSpecs.SetSpecsDirty(false)
			filtered = eb.filteredEntities()
		}

		start := eb.currentPage * eb.maxEntitiesPerPage
		end := min(start+eb.maxEntitiesPerPage, len(filtered))

		for _, entity := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(entity.Entity.String(), eb.selected == entity.Entity, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = entity.Entity
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", entity.ArchetypeID))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.Tags, ", "))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := eb.pageCount(len(filtered))
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

func (eb *EntityBrowser) pageCount(n int) int {
	return (n + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
}

// clampPage pulls the current page back in range after entities die off
func (eb *EntityBrowser) clampPage(n int) {
	if pages := eb.pageCount(n); eb.currentPage >= pages {
		eb.currentPage = max(pages-1, 0)
	}
}

// rebuildCacheIfNeeded rebuilds when the archetype or entity count moved. A frame
// that destroys and spawns the same number of entities keeps showing old handles
// until the next change; the inspector copes with stale selections.
func (eb *EntityBrowser) rebuildCacheIfNeeded(world *ecs.World) {
	archetypes, entities := len(world.Archetypes()), world.Len()
	if eb.cache.lastArchetypeCount != archetypes || eb.cache.lastEntityCount != entities {
		eb.cache.entities = nil
		eb.cache.lastArchetypeCount = archetypes
		eb.cache.lastEntityCount = entities
	}

	if eb.cache.entities == nil {
		eb.rebuildCache(world)
	}
}

func (eb *EntityBrowser) rebuildCache(world *ecs.World) {
	eb.cache.entities = make([]EntityInfo, 0, world.Len())

	for _, archetype := range world.Archetypes() {
		componentTypes := make([]string, len(archetype.Types()))
		for i, t := range archetype.Types() {
			componentTypes[i] = t.String()
		}

		for _, e := range archetype.Iter() {
			_, tags, _ := world.Describe(e)
			eb.cache.entities = append(eb.cache.entities, EntityInfo{
				Entity:         e,
				ArchetypeID:    archetype.ID(),
				ComponentTypes: componentTypes,
				Tags:           tags,
			})
		}
	}

	eb.sortEntities()
}

func (eb *EntityBrowser) sortEntities() {
	sort.SliceStable(eb.cache.entities, func(i, j int) bool {
		a, b := eb.cache.entities[i], eb.cache.entities[j]
		var less bool

		switch eb.cache.sortColumn {
		case 1:
			less = a.ArchetypeID < b.ArchetypeID
		case 2:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 3:
			less = strings.Join(a.Tags, ",") < strings.Join(b.Tags, ",")
		default:
			less = a.Entity.Index() < b.Entity.Index()
		}

		if !eb.cache.sortAscending {
			return !less
		}
		return less
	})
}

func (eb *EntityBrowser) filteredEntities() []EntityInfo {
	if eb.filterText == "" && eb.filterArchetype == nil {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.cache.entities {
		if eb.filterArchetype != nil && entity.ArchetypeID != *eb.filterArchetype {
			continue
		}

		if eb.filterText != "" {
			idStr := entity.Entity.String()
			archStr := fmt.Sprintf("0x%x", entity.ArchetypeID)
			componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " ") + " " + strings.Join(entity.Tags, " "))

			if !strings.Contains(idStr, filterLower) &&
				!strings.Contains(archStr, filterLower) &&
				!strings.Contains(componentsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

// Selected returns the entity picked in the table, or ecs.Nil
func (eb *EntityBrowser) Selected() ecs.Entity {
	return eb.selected
}
