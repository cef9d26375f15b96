// Package debugui provides a Dear ImGui overlay for inspecting a running ecs.World.
// The overlay owns its panel state and renders between a backend's BeginFrame and
// EndFrame calls.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/invaders/ecs"
)

// Overlay groups the inspection panels. The zero value is not usable; use NewOverlay.
type Overlay struct {
	Browser    *EntityBrowser
	Inspector  *ComponentInspector
	Archetypes *ArchetypeViewer
	Queries    *QueryDebugger
	Stats      *PerformanceStats

	world *ecs.World
}

// NewOverlay creates an overlay with every panel enabled
func NewOverlay() *Overlay {
	return &Overlay{
		Browser:    NewEntityBrowser(100),
		Inspector:  NewComponentInspector(),
		Archetypes: NewArchetypeViewer(),
		Queries:    NewQueryDebugger(),
		Stats:      NewPerformanceStats(120),
	}
}

// Render draws every panel for world. scheduler may be nil when the host has none.
// Panel caches are dropped when the world changes, since a restarted game brings a
// fresh world whose archetype IDs and entity handles mean nothing to the old caches.
func (o *Overlay) Render(world *ecs.World, scheduler *ecs.Scheduler, deltaTime float32) {
	if world == nil {
		return
	}
	if world != o.world {
		o.reset()
		o.world = world
	}

	if arch := o.Archetypes.Render(world); arch != nil {
		o.Browser.filterArchetype = arch
		o.Browser.currentPage = 0
	}
	o.Browser.Render(world)
	o.Inspector.Render(world, o.Browser.Selected())
	o.Queries.Render(world)
	o.Stats.Render(world, scheduler, deltaTime)
}

func (o *Overlay) reset() {
	o.Browser.cache.entities = nil
	o.Browser.selected = ecs.Nil
	o.Browser.filterArchetype = nil
	o.Browser.currentPage = 0
	o.Archetypes.cache.archetypes = nil
	o.Archetypes.selected = nil
	o.Queries.cache.componentTypes = nil
	o.Queries.selected = make(map[string]bool)
}

// WantsKeyboard reports whether ImGui is consuming keyboard input this frame.
// Hosts should not forward keys to the game while it does.
func (o *Overlay) WantsKeyboard() bool {
	return imgui.CurrentIO().WantCaptureKeyboard()
}

// WantsMouse reports whether ImGui is consuming mouse input this frame
func (o *Overlay) WantsMouse() bool {
	return imgui.CurrentIO().WantCaptureMouse()
}
