package debugui

import (
	"github.com/plus3/invaders/ecs"
)

// EntityBrowser lists live entities with paging, sorting and a text filter
type EntityBrowser struct {
	cache              *entityBrowserCache
	selected           ecs.Entity
	filterText         string
	filterArchetype    *uint64
	maxEntitiesPerPage int
	currentPage        int
}

// ComponentInspector edits the fields of the selected entity's components
type ComponentInspector struct {
	selected ecs.Entity
}

// ArchetypeViewer shows per-archetype entity counts
type ArchetypeViewer struct {
	cache    *archetypeViewerCache
	selected *uint64
}

// PerformanceStats plots frame times and shows world and scheduler statistics
type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

// QueryDebugger counts the archetypes and entities matching a chosen component set
type QueryDebugger struct {
	selected map[string]bool
	cache    *queryDebuggerCache
}
