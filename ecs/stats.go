package ecs

// StorageStats is a point-in-time summary of a world's contents.
type StorageStats struct {
	TotalEntityCount   int
	ArchetypeCount     int
	SingletonCount     int
	RelationEdgeCount  int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []string
}

// ArchetypeStats describes one non-empty archetype.
type ArchetypeStats struct {
	ID             uint64
	ComponentTypes []string
	EntityCount    int
}

// CollectStats walks the world and summarizes it. Empty archetypes are omitted.
func (w *World) CollectStats() StorageStats {
	stats := StorageStats{
		TotalEntityCount: w.alive,
		SingletonCount:   len(w.singletons),
		SingletonTypes:   w.singletonTypes(),
	}

	for _, archetype := range w.order {
		n := archetype.Len()
		if n == 0 {
			continue
		}
		names := make([]string, len(archetype.types))
		for i, typ := range archetype.types {
			names[i] = typ.String()
		}
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:             archetype.id,
			ComponentTypes: names,
			EntityCount:    n,
		})
	}
	stats.ArchetypeCount = len(stats.ArchetypeBreakdown)

	for _, table := range w.relations {
		for _, edges := range table.out.All() {
			stats.RelationEdgeCount += len(edges)
		}
	}
	return stats
}
