package invaders

import (
	"iter"

	"github.com/plus3/invaders/ecs"
)

// Drawable is one visible entity as a renderer sees it. Square and Mesh are the
// render hints; at least one is set. Box is nil for entities without a bounding box.
type Drawable struct {
	Entity   ecs.Entity
	Position Position
	Square   *DrawableSquare
	Mesh     *Mesh
	Box      *AABB
}

type drawItem struct {
	ecs.Entity
	*Position
	Square    *DrawableSquare  `ecs:"optional"`
	Mesh      *Mesh            `ecs:"optional"`
	Box       *AABB            `ecs:"optional"`
	Destroyed *DestroyedStatus `ecs:"optional"`
}

// DrawList enumerates what a renderer must draw this frame.
type DrawList struct {
	view *ecs.View[drawItem]
}

func NewDrawList(w *ecs.World) *DrawList {
	return &DrawList{view: ecs.NewView[drawItem](w)}
}

// Items yields every positioned entity with a render hint that is not marked
// destroyed.
func (d *DrawList) Items() iter.Seq[Drawable] {
	return func(yield func(Drawable) bool) {
		for item := range d.view.Values() {
			if item.Square == nil && item.Mesh == nil {
				continue
			}
			if item.Destroyed != nil && item.Destroyed.IsDestroyed {
				continue
			}
			if !yield(Drawable{
				Entity:   item.Entity,
				Position: *item.Position,
				Square:   item.Square,
				Mesh:     item.Mesh,
				Box:      item.Box,
			}) {
				return
			}
		}
	}
}
