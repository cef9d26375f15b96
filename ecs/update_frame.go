package ecs

import "reflect"

// UpdateFrame is passed to every system during one Scheduler.Once call.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	World     *World
}

func newUpdateFrame(dt float64, world *World) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		World:     world,
	}
}

// GetComponent lets systems read through the frame with ReadComponent.
func (f *UpdateFrame) GetComponent(e Entity, compType reflect.Type) any {
	return f.World.GetComponent(e, compType)
}
