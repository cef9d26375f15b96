package ecs

// System represents a behavior that operates on entities with specific components.
// Systems are structs that can include Query and Singleton fields, which the
// Scheduler binds to its world on registration, as well as custom state fields that
// persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}
