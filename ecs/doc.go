// Package ecs provides ECS adapters for ember's particle system.
//
// The adapter stores particle emitter nodes as [Donburi] components so game
// systems can own emitter stepping and react to completion as typed events.
// Subscribe to [EmitterDoneEvent] in your ECS systems to receive them.
//
// Usage:
//
//	world := donburi.NewWorld()
//	entity := ecs.NewEmitterEntity(world, explosionNode)
//	ecs.PlayOnce(world, entity)
//
//	// each frame:
//	ecs.UpdateEmitters(world, dt)
//	events.ProcessAllEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
