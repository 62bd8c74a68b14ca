// Package ecs provides ECS adapters for ember's particle system.
package ecs

import (
	"github.com/emberworks/ember"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// EmitterData links an entity to a particle emitter node in the scene graph.
type EmitterData struct {
	Node *ember.Node // node created by ember.NewParticleEmitter
}

// Emitter is the Donburi component type for particle emitter entities.
var Emitter = donburi.NewComponentType[EmitterData]()

// EmitterDone is published when a play-once emitter entity finishes.
type EmitterDone struct {
	Entity donburi.Entity
	Node   *ember.Node
}

// EmitterDoneEvent is the Donburi event type for emitter completion.
// Subscribe to it in your ECS systems to react when effects finish.
var EmitterDoneEvent = events.NewEventType[EmitterDone]()

var emitterQuery = donburi.NewQuery(filter.Contains(Emitter))

// NewEmitterEntity creates an entity wrapping the given emitter node.
// The node's emitter is switched to manual updates so [UpdateEmitters]
// owns its stepping.
func NewEmitterEntity(w donburi.World, node *ember.Node) donburi.Entity {
	if node.Emitter != nil {
		node.Emitter.SetAutoUpdate(false)
	}
	entity := w.Create(Emitter)
	Emitter.SetValue(w.Entry(entity), EmitterData{Node: node})
	return entity
}

// PlayOnce starts the entity's emitter for one emitter lifetime and publishes
// [EmitterDoneEvent] when the last particle dies. Drain events with
// EmitterDoneEvent.ProcessEvents or events.ProcessAllEvents.
func PlayOnce(w donburi.World, entity donburi.Entity) {
	entry := w.Entry(entity)
	data := Emitter.Get(entry)
	node := data.Node
	if node == nil || node.Emitter == nil {
		return
	}
	node.Emitter.PlayOnce(func() {
		EmitterDoneEvent.Publish(w, EmitterDone{Entity: entity, Node: node})
	})
}

// UpdateEmitters advances every emitter entity by dt seconds. Call once per
// frame from your ECS update loop.
func UpdateEmitters(w donburi.World, dt float64) {
	emitterQuery.Each(w, func(entry *donburi.Entry) {
		data := Emitter.Get(entry)
		if data.Node == nil || data.Node.Emitter == nil {
			return
		}
		data.Node.Emitter.Update(dt)
	})
}

// Prune removes entities whose emitter nodes have been disposed or destroyed.
// Returns the number of entities removed.
func Prune(w donburi.World) int {
	var dead []donburi.Entity
	emitterQuery.Each(w, func(entry *donburi.Entry) {
		data := Emitter.Get(entry)
		if data.Node == nil || data.Node.IsDisposed() || data.Node.Emitter == nil {
			dead = append(dead, entry.Entity())
		}
	})
	for _, entity := range dead {
		w.Remove(entity)
	}
	return len(dead)
}
