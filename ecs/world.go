package ecs

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/ecs/component"
)

// World owns entities, component storage and the system order. Every state
// owns exactly one world; the state's own update and draw delegate to it.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]*SparseSet
	scheduler Scheduler
	events    EventQueue
	destroyed bool
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and frees its slot.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, store := range w.stores {
		store.Remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns the alive entities.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.live()
}

// Len returns the number of alive entities.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return w.entities.count
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	w.scheduler.Add(s)
}

// AddRenderer appends a renderer to the draw order.
func (w *World) AddRenderer(r Renderer) {
	if w == nil {
		return
	}
	w.scheduler.AddRenderer(r)
}

// Update runs all systems once and drops the frame's events.
func (w *World) Update(elapsed float64) {
	if w == nil || w.destroyed {
		return
	}
	w.scheduler.Update(w, elapsed)
	w.events.flush()
}

// Draw runs all renderers in registration order.
func (w *World) Draw(screen *ebiten.Image) {
	if w == nil || w.destroyed {
		return
	}
	w.scheduler.Draw(w, screen)
}

// Destroy releases systems, renderers and every entity. It is safe to call
// more than once.
func (w *World) Destroy() {
	if w == nil || w.destroyed {
		return
	}
	w.destroyed = true
	w.scheduler.destroy(w)
	for _, store := range w.stores {
		store.clear()
	}
	w.entities.reset()
	w.events.flush()
}

// Destroyed reports whether Destroy has run.
func (w *World) Destroyed() bool {
	return w != nil && w.destroyed
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w.stores == nil {
		if !create {
			return nil
		}
		w.stores = make(map[component.ComponentID]*SparseSet)
	}
	s, ok := w.stores[id]
	if !ok && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

func (w *World) addComponent(e Entity, id component.ComponentID, value any) error {
	if w == nil || !w.entities.isAlive(e) {
		return fmt.Errorf("add component to %s: %w", e, component.ErrEntityNotAlive)
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	w.store(id, true).Set(e, value)
	return nil
}
