package ecs

import (
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"
)

// System advances a world by elapsed seconds.
type System interface {
	Update(w *World, elapsed float64)
}

// Renderer draws a world onto the screen.
type Renderer interface {
	Draw(w *World, screen *ebiten.Image)
}

// Destroyer is implemented by systems and renderers that hold resources
// outside the world (physics spaces, images) and must release them when the
// world is destroyed.
type Destroyer interface {
	Destroy(w *World)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w *World, elapsed float64)

func (f SystemFunc) Update(w *World, elapsed float64) { f(w, elapsed) }

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(w *World, screen *ebiten.Image)

func (f RendererFunc) Draw(w *World, screen *ebiten.Image) { f(w, screen) }

type Scheduler struct {
	systems   []System
	renderers []Renderer
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) AddRenderer(r Renderer) {
	if r == nil {
		return
	}
	s.renderers = append(s.renderers, r)
}

func (s *Scheduler) Update(w *World, elapsed float64) {
	for _, system := range s.systems {
		system.Update(w, elapsed)
	}
}

func (s *Scheduler) Draw(w *World, screen *ebiten.Image) {
	for _, r := range s.renderers {
		r.Draw(w, screen)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}

// destroy releases systems first, then renderers. Values implementing both
// interfaces are released once.
func (s *Scheduler) destroy(w *World) {
	seen := make(map[any]struct{})
	release := func(v any) {
		d, ok := v.(Destroyer)
		if !ok {
			return
		}
		if reflect.TypeOf(v).Comparable() {
			if _, dup := seen[v]; dup {
				return
			}
			seen[v] = struct{}{}
		}
		d.Destroy(w)
	}
	for _, system := range s.systems {
		release(system)
	}
	for _, r := range s.renderers {
		release(r)
	}
	s.systems = nil
	s.renderers = nil
}
