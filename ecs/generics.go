package ecs

import "github.com/milk9111/statestack/ecs/component"

func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value *T) error {
	if value == nil {
		return component.ErrNilComponent
	}
	return w.addComponent(e, handle.ID(), value)
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	if w == nil {
		return false
	}
	return w.store(handle.ID(), false).Remove(e)
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	if w == nil {
		return false
	}
	return w.store(handle.ID(), false).Has(e)
}

func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (*T, bool) {
	if w == nil {
		return nil, false
	}
	value, ok := w.store(handle.ID(), false).Get(e).(*T)
	return value, ok
}

// ForEach visits every entity holding the component.
func ForEach[T any](w *World, handle component.ComponentHandle[T], fn func(Entity, *T)) {
	if w == nil || fn == nil {
		return
	}
	s := w.store(handle.ID(), false)
	for _, e := range append([]Entity(nil), s.Entities()...) {
		if v, ok := s.Get(e).(*T); ok {
			fn(e, v)
		}
	}
}

// ForEach2 visits entities holding both components, iterating the smaller set.
func ForEach2[A, B any](w *World, ha component.ComponentHandle[A], hb component.ComponentHandle[B], fn func(Entity, *A, *B)) {
	if w == nil || fn == nil {
		return
	}
	sa, sb := w.store(ha.ID(), false), w.store(hb.ID(), false)
	if sa == nil || sb == nil {
		return
	}
	driver := sa
	if sb.Len() < sa.Len() {
		driver = sb
	}
	for _, e := range append([]Entity(nil), driver.Entities()...) {
		a, okA := sa.Get(e).(*A)
		b, okB := sb.Get(e).(*B)
		if okA && okB {
			fn(e, a, b)
		}
	}
}

// First returns any entity holding the component.
func First[T any](w *World, handle component.ComponentHandle[T]) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	ents := w.store(handle.ID(), false).Entities()
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}
