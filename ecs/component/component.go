package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

type ComponentID uint32

var nextComponentID atomic.Uint32

// ComponentHandle identifies one component type stored in a world. Values are
// stored by pointer so systems mutate them in place.
type ComponentHandle[T any] struct {
	id   ComponentID
	name string
}

func NewComponent[T any](name string) ComponentHandle[T] {
	return ComponentHandle[T]{id: ComponentID(nextComponentID.Add(1)), name: name}
}

func (h ComponentHandle[T]) ID() ComponentID {
	return h.id
}

func (h ComponentHandle[T]) Name() string {
	return h.name
}

func (h ComponentHandle[T]) Valid() bool {
	return h.id != 0
}
