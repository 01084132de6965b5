package state

import (
	"image/color"

	"github.com/milk9111/statestack/metrics"
	"go.uber.org/zap"
)

// InputSwitcher is the slice of the input subsystem the core needs: a way to
// drop edge-triggered flags when control moves to another state.
type InputSwitcher interface {
	OnStateSwitch()
}

// Background is the slice of the camera subsystem that owns the clear colour.
type Background interface {
	BackgroundColor() color.Color
	SetBackgroundColor(c color.Color)
}

// Switcher performs top-level state swaps. The driver implements it.
type Switcher interface {
	SwitchState(next *State)
}

// Env carries the collaborators shared by every state in one tree. Substates
// that have no Env of their own inherit their parent's on activation. Any
// field may be nil.
type Env struct {
	Input    InputSwitcher
	Camera   Background
	Switcher Switcher
	Logger   *zap.Logger
	Metrics  *metrics.Lifecycle
}

func (e *Env) logger() *zap.Logger {
	if e == nil || e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Env) metrics() *metrics.Lifecycle {
	if e == nil {
		return nil
	}
	return e.Metrics
}
