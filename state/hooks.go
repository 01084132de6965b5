package state

import "github.com/hajimehoshi/ebiten/v2"

// Hooks are the override points of a concrete state. Embed BaseHooks to pick
// up no-op defaults and override only what the state needs.
type Hooks interface {
	// Create runs once, when the state is first activated.
	Create()
	// Update runs as part of the state's own update, before its world.
	Update(elapsed float64)
	// Draw runs as part of the state's own draw, after its world.
	Draw(screen *ebiten.Image)
	// Destroy runs once, after the substate chain below has been torn down.
	Destroy()

	OnFocus()
	OnFocusLost()
	OnResize(width, height int)

	// IsTransitionNeeded lets a root state delay a top-level swap, e.g. to
	// play an outro. When it returns true the driver calls TransitionToState
	// instead of swapping.
	IsTransitionNeeded() bool
	TransitionToState(next *State)
}

// BaseHooks implements Hooks with no-ops.
type BaseHooks struct{}

func (BaseHooks) Create()                  {}
func (BaseHooks) Update(float64)           {}
func (BaseHooks) Draw(*ebiten.Image)       {}
func (BaseHooks) Destroy()                 {}
func (BaseHooks) OnFocus()                 {}
func (BaseHooks) OnFocusLost()             {}
func (BaseHooks) OnResize(int, int)        {}
func (BaseHooks) IsTransitionNeeded() bool { return false }
func (BaseHooks) TransitionToState(*State) {}

var _ Hooks = BaseHooks{}
