// Package state implements a tree of game states where each state may overlay
// one active substate (a pause menu over gameplay, a dialog over the pause
// menu, and so on).
//
// Substate changes are staged by OpenSubState and CloseSubState and applied
// on the next TryUpdate of the requesting state, never in the middle of an
// update or draw traversal. Only the last request issued between two updates
// takes effect. A newly activated substate is created in the tick its
// transition is applied and receives its first update on the following tick.
//
// Each state exclusively owns its substate. The parent link kept by a
// substate is a back reference for lookups and never affects ownership.
//
// A state must never be opened as a substate of itself or of one of its own
// substates; doing so recurses without bound and is not detected.
package state

import (
	"fmt"
	"image/color"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/statestack/ecs"
	"go.uber.org/zap"
)

// State is one node of the state tree.
type State struct {
	// PersistentUpdate keeps this state's own update running while a
	// substate is active.
	PersistentUpdate bool
	// PersistentDraw keeps this state drawing underneath an active substate.
	PersistentDraw bool
	// DestroySubStates destroys a substate when it is closed or replaced.
	// When false the substate is only detached and the caller keeps it.
	DestroySubStates bool

	id    string
	name  string
	hooks Hooks
	world *ecs.World
	env   *Env

	subState          *State
	requestedSubState *State
	pendingReset      bool

	created   bool
	destroyed bool
	parent    *State

	openCallback  func()
	closeCallback func()
	overlay       color.Color
}

// Option configures a State at construction.
type Option func(*State)

func WithPersistentUpdate(v bool) Option { return func(s *State) { s.PersistentUpdate = v } }

func WithPersistentDraw(v bool) Option { return func(s *State) { s.PersistentDraw = v } }

func WithDestroySubStates(v bool) Option { return func(s *State) { s.DestroySubStates = v } }

// WithName sets the name used in logs and dumps. It defaults to the hooks'
// type name.
func WithName(name string) Option { return func(s *State) { s.name = name } }

// WithWorld replaces the world the state's own update and draw delegate to.
func WithWorld(w *ecs.World) Option { return func(s *State) { s.world = w } }

// WithOverlay tints everything drawn beneath this state when it is drawn.
func WithOverlay(c color.Color) Option { return func(s *State) { s.overlay = c } }

// New builds an inactive state. hooks may be nil.
func New(hooks Hooks, opts ...Option) *State {
	if hooks == nil {
		hooks = BaseHooks{}
	}
	s := &State{
		PersistentDraw:   true,
		DestroySubStates: true,
		id:               uuid.NewString(),
		hooks:            hooks,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.world == nil {
		s.world = ecs.NewWorld()
	}
	if s.name == "" {
		s.name = hookName(hooks)
	}
	return s
}

func hookName(h Hooks) string {
	name := fmt.Sprintf("%T", h)
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}

func (s *State) ID() string                { return s.id }
func (s *State) Name() string              { return s.name }
func (s *State) Hooks() Hooks              { return s.hooks }
func (s *State) World() *ecs.World         { return s.world }
func (s *State) Env() *Env                 { return s.env }
func (s *State) SubState() *State          { return s.subState }
func (s *State) RequestedSubState() *State { return s.requestedSubState }
func (s *State) PendingReset() bool        { return s.pendingReset }
func (s *State) Created() bool             { return s.created }
func (s *State) Destroyed() bool           { return s.destroyed }

// Parent returns the state this one was first activated under, or nil for a
// root.
func (s *State) Parent() *State { return s.parent }

// SetOpenCallback registers fn to run every time this state is activated as
// a substate, after Create on the first activation.
func (s *State) SetOpenCallback(fn func()) { s.openCallback = fn }

// SetCloseCallback registers fn to run just before this state is closed or
// replaced by its parent.
func (s *State) SetCloseCallback(fn func()) { s.closeCallback = fn }

// SetOverlay changes the tint drawn beneath this state. nil disables it.
func (s *State) SetOverlay(c color.Color) { s.overlay = c }

// BackgroundColor reads the camera's clear colour. It is transparent when no
// camera is attached.
func (s *State) BackgroundColor() color.Color {
	if s.env == nil || s.env.Camera == nil {
		return color.Transparent
	}
	return s.env.Camera.BackgroundColor()
}

// SetBackgroundColor writes the camera's clear colour.
func (s *State) SetBackgroundColor(c color.Color) {
	if s.env == nil || s.env.Camera == nil {
		return
	}
	s.env.Camera.SetBackgroundColor(c)
}

// SwitchState asks the driver to replace the root state with next.
func (s *State) SwitchState(next *State) {
	if s.env == nil || s.env.Switcher == nil {
		s.log().Warn("switch requested without a driver", zap.String("next", nameOf(next)))
		return
	}
	s.env.Switcher.SwitchState(next)
}

// TryUpdate advances this state by one frame. Call it once per frame on the
// root; it recurses into the active substate.
//
// The state's own update runs when PersistentUpdate is set or nothing is
// stacked on top of it. After that either a pending transition is applied or
// the active substate is updated, never both.
func (s *State) TryUpdate(elapsed float64) {
	if s.destroyed {
		return
	}
	if s.PersistentUpdate || s.subState == nil {
		s.update(elapsed)
	}

	if s.pendingReset {
		s.ResetSubState()
	} else if s.subState != nil {
		s.subState.TryUpdate(elapsed)
	}
}

func (s *State) update(elapsed float64) {
	s.hooks.Update(elapsed)
	s.world.Update(elapsed)
}

// Draw renders this state and then its active substate on top of it. The
// state's own draw is skipped when PersistentDraw is false and a substate
// is active.
func (s *State) Draw(screen *ebiten.Image) {
	if s.destroyed {
		return
	}
	if s.PersistentDraw || s.subState == nil {
		s.draw(screen)
	}

	if s.subState != nil {
		s.subState.Draw(screen)
	}
}

func (s *State) draw(screen *ebiten.Image) {
	if s.overlay != nil && screen != nil {
		b := screen.Bounds()
		vector.FillRect(screen, float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy()), s.overlay, false)
	}
	s.world.Draw(screen)
	s.hooks.Draw(screen)
}

func (s *State) OnFocus()                   { s.hooks.OnFocus() }
func (s *State) OnFocusLost()               { s.hooks.OnFocusLost() }
func (s *State) OnResize(width, height int) { s.hooks.OnResize(width, height) }

// IsTransitionNeeded reports whether the state wants to run an outro before
// the driver swaps it out.
func (s *State) IsTransitionNeeded() bool { return s.hooks.IsTransitionNeeded() }

// TransitionToState hands next to the state's outro.
func (s *State) TransitionToState(next *State) { s.hooks.TransitionToState(next) }

func (s *State) log() *zap.Logger {
	return s.env.logger().With(zap.String("state", s.name), zap.String("id", s.id))
}
