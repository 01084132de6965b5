package states

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/input"
	"github.com/milk9111/statestack/state"
)

// Menu is the title screen. Confirm starts play behind a fade.
type Menu struct {
	base
	fade *Fade
}

func newMenu(r *Registry, name string) (Bindable, error) {
	return &Menu{base: newBase(r, name), fade: NewFade(fadeFrames)}, nil
}

func (m *Menu) Bind(s *state.State) {
	m.base.Bind(s)
	m.fade.Bind(s)
}

func (m *Menu) Create() {
	m.applyBackground()
	m.log.Debug("menu ready")
}

func (m *Menu) Update(float64) {
	if m.fade.Active() {
		m.fade.Update()
		return
	}
	if m.input().JustPressed(input.ActionConfirm) {
		m.switchTo("play")
	}
}

func (m *Menu) Draw(screen *ebiten.Image) {
	if screen == nil {
		return
	}
	h := float64(screen.Bounds().Dy())
	drawCentered(screen, h/2-30, m.reg.Spec().Title, "", "press enter to start")
	m.fade.Draw(screen)
}

func (m *Menu) IsTransitionNeeded() bool { return m.fade.IsTransitionNeeded() }

func (m *Menu) TransitionToState(next *state.State) { m.fade.TransitionToState(next) }
