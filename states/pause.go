package states

import (
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/input"
)

// Pause is a menu over play. Resume closes it; Quit asks for confirmation in a
// nested substate.
type Pause struct {
	base
	ui *ebitenui.UI
}

func newPause(r *Registry, name string) (Bindable, error) {
	return &Pause{base: newBase(r, name)}, nil
}

func (p *Pause) Create() {
	p.log.Debug("paused")
}

func (p *Pause) Update(float64) {
	if p.ui != nil {
		p.ui.Update()
	}
	in := p.input()
	switch {
	case in.JustPressed(input.ActionCancel), in.JustPressed(input.ActionPause):
		p.resume()
	case in.JustPressed(input.ActionConfirm):
		p.quit()
	}
}

func (p *Pause) resume() { p.self.Close() }

func (p *Pause) quit() { p.open("confirm") }

// Draw builds the UI on first use so that no images are allocated before the
// game loop runs.
func (p *Pause) Draw(screen *ebiten.Image) {
	if screen == nil {
		return
	}
	if p.ui == nil {
		b := screen.Bounds()
		p.ui = newPauseUI(b.Dx(), b.Dy(), p.resume, p.quit)
	}
	p.ui.Draw(screen)
}

func (p *Pause) OnFocusLost() {
	p.log.Debug("focus lost while paused")
}
