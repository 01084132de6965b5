package states

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/input"
)

// Confirm asks before leaving play. Yes returns to the menu, No closes the
// prompt.
type Confirm struct {
	base
}

func newConfirm(r *Registry, name string) (Bindable, error) {
	return &Confirm{base: newBase(r, name)}, nil
}

func (c *Confirm) Update(float64) {
	in := c.input()
	switch {
	case in.JustPressed(input.ActionYes):
		c.switchTo("menu")
	case in.JustPressed(input.ActionNo), in.JustPressed(input.ActionCancel):
		c.self.Close()
	}
}

func (c *Confirm) Draw(screen *ebiten.Image) {
	if screen == nil {
		return
	}
	drawCentered(screen, float64(screen.Bounds().Dy())*0.75, "quit to menu?", "Y: yes   N: no")
}
