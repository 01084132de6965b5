package states

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/statestack/input"
	"github.com/milk9111/statestack/state"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// base carries what every demo state needs: its wrapping State, the registry
// for building neighbours and a named logger.
type base struct {
	state.BaseHooks

	self *state.State
	reg  *Registry
	name string
	log  *zap.Logger
}

func newBase(r *Registry, name string) base {
	return base{
		reg:  r,
		name: name,
		log:  r.Logger().With(zap.String("state", name)),
	}
}

func (b *base) Bind(s *state.State) { b.self = s }

func (b *base) input() *input.Input { return b.reg.Input() }

// applyBackground sets the camera clear colour from the game spec, if any.
func (b *base) applyBackground() {
	if c := b.reg.Spec().State(b.name).Background.Color; c != nil {
		b.self.SetBackgroundColor(c)
	} else if c := b.reg.Spec().Background.Color; c != nil {
		b.self.SetBackgroundColor(c)
	}
}

// open builds name and stages it as this state's substate.
func (b *base) open(name string) bool {
	next, err := b.reg.Build(name)
	if err != nil {
		b.log.Error("open substate failed", zap.String("substate", name), zap.Error(err))
		return false
	}
	b.self.OpenSubState(next)
	return true
}

// switchTo builds name and asks the driver to make it the root.
func (b *base) switchTo(name string) bool {
	next, err := b.reg.Build(name)
	if err != nil {
		b.log.Error("switch failed", zap.String("next", name), zap.Error(err))
		return false
	}
	b.self.SwitchState(next)
	return true
}

var uiFace ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)

// drawText draws lines starting at x, y in the basic font.
func drawText(screen *ebiten.Image, x, y float64, clr color.Color, lines ...string) {
	if screen == nil {
		return
	}
	for i, line := range lines {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(x, y+float64(i)*18)
		op.ColorScale.ScaleWithColor(clr)
		ebtext.Draw(screen, line, uiFace, op)
	}
}

func drawCentered(screen *ebiten.Image, y float64, lines ...string) {
	if screen == nil {
		return
	}
	w := screen.Bounds().Dx()
	for i, line := range lines {
		adv := ebtext.Advance(line, uiFace)
		drawText(screen, (float64(w)-adv)/2, y+float64(i)*18, colornames.White, line)
	}
}
