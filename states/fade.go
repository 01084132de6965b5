package states

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/statestack/state"
)

const fadeFrames = 30

// Fade delays a root switch behind a fade to black. The owning state forwards
// IsTransitionNeeded and TransitionToState to it and calls Update and Draw
// from its own hooks.
type Fade struct {
	self   *state.State
	frames int
	target *state.State
	timer  int
	alpha  float64
	done   bool
}

func NewFade(frames int) *Fade {
	if frames <= 0 {
		frames = fadeFrames
	}
	return &Fade{frames: frames}
}

func (f *Fade) Bind(s *state.State) { f.self = s }

// IsTransitionNeeded is true until the fade has run once.
func (f *Fade) IsTransitionNeeded() bool { return !f.done }

// TransitionToState starts the fade, or retargets one already running.
func (f *Fade) TransitionToState(next *state.State) {
	if f.target == nil {
		f.timer = f.frames
	}
	f.target = next
}

func (f *Fade) Active() bool         { return f.target != nil }
func (f *Fade) Alpha() float64       { return f.alpha }
func (f *Fade) Target() *state.State { return f.target }

func (f *Fade) Update() {
	if f.target == nil {
		return
	}
	if f.timer > 0 {
		f.timer--
	}
	f.alpha = 1 - float64(f.timer)/float64(f.frames)
	if f.timer > 0 {
		return
	}
	next := f.target
	f.target = nil
	f.done = true
	f.self.SwitchState(next)
}

func (f *Fade) Draw(screen *ebiten.Image) {
	if f.alpha <= 0 || screen == nil {
		return
	}
	b := screen.Bounds()
	clr := color.NRGBA{A: uint8(f.alpha * 255)}
	vector.FillRect(screen, float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy()), clr, false)
}
