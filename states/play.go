package states

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/ecs"
	"github.com/milk9111/statestack/input"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

const (
	defaultBallRadius = 10.0
	// the arena is larger than the screen so the camera has room to follow
	arenaScale        = 1.5
	pushImpulse       = 40.0
	jumpImpulse       = 400.0
)

var ballPalette = []color.Color{
	colornames.Tomato,
	colornames.Gold,
	colornames.Mediumseagreen,
	colornames.Dodgerblue,
	colornames.Orchid,
}

// Play bounces balls around an arena. Pause and the HUD open as substates.
type Play struct {
	base
	physics *Physics
	balls   int
	bounces int
}

func newPlay(r *Registry, name string) (Bindable, error) {
	return &Play{base: newBase(r, name)}, nil
}

func (p *Play) Physics() *Physics { return p.physics }
func (p *Play) Balls() int        { return p.balls }
func (p *Play) Bounces() int      { return p.bounces }

func (p *Play) arena() (float64, float64) {
	spec := p.reg.Spec()
	w, h := float64(spec.Width), float64(spec.Height)
	if w <= 0 || h <= 0 {
		w, h = 640, 480
	}
	return w * arenaScale, h * arenaScale
}

func (p *Play) Create() {
	p.applyBackground()

	cfg := p.reg.Spec().Physics
	w, h := p.arena()
	p.physics = NewPhysics(cfg, w, h)

	world := p.self.World()
	world.AddSystem(p.physics)
	world.AddSystem(ecs.SystemFunc(p.countBounces))
	world.AddRenderer(BallRenderer{Camera: p.reg.Camera()})

	radius := cfg.Radius
	if radius <= 0 {
		radius = defaultBallRadius
	}
	cols := int(math.Ceil(math.Sqrt(float64(cfg.Bodies))))
	spacing := radius * 3
	left := w/2 - float64(cols)*spacing/2
	for i := 0; i < cfg.Bodies; i++ {
		x := left + float64(i%cols)*spacing + spacing/2
		y := h/4 + float64(i/cols)*spacing
		clr := ballPalette[i%len(ballPalette)]
		if _, err := p.physics.Spawn(world, x, y, radius, cfg.Elasticity, clr); err != nil {
			p.log.Error("spawn failed", zap.Error(err))
			continue
		}
		p.balls++
	}

	if cam := p.reg.Camera(); cam != nil {
		cam.SetWorldBounds(w, h)
		cam.SnapTo(w/2, h/2)
	}
	p.log.Debug("arena ready", zap.Int("balls", p.balls), zap.Float64("width", w), zap.Float64("height", h))
}

func (p *Play) countBounces(w *ecs.World, _ float64) {
	for _, ev := range w.Events().Drain() {
		if ev.Type == EventBounce {
			p.bounces++
		}
	}
}

func (p *Play) Update(float64) {
	in := p.input()
	if in.JustPressed(input.ActionPause) {
		p.open("pause")
		return
	}
	if in.JustPressed(input.ActionHUD) {
		p.open("hud")
	}

	world := p.self.World()
	if in.Pressed(input.ActionLeft) {
		p.physics.Impulse(world, -pushImpulse, 0)
	}
	if in.Pressed(input.ActionRight) {
		p.physics.Impulse(world, pushImpulse, 0)
	}
	if in.JustPressed(input.ActionJump) {
		p.physics.Impulse(world, 0, -jumpImpulse)
	}

	if cam := p.reg.Camera(); cam != nil {
		if x, y, ok := p.physics.Centroid(world); ok {
			cam.Follow(x, y)
		}
	}
}

func (p *Play) Draw(screen *ebiten.Image) {
	drawText(screen, 12, 20, colornames.White,
		fmt.Sprintf("balls: %d  bounces: %d", p.balls, p.bounces),
		"arrows push, space jumps, P pauses, F1 toggles hud")
}
