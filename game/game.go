// Package game drives a state tree from ebiten's frame loop.
package game

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/statestack/camera"
	"github.com/milk9111/statestack/input"
	"github.com/milk9111/statestack/metrics"
	"github.com/milk9111/statestack/prefabs"
	"github.com/milk9111/statestack/state"
	"go.uber.org/zap"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	defaultMaxDelta = 0.1
)

// ReloadFunc rebuilds a root state after a spec or script changed on disk.
// Returning a nil state keeps the current root.
type ReloadFunc func(change prefabs.Change) (*state.State, error)

// Options configures the driver. Zero values get sensible defaults.
type Options struct {
	Width, Height int
	// MaxDelta caps the elapsed time handed to states, in seconds.
	MaxDelta   float64
	Background color.Color
	Debug      bool

	Input   *input.Input
	Camera  *camera.Camera
	Logger  *zap.Logger
	Metrics *metrics.Lifecycle

	Changes <-chan prefabs.Change
	Errors  <-chan error
	Reload  ReloadFunc
	// Copy receives the state dump when the dump action fires.
	Copy func(text string) error

	Now     func() time.Time
	Focused func() bool
}

// Game implements ebiten.Game around a root state.
type Game struct {
	opts Options
	env  *state.Env
	log  *zap.Logger

	root          *state.State
	next          *state.State
	switchPending bool

	frames   int
	last     time.Time
	focused  bool
	outsideW int
	outsideH int
}

var _ ebiten.Game = (*Game)(nil)

// New builds a driver and activates root immediately.
func New(root *state.State, opts Options) *Game {
	if opts.Width <= 0 {
		opts.Width = baseWidth
	}
	if opts.Height <= 0 {
		opts.Height = baseHeight
	}
	if opts.MaxDelta <= 0 {
		opts.MaxDelta = defaultMaxDelta
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Input == nil {
		opts.Input = input.New(nil, nil)
	}
	if opts.Camera == nil {
		opts.Camera = camera.New(opts.Width, opts.Height, 1)
	}
	if opts.Background != nil {
		opts.Camera.SetBackgroundColor(opts.Background)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Focused == nil {
		opts.Focused = ebiten.IsFocused
	}

	g := &Game{
		opts:    opts,
		log:     opts.Logger.Named("game"),
		focused: true,
	}
	g.env = &state.Env{
		Input:    opts.Input,
		Camera:   opts.Camera,
		Switcher: g,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
	}
	if root != nil {
		g.swap(root)
	}
	return g
}

func (g *Game) Root() *state.State  { return g.root }
func (g *Game) Env() *state.Env     { return g.env }
func (g *Game) Input() *input.Input { return g.opts.Input }
func (g *Game) Frames() int         { return g.frames }

// SwitchState replaces the root on the next Update. A later call before then
// wins.
func (g *Game) SwitchState(next *state.State) {
	if next == nil {
		g.log.Warn("ignoring switch to nil state")
		return
	}
	g.next = next
	g.switchPending = true
	g.log.Debug("root switch requested", zap.String("next", next.Name()))
}

func (g *Game) Update() error {
	start := g.opts.Now()
	elapsed := g.elapsed(start)

	g.frames++
	g.pollFocus()
	g.drainChanges()
	g.opts.Input.Update()
	g.applySwitch()

	if g.root == nil {
		return nil
	}
	if g.opts.Input.JustPressed(input.ActionDump) {
		g.dump()
	}

	g.root.TryUpdate(elapsed)

	g.opts.Metrics.Frame(len(g.root.Chain()), g.opts.Now().Sub(start).Seconds())
	return nil
}

func (g *Game) elapsed(now time.Time) float64 {
	defer func() { g.last = now }()
	if g.last.IsZero() {
		return 1.0 / float64(ebiten.DefaultTPS)
	}
	dt := now.Sub(g.last).Seconds()
	if dt < 0 {
		return 0
	}
	if dt > g.opts.MaxDelta {
		return g.opts.MaxDelta
	}
	return dt
}

func (g *Game) applySwitch() {
	if !g.switchPending {
		return
	}
	next := g.next
	g.next = nil
	g.switchPending = false

	if g.root != nil && g.root != next && g.root.IsTransitionNeeded() {
		g.log.Debug("root transition started", zap.String("from", g.root.Name()), zap.String("to", next.Name()))
		g.root.TransitionToState(next)
		return
	}
	g.swap(next)
}

func (g *Game) swap(next *state.State) {
	prev := g.root
	if prev == next {
		return
	}
	if prev != nil {
		prev.Destroy()
	}
	g.root = next
	g.opts.Input.OnStateSwitch()
	g.opts.Camera.Reset()
	next.Activate(g.env)
	g.opts.Metrics.RootSwitched()

	from := "<none>"
	if prev != nil {
		from = prev.Name()
	}
	g.log.Info("root switched", zap.String("from", from), zap.String("to", next.Name()))
}

func (g *Game) pollFocus() {
	focused := g.opts.Focused()
	if focused == g.focused {
		return
	}
	g.focused = focused
	g.log.Debug("focus changed", zap.Bool("focused", focused))
	for _, s := range g.root.Chain() {
		if focused {
			s.OnFocus()
		} else {
			s.OnFocusLost()
		}
	}
}

func (g *Game) drainChanges() {
	for {
		select {
		case c, ok := <-g.opts.Changes:
			if !ok {
				g.opts.Changes = nil
				return
			}
			g.reload(c)
		case err, ok := <-g.opts.Errors:
			if !ok {
				g.opts.Errors = nil
				continue
			}
			g.log.Warn("watcher error", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) reload(c prefabs.Change) {
	log := g.log.With(zap.String("path", c.Path), zap.Stringer("kind", c.Kind))
	if g.opts.Reload == nil {
		log.Debug("change ignored")
		return
	}
	next, err := g.opts.Reload(c)
	if err != nil {
		log.Error("reload failed", zap.Error(err))
		return
	}
	log.Info("reloaded")
	if next != nil {
		g.SwitchState(next)
	}
}

func (g *Game) dump() {
	text := g.root.Dump()
	g.log.Info("state dump", zap.String("tree", text))
	if g.opts.Copy == nil {
		return
	}
	if err := g.opts.Copy(text); err != nil {
		g.log.Warn("copy dump failed", zap.Error(err))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.opts.Camera.Fill(screen)
	if g.root != nil {
		g.root.Draw(screen)
	}
	if g.opts.Debug && screen != nil {
		ebitenutil.DebugPrint(screen, g.debugText())
	}
}

func (g *Game) debugText() string {
	var names []string
	for _, s := range g.root.Chain() {
		names = append(names, s.Name())
	}
	return fmt.Sprintf("Frames: %d    FPS: %.2f\n%s", g.frames, ebiten.ActualFPS(), strings.Join(names, " > "))
}

// Layout keeps a fixed logical size and forwards outside size changes to the
// active chain.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outsideW || outsideHeight != g.outsideH {
		g.outsideW, g.outsideH = outsideWidth, outsideHeight
		for _, s := range g.root.Chain() {
			s.OnResize(outsideWidth, outsideHeight)
		}
	}
	return g.opts.Width, g.opts.Height
}
