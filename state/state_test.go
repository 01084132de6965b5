package state

import (
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/camera"
	"github.com/milk9111/statestack/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type journal struct {
	entries []string
}

func (j *journal) add(e string) { j.entries = append(j.entries, e) }

func (j *journal) reset() { j.entries = nil }

type probe struct {
	BaseHooks
	name string
	log  *journal

	creates  int
	updates  int
	draws    int
	destroys int
	onCreate func()
}

func (p *probe) Create() {
	p.creates++
	p.log.add(p.name + ".create")
	if p.onCreate != nil {
		p.onCreate()
	}
}

func (p *probe) Update(float64) {
	p.updates++
	p.log.add(p.name + ".update")
}

func (p *probe) Draw(*ebiten.Image) {
	p.draws++
	p.log.add(p.name + ".draw")
}

func (p *probe) Destroy() {
	p.destroys++
	p.log.add(p.name + ".destroy")
}

type switchCounter struct{ n int }

func (c *switchCounter) OnStateSwitch() { c.n++ }

func newProbe(j *journal, name string, opts ...Option) (*State, *probe) {
	p := &probe{name: name, log: j}
	return New(p, append([]Option{WithName(name)}, opts...)...), p
}

func TestScenarioOpenSubstate(t *testing.T) {
	j := &journal{}
	in := &switchCounter{}
	root, r := newProbe(j, "R", WithPersistentUpdate(false), WithPersistentDraw(true))
	b, bp := newProbe(j, "B")

	root.Activate(&Env{Input: in})
	require.Equal(t, 1, r.creates)

	root.OpenSubState(b)
	assert.True(t, root.PendingReset())
	assert.Nil(t, root.SubState(), "open must be deferred")

	j.reset()
	root.TryUpdate(1.0 / 60)
	assert.Equal(t, []string{"R.update", "B.create"}, j.entries)
	assert.Same(t, b, root.SubState())
	assert.Same(t, root, b.Parent())
	assert.True(t, b.Created())
	assert.Nil(t, root.RequestedSubState())
	assert.False(t, root.PendingReset())
	assert.Equal(t, 1, in.n)
	assert.Equal(t, 0, bp.updates, "substate must not update in its activation tick")

	j.reset()
	root.Draw(nil)
	assert.Equal(t, []string{"R.draw", "B.draw"}, j.entries)

	j.reset()
	root.TryUpdate(1.0 / 60)
	assert.Equal(t, []string{"B.update"}, j.entries)
	assert.Equal(t, 1, r.updates)
}

func TestScenarioCloseSubstate(t *testing.T) {
	j := &journal{}
	root, r := newProbe(j, "R")
	b, bp := newProbe(j, "B")
	root.Activate(nil)
	root.OpenSubState(b)
	root.TryUpdate(0)

	closed := 0
	b.SetCloseCallback(func() {
		closed++
		j.add("B.closeCallback")
	})

	root.CloseSubState()
	j.reset()
	root.TryUpdate(0)
	assert.Equal(t, []string{"B.closeCallback", "B.destroy"}, j.entries)
	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, bp.destroys)
	assert.True(t, b.Destroyed())
	assert.Nil(t, root.SubState())

	updates := r.updates
	j.reset()
	root.TryUpdate(0)
	root.Draw(nil)
	assert.Equal(t, []string{"R.update", "R.draw"}, j.entries)
	assert.Equal(t, updates+1, r.updates)
}

func TestLastRequestWins(t *testing.T) {
	tests := []struct {
		name    string
		issue   func(root, a, b *State)
		want    string
		created []string
	}{
		{
			name:    "open_then_open",
			issue:   func(root, a, b *State) { root.OpenSubState(a); root.OpenSubState(b) },
			want:    "B",
			created: []string{"B"},
		},
		{
			name:  "open_then_close",
			issue: func(root, a, b *State) { root.OpenSubState(a); root.CloseSubState() },
			want:  "",
		},
		{
			name:    "close_then_open",
			issue:   func(root, a, b *State) { root.CloseSubState(); root.OpenSubState(a) },
			want:    "A",
			created: []string{"A"},
		},
		{
			name:    "open_close_open",
			issue:   func(root, a, b *State) { root.OpenSubState(b); root.CloseSubState(); root.OpenSubState(a) },
			want:    "A",
			created: []string{"A"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			j := &journal{}
			root, _ := newProbe(j, "R")
			a, _ := newProbe(j, "A")
			b, _ := newProbe(j, "B")
			root.Activate(nil)

			tc.issue(root, a, b)
			root.TryUpdate(0)

			assert.Equal(t, tc.want, nameOf(root.SubState()))
			var created []string
			for _, s := range []*State{a, b} {
				if s.Created() {
					created = append(created, s.Name())
				}
			}
			assert.Equal(t, tc.created, created)
			assert.False(t, a.Destroyed())
			assert.False(t, b.Destroyed())
		})
	}
}

func TestCreateFiresOnceForRetainedSubstate(t *testing.T) {
	j := &journal{}
	root, _ := newProbe(j, "R", WithDestroySubStates(false))
	b, bp := newProbe(j, "B")
	root.Activate(nil)

	opened := 0
	b.SetOpenCallback(func() { opened++ })

	root.OpenSubState(b)
	root.TryUpdate(0)
	root.CloseSubState()
	root.TryUpdate(0)

	assert.Nil(t, root.SubState())
	assert.False(t, b.Destroyed(), "retained substate must only be detached")
	assert.Same(t, root, b.Parent(), "parent stays assigned after detach")

	root.OpenSubState(b)
	root.TryUpdate(0)

	assert.Same(t, b, root.SubState())
	assert.Equal(t, 1, bp.creates)
	assert.Equal(t, 2, opened)
	assert.Equal(t, 0, bp.destroys)
}

func TestDestroyExactlyOnce(t *testing.T) {
	t.Run("destroy_substates", func(t *testing.T) {
		j := &journal{}
		root, _ := newProbe(j, "R")
		a, ap := newProbe(j, "A")
		b, bp := newProbe(j, "B")
		root.Activate(nil)

		root.OpenSubState(a)
		root.TryUpdate(0)
		root.OpenSubState(b)
		root.TryUpdate(0)
		assert.Equal(t, 1, ap.destroys, "replaced substate is destroyed")
		assert.Equal(t, 0, bp.destroys)

		root.Destroy()
		root.Destroy()
		assert.Equal(t, 1, ap.destroys)
		assert.Equal(t, 1, bp.destroys, "active substate is destroyed with its parent")
	})

	t.Run("retain_substates", func(t *testing.T) {
		j := &journal{}
		root, _ := newProbe(j, "R", WithDestroySubStates(false))
		a, ap := newProbe(j, "A")
		b, bp := newProbe(j, "B")
		root.Activate(nil)

		root.OpenSubState(a)
		root.TryUpdate(0)
		root.OpenSubState(b)
		root.TryUpdate(0)
		assert.Equal(t, 0, ap.destroys, "replaced substate is only detached")

		root.Destroy()
		assert.Equal(t, 0, ap.destroys)
		assert.Equal(t, 1, bp.destroys, "teardown ignores the retention policy")
		assert.False(t, a.Destroyed())
	})
}

func TestPendingTransitionSupersedesRecursion(t *testing.T) {
	j := &journal{}
	root, _ := newProbe(j, "R")
	a, ap := newProbe(j, "A")
	b, bp := newProbe(j, "B")
	root.Activate(nil)
	root.OpenSubState(a)
	root.TryUpdate(0)

	root.OpenSubState(b)
	j.reset()
	root.TryUpdate(0)

	assert.Equal(t, []string{"A.destroy", "B.create"}, j.entries)
	assert.Equal(t, 0, ap.updates)
	assert.Equal(t, 0, bp.updates)
}

func TestUpdateGating(t *testing.T) {
	tests := []struct {
		name             string
		persistentUpdate bool
		wantRootUpdates  int
		wantSwitches     int
	}{
		{"non_persistent", false, 1, 1},
		{"persistent", true, 3, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			j := &journal{}
			in := &switchCounter{}
			root, r := newProbe(j, "R", WithPersistentUpdate(tc.persistentUpdate))
			b, bp := newProbe(j, "B")
			root.Activate(&Env{Input: in})

			root.OpenSubState(b)
			for i := 0; i < 3; i++ {
				root.TryUpdate(0)
			}
			assert.Equal(t, tc.wantRootUpdates, r.updates)
			assert.Equal(t, 2, bp.updates)
			assert.Equal(t, tc.wantSwitches, in.n)
		})
	}
}

func TestUpdateRunsOnlyTopOfNonPersistentChain(t *testing.T) {
	j := &journal{}
	root, _ := newProbe(j, "R")
	mid, _ := newProbe(j, "M", WithPersistentUpdate(true))
	top, _ := newProbe(j, "T")
	root.Activate(nil)

	root.OpenSubState(mid)
	root.TryUpdate(0)
	mid.OpenSubState(top)
	root.TryUpdate(0)

	j.reset()
	root.TryUpdate(0)
	assert.Equal(t, []string{"M.update", "T.update"}, j.entries)
}

func TestDrawGating(t *testing.T) {
	tests := []struct {
		name           string
		persistentDraw bool
		want           []string
	}{
		{"persistent_draw", true, []string{"R.draw", "B.draw"}},
		{"hidden_parent", false, []string{"B.draw"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			j := &journal{}
			root, _ := newProbe(j, "R", WithPersistentDraw(tc.persistentDraw))
			b, _ := newProbe(j, "B")
			root.Activate(nil)
			root.OpenSubState(b)
			root.TryUpdate(0)

			j.reset()
			root.Draw(nil)
			assert.Equal(t, tc.want, j.entries)
		})
	}
}

func TestOwnUpdateDelegatesToWorld(t *testing.T) {
	j := &journal{}
	w := ecs.NewWorld()
	var got float64
	w.AddSystem(ecs.SystemFunc(func(_ *ecs.World, elapsed float64) {
		got = elapsed
		j.add("world.update")
	}))
	w.AddRenderer(ecs.RendererFunc(func(*ecs.World, *ebiten.Image) { j.add("world.draw") }))

	root, _ := newProbe(j, "R", WithWorld(w))
	root.Activate(nil)
	root.TryUpdate(0.25)
	root.Draw(nil)

	assert.Equal(t, []string{"R.create", "R.update", "world.update", "world.draw", "R.draw"}, j.entries)
	assert.Equal(t, 0.25, got)
	assert.Same(t, w, root.World())

	root.Destroy()
	assert.True(t, w.Destroyed())
}

func TestCreateMayOpenNestedSubstate(t *testing.T) {
	j := &journal{}
	root, _ := newProbe(j, "R")
	b, bp := newProbe(j, "B")
	c, _ := newProbe(j, "C")
	bp.onCreate = func() { b.OpenSubState(c) }
	root.Activate(nil)

	root.OpenSubState(b)
	root.TryUpdate(0)
	assert.True(t, b.PendingReset())
	assert.Nil(t, b.SubState())

	root.TryUpdate(0)
	assert.Equal(t, []*State{root, b, c}, root.Chain())
	assert.Same(t, b, c.Parent())
	assert.Same(t, c, root.Top())
}

func TestCloseCallbackMayStageNextRequest(t *testing.T) {
	j := &journal{}
	root, _ := newProbe(j, "R")
	a, _ := newProbe(j, "A")
	b, _ := newProbe(j, "B")
	root.Activate(nil)
	root.OpenSubState(a)
	root.TryUpdate(0)

	a.SetCloseCallback(func() { root.OpenSubState(b) })
	root.CloseSubState()
	root.TryUpdate(0)
	assert.Nil(t, root.SubState())
	assert.Same(t, b, root.RequestedSubState())

	root.TryUpdate(0)
	assert.Same(t, b, root.SubState())
}

func TestCloseFromSubstate(t *testing.T) {
	j := &journal{}
	root, _ := newProbe(j, "R", WithDestroySubStates(false))
	a, _ := newProbe(j, "A")
	b, _ := newProbe(j, "B")
	root.Activate(nil)

	a.Close()
	assert.False(t, root.PendingReset(), "inactive state cannot close itself")

	root.OpenSubState(a)
	root.TryUpdate(0)
	root.OpenSubState(b)
	root.TryUpdate(0)

	a.Close()
	assert.False(t, root.PendingReset(), "detached substate no longer owns the slot")

	b.Close()
	assert.True(t, root.PendingReset())
	root.TryUpdate(0)
	assert.Nil(t, root.SubState())
}

func TestResetSubStateAppliesImmediately(t *testing.T) {
	j := &journal{}
	root, r := newProbe(j, "R")
	b, _ := newProbe(j, "B")
	root.Activate(nil)

	root.OpenSubState(b)
	root.ResetSubState()
	assert.Same(t, b, root.SubState())
	assert.True(t, b.Created())
	assert.Equal(t, 0, r.updates)
}

func TestReopeningActiveSubstateIsNoop(t *testing.T) {
	j := &journal{}
	root, _ := newProbe(j, "R")
	b, bp := newProbe(j, "B")
	root.Activate(nil)
	root.OpenSubState(b)
	root.TryUpdate(0)

	root.OpenSubState(b)
	root.TryUpdate(0)
	assert.Same(t, b, root.SubState())
	assert.Equal(t, 0, bp.destroys)
	assert.False(t, root.PendingReset())
}

func TestDestroyCascadesDownward(t *testing.T) {
	j := &journal{}
	root, _ := newProbe(j, "R")
	b, _ := newProbe(j, "B")
	c, _ := newProbe(j, "C")
	d, _ := newProbe(j, "D")
	root.Activate(nil)
	root.OpenSubState(b)
	root.TryUpdate(0)
	b.OpenSubState(c)
	root.TryUpdate(0)
	c.OpenSubState(d) // staged only

	j.reset()
	root.Destroy()
	assert.Equal(t, []string{"C.destroy", "B.destroy", "R.destroy"}, j.entries)
	assert.Nil(t, root.SubState())
	assert.False(t, d.Destroyed(), "staged request was never activated")

	j.reset()
	root.TryUpdate(0)
	root.Draw(nil)
	assert.Empty(t, j.entries, "destroyed states are inert")
}

func TestBackgroundColorPassThrough(t *testing.T) {
	root := New(nil)
	assert.Equal(t, color.Transparent, root.BackgroundColor())
	root.SetBackgroundColor(color.White)

	cam := camera.New(320, 240, 1)
	root.Activate(&Env{Camera: cam})
	blue := color.NRGBA{B: 255, A: 255}
	root.SetBackgroundColor(blue)
	assert.Equal(t, blue, cam.BackgroundColor())
	assert.Equal(t, blue, root.BackgroundColor())
}

func TestSubstateInheritsEnv(t *testing.T) {
	env := &Env{Input: &switchCounter{}}
	root := New(nil)
	b := New(nil)
	own := &Env{}
	c := New(nil)
	c.env = own

	root.Activate(env)
	root.OpenSubState(b)
	root.TryUpdate(0)
	b.OpenSubState(c)
	root.TryUpdate(0)

	assert.Same(t, env, b.Env())
	assert.Same(t, own, c.Env())
}

type switcherFunc func(*State)

func (f switcherFunc) SwitchState(next *State) { f(next) }

func TestSwitchStateDelegatesToDriver(t *testing.T) {
	var got *State
	root := New(nil)
	next := New(nil)
	root.SwitchState(next)

	root.Activate(&Env{Switcher: switcherFunc(func(s *State) { got = s })})
	root.SwitchState(next)
	assert.Same(t, next, got)
}

func TestTransitionLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	root := New(nil, WithName("play"))
	b := New(nil, WithName("pause"))
	root.Activate(&Env{Logger: zap.New(core)})

	root.OpenSubState(b)
	root.TryUpdate(0)
	root.CloseSubState()
	root.TryUpdate(0)

	opened := logs.FilterMessage("substate opened").All()
	require.Len(t, opened, 1)
	fields := opened[0].ContextMap()
	assert.Equal(t, "play", fields["state"])
	assert.Equal(t, "pause", fields["opened"])
	assert.Equal(t, 1, logs.FilterMessage("substate closed").Len())
	assert.Equal(t, 1, logs.FilterMessage("state destroyed").Len())
}

func TestDump(t *testing.T) {
	root := New(nil, WithName("play"))
	b := New(nil, WithName("pause"))
	c := New(nil, WithName("confirm"))
	root.Activate(nil)
	root.OpenSubState(b)
	root.TryUpdate(0)
	b.OpenSubState(c)

	out := root.Dump()
	assert.Contains(t, out, "play [")
	assert.Contains(t, out, "\n  pause [")
	assert.Contains(t, out, "(pending: open confirm)")
	assert.Equal(t, "BaseHooks", New(nil).Name())
}
