// Package states holds the concrete states of the demo game and the registry
// that builds them by name.
package states

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/statestack/camera"
	"github.com/milk9111/statestack/input"
	"github.com/milk9111/statestack/prefabs"
	"github.com/milk9111/statestack/state"
	"go.uber.org/zap"
)

var ErrUnknownState = errors.New("states: unknown state")

// Bindable hooks learn which State wraps them once it is built.
type Bindable interface {
	state.Hooks
	Bind(s *state.State)
}

// Factory builds the hooks for the state registered under name.
type Factory func(r *Registry, name string) (Bindable, error)

// Deps are shared by every state the registry builds. Camera and Scripts may
// be nil.
type Deps struct {
	Spec    *prefabs.GameSpec
	Input   *input.Input
	Camera  *camera.Camera
	Logger  *zap.Logger
	Scripts *ScriptCache
}

type Registry struct {
	deps      Deps
	factories map[string]Factory
}

// NewRegistry registers the built-in states. A state that only appears in the
// game spec with a script is built as a scripted state.
func NewRegistry(deps Deps) *Registry {
	if deps.Spec == nil {
		deps.Spec = &prefabs.GameSpec{}
	}
	if deps.Input == nil {
		deps.Input = input.New(nil, nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Scripts == nil {
		deps.Scripts = NewScriptCache(0)
	}
	r := &Registry{deps: deps, factories: make(map[string]Factory)}
	r.Register("menu", newMenu)
	r.Register("play", newPlay)
	r.Register("pause", newPause)
	r.Register("confirm", newConfirm)
	return r
}

func (r *Registry) Register(name string, f Factory) { r.factories[name] = f }

func (r *Registry) Spec() *prefabs.GameSpec        { return r.deps.Spec }
func (r *Registry) Input() *input.Input            { return r.deps.Input }
func (r *Registry) Camera() *camera.Camera         { return r.deps.Camera }
func (r *Registry) Logger() *zap.Logger            { return r.deps.Logger }
func (r *Registry) Scripts() *ScriptCache          { return r.deps.Scripts }
func (r *Registry) SetSpec(spec *prefabs.GameSpec) { r.deps.Spec = spec }

// Names lists every state the registry can build.
func (r *Registry) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for name := range r.factories {
		seen[name] = true
		out = append(out, name)
	}
	for name, st := range r.deps.Spec.States {
		if st.Script != "" && !seen[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Build creates a fresh, inactive state. Flags and overlay come from the game spec
// entry of the same name.
func (r *Registry) Build(name string) (*state.State, error) {
	spec := r.deps.Spec.State(name)
	f, ok := r.factories[name]
	if !ok {
		if spec.Script == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownState, name)
		}
		f = newScripted
	}

	hooks, err := f(r, name)
	if err != nil {
		return nil, fmt.Errorf("states: build %s: %w", name, err)
	}
	opts := append([]state.Option{state.WithName(name)}, spec.Options()...)
	s := state.New(hooks, opts...)
	hooks.Bind(s)
	return s, nil
}

// Reload applies an on-disk change and rebuilds the state named current.
func (r *Registry) Reload(c prefabs.Change, current string) (*state.State, error) {
	switch c.Kind {
	case prefabs.ChangeSpec:
		spec, err := prefabs.LoadGameSpec(prefabs.GameSpecFile)
		if err != nil {
			return nil, err
		}
		r.SetSpec(spec)
		if bindings, err := spec.InputBindings(); err == nil {
			r.deps.Input.SetBindings(bindings)
		}
	case prefabs.ChangeScript:
		r.deps.Scripts.Purge()
	}
	return r.Build(current)
}
