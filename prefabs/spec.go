package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/milk9111/statestack/input"
	"github.com/milk9111/statestack/state"
	"gopkg.in/yaml.v3"
)

// GameSpecFile is the spec the driver starts from.
const GameSpecFile = "game.yaml"

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

type GameSpec struct {
	Title      string               `yaml:"title" validate:"required"`
	Width      int                  `yaml:"width" validate:"min=64"`
	Height     int                  `yaml:"height" validate:"min=64"`
	MaxDelta   float64              `yaml:"max_delta" validate:"gt=0,lte=1"`
	Start      string               `yaml:"start" validate:"required"`
	Background YAMLColor            `yaml:"background"`
	Debug      bool                 `yaml:"debug"`
	Bindings   map[string][]string  `yaml:"bindings" validate:"dive,keys,required,endkeys,min=1,dive,required"`
	States     map[string]StateSpec `yaml:"states" validate:"dive,keys,required,endkeys"`
	Physics    PhysicsSpec          `yaml:"physics"`
}

// StateSpec overrides the flags and look of one named state. Unset flags keep
// the state package defaults.
type StateSpec struct {
	PersistentUpdate *bool     `yaml:"persistent_update"`
	PersistentDraw   *bool     `yaml:"persistent_draw"`
	DestroySubStates *bool     `yaml:"destroy_substates"`
	Background       YAMLColor `yaml:"background"`
	Overlay          YAMLColor `yaml:"overlay"`
	Script           string    `yaml:"script" validate:"omitempty,endswith=.tengo"`
}

type PhysicsSpec struct {
	Gravity    float64 `yaml:"gravity"`
	Bodies     int     `yaml:"bodies" validate:"min=0,max=512"`
	Radius     float64 `yaml:"radius" validate:"gte=0"`
	Elasticity float64 `yaml:"elasticity" validate:"gte=0,lte=1"`
}

var validate = validator.New()

// LoadGameSpec reads, parses and validates the named spec.
func LoadGameSpec(filename string) (*GameSpec, error) {
	data, err := Load(filename)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	spec, err := ParseGameSpec(data)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

// ParseGameSpec decodes and validates a spec document.
func ParseGameSpec(data []byte) (*GameSpec, error) {
	var spec GameSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := validate.Struct(&spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	for name, st := range spec.States {
		if err := validate.Struct(&st); err != nil {
			return nil, fmt.Errorf("%w: state %s: %v", ErrInvalidSpec, name, err)
		}
	}
	if _, err := spec.InputBindings(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return &spec, nil
}

// InputBindings resolves the key names in the spec.
func (g *GameSpec) InputBindings() (input.Bindings, error) {
	if len(g.Bindings) == 0 {
		return input.DefaultBindings(), nil
	}
	out := make(input.Bindings, len(g.Bindings))
	for action, names := range g.Bindings {
		for _, name := range names {
			k, err := input.ParseKey(name)
			if err != nil {
				return nil, fmt.Errorf("binding %q: %w", action, err)
			}
			out[input.Action(action)] = append(out[input.Action(action)], k)
		}
	}
	return out, nil
}

// State returns the spec for name, or an empty spec.
func (g *GameSpec) State(name string) StateSpec {
	if g == nil {
		return StateSpec{}
	}
	return g.States[name]
}

// Options converts the spec into state options.
func (s StateSpec) Options() []state.Option {
	var opts []state.Option
	if s.PersistentUpdate != nil {
		opts = append(opts, state.WithPersistentUpdate(*s.PersistentUpdate))
	}
	if s.PersistentDraw != nil {
		opts = append(opts, state.WithPersistentDraw(*s.PersistentDraw))
	}
	if s.DestroySubStates != nil {
		opts = append(opts, state.WithDestroySubStates(*s.DestroySubStates))
	}
	if s.Overlay.Color != nil {
		opts = append(opts, state.WithOverlay(s.Overlay.Color))
	}
	return opts
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	clr, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = clr
	return nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(v string) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "#")

	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", v)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return color.NRGBA{}, err
	}
	g, err := parse(2)
	if err != nil {
		return color.NRGBA{}, err
	}
	b, err := parse(4)
	if err != nil {
		return color.NRGBA{}, err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return color.NRGBA{}, err
		}
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
