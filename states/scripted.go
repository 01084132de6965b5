package states

import (
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/input"
	"github.com/milk9111/statestack/prefabs"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

// Scripted runs its create and update hooks from a tengo script named in the
// game spec. Script errors are logged and the state keeps running.
type Scripted struct {
	base
	path     string
	compiled *tengo.Compiled
	data     *tengo.Map
	engine   *tengo.ImmutableMap
	label    string
}

func newScripted(r *Registry, name string) (Bindable, error) {
	path := r.Spec().State(name).Script
	compiled, err := r.Scripts().Get(path)
	if err != nil {
		return nil, err
	}
	s := &Scripted{
		base:     newBase(r, name),
		path:     path,
		compiled: compiled,
		data:     &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.engine = s.buildEngine()
	return s, nil
}

// Label is the last text the script asked to show.
func (s *Scripted) Label() string { return s.label }

// Data is the script's persistent state map.
func (s *Scripted) Data() map[string]tengo.Object { return s.data.Value }

func (s *Scripted) Create() {
	s.applyBackground()
	if err := s.runPhase("create", 0); err != nil {
		s.log.Error("script create failed", zap.String("script", s.path), zap.Error(err))
	}
}

func (s *Scripted) Update(elapsed float64) {
	if err := s.runPhase("update", elapsed); err != nil {
		s.log.Error("script update failed", zap.String("script", s.path), zap.Error(err))
	}
}

func (s *Scripted) Draw(screen *ebiten.Image) {
	if s.label == "" {
		return
	}
	drawText(screen, 12, 60, colornames.Lightgreen, s.label)
}

func (s *Scripted) runPhase(phase string, elapsed float64) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.engine); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.data); err != nil {
		return err
	}
	if err := s.compiled.Set("__elapsed", elapsed); err != nil {
		return err
	}
	return s.compiled.Run()
}

func (s *Scripted) buildEngine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	stringFunc := func(name string, fn func(arg string) bool) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) < 1 {
				return tengo.FalseValue, nil
			}
			arg := strings.TrimSpace(objectAsString(args[0]))
			if arg == "" {
				return tengo.FalseValue, nil
			}
			return boolObject(fn(arg)), nil
		}}
	}

	stringFunc("open", s.open)
	stringFunc("switch", s.switchTo)
	stringFunc("pressed", func(a string) bool { return s.input().Pressed(input.Action(a)) })
	stringFunc("just_pressed", func(a string) bool { return s.input().JustPressed(input.Action(a)) })
	stringFunc("log", func(msg string) bool {
		s.log.Info(msg, zap.String("script", s.path))
		return true
	})
	stringFunc("background", func(v string) bool {
		clr, err := prefabs.ParseColor(v)
		if err != nil {
			s.log.Warn("script background", zap.Error(err))
			return false
		}
		s.self.SetBackgroundColor(clr)
		return true
	})

	values["close"] = &tengo.UserFunction{Name: "close", Value: func(...tengo.Object) (tengo.Object, error) {
		s.self.Close()
		return tengo.TrueValue, nil
	}}

	values["label"] = &tengo.UserFunction{Name: "label", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		s.label = strings.Join(parts, " ")
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
