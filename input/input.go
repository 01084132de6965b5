// Package input turns raw key state into named actions with edge detection.
package input

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action names something the player can do, independent of the key bound to it.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
	ActionPause   Action = "pause"
	ActionLeft    Action = "left"
	ActionRight   Action = "right"
	ActionJump    Action = "jump"
	ActionYes     Action = "yes"
	ActionNo      Action = "no"
	ActionHUD     Action = "hud"
	ActionDump    Action = "dump"
)

// Bindings maps an action to the keys that trigger it.
type Bindings map[Action][]ebiten.Key

// DefaultBindings is used when the game spec has no bindings.
func DefaultBindings() Bindings {
	return Bindings{
		ActionConfirm: {ebiten.KeyEnter, ebiten.KeySpace},
		ActionCancel:  {ebiten.KeyEscape, ebiten.KeyBackspace},
		ActionPause:   {ebiten.KeyP, ebiten.KeyEscape},
		ActionLeft:    {ebiten.KeyA, ebiten.KeyArrowLeft},
		ActionRight:   {ebiten.KeyD, ebiten.KeyArrowRight},
		ActionJump:    {ebiten.KeySpace, ebiten.KeyW, ebiten.KeyArrowUp},
		ActionYes:     {ebiten.KeyY},
		ActionNo:      {ebiten.KeyN},
		ActionHUD:     {ebiten.KeyF1},
		ActionDump:    {ebiten.KeyF2},
	}
}

// ParseKey resolves a key name such as "Space", "ArrowLeft" or "F1".
func ParseKey(name string) (ebiten.Key, error) {
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("input: unknown key %q: %w", name, err)
	}
	return k, nil
}

// Source reports which keys are physically held this frame.
type Source interface {
	AppendPressedKeys(keys []ebiten.Key) []ebiten.Key
}

// EbitenSource reads the keyboard through ebiten.
type EbitenSource struct{}

func (EbitenSource) AppendPressedKeys(keys []ebiten.Key) []ebiten.Key {
	return inpututil.AppendPressedKeys(keys)
}

// Input holds per-frame action state. Update must run once per frame before
// any state reads it.
type Input struct {
	src      Source
	bindings Bindings
	keys     []ebiten.Key

	held map[Action]bool
	prev map[Action]bool
	// suppressed actions were held across a state switch; they read as
	// released until the player lets go of them.
	suppressed map[Action]bool
}

// New creates an Input. A nil source reads from ebiten; nil bindings fall
// back to DefaultBindings.
func New(src Source, bindings Bindings) *Input {
	if src == nil {
		src = EbitenSource{}
	}
	i := &Input{
		src:        src,
		held:       make(map[Action]bool),
		prev:       make(map[Action]bool),
		suppressed: make(map[Action]bool),
	}
	i.SetBindings(bindings)
	return i
}

// SetBindings replaces the action map.
func (i *Input) SetBindings(b Bindings) {
	if len(b) == 0 {
		b = DefaultBindings()
	}
	i.bindings = b
}

// Update polls the source and refreshes action state.
func (i *Input) Update() {
	i.keys = i.src.AppendPressedKeys(i.keys[:0])

	down := make(map[ebiten.Key]bool, len(i.keys))
	for _, k := range i.keys {
		down[k] = true
	}

	i.prev, i.held = i.held, i.prev
	clear(i.held)
	for action, keys := range i.bindings {
		for _, k := range keys {
			if down[k] {
				i.held[action] = true
				break
			}
		}
	}
	for action := range i.suppressed {
		if !i.held[action] {
			delete(i.suppressed, action)
		}
	}
}

// Pressed reports whether the action is held.
func (i *Input) Pressed(a Action) bool {
	return i.held[a] && !i.suppressed[a]
}

// JustPressed reports whether the action went down this frame.
func (i *Input) JustPressed(a Action) bool {
	return i.held[a] && !i.prev[a] && !i.suppressed[a]
}

// JustReleased reports whether the action went up this frame.
func (i *Input) JustReleased(a Action) bool {
	return !i.held[a] && i.prev[a]
}

// OnStateSwitch releases every action so a key press consumed by the old
// state cannot trigger the new one. Held keys stay silent until released.
func (i *Input) OnStateSwitch() {
	for action, down := range i.held {
		if down {
			i.suppressed[action] = true
		}
	}
	clear(i.prev)
	for action, down := range i.held {
		i.prev[action] = down
	}
}
