package input

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	down []ebiten.Key
}

func (f *fakeSource) AppendPressedKeys(keys []ebiten.Key) []ebiten.Key {
	return append(keys, f.down...)
}

func TestJustPressedIsEdgeTriggered(t *testing.T) {
	src := &fakeSource{}
	in := New(src, nil)

	src.down = []ebiten.Key{ebiten.KeyEnter}
	in.Update()
	assert.True(t, in.JustPressed(ActionConfirm))
	assert.True(t, in.Pressed(ActionConfirm))

	in.Update()
	assert.False(t, in.JustPressed(ActionConfirm))
	assert.True(t, in.Pressed(ActionConfirm))

	src.down = nil
	in.Update()
	assert.False(t, in.Pressed(ActionConfirm))
	assert.True(t, in.JustReleased(ActionConfirm))
}

func TestOnStateSwitchSuppressesHeldKeys(t *testing.T) {
	src := &fakeSource{down: []ebiten.Key{ebiten.KeyP}}
	in := New(src, nil)
	in.Update()
	require.True(t, in.JustPressed(ActionPause))

	in.OnStateSwitch()
	assert.False(t, in.JustPressed(ActionPause))
	assert.False(t, in.Pressed(ActionPause))

	// still held next frame: stays silent
	in.Update()
	assert.False(t, in.JustPressed(ActionPause))
	assert.False(t, in.Pressed(ActionPause))

	// release then press again
	src.down = nil
	in.Update()
	src.down = []ebiten.Key{ebiten.KeyP}
	in.Update()
	assert.True(t, in.JustPressed(ActionPause))
}

func TestCustomBindings(t *testing.T) {
	src := &fakeSource{down: []ebiten.Key{ebiten.KeyQ}}
	in := New(src, Bindings{ActionCancel: {ebiten.KeyQ}})
	in.Update()
	assert.True(t, in.JustPressed(ActionCancel))
	assert.False(t, in.Pressed(ActionConfirm))
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("Space")
	require.NoError(t, err)
	assert.Equal(t, ebiten.KeySpace, k)

	_, err = ParseKey("NotAKey")
	assert.Error(t, err)
}
