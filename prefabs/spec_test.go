package prefabs

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/statestack/input"
	"github.com/milk9111/statestack/state"
)

func TestLoadEmbeddedGameSpec(t *testing.T) {
	spec, err := LoadGameSpec(GameSpecFile)
	if err != nil {
		t.Fatalf("load embedded spec: %v", err)
	}
	if spec.Start != "menu" {
		t.Fatalf("expected start state menu, got %q", spec.Start)
	}
	if spec.MaxDelta <= 0 {
		t.Fatalf("expected positive max_delta, got %v", spec.MaxDelta)
	}

	play := spec.State("play")
	if play.PersistentUpdate == nil || *play.PersistentUpdate {
		t.Fatalf("play must disable persistent_update")
	}
	if spec.State("pause").Overlay.Color == nil {
		t.Fatalf("pause overlay missing")
	}
	if got := spec.State("hud").Script; got != "hud.tengo" {
		t.Fatalf("expected hud script, got %q", got)
	}

	b, err := spec.InputBindings()
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}
	if keys := b[input.ActionHUD]; len(keys) != 1 || keys[0] != ebiten.KeyF1 {
		t.Fatalf("unexpected hud binding %v", keys)
	}
}

func TestDiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	old := DiskDir
	DiskDir = dir
	t.Cleanup(func() { DiskDir = old })

	doc := "title: override\nwidth: 320\nheight: 240\nmax_delta: 0.05\nstart: play\n"
	if err := os.WriteFile(filepath.Join(dir, GameSpecFile), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadGameSpec("prefabs/" + GameSpecFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Title != "override" || spec.Start != "play" {
		t.Fatalf("disk copy not used: %+v", spec)
	}
	if _, ok := ModTime(GameSpecFile); !ok {
		t.Fatalf("expected mod time for disk copy")
	}
	b, err := spec.InputBindings()
	if err != nil || len(b[input.ActionConfirm]) == 0 {
		t.Fatalf("expected default bindings, got %v err=%v", b, err)
	}
}

func TestParseGameSpecErrors(t *testing.T) {
	base := "title: t\nwidth: 320\nheight: 240\nmax_delta: 0.1\nstart: menu\n"
	cases := []struct {
		name    string
		doc     string
		invalid bool
	}{
		{"missing_start", "title: t\nwidth: 320\nheight: 240\nmax_delta: 0.1\n", true},
		{"tiny_window", "title: t\nwidth: 10\nheight: 240\nmax_delta: 0.1\nstart: menu\n", true},
		{"zero_delta", "title: t\nwidth: 320\nheight: 240\nmax_delta: 0\nstart: menu\n", true},
		{"unknown_key", base + "bindings:\n  jump: [NotAKey]\n", true},
		{"empty_binding", base + "bindings:\n  jump: []\n", true},
		{"bad_script", base + "states:\n  hud:\n    script: hud.lua\n", true},
		{"bad_color", base + "background: \"#12\"\n", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseGameSpec([]byte(c.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, ErrInvalidSpec); got != c.invalid {
				t.Fatalf("ErrInvalidSpec=%v, want %v: %v", got, c.invalid, err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#14181f", color.NRGBA{R: 0x14, G: 0x18, B: 0x1f, A: 0xff}, true},
		{"000000a0", color.NRGBA{A: 0xa0}, true},
		{"#fff", color.NRGBA{}, false},
		{"#gg0000", color.NRGBA{}, false},
	}
	for _, c := range cases {
		got, err := ParseColor(c.in)
		if (err == nil) != c.ok {
			t.Fatalf("%s: unexpected error state %v", c.in, err)
		}
		if c.ok && got != c.want {
			t.Fatalf("%s: got %v want %v", c.in, got, c.want)
		}
	}
}

func TestStateSpecOptions(t *testing.T) {
	off := false
	spec := StateSpec{
		PersistentUpdate: &off,
		DestroySubStates: &off,
		Overlay:          YAMLColor{color.NRGBA{A: 0x80}},
	}
	s := state.New(nil, spec.Options()...)
	if s.PersistentUpdate || s.DestroySubStates {
		t.Fatalf("flags not applied: %+v", s)
	}
	if !s.PersistentDraw {
		t.Fatalf("unset flag must keep its default")
	}
}

func TestLoadScript(t *testing.T) {
	for _, name := range []string{"hud.tengo", "scripts/hud.tengo", "prefabs/scripts/hud.tengo"} {
		src, err := LoadScript(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !strings.Contains(string(src), "update :=") {
			t.Fatalf("%s: unexpected script body", name)
		}
	}
	if _, err := LoadScript("missing.tengo"); err == nil {
		t.Fatalf("expected error for missing script")
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "hud.tengo"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-w.Changes:
		if c.Kind != ChangeScript || filepath.Base(c.Path) != "hud.tengo" {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no change reported")
	}
}
