package main

import (
	"errors"
	"image"
	"testing"

	"github.com/ushitora-anqou/gameform/audio"
	"github.com/ushitora-anqou/gameform/config"
	"github.com/ushitora-anqou/gameform/game"
	"github.com/ushitora-anqou/gameform/input"
	"github.com/ushitora-anqou/gameform/joypad"
	"github.com/ushitora-anqou/gameform/loop"
	"github.com/ushitora-anqou/gameform/render"
	"github.com/ushitora-anqou/gameform/vector"
	"github.com/ushitora-anqou/gameform/window"
)

type demoFixture struct {
	demo   *Demo
	game   *game.Game
	wind   *window.Headless
	canvas *render.Canvas
	mixer  *audio.Mixer
}

func newDemoFixture(t *testing.T) *demoFixture {
	t.Helper()
	canvas, err := render.NewCanvas(64, 64)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	wind, err := window.NewHeadless(canvas, window.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewHeadless: %v", err)
	}
	pad, err := joypad.New(nil)
	if err != nil {
		t.Fatalf("joypad.New: %v", err)
	}
	mixer := audio.NewMixer()
	if err := loadClips(mixer, config.Default(), nil); err != nil {
		t.Fatalf("loadClips: %v", err)
	}

	demo, err := NewDemo(canvas, pad, mixer, nil)
	if err != nil {
		t.Fatalf("NewDemo: %v", err)
	}
	g, err := game.New(loop.DefaultConfig(), wind, demo)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	if err := demo.Attach(g); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return &demoFixture{demo, g, wind, canvas, mixer}
}

func (f *demoFixture) step() {
	f.game.Input().Advance()
	f.demo.Update(f.game, 16)
}

func TestDemoFire(t *testing.T) {
	f := newDemoFixture(t)

	f.wind.KeyDown(input.Letter('k'))
	f.step()
	if f.demo.Fired() != 1 || len(f.game.Objects()) != 2 {
		t.Fatalf("fired %d, %d objects", f.demo.Fired(), len(f.game.Objects()))
	}
	if f.mixer.Playing(shotClip) != 1 {
		t.Fatal("shot sound not playing")
	}

	f.step()
	if f.demo.Fired() != 1 {
		t.Fatal("holding the button fired again")
	}
}

func TestDemoMouseAndWheel(t *testing.T) {
	f := newDemoFixture(t)

	f.wind.MouseDown(input.MouseLeft, 5, 6)
	f.wind.Wheel(-240)
	f.step()
	if f.demo.ship.Position != vector.New(5, 6) {
		t.Fatalf("ship at %v after click", f.demo.ship.Position)
	}
	if f.mixer.Volume() != 90 {
		t.Fatalf("volume = %d after two notches down", f.mixer.Volume())
	}

	f.wind.KeyDown(input.KeyLControl)
	f.wind.KeyDown(input.Letter('r'))
	f.step()
	if f.demo.ship.Position != vector.New(32, 32) {
		t.Fatalf("Ctrl+R left the ship at %v", f.demo.ship.Position)
	}
}

func TestDemoDraw(t *testing.T) {
	f := newDemoFixture(t)
	f.demo.Draw(f.game)
	f.canvas.Invalidate()
	f.canvas.Present(func(frame *image.RGBA) {
		if got := frame.RGBAAt(32, 32); got != shipColor {
			t.Fatalf("ship pixel = %v", got)
		}
		if got := frame.RGBAAt(0, 63); got != background {
			t.Fatalf("background pixel = %v", got)
		}
	})
}

func TestLoadClips(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.Clips = []config.ClipConfig{{Name: "music", Path: "music.wav", Loop: true}}

	m := audio.NewMixer()
	var loaded []string
	load := func(path string) (*audio.Clip, error) {
		loaded = append(loaded, path)
		return audio.NewClip(make([]float32, 4)), nil
	}
	if err := loadClips(m, cfg, load); err != nil {
		t.Fatalf("loadClips: %v", err)
	}
	if !m.Has("music") || !m.Has(shotClip) || len(loaded) != 1 {
		t.Fatalf("clips not added, loaded %v", loaded)
	}

	failing := func(string) (*audio.Clip, error) { return nil, audio.ErrInvalidArgument }
	if err := loadClips(audio.NewMixer(), cfg, failing); !errors.Is(err, audio.ErrInvalidArgument) {
		t.Fatalf("loadClips error = %v", err)
	}
}
