//go:build sdl2

package main

import (
	"context"
	"runtime"

	"github.com/ushitora-anqou/gameform/audio"
	"github.com/ushitora-anqou/gameform/config"
	"github.com/ushitora-anqou/gameform/render"
	"github.com/ushitora-anqou/gameform/window"
	"github.com/veandco/go-sdl2/sdl"
)

// SDL wants its window and event pump on the main thread.
func init() {
	runtime.LockOSThread()
}

func runBackend(ctx context.Context, cfg *config.Config, canvas *render.Canvas, mixer *audio.Mixer) error {
	// Initialize SDL
	if err := window.SDLInitialize(); err != nil {
		return err
	}
	defer sdl.Quit()

	if err := loadClips(mixer, cfg, audio.LoadWAV); err != nil {
		return err
	}

	// Create a window
	wind, err := window.NewSDLWindow(canvas, cfg.WindowConfig())
	if err != nil {
		return err
	}
	defer wind.Destroy()

	device, err := audio.OpenDevice(mixer)
	if err != nil {
		return err
	}
	defer device.Close()

	return play(ctx, cfg, canvas, wind, mixer)
}
