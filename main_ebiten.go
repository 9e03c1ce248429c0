//go:build ebiten && !sdl2

package main

import (
	"context"

	"github.com/ushitora-anqou/gameform/audio"
	"github.com/ushitora-anqou/gameform/config"
	"github.com/ushitora-anqou/gameform/render"
	"github.com/ushitora-anqou/gameform/window"
)

func runBackend(ctx context.Context, cfg *config.Config, canvas *render.Canvas, mixer *audio.Mixer) error {
	if err := loadClips(mixer, cfg, audio.LoadWAV); err != nil {
		return err
	}

	wind, err := window.NewEbitenWindow(canvas, cfg.WindowConfig())
	if err != nil {
		return err
	}

	player, err := audio.NewEbitenPlayer(mixer)
	if err != nil {
		return err
	}
	defer player.Close()

	return play(ctx, cfg, canvas, wind, mixer)
}
