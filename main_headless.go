//go:build !sdl2 && !ebiten

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/ushitora-anqou/gameform/audio"
	"github.com/ushitora-anqou/gameform/config"
	"github.com/ushitora-anqou/gameform/constant"
	"github.com/ushitora-anqou/gameform/input"
	"github.com/ushitora-anqou/gameform/render"
	"github.com/ushitora-anqou/gameform/window"
)

func runBackend(ctx context.Context, cfg *config.Config, canvas *render.Canvas, mixer *audio.Mixer) error {
	if err := loadClips(mixer, cfg, nil); err != nil {
		return err
	}
	wind, err := window.NewHeadless(canvas, cfg.WindowConfig(), nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go drainAudio(ctx, mixer)
	go autopilot(ctx, wind)

	slog.Info("Running headless", "width", cfg.Window.Width, "height", cfg.Window.Height)
	err = play(ctx, cfg, canvas, wind, mixer)
	slog.Info("Presented frames", "frames", wind.Frames())
	return err
}

// drainAudio pulls the mixer at the pace of a real device.
func drainAudio(ctx context.Context, mixer *audio.Mixer) {
	buf := make([]float32, constant.AUDIO_SAMPLES*constant.CHANNELS)
	ticker := time.NewTicker(time.Second * constant.AUDIO_SAMPLES / constant.AUDIO_FREQ)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mixer.Mix(buf)
		}
	}
}

// autopilot flies the ship in circles and fires every second.
func autopilot(ctx context.Context, wind *window.Headless) {
	thrust, turn, fire := input.Letter('w'), input.Letter('d'), input.Letter('k')
	wind.KeyDown(thrust)
	wind.KeyDown(turn)
	defer wind.KeyUp(thrust)
	defer wind.KeyUp(turn)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wind.KeyDown(fire)
			time.Sleep(100 * time.Millisecond)
			wind.KeyUp(fire)
		}
	}
}
