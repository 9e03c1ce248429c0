package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/ushitora-anqou/gameform/audio"
	"github.com/ushitora-anqou/gameform/config"
	"github.com/ushitora-anqou/gameform/formdata"
	"github.com/ushitora-anqou/gameform/game"
	"github.com/ushitora-anqou/gameform/joypad"
	"github.com/ushitora-anqou/gameform/render"
	"github.com/ushitora-anqou/gameform/util"
	"github.com/ushitora-anqou/gameform/window"
)

const stopTimeout = time.Second

var (
	configPath = flag.String("config", "", "path to a YAML config file")
	formPath   = flag.String("form", "", "path to a form data XML file, overriding form_data")
	duration   = flag.Duration("duration", 0, "quit after this long, 0 to run until the window closes")
)

// clipLoader decodes an audio file for the running backend. nil means the
// backend cannot load files.
type clipLoader func(path string) (*audio.Clip, error)

func loadClips(m *audio.Mixer, cfg *config.Config, load clipLoader) error {
	if err := m.Add(shotClip, beep(880, 80), audio.Options{OneInstance: true}); err != nil {
		return err
	}
	for _, c := range cfg.Audio.Clips {
		if load == nil {
			slog.Warn("This backend cannot load audio files, skipping clip", "clip", c.Name)
			continue
		}
		clip, err := load(c.Path)
		if err != nil {
			return fmt.Errorf("load clip %s: %w", c.Name, err)
		}
		if m.Has(c.Name) {
			m.Remove(c.Name)
		}
		if err := m.Add(c.Name, clip, audio.Options{OneInstance: c.OneInstance, Loop: c.Loop}); err != nil {
			return err
		}
	}
	return nil
}

// play runs the demo on wind until the window closes or ctx is done. The
// game loop runs on its own goroutine while wind.Run owns the calling one.
func play(ctx context.Context, cfg *config.Config, canvas *render.Canvas, wind window.Window, mixer *audio.Mixer) error {
	pad, err := joypad.New(cfg.Input.Bindings)
	if err != nil {
		return err
	}

	var forms *formdata.Reader
	if path := cfg.FormData; path != "" {
		forms, err = formdata.Open(path)
		if err != nil {
			return err
		}
		defer forms.Close()
	}

	demo, err := NewDemo(canvas, pad, mixer, forms)
	if err != nil {
		return err
	}
	g, err := game.New(cfg.LoopConfig(), wind, demo)
	if err != nil {
		return err
	}
	if err := demo.Attach(g); err != nil {
		return err
	}
	if err := g.RegisterSurface(canvas); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := g.Start(loopCtx); err != nil {
		return err
	}
	go func() {
		<-g.Scheduler().Done()
		wind.Close()
	}()

	runErr := wind.Run(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	stopErr := g.Close(stopCtx)

	st := g.Scheduler().Stats()
	slog.Info("Finished",
		"simulate_ticks", st.SimulateTicks,
		"render_ticks", st.RenderTicks,
		"shots", demo.Fired())
	return errors.Join(runErr, stopErr)
}

func run() error {
	flag.Parse()

	if filename := os.Getenv("GAMEFORM_CPUPROFILE"); filename != "" {
		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := pprof.StartCPUProfile(file); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *formPath != "" {
		cfg.FormData = *formPath
	}

	lc, logFile, err := cfg.LogConfig()
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	util.InitLogger(lc)
	if cfg.Logging.Trace {
		util.EnableTrace()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if *duration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, *duration)
		defer cancelTimeout()
	}

	canvas, err := render.NewCanvas(cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return err
	}
	mixer := audio.NewMixer()
	mixer.SetVolume(cfg.Audio.Volume)

	return runBackend(ctx, cfg, canvas, mixer)
}

func main() {
	if err := run(); err != nil {
		slog.Error("gameform failed", "error", err)
		os.Exit(1)
	}
}
