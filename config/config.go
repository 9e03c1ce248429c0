package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/ushitora-anqou/gameform/constant"
	"github.com/ushitora-anqou/gameform/loop"
	"github.com/ushitora-anqou/gameform/util"
	"github.com/ushitora-anqou/gameform/window"
)

// EnvPrefix prefixes every environment override, e.g. GAMEFORM_LOOP_SIMULATE_HZ.
const EnvPrefix = "GAMEFORM_"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Loop     LoopConfig    `yaml:"loop" envPrefix:"LOOP_"`
	Window   WindowConfig  `yaml:"window" envPrefix:"WINDOW_"`
	Logging  LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
	Input    InputConfig   `yaml:"input" envPrefix:"INPUT_"`
	Audio    AudioConfig   `yaml:"audio" envPrefix:"AUDIO_"`
	FormData string        `yaml:"form_data" env:"FORM_DATA"`
}

type LoopConfig struct {
	SimulateHz float64       `yaml:"simulate_hz" env:"SIMULATE_HZ"`
	RenderHz   float64       `yaml:"render_hz" env:"RENDER_HZ"`
	FixedStep  bool          `yaml:"fixed_step" env:"FIXED_STEP"`
	MaxCatchUp int           `yaml:"max_catch_up" env:"MAX_CATCH_UP"`
	IdleSleep  time.Duration `yaml:"idle_sleep" env:"IDLE_SLEEP"`
}

type WindowConfig struct {
	Title      string  `yaml:"title" env:"TITLE"`
	Width      int     `yaml:"width" env:"WIDTH"`
	Height     int     `yaml:"height" env:"HEIGHT"`
	Scale      int     `yaml:"scale" env:"SCALE"`
	PresentFPS float64 `yaml:"present_fps" env:"PRESENT_FPS"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file" env:"FILE"`
	Trace  bool   `yaml:"trace" env:"TRACE"`
}

type InputConfig struct {
	// Bindings maps joypad buttons to key names, e.g. {a: "Ctrl+Z"}.
	Bindings map[string]string `yaml:"bindings" env:"BINDINGS"`
}

type AudioConfig struct {
	Volume int          `yaml:"volume" env:"VOLUME"`
	Clips  []ClipConfig `yaml:"clips"`
}

type ClipConfig struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	OneInstance bool   `yaml:"one_instance"`
	Loop        bool   `yaml:"loop"`
}

func Default() *Config {
	lc := loop.DefaultConfig()
	wc := window.DefaultConfig()
	return &Config{
		Loop: LoopConfig{
			SimulateHz: lc.SimulateHz,
			RenderHz:   lc.RenderHz,
			FixedStep:  lc.FixedStep,
			MaxCatchUp: lc.MaxCatchUp,
			IdleSleep:  lc.IdleSleep,
		},
		Window: WindowConfig{
			Title:      wc.Title,
			Width:      constant.CANVAS_WIDTH,
			Height:     constant.CANVAS_HEIGHT,
			Scale:      wc.Scale,
			PresentFPS: wc.PresentFPS,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Audio:   AudioConfig{Volume: constant.MAX_VOLUME},
	}
}

// Load reads the YAML file at path over the defaults, applies GAMEFORM_*
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv applies GAMEFORM_* environment variables to target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.LoopConfig().Validate(); err != nil {
		return err
	}
	if err := c.WindowConfig().Validate(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	switch c.Logging.Format {
	case "console", "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Logging.Format)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > constant.MAX_VOLUME {
		return fmt.Errorf("%w: volume must be in [0, %d], got %d", ErrInvalid, constant.MAX_VOLUME, c.Audio.Volume)
	}
	seen := map[string]bool{}
	for i, clip := range c.Audio.Clips {
		if clip.Name == "" || clip.Path == "" {
			return fmt.Errorf("%w: audio clip %d needs a name and a path", ErrInvalid, i)
		}
		if seen[clip.Name] {
			return fmt.Errorf("%w: duplicate audio clip %q", ErrInvalid, clip.Name)
		}
		seen[clip.Name] = true
	}
	return nil
}

func (c *Config) LoopConfig() loop.Config {
	return loop.Config{
		SimulateHz: c.Loop.SimulateHz,
		RenderHz:   c.Loop.RenderHz,
		FixedStep:  c.Loop.FixedStep,
		MaxCatchUp: c.Loop.MaxCatchUp,
		IdleSleep:  c.Loop.IdleSleep,
	}
}

func (c *Config) WindowConfig() window.Config {
	return window.Config{
		Title:      c.Window.Title,
		Scale:      c.Window.Scale,
		PresentFPS: c.Window.PresentFPS,
	}
}

// LogConfig opens the log file if one is configured. The caller closes
// the returned file.
func (c *Config) LogConfig() (util.LogConfig, *os.File, error) {
	lc := util.LogConfig{Level: c.Logging.Level, Format: c.Logging.Format}
	if c.Logging.File == "" {
		return lc, nil, nil
	}
	f, err := os.OpenFile(c.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return lc, nil, fmt.Errorf("open log file: %w", err)
	}
	lc.Output = f
	return lc, f, nil
}
