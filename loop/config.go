package loop

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ushitora-anqou/gameform/constant"
)

var (
	ErrInvalidConfig   = errors.New("invalid loop config")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStopTimeout     = errors.New("loop did not stop in time")
	ErrCallbackPanic   = errors.New("loop callback panicked")
	ErrAlreadyRunning  = errors.New("loop is already running")
)

const defaultMaxCatchUp = 5

type Config struct {
	// SimulateHz and RenderHz are the simulate and render cadences, each in
	// (0, 1000].
	SimulateHz float64
	RenderHz   float64

	// FixedStep passes the nominal step length to Simulate, calling it as
	// many times as the elapsed time allows, at most MaxCatchUp times per
	// iteration. Otherwise Simulate receives the measured elapsed time.
	FixedStep  bool
	MaxCatchUp int

	// IdleSleep, when positive, lets the loop sleep for that long whenever
	// both cadences are due further than twice that away. Zero busy-polls.
	IdleSleep time.Duration
}

func DefaultConfig() Config {
	return Config{
		SimulateHz: constant.DEFAULT_SIMULATE_HZ,
		RenderHz:   constant.DEFAULT_RENDER_HZ,
		MaxCatchUp: defaultMaxCatchUp,
		IdleSleep:  time.Millisecond,
	}
}

func (c Config) Validate() error {
	if err := validateHz("simulate", c.SimulateHz); err != nil {
		return err
	}
	if err := validateHz("render", c.RenderHz); err != nil {
		return err
	}
	if c.MaxCatchUp < 0 {
		return fmt.Errorf("%w: max catch-up must not be negative, got %d", ErrInvalidConfig, c.MaxCatchUp)
	}
	if c.IdleSleep < 0 {
		return fmt.Errorf("%w: idle sleep must not be negative, got %v", ErrInvalidConfig, c.IdleSleep)
	}
	return nil
}

func validateHz(name string, hz float64) error {
	if math.IsNaN(hz) || hz <= 0 || hz > constant.MAX_HZ {
		return fmt.Errorf("%w: %s rate must be in (0, %d], got %v", ErrInvalidConfig, name, constant.MAX_HZ, hz)
	}
	return nil
}
