// Package loop drives a simulate callback and a render callback at two
// independent fixed rates on one dedicated goroutine.
package loop

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ushitora-anqou/gameform/clock"
	"github.com/ushitora-anqou/gameform/util"
)

// Surface is a drawable region that is asked to repaint after every render
// tick. Register rejects surfaces that are not comparable; use pointers.
type Surface interface {
	Invalidate()
}

// Advancer is stepped right before every simulate call.
type Advancer interface {
	Advance()
}

type Option func(s *Scheduler) error

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) error {
		if c == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidArgument)
		}
		if freq := c.Frequency(); freq <= 0 {
			return fmt.Errorf("%w: clock frequency must be positive, got %d", ErrInvalidArgument, freq)
		}
		s.clock = c
		return nil
	}
}

func WithAdvancer(a Advancer) Option {
	return func(s *Scheduler) error {
		if a == nil {
			return fmt.Errorf("%w: nil advancer", ErrInvalidArgument)
		}
		s.advancer = a
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidArgument)
		}
		s.logger = l
		return nil
	}
}

type Stats struct {
	SimulateTicks uint64
	RenderTicks   uint64
}

type Scheduler struct {
	cfg      Config
	clock    clock.Clock
	simulate func(elapsedMillis float64)
	render   func()
	advancer Advancer
	logger   *slog.Logger

	simulateInterval clock.Tick
	renderInterval   clock.Tick

	mtxSurfaces sync.Mutex
	surfaces    []Surface

	mtxRun  sync.Mutex
	running bool
	done    chan struct{}
	err     error
	stop    atomic.Bool

	simulateTicks atomic.Uint64
	renderTicks   atomic.Uint64

	// Owned by the loop goroutine.
	lastSimulate, lastRender, lastNow clock.Tick
	accumulator                       clock.Tick
	rate                              *util.TickCounter
	logged                            Stats
}

// New validates cfg and prepares a scheduler. nil callbacks are no-ops.
func New(cfg Config, simulate func(elapsedMillis float64), render func(), opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxCatchUp == 0 {
		cfg.MaxCatchUp = defaultMaxCatchUp
	}

	s := &Scheduler{
		cfg:      cfg,
		clock:    clock.NewMonotonic(),
		simulate: simulate,
		render:   render,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "loop")

	freq := float64(s.clock.Frequency())
	s.simulateInterval = clock.Tick(freq / cfg.SimulateHz)
	s.renderInterval = clock.Tick(freq / cfg.RenderHz)
	return s, nil
}

func (s *Scheduler) Config() Config {
	return s.cfg
}

func (s *Scheduler) SimulateInterval() clock.Tick {
	return s.simulateInterval
}

func (s *Scheduler) RenderInterval() clock.Tick {
	return s.renderInterval
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		SimulateTicks: s.simulateTicks.Load(),
		RenderTicks:   s.renderTicks.Load(),
	}
}

// Register adds sf to the surfaces invalidated after each render tick.
// Registering a surface twice is a no-op.
func (s *Scheduler) Register(sf Surface) error {
	if sf == nil {
		return fmt.Errorf("%w: nil surface", ErrInvalidArgument)
	}
	if !reflect.ValueOf(sf).Comparable() {
		return fmt.Errorf("%w: surface of type %T is not comparable", ErrInvalidArgument, sf)
	}
	s.mtxSurfaces.Lock()
	defer s.mtxSurfaces.Unlock()
	for _, registered := range s.surfaces {
		if registered == sf {
			return nil
		}
	}
	s.surfaces = append(s.surfaces, sf)
	return nil
}

// Unregister removes sf. Unknown surfaces are ignored.
func (s *Scheduler) Unregister(sf Surface) {
	if sf == nil || !reflect.ValueOf(sf).Comparable() {
		return
	}
	s.mtxSurfaces.Lock()
	defer s.mtxSurfaces.Unlock()
	for i, registered := range s.surfaces {
		if registered == sf {
			s.surfaces = append(s.surfaces[:i], s.surfaces[i+1:]...)
			return
		}
	}
}

func (s *Scheduler) Surfaces() int {
	s.mtxSurfaces.Lock()
	defer s.mtxSurfaces.Unlock()
	return len(s.surfaces)
}

// Run executes the loop on the calling goroutine until ctx is done or Stop
// is called.
func (s *Scheduler) Run(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	return s.loop(ctx, done)
}

// Start executes the loop on a new goroutine. Elapsed time is measured
// from the call to Start.
func (s *Scheduler) Start(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	go s.loop(ctx, done)
	return nil
}

// Done is closed when the current run ends. It is nil before the first run.
func (s *Scheduler) Done() <-chan struct{} {
	s.mtxRun.Lock()
	defer s.mtxRun.Unlock()
	return s.done
}

// Stop asks the loop to exit at the top of its next iteration and waits
// for it until ctx expires. It returns the error the run ended with.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mtxRun.Lock()
	done := s.done
	s.stop.Store(true)
	s.mtxRun.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrStopTimeout, ctx.Err())
	}

	s.mtxRun.Lock()
	defer s.mtxRun.Unlock()
	return s.err
}

func (s *Scheduler) begin() (chan struct{}, error) {
	s.mtxRun.Lock()
	defer s.mtxRun.Unlock()
	if s.running {
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.err = nil
	s.done = make(chan struct{})
	s.stop.Store(false)
	s.reset(s.clock.Now())
	return s.done, nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) (err error) {
	defer func() {
		s.mtxRun.Lock()
		s.running = false
		s.err = err
		s.mtxRun.Unlock()
		close(done)
	}()
	unwatch := context.AfterFunc(ctx, func() { s.stop.Store(true) })
	defer unwatch()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Callback panicked, stopping loop", "panic", r)
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()

	s.logger.Info("Loop started",
		"simulate_hz", s.cfg.SimulateHz,
		"render_hz", s.cfg.RenderHz,
		"fixed_step", s.cfg.FixedStep)

	for !s.stop.Load() {
		now := s.clock.Now()
		s.tick(now)
		s.idle(now)
	}

	st := s.Stats()
	s.logger.Info("Loop stopped", "simulate_ticks", st.SimulateTicks, "render_ticks", st.RenderTicks)
	return nil
}

func (s *Scheduler) reset(now clock.Tick) {
	s.lastSimulate, s.lastRender, s.lastNow = now, now, now
	s.accumulator = 0
	s.rate = util.NewTickCounter(s.clock.Frequency())
	s.logged = s.Stats()
}

func (s *Scheduler) tick(now clock.Tick) {
	freq := s.clock.Frequency()

	if s.cfg.FixedStep {
		s.fixedStep(now, freq)
	} else if elapsed := now - s.lastSimulate; elapsed >= s.simulateInterval {
		s.simulateOnce(clock.Millis(elapsed, freq))
		s.lastSimulate = now
	}

	if now-s.lastRender >= s.renderInterval {
		s.renderOnce()
		s.lastRender = now
	}

	if s.rate.Tick(int64(now - s.lastNow)) {
		st := s.Stats()
		s.logger.Debug("Loop rate",
			"simulate_per_sec", st.SimulateTicks-s.logged.SimulateTicks,
			"render_per_sec", st.RenderTicks-s.logged.RenderTicks)
		s.logged = st
	}
	s.lastNow = now
}

func (s *Scheduler) fixedStep(now clock.Tick, freq int64) {
	s.accumulator += now - s.lastSimulate
	s.lastSimulate = now

	// The clock is too coarse for the rate; every iteration is a step.
	if s.simulateInterval <= 0 {
		s.simulateOnce(clock.Millis(s.accumulator, freq))
		s.accumulator = 0
		return
	}

	nominal := clock.Millis(s.simulateInterval, freq)
	for n := 0; s.accumulator >= s.simulateInterval; n++ {
		if n == s.cfg.MaxCatchUp {
			dropped := s.accumulator
			s.accumulator %= s.simulateInterval
			dropped -= s.accumulator
			util.Trace("Dropped simulate steps", "dropped_ms", clock.Millis(dropped, freq))
			return
		}
		s.simulateOnce(nominal)
		s.accumulator -= s.simulateInterval
	}
}

func (s *Scheduler) simulateOnce(elapsedMillis float64) {
	if s.advancer != nil {
		s.advancer.Advance()
	}
	if s.simulate != nil {
		s.simulate(elapsedMillis)
	}
	s.simulateTicks.Add(1)
}

func (s *Scheduler) renderOnce() {
	if s.render != nil {
		s.render()
	}

	s.mtxSurfaces.Lock()
	surfaces := make([]Surface, len(s.surfaces))
	copy(surfaces, s.surfaces)
	s.mtxSurfaces.Unlock()

	for _, sf := range surfaces {
		sf.Invalidate()
	}
	s.renderTicks.Add(1)
}

// idle yields the processor between iterations, sleeping only when neither
// cadence is due soon.
func (s *Scheduler) idle(now clock.Tick) {
	if s.cfg.IdleSleep <= 0 {
		runtime.Gosched()
		return
	}
	untilSimulate := s.lastSimulate + s.simulateInterval - now
	if s.cfg.FixedStep {
		untilSimulate = s.simulateInterval - s.accumulator
	}
	untilRender := s.lastRender + s.renderInterval - now
	remaining := clock.Duration(min(untilSimulate, untilRender), s.clock.Frequency())
	if remaining > 2*s.cfg.IdleSleep {
		time.Sleep(s.cfg.IdleSleep)
	} else {
		runtime.Gosched()
	}
}
