package loop

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ushitora-anqou/gameform/clock"
)

type recorder struct {
	simulated []float64
	renders   int
	events    []string
}

func (r *recorder) simulate(ms float64) {
	r.simulated = append(r.simulated, ms)
	r.events = append(r.events, "simulate")
}

func (r *recorder) render() {
	r.renders++
	r.events = append(r.events, "render")
}

type advancer struct{ r *recorder }

func (a advancer) Advance() { a.r.events = append(a.r.events, "advance") }

type countingSurface struct {
	invalidated atomic.Int32
}

func (c *countingSurface) Invalidate() { c.invalidated.Add(1) }

func newManual(t *testing.T, cfg Config, r *recorder, opts ...Option) (*Scheduler, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(1000)
	opts = append([]Option{WithClock(clk)}, opts...)
	s, err := New(cfg, r.simulate, r.render, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.reset(clk.Now())
	return s, clk
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name       string
		simulateHz float64
		renderHz   float64
		wantErr    bool
	}{
		{"defaults", 60, 30, false},
		{"upper bound", 1000, 1000, false},
		{"tiny rate", 0.001, 30, false},
		{"zero simulate", 0, 30, true},
		{"zero render", 60, 0, true},
		{"above bound", 1001, 30, true},
		{"negative", -60, 30, true},
		{"negative render", 60, -1, true},
		{"nan", math.NaN(), 30, true},
		{"infinite", 60, math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SimulateHz, cfg.RenderHz = tt.simulateHz, tt.renderHz
			_, err := New(cfg, nil, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("New error = %v, expected ErrInvalidConfig", err)
				}
			} else if err != nil {
				t.Fatalf("New: %v", err)
			}
		})
	}
}

func TestInvalidOptions(t *testing.T) {
	options := []Option{
		WithClock(nil),
		WithClock(clock.NewManual(0)),
		WithClock(clock.NewManual(-1000)),
		WithAdvancer(nil),
		WithLogger(nil),
	}
	for _, opt := range options {
		if _, err := New(DefaultConfig(), nil, nil, opt); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("New error = %v, expected ErrInvalidArgument", err)
		}
	}
	cfg := DefaultConfig()
	cfg.IdleSleep = -time.Second
	if _, err := New(cfg, nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative idle sleep: error = %v", err)
	}
}

func TestIntervals(t *testing.T) {
	table := []struct {
		freq                 int64
		simulateHz, renderHz float64
		simulate, render     clock.Tick
	}{
		{1000, 60, 30, 16, 33},
		{1000, 1000, 0.001, 1, 1_000_000},
		{int64(time.Second), 60, 30, 16_666_666, 33_333_333},
		{3_579_545, 50, 25, 71_590, 143_181},
	}
	for _, entry := range table {
		cfg := Config{SimulateHz: entry.simulateHz, RenderHz: entry.renderHz}
		s, err := New(cfg, nil, nil, WithClock(clock.NewManual(entry.freq)))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if s.SimulateInterval() != entry.simulate || s.RenderInterval() != entry.render {
			t.Fatalf("freq=%d: intervals (%d, %d), expected (%d, %d)",
				entry.freq, s.SimulateInterval(), s.RenderInterval(), entry.simulate, entry.render)
		}
	}
}

func TestVariableStepCadence(t *testing.T) {
	r := &recorder{}
	s, _ := newManual(t, Config{SimulateHz: 60, RenderHz: 30}, r)

	s.tick(10)
	if len(r.simulated) != 0 || r.renders != 0 {
		t.Fatalf("callbacks ran before they were due: %v", r.events)
	}
	s.tick(16)
	if len(r.simulated) != 1 || r.simulated[0] != 16 {
		t.Fatalf("after 16 ticks: simulated %v", r.simulated)
	}
	s.tick(20)
	s.tick(33)
	if len(r.simulated) != 2 || r.simulated[1] != 17 {
		t.Fatalf("after 33 ticks: simulated %v", r.simulated)
	}
	if r.renders != 1 {
		t.Fatalf("after 33 ticks: %d renders", r.renders)
	}

	// A late iteration reports the whole measured delta.
	s.tick(133)
	if got := r.simulated[len(r.simulated)-1]; got != 100 {
		t.Fatalf("late simulate got %v ms, expected 100", got)
	}
	if r.renders != 2 {
		t.Fatalf("late render count = %d", r.renders)
	}
	if st := s.Stats(); st.SimulateTicks != 3 || st.RenderTicks != 2 {
		t.Fatalf("Stats = %+v", st)
	}
}

func TestAdvanceBeforeSimulate(t *testing.T) {
	r := &recorder{}
	s, _ := newManual(t, Config{SimulateHz: 100, RenderHz: 100}, r, WithAdvancer(advancer{r}))
	s.tick(10)
	s.tick(20)
	expected := []string{"advance", "simulate", "render", "advance", "simulate", "render"}
	if len(r.events) != len(expected) {
		t.Fatalf("events = %v", r.events)
	}
	for i := range expected {
		if r.events[i] != expected[i] {
			t.Fatalf("events = %v, expected %v", r.events, expected)
		}
	}
}

func TestFixedStep(t *testing.T) {
	r := &recorder{}
	cfg := Config{SimulateHz: 62.5, RenderHz: 1, FixedStep: true, MaxCatchUp: 5}
	s, _ := newManual(t, cfg, r)

	s.tick(50)
	if len(r.simulated) != 3 {
		t.Fatalf("after 50 ticks: %d steps, expected 3", len(r.simulated))
	}
	for _, ms := range r.simulated {
		if ms != 16 {
			t.Fatalf("fixed step passed %v ms", ms)
		}
	}
	s.tick(64)
	if len(r.simulated) != 4 {
		t.Fatalf("after 64 ticks: %d steps, expected 4", len(r.simulated))
	}

	// A long stall only catches up MaxCatchUp steps.
	s.tick(1064)
	if len(r.simulated) != 9 {
		t.Fatalf("after stall: %d steps, expected 9", len(r.simulated))
	}
	if s.accumulator >= s.simulateInterval {
		t.Fatalf("accumulator kept %d ticks of backlog", s.accumulator)
	}
}

func TestSurfaceRegistration(t *testing.T) {
	r := &recorder{}
	s, _ := newManual(t, Config{SimulateHz: 10, RenderHz: 100}, r)
	a, b := &countingSurface{}, &countingSurface{}

	if err := s.Register(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Register(nil) error = %v", err)
	}
	for _, sf := range []*countingSurface{a, a, b} {
		if err := s.Register(sf); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if s.Surfaces() != 2 {
		t.Fatalf("Surfaces = %d, expected 2", s.Surfaces())
	}

	s.tick(10)
	if a.invalidated.Load() != 1 || b.invalidated.Load() != 1 {
		t.Fatalf("invalidations a=%d b=%d, expected 1 each", a.invalidated.Load(), b.invalidated.Load())
	}

	s.Unregister(a)
	s.Unregister(a)
	s.Unregister(nil)
	s.tick(20)
	if a.invalidated.Load() != 1 || b.invalidated.Load() != 2 {
		t.Fatalf("after unregister a=%d b=%d", a.invalidated.Load(), b.invalidated.Load())
	}
}

type reentrantSurface struct {
	s     *Scheduler
	other Surface
}

func (r *reentrantSurface) Invalidate() {
	r.s.Register(r.other)
}

func TestInvalidateMayRegister(t *testing.T) {
	r := &recorder{}
	s, _ := newManual(t, Config{SimulateHz: 10, RenderHz: 100}, r)
	s.Register(&reentrantSurface{s: s, other: &countingSurface{}})
	s.tick(10)
	if s.Surfaces() != 2 {
		t.Fatalf("Surfaces = %d, expected 2", s.Surfaces())
	}
}

func TestRunAndStop(t *testing.T) {
	var simulated, rendered atomic.Int64
	cfg := Config{SimulateHz: 1000, RenderHz: 500}
	s, err := New(cfg, func(float64) { simulated.Add(1) }, func() { rendered.Add(1) })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for (simulated.Load() < 5 || rendered.Load() < 5) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if simulated.Load() < 5 || rendered.Load() < 5 {
		t.Fatalf("loop too slow: %d simulates, %d renders", simulated.Load(), rendered.Load())
	}

	after := simulated.Load()
	time.Sleep(10 * time.Millisecond)
	if simulated.Load() != after {
		t.Fatal("simulate ran after Stop returned")
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestStopBeforeStart(t *testing.T) {
	s, err := New(DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestRunEndsWithContext(t *testing.T) {
	s, err := New(Config{SimulateHz: 100, RenderHz: 100, IdleSleep: time.Millisecond}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after its context expired")
	}
}

func TestCallbackPanic(t *testing.T) {
	s, err := New(Config{SimulateHz: 1000, RenderHz: 1000}, func(float64) { panic("boom") }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Run(ctx); !errors.Is(err, ErrCallbackPanic) {
		t.Fatalf("Run error = %v, expected ErrCallbackPanic", err)
	}
	if err := s.Stop(ctx); !errors.Is(err, ErrCallbackPanic) {
		t.Fatalf("Stop error = %v, expected the run's ErrCallbackPanic", err)
	}
}

type blockingSurface struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSurface) Invalidate() {
	b.once.Do(func() { close(b.entered) })
	<-b.release
}

func TestStopTimeout(t *testing.T) {
	s, err := New(Config{SimulateHz: 1000, RenderHz: 1000}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	blocker := &blockingSurface{entered: make(chan struct{}), release: make(chan struct{})}
	s.Register(blocker)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-blocker.entered:
	case <-time.After(2 * time.Second):
		close(blocker.release)
		t.Fatal("render tick never reached the surface")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); !errors.Is(err, ErrStopTimeout) {
		t.Fatalf("Stop error = %v, expected ErrStopTimeout", err)
	}

	close(blocker.release)
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after the callback returned")
	}
}

func TestStartTakesBaseline(t *testing.T) {
	clk := clock.NewManual(1000)
	steps := make(chan float64, 16)
	s, err := New(Config{SimulateHz: 100, RenderHz: 50}, func(ms float64) { steps <- ms }, nil, WithClock(clk))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	clk.Advance(10)
	select {
	case ms := <-steps:
		if ms != 10 {
			t.Fatalf("first step = %vms, expected 10", ms)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no simulate step after one interval")
	}
}

type funcSurface struct {
	invalidate func()
}

func (f funcSurface) Invalidate() { f.invalidate() }

func TestRegisterNotComparable(t *testing.T) {
	s, err := New(DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sf := funcSurface{invalidate: func() {}}
	if err := s.Register(sf); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Register error = %v, expected ErrInvalidArgument", err)
	}
	s.Unregister(sf)
	if s.Surfaces() != 0 {
		t.Fatalf("Surfaces = %d, expected 0", s.Surfaces())
	}
}
