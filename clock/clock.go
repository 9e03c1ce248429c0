// Package clock provides monotonic tick sources.
//
// Ticks are opaque counters. Only differences between two ticks of the same
// clock carry meaning, and only after dividing by the clock's frequency.
package clock

import (
	"sync/atomic"
	"time"
)

type Tick int64

type Clock interface {
	Now() Tick
	// Frequency is the number of ticks per second.
	Frequency() int64
}

// Millis converts a tick difference into milliseconds.
func Millis(delta Tick, freq int64) float64 {
	return float64(delta) * 1000 / float64(freq)
}

// Duration converts a tick difference into a time.Duration.
func Duration(delta Tick, freq int64) time.Duration {
	return time.Duration(float64(delta) * float64(time.Second) / float64(freq))
}

// Monotonic counts nanoseconds on the runtime's monotonic clock.
type Monotonic struct {
	origin time.Time
}

func NewMonotonic() *Monotonic {
	return &Monotonic{origin: time.Now()}
}

func (m *Monotonic) Now() Tick {
	return Tick(time.Since(m.origin))
}

func (m *Monotonic) Frequency() int64 {
	return int64(time.Second)
}

// Manual is a clock that only moves when told to.
type Manual struct {
	now  atomic.Int64
	freq int64
}

func NewManual(freq int64) *Manual {
	return &Manual{freq: freq}
}

func (m *Manual) Now() Tick {
	return Tick(m.now.Load())
}

func (m *Manual) Frequency() int64 {
	return m.freq
}

func (m *Manual) Advance(delta Tick) Tick {
	return Tick(m.now.Add(int64(delta)))
}

func (m *Manual) Set(t Tick) {
	m.now.Store(int64(t))
}
