//go:build sdl2

package clock

import "github.com/veandco/go-sdl2/sdl"

// SDL reads the high resolution performance counter. SDL must be
// initialized before the first call to Now.
type SDL struct {
	freq int64
}

func NewSDL() *SDL {
	return &SDL{freq: int64(sdl.GetPerformanceFrequency())}
}

func (c *SDL) Now() Tick {
	return Tick(sdl.GetPerformanceCounter())
}

func (c *SDL) Frequency() int64 {
	return c.freq
}
