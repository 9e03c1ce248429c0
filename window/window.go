package window

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ushitora-anqou/gameform/constant"
	"github.com/ushitora-anqou/gameform/input"
)

// wheelNotch is the wheel delta reported for one click.
const wheelNotch = 120

var ErrInvalidConfig = errors.New("invalid window config")

// Window presents a canvas and delivers input to its subscribers until it
// is closed.
type Window interface {
	input.EventSource
	// Run blocks until the window is closed or ctx is done. Backends that
	// own an OS window must call it on the main goroutine.
	Run(ctx context.Context) error
	Close()
}

type Config struct {
	Title      string
	Scale      int // canvas pixel to window pixel factor
	PresentFPS float64
}

func DefaultConfig() Config {
	return Config{
		Title:      constant.WINDOW_TITLE,
		Scale:      constant.WINDOW_SCALE,
		PresentFPS: constant.DEFAULT_PRESENT_FPS,
	}
}

func (c Config) Validate() error {
	if c.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %d", ErrInvalidConfig, c.Scale)
	}
	if math.IsNaN(c.PresentFPS) || c.PresentFPS <= 0 || c.PresentFPS > constant.MAX_HZ {
		return fmt.Errorf("%w: present fps must be in (0, %d], got %v", ErrInvalidConfig, constant.MAX_HZ, c.PresentFPS)
	}
	return nil
}

// dispatcher fans raw input out to subscribers.
type dispatcher struct {
	mtx      sync.RWMutex
	handlers []input.Handler
}

func (d *dispatcher) Subscribe(h input.Handler) {
	if h == nil {
		return
	}
	d.mtx.Lock()
	defer d.mtx.Unlock()
	d.handlers = append(d.handlers, h)
}

func (d *dispatcher) snapshot() []input.Handler {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	return append([]input.Handler(nil), d.handlers...)
}

func (d *dispatcher) key(k input.Key, down bool) {
	if k == input.KeyNone {
		return
	}
	for _, h := range d.snapshot() {
		h.HandleKey(input.KeyEvent{Key: k, Down: down})
	}
}

func (d *dispatcher) mouse(ev input.MouseEvent) {
	for _, h := range d.snapshot() {
		h.HandleMouse(ev)
	}
}
