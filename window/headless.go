package window

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/ushitora-anqou/gameform/clock"
	"github.com/ushitora-anqou/gameform/input"
	"github.com/ushitora-anqou/gameform/render"
)

// Headless is a window without a display. Input is injected through its
// methods and frames go to OnFrame.
type Headless struct {
	dispatcher

	canvas *render.Canvas
	sync   *TimeSynchronizer

	// OnFrame, if set, receives every presented frame on the Run goroutine.
	OnFrame func(frame *image.RGBA)

	frames    atomic.Uint64
	closed    chan struct{}
	closeOnce sync.Once
}

func NewHeadless(canvas *render.Canvas, cfg Config, c clock.Clock) (*Headless, error) {
	if canvas == nil {
		return nil, errors.New("nil canvas")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = clock.NewMonotonic()
	}
	return &Headless{
		canvas: canvas,
		sync:   NewTimeSynchronizer(c, cfg.PresentFPS),
		closed: make(chan struct{}),
	}, nil
}

func (h *Headless) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.closed:
			return nil
		default:
		}

		h.canvas.Present(func(frame *image.RGBA) {
			h.frames.Add(1)
			if h.OnFrame != nil {
				h.OnFrame(frame)
			}
		})
		h.sync.MaySleep()
	}
}

func (h *Headless) Close() {
	h.closeOnce.Do(func() { close(h.closed) })
}

// Frames returns the number of frames presented so far.
func (h *Headless) Frames() uint64 {
	return h.frames.Load()
}

func (h *Headless) KeyDown(k input.Key) { h.key(k, true) }

func (h *Headless) KeyUp(k input.Key) { h.key(k, false) }

func (h *Headless) MouseMove(x, y int) {
	h.mouse(input.MouseEvent{Kind: input.MouseMove, X: x, Y: y})
}

func (h *Headless) MouseDown(b input.MouseButton, x, y int) {
	h.mouse(input.MouseEvent{Kind: input.MouseDown, X: x, Y: y, Button: b})
}

func (h *Headless) MouseUp(b input.MouseButton, x, y int) {
	h.mouse(input.MouseEvent{Kind: input.MouseUp, X: x, Y: y, Button: b})
}

func (h *Headless) Wheel(delta int) {
	h.mouse(input.MouseEvent{Kind: input.MouseWheel, WheelDelta: delta})
}
