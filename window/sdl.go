//go:build sdl2

package window

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/ushitora-anqou/gameform/clock"
	"github.com/ushitora-anqou/gameform/input"
	"github.com/ushitora-anqou/gameform/render"
	"github.com/veandco/go-sdl2/sdl"
)

func SDLInitialize() error {
	return sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_TIMER | sdl.INIT_EVENTS)
}

type SDLWindow struct {
	dispatcher

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	canvas   *render.Canvas
	scale    int32
	sync     *TimeSynchronizer
	closed   atomic.Bool
}

func NewSDLWindow(canvas *render.Canvas, cfg Config) (*SDLWindow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w, h := canvas.Size()
	scale := int32(cfg.Scale)

	window, err := sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(w)*scale,
		int32(h)*scale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(w),
		int32(h),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("create texture: %w", err)
	}

	return &SDLWindow{
		window:   window,
		renderer: renderer,
		texture:  texture,
		canvas:   canvas,
		scale:    scale,
		sync:     NewTimeSynchronizer(clock.NewSDL(), cfg.PresentFPS),
	}, nil
}

// Run pumps events and presents frames. It must run on the main goroutine.
func (wind *SDLWindow) Run(ctx context.Context) error {
	for ctx.Err() == nil && !wind.closed.Load() {
		if wind.handleEvents() {
			return nil
		}
		if err := wind.updateScreen(); err != nil {
			return err
		}
		wind.sync.MaySleep()
	}
	return nil
}

func (wind *SDLWindow) Close() {
	wind.closed.Store(true)
}

func (wind *SDLWindow) Destroy() {
	wind.texture.Destroy()
	wind.renderer.Destroy()
	wind.window.Destroy()
}

func (wind *SDLWindow) handleEvents() (escape bool) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			escape = true

		case *sdl.KeyboardEvent:
			if ev.Repeat != 0 {
				continue
			}
			down := ev.Type == sdl.KEYDOWN
			if down && ev.Keysym.Sym == sdl.K_ESCAPE {
				escape = true
			}
			wind.key(translateKey(ev.Keysym.Sym), down)

		case *sdl.MouseMotionEvent:
			wind.mouse(input.MouseEvent{
				Kind: input.MouseMove,
				X:    int(ev.X / wind.scale),
				Y:    int(ev.Y / wind.scale),
			})

		case *sdl.MouseButtonEvent:
			kind := input.MouseUp
			if ev.Type == sdl.MOUSEBUTTONDOWN {
				kind = input.MouseDown
			}
			wind.mouse(input.MouseEvent{
				Kind:   kind,
				X:      int(ev.X / wind.scale),
				Y:      int(ev.Y / wind.scale),
				Button: translateButton(ev.Button),
			})

		case *sdl.MouseWheelEvent:
			delta := int(ev.Y) * wheelNotch
			if ev.Direction == sdl.MOUSEWHEEL_FLIPPED {
				delta = -delta
			}
			wind.mouse(input.MouseEvent{Kind: input.MouseWheel, WheelDelta: delta})
		}
	}
	return escape
}

func (wind *SDLWindow) updateScreen() error {
	var err error
	wind.canvas.Present(func(frame *image.RGBA) {
		var pixels []byte
		pixels, _, err = wind.texture.Lock(nil)
		if err != nil {
			return
		}
		for off := 0; off+3 < len(frame.Pix) && off+3 < len(pixels); off += 4 {
			pixels[off+0] = frame.Pix[off+2] // b
			pixels[off+1] = frame.Pix[off+1] // g
			pixels[off+2] = frame.Pix[off+0] // r
			pixels[off+3] = frame.Pix[off+3] // a
		}
		wind.texture.Unlock()
	})
	if err != nil {
		return fmt.Errorf("lock texture: %w", err)
	}

	wind.renderer.Clear()
	wind.renderer.Copy(wind.texture, nil, nil)
	wind.renderer.Present()
	return nil
}

var sdlKeys = map[sdl.Keycode]input.Key{
	sdl.K_BACKSPACE: input.KeyBackspace,
	sdl.K_TAB:       input.KeyTab,
	sdl.K_RETURN:    input.KeyEnter,
	sdl.K_KP_ENTER:  input.KeyEnter,
	sdl.K_PAUSE:     input.KeyPause,
	sdl.K_CAPSLOCK:  input.KeyCapsLock,
	sdl.K_ESCAPE:    input.KeyEscape,
	sdl.K_SPACE:     input.KeySpace,
	sdl.K_PAGEUP:    input.KeyPageUp,
	sdl.K_PAGEDOWN:  input.KeyPageDown,
	sdl.K_END:       input.KeyEnd,
	sdl.K_HOME:      input.KeyHome,
	sdl.K_LEFT:      input.KeyLeft,
	sdl.K_UP:        input.KeyUp,
	sdl.K_RIGHT:     input.KeyRight,
	sdl.K_DOWN:      input.KeyDown,
	sdl.K_INSERT:    input.KeyInsert,
	sdl.K_DELETE:    input.KeyDelete,
	sdl.K_LSHIFT:    input.KeyLShift,
	sdl.K_RSHIFT:    input.KeyRShift,
	sdl.K_LCTRL:     input.KeyLControl,
	sdl.K_RCTRL:     input.KeyRControl,
	sdl.K_LALT:      input.KeyLAlt,
	sdl.K_RALT:      input.KeyRAlt,
	sdl.K_KP_0:      input.NumPad(0),
}

func translateKey(sym sdl.Keycode) input.Key {
	switch {
	case sym >= sdl.K_a && sym <= sdl.K_z:
		return input.Letter(rune(sym))
	case sym >= sdl.K_0 && sym <= sdl.K_9:
		return input.Digit(int(sym - sdl.K_0))
	case sym >= sdl.K_F1 && sym <= sdl.K_F12:
		return input.FunctionKey(int(sym-sdl.K_F1) + 1)
	case sym >= sdl.K_KP_1 && sym <= sdl.K_KP_9:
		return input.NumPad(int(sym-sdl.K_KP_1) + 1)
	}
	return sdlKeys[sym]
}

func translateButton(b uint8) input.MouseButton {
	switch b {
	case sdl.BUTTON_LEFT:
		return input.MouseLeft
	case sdl.BUTTON_RIGHT:
		return input.MouseRight
	case sdl.BUTTON_MIDDLE:
		return input.MouseMiddle
	case sdl.BUTTON_X1:
		return input.MouseX1
	case sdl.BUTTON_X2:
		return input.MouseX2
	}
	return 0
}
