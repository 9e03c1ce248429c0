//go:build ebiten && !sdl2

package window

import (
	"context"
	"image"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ushitora-anqou/gameform/input"
	"github.com/ushitora-anqou/gameform/render"
)

// EbitenWindow is an ebiten.Game that presents a canvas and turns ebiten's
// polled input state into events.
type EbitenWindow struct {
	dispatcher

	canvas        *render.Canvas
	width, height int
	pixels        []byte

	keys             []ebiten.Key
	cursorX, cursorY int
	cursorKnown      bool
	closed           atomic.Bool
}

func NewEbitenWindow(canvas *render.Canvas, cfg Config) (*EbitenWindow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w, h := canvas.Size()
	ebiten.SetTPS(int(cfg.PresentFPS))
	ebiten.SetWindowSize(w*cfg.Scale, h*cfg.Scale)
	ebiten.SetWindowTitle(cfg.Title)

	return &EbitenWindow{
		canvas: canvas,
		width:  w,
		height: h,
		pixels: make([]byte, 4*w*h),
	}, nil
}

// Run runs the ebiten game loop. It must run on the main goroutine.
func (wind *EbitenWindow) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, wind.Close)
	defer stop()
	return ebiten.RunGame(wind)
}

func (wind *EbitenWindow) Close() {
	wind.closed.Store(true)
}

func (wind *EbitenWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	return wind.width, wind.height
}

func (wind *EbitenWindow) Update() error {
	if wind.closed.Load() {
		return ebiten.Termination
	}

	wind.keys = inpututil.AppendJustPressedKeys(wind.keys[:0])
	for _, k := range wind.keys {
		if k == ebiten.KeyEscape {
			return ebiten.Termination
		}
		wind.key(translateKey(k), true)
	}
	wind.keys = inpututil.AppendJustReleasedKeys(wind.keys[:0])
	for _, k := range wind.keys {
		wind.key(translateKey(k), false)
	}

	x, y := ebiten.CursorPosition()
	if !wind.cursorKnown || x != wind.cursorX || y != wind.cursorY {
		wind.cursorX, wind.cursorY, wind.cursorKnown = x, y, true
		wind.mouse(input.MouseEvent{Kind: input.MouseMove, X: x, Y: y})
	}

	for eb, b := range ebitenButtons {
		switch {
		case inpututil.IsMouseButtonJustPressed(eb):
			wind.mouse(input.MouseEvent{Kind: input.MouseDown, X: x, Y: y, Button: b})
		case inpututil.IsMouseButtonJustReleased(eb):
			wind.mouse(input.MouseEvent{Kind: input.MouseUp, X: x, Y: y, Button: b})
		}
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		wind.mouse(input.MouseEvent{Kind: input.MouseWheel, WheelDelta: int(dy * wheelNotch)})
	}
	return nil
}

func (wind *EbitenWindow) Draw(screen *ebiten.Image) {
	wind.canvas.Present(func(frame *image.RGBA) {
		copy(wind.pixels, frame.Pix)
	})
	screen.WritePixels(wind.pixels)
}

var ebitenButtons = map[ebiten.MouseButton]input.MouseButton{
	ebiten.MouseButtonLeft:   input.MouseLeft,
	ebiten.MouseButtonRight:  input.MouseRight,
	ebiten.MouseButtonMiddle: input.MouseMiddle,
	ebiten.MouseButton3:      input.MouseX1,
	ebiten.MouseButton4:      input.MouseX2,
}

var ebitenKeys = map[ebiten.Key]input.Key{
	ebiten.KeyBackspace:    input.KeyBackspace,
	ebiten.KeyTab:          input.KeyTab,
	ebiten.KeyEnter:        input.KeyEnter,
	ebiten.KeyNumpadEnter:  input.KeyEnter,
	ebiten.KeyPause:        input.KeyPause,
	ebiten.KeyCapsLock:     input.KeyCapsLock,
	ebiten.KeyEscape:       input.KeyEscape,
	ebiten.KeySpace:        input.KeySpace,
	ebiten.KeyPageUp:       input.KeyPageUp,
	ebiten.KeyPageDown:     input.KeyPageDown,
	ebiten.KeyEnd:          input.KeyEnd,
	ebiten.KeyHome:         input.KeyHome,
	ebiten.KeyArrowLeft:    input.KeyLeft,
	ebiten.KeyArrowUp:      input.KeyUp,
	ebiten.KeyArrowRight:   input.KeyRight,
	ebiten.KeyArrowDown:    input.KeyDown,
	ebiten.KeyInsert:       input.KeyInsert,
	ebiten.KeyDelete:       input.KeyDelete,
	ebiten.KeyShiftLeft:    input.KeyLShift,
	ebiten.KeyShiftRight:   input.KeyRShift,
	ebiten.KeyControlLeft:  input.KeyLControl,
	ebiten.KeyControlRight: input.KeyRControl,
	ebiten.KeyAltLeft:      input.KeyLAlt,
	ebiten.KeyAltRight:     input.KeyRAlt,
}

var numberedKeys = []struct {
	prefix string
	lo, hi int
	key    func(int) input.Key
}{
	{"Digit", 0, 9, input.Digit},
	{"Numpad", 0, 9, input.NumPad},
	{"F", 1, 24, input.FunctionKey},
}

// translateKey maps letters, digits, function and keypad digits by their
// ebiten names ("A", "Digit0", "F1", "Numpad0") and the rest by table.
func translateKey(k ebiten.Key) input.Key {
	if key, ok := ebitenKeys[k]; ok {
		return key
	}
	name := k.String()
	if len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z' {
		return input.Letter(rune(name[0]))
	}
	for _, r := range numberedKeys {
		rest, ok := strings.CutPrefix(name, r.prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n >= r.lo && n <= r.hi {
			return r.key(n)
		}
	}
	return input.KeyNone
}
