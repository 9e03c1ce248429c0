// Package input turns asynchronously delivered key and mouse events into
// step-synchronized state with edge detection.
//
// Event delivery only writes the pending fields. Advance, called once per
// simulate step, is the only writer of the stepped state that the queries
// read, so no field has two writers and no lock is needed.
package input

import (
	"sync/atomic"

	"github.com/ushitora-anqou/gameform/constant"
)

// Stepped state keeps two bits per entry: the even bit is "pressed this
// step", the odd bit above it is "pressed last step".
const (
	isPressed  = 0x1
	wasPressed = 0x2

	previousBits = 0xaaaaaaaaaaaaaaaa

	keysPerWord = 32
)

// Modifier slots in the pending bit set, before spreading.
const (
	modShift = 1 << iota
	modControl
	modAlt
)

type Tracker struct {
	// Written by event delivery.
	pendingKeys  [constant.KEYS_TRACKED / 64]atomic.Uint64
	mousePos     atomic.Uint64
	mouseHeld    atomic.Uint32
	mouseLatched atomic.Uint32
	wheelTotal   atomic.Int64
	wheelPending atomic.Int64

	// Written by Advance.
	keys      [constant.KEYS_TRACKED / keysPerWord]atomic.Uint64
	modifiers atomic.Uint64
	buttons   atomic.Uint64
	wheelStep atomic.Int64
}

// NewTracker subscribes a new tracker to src.
func NewTracker(src EventSource) (*Tracker, error) {
	if src == nil {
		return nil, ErrInvalidArgument
	}
	t := &Tracker{}
	src.Subscribe(t)
	return t, nil
}

func (t *Tracker) HandleKey(ev KeyEvent) {
	code := ev.Key.Code()
	if !ev.Key.valid() || code <= 0 || code >= constant.KEYS_TRACKED {
		return
	}
	word, bit := code/64, uint64(1)<<(code%64)
	if ev.Down {
		t.pendingKeys[word].Or(bit)
	} else {
		t.pendingKeys[word].And(^bit)
	}
}

// HandleMouse records ev. Wheel events leave the cursor position alone.
func (t *Tracker) HandleMouse(ev MouseEvent) {
	if ev.Kind != MouseWheel {
		t.mousePos.Store(packPosition(ev.X, ev.Y))
	}
	b := uint32(ev.Button & mouseButtonMask)
	switch ev.Kind {
	case MouseDown:
		t.mouseHeld.Or(b)
		t.mouseLatched.Or(b)
	case MouseUp:
		t.mouseHeld.And(^b)
	case MouseWheel:
		t.wheelTotal.Add(int64(ev.WheelDelta))
		t.wheelPending.Add(int64(ev.WheelDelta))
	}
}

// Advance closes the current step: what was pressed becomes what was
// pressed last step, and the pending state becomes the current state.
// It must be called from one goroutine only, once per simulate step.
func (t *Tracker) Advance() {
	var pending [len(t.pendingKeys)]uint64
	for i := range t.pendingKeys {
		pending[i] = t.pendingKeys[i].Load()
	}
	for i := range t.keys {
		half := uint32(pending[i/2] >> (32 * (i % 2)))
		t.keys[i].Store(step(t.keys[i].Load(), half))
	}

	t.modifiers.Store(step(t.modifiers.Load(), pendingModifiers(&pending)))

	pressed := t.mouseHeld.Load() | t.mouseLatched.Swap(0)
	t.buttons.Store(step(t.buttons.Load(), pressed))
	t.wheelStep.Store(t.wheelPending.Swap(0))
}

// IsDown reports whether key and every modifier bundled with it are down
// in the current step.
func (t *Tracker) IsDown(key Key) bool {
	return t.satisfied(key, isPressed)
}

// WasDown is IsDown for the previous step.
func (t *Tracker) WasDown(key Key) bool {
	return t.satisfied(key, wasPressed)
}

// IsTriggered reports a rising edge of the whole key combination.
func (t *Tracker) IsTriggered(key Key) bool {
	return t.IsDown(key) && !t.WasDown(key)
}

func (t *Tracker) IsButtonDown(b MouseButton) bool {
	return t.buttonsSatisfied(b, isPressed)
}

func (t *Tracker) WasButtonDown(b MouseButton) bool {
	return t.buttonsSatisfied(b, wasPressed)
}

func (t *Tracker) IsButtonTriggered(b MouseButton) bool {
	return t.IsButtonDown(b) && !t.WasButtonDown(b)
}

// MousePosition returns the last reported absolute cursor position.
func (t *Tracker) MousePosition() (x, y int) {
	return unpackPosition(t.mousePos.Load())
}

// Wheel returns the accumulated wheel position.
func (t *Tracker) Wheel() int {
	return int(t.wheelTotal.Load())
}

// WheelDelta returns the wheel movement that arrived during the step that
// the last Advance closed.
func (t *Tracker) WheelDelta() int {
	return int(t.wheelStep.Load())
}

func (t *Tracker) satisfied(key Key, which uint64) bool {
	if !key.valid() {
		return false
	}
	code := key.Code()
	if code >= constant.KEYS_TRACKED {
		return false
	}
	if code > 0 {
		word, shift := code/keysPerWord, 2*(code%keysPerWord)
		if (t.keys[word].Load()>>shift)&which == 0 {
			return false
		}
	}
	required := spread(modifiersOf(key))
	if which == wasPressed {
		required <<= 1
	}
	return t.modifiers.Load()&required == required
}

func (t *Tracker) buttonsSatisfied(b MouseButton, which uint64) bool {
	required := spread(uint32(b))
	if which == wasPressed {
		required <<= 1
	}
	return t.buttons.Load()&required == required
}

// step shifts every current bit of state into its previous slot and loads
// pressed into the current slots.
func step(state uint64, pressed uint32) uint64 {
	return (state<<1)&previousBits | spread(pressed)
}

// spread moves bit i of v to bit 2i.
func spread(v uint32) uint64 {
	x := uint64(v)
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return x
}

func modifiersOf(key Key) uint32 {
	var m uint32
	if key&Shift != 0 {
		m |= modShift
	}
	if key&Control != 0 {
		m |= modControl
	}
	if key&Alt != 0 {
		m |= modAlt
	}
	return m
}

func pendingModifiers(pending *[constant.KEYS_TRACKED / 64]uint64) uint32 {
	down := func(k Key) bool {
		code := k.Code()
		return pending[code/64]&(1<<(code%64)) != 0
	}
	var m uint32
	if down(KeyShiftKey) || down(KeyLShift) || down(KeyRShift) {
		m |= modShift
	}
	if down(KeyControlKey) || down(KeyLControl) || down(KeyRControl) {
		m |= modControl
	}
	if down(KeyAltKey) || down(KeyLAlt) || down(KeyRAlt) {
		m |= modAlt
	}
	return m
}

func packPosition(x, y int) uint64 {
	return uint64(uint32(int32(x)))<<32 | uint64(uint32(int32(y)))
}

func unpackPosition(p uint64) (int, int) {
	return int(int32(uint32(p >> 32))), int(int32(uint32(p)))
}
