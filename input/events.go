package input

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownKey      = errors.New("unknown key")
)

type KeyEvent struct {
	// Key is the physical key. Modifier flags are informational; modifier
	// state is derived from the Shift/Control/Alt key events themselves.
	Key  Key
	Down bool
}

type MouseEventKind uint8

const (
	MouseMove MouseEventKind = iota
	MouseDown
	MouseUp
	MouseWheel
)

type MouseEvent struct {
	Kind MouseEventKind
	// X and Y are absolute coordinates in the window's client area,
	// unused by MouseWheel.
	X, Y       int
	Button     MouseButton
	WheelDelta int
}

// Handler receives raw input. Calls may arrive on any goroutine.
type Handler interface {
	HandleKey(ev KeyEvent)
	HandleMouse(ev MouseEvent)
}

// EventSource is a window that delivers raw input to its subscribers for
// as long as the window lives.
type EventSource interface {
	Subscribe(h Handler)
}
