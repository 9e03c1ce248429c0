package input

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is a key code in its low 16 bits, optionally combined with the
// Shift, Control and Alt modifier flags. Key codes follow the Windows
// virtual-key numbering.
type Key int

const (
	KeyCodeMask Key = 0xffff

	Shift   Key = 1 << 16
	Control Key = 1 << 17
	Alt     Key = 1 << 18

	ModifierMask = Shift | Control | Alt
)

const (
	KeyNone       Key = 0
	KeyBackspace  Key = 8
	KeyTab        Key = 9
	KeyEnter      Key = 13
	KeyShiftKey   Key = 16
	KeyControlKey Key = 17
	KeyAltKey     Key = 18
	KeyPause      Key = 19
	KeyCapsLock   Key = 20
	KeyEscape     Key = 27
	KeySpace      Key = 32
	KeyPageUp     Key = 33
	KeyPageDown   Key = 34
	KeyEnd        Key = 35
	KeyHome       Key = 36
	KeyLeft       Key = 37
	KeyUp         Key = 38
	KeyRight      Key = 39
	KeyDown       Key = 40
	KeyInsert     Key = 45
	KeyDelete     Key = 46
	Key0          Key = 48
	KeyA          Key = 65
	KeyNumPad0    Key = 96
	KeyF1         Key = 112
	KeyLShift     Key = 160
	KeyRShift     Key = 161
	KeyLControl   Key = 162
	KeyRControl   Key = 163
	KeyLAlt       Key = 164
	KeyRAlt       Key = 165
)

// Digit returns the key for the decimal digit d (0..9).
func Digit(d int) Key { return Key0 + Key(d) }

// Letter returns the key for an ASCII letter of either case.
func Letter(r rune) Key {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	return KeyA + Key(r-'A')
}

// FunctionKey returns F1..F24 for n in 1..24.
func FunctionKey(n int) Key { return KeyF1 + Key(n-1) }

func NumPad(d int) Key { return KeyNumPad0 + Key(d) }

// valid reports whether k has no bits besides a key code and modifiers.
func (k Key) valid() bool {
	return k&^(KeyCodeMask|ModifierMask) == 0
}

func (k Key) Code() int {
	return int(k & KeyCodeMask)
}

func (k Key) Modifiers() Key {
	return k & ModifierMask
}

func (k Key) WithModifiers(mods Key) Key {
	return k | (mods & ModifierMask)
}

var namedKeys = map[Key]string{
	KeyBackspace:  "Backspace",
	KeyTab:        "Tab",
	KeyEnter:      "Enter",
	KeyShiftKey:   "Shift",
	KeyControlKey: "Ctrl",
	KeyAltKey:     "Alt",
	KeyPause:      "Pause",
	KeyCapsLock:   "CapsLock",
	KeyEscape:     "Escape",
	KeySpace:      "Space",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyEnd:        "End",
	KeyHome:       "Home",
	KeyLeft:       "Left",
	KeyUp:         "Up",
	KeyRight:      "Right",
	KeyDown:       "Down",
	KeyInsert:     "Insert",
	KeyDelete:     "Delete",
	KeyLShift:     "LShift",
	KeyRShift:     "RShift",
	KeyLControl:   "LCtrl",
	KeyRControl:   "RCtrl",
	KeyLAlt:       "LAlt",
	KeyRAlt:       "RAlt",
}

var keysByName = buildKeysByName()

func buildKeysByName() map[string]Key {
	m := make(map[string]Key, len(namedKeys)+64)
	for k, name := range namedKeys {
		m[strings.ToLower(name)] = k
	}
	m["return"] = KeyEnter
	m["esc"] = KeyEscape
	m["control"] = KeyControlKey
	m["menu"] = KeyAltKey
	for r := 'a'; r <= 'z'; r++ {
		m[string(r)] = Letter(r)
	}
	for d := 0; d <= 9; d++ {
		m[strconv.Itoa(d)] = Digit(d)
		m["numpad"+strconv.Itoa(d)] = NumPad(d)
	}
	for n := 1; n <= 24; n++ {
		m["f"+strconv.Itoa(n)] = FunctionKey(n)
	}
	return m
}

func (k Key) String() string {
	if k < 0 {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	var sb strings.Builder
	if k&Control != 0 {
		sb.WriteString("Ctrl+")
	}
	if k&Shift != 0 {
		sb.WriteString("Shift+")
	}
	if k&Alt != 0 {
		sb.WriteString("Alt+")
	}
	code := k & KeyCodeMask
	switch {
	case code == KeyNone:
		sb.WriteString("None")
	case code >= KeyA && code <= KeyA+25:
		sb.WriteByte(byte('A' + code - KeyA))
	case code >= Key0 && code <= Key0+9:
		sb.WriteByte(byte('0' + code - Key0))
	case code >= KeyNumPad0 && code <= KeyNumPad0+9:
		fmt.Fprintf(&sb, "NumPad%d", int(code-KeyNumPad0))
	case code >= KeyF1 && code < KeyF1+24:
		fmt.Fprintf(&sb, "F%d", int(code-KeyF1+1))
	default:
		if name, ok := namedKeys[code]; ok {
			sb.WriteString(name)
		} else {
			fmt.Fprintf(&sb, "Key(%d)", int(code))
		}
	}
	return sb.String()
}

// ParseKey parses names such as "W", "Space", "F5" or "Ctrl+Shift+S".
// The last '+' separated part names the key; the others are modifiers.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	var mods Key
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "shift":
			mods |= Shift
		case "ctrl", "control":
			mods |= Control
		case "alt":
			mods |= Alt
		default:
			return KeyNone, fmt.Errorf("%w: modifier %q in %q", ErrUnknownKey, p, s)
		}
	}
	name := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	k, ok := keysByName[name]
	if !ok {
		return KeyNone, fmt.Errorf("%w: %q", ErrUnknownKey, s)
	}
	return k | mods, nil
}

// MouseButton is a bit set of mouse buttons.
type MouseButton uint32

const (
	MouseLeft MouseButton = 1 << iota
	MouseRight
	MouseMiddle
	MouseX1
	MouseX2

	mouseButtonMask = MouseLeft | MouseRight | MouseMiddle | MouseX1 | MouseX2
)

func (b MouseButton) String() string {
	names := []string{"Left", "Right", "Middle", "X1", "X2"}
	var parts []string
	for i, name := range names {
		if b&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}
