// Package joypad folds bound keys into the direction and action bitmasks
// game hosts poll each step.
package joypad

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ushitora-anqou/gameform/constant"
	"github.com/ushitora-anqou/gameform/input"
)

var ErrUnknownButton = errors.New("unknown joypad button")

// Querier is the subset of *input.Tracker the pad reads.
type Querier interface {
	IsDown(key input.Key) bool
	IsTriggered(key input.Key) bool
}

type button struct {
	name      string
	direction bool
	bit       uint
	key       input.Key
}

func defaultButtons() []button {
	return []button{
		{"up", true, constant.DIR_UP, input.Letter('w')},
		{"down", true, constant.DIR_DOWN, input.Letter('s')},
		{"left", true, constant.DIR_LEFT, input.Letter('a')},
		{"right", true, constant.DIR_RIGHT, input.Letter('d')},
		{"a", false, constant.ACT_A, input.Letter('k')},
		{"b", false, constant.ACT_B, input.Letter('j')},
		{"start", false, constant.ACT_START, input.KeyEnter},
		{"select", false, constant.ACT_SELECT, input.KeySpace},
	}
}

type Pad struct {
	buttons []button

	direction, action               uint8
	pressedDirection, pressedAction uint8
}

// New binds buttons to keys. bindings maps button names to key names as
// accepted by input.ParseKey; buttons left out keep their default key.
func New(bindings map[string]string) (*Pad, error) {
	p := &Pad{buttons: defaultButtons()}
	for name, keyName := range bindings {
		i := p.index(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownButton, name)
		}
		key, err := input.ParseKey(keyName)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
		p.buttons[i].key = key
	}
	return p, nil
}

func (p *Pad) index(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, b := range p.buttons {
		if b.name == name {
			return i
		}
	}
	return -1
}

// Binding returns the key bound to the named button.
func (p *Pad) Binding(name string) (input.Key, error) {
	i := p.index(name)
	if i < 0 {
		return input.KeyNone, fmt.Errorf("%w: %q", ErrUnknownButton, name)
	}
	return p.buttons[i].key, nil
}

// Poll samples q. Call it once per simulate step, after the tracker advanced.
func (p *Pad) Poll(q Querier) {
	p.direction, p.action = 0, 0
	p.pressedDirection, p.pressedAction = 0, 0
	for _, b := range p.buttons {
		held, pressed := &p.action, &p.pressedAction
		if b.direction {
			held, pressed = &p.direction, &p.pressedDirection
		}
		if q.IsDown(b.key) {
			*held |= 1 << b.bit
		}
		if q.IsTriggered(b.key) {
			*pressed |= 1 << b.bit
		}
	}
}

// Direction returns the held directions, one bit per constant.DIR_*.
func (p *Pad) Direction() uint8 {
	return p.direction
}

// Action returns the held buttons, one bit per constant.ACT_*.
func (p *Pad) Action() uint8 {
	return p.action
}

// Pressed returns the directions and buttons that went down this step.
func (p *Pad) Pressed() (direction, action uint8) {
	return p.pressedDirection, p.pressedAction
}
