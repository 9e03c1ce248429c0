package game

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ushitora-anqou/gameform/vector"
)

// Canvas is the drawing surface objects render to. *render.Canvas
// implements it.
type Canvas interface {
	Push()
	Pop()
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(x, y float64)
	FillRect(x, y, w, h float64, col color.Color)
	DrawImage(src image.Image, x, y float64, sr image.Rectangle)
}

// Drawer paints an object in the object's local space.
type Drawer interface {
	Draw(c Canvas, o *Object)
}

type DrawerFunc func(c Canvas, o *Object)

func (f DrawerFunc) Draw(c Canvas, o *Object) { f(c, o) }

// Object is a kinematic entity. Rotation is in degrees.
type Object struct {
	name string

	Position     vector.Vector
	Velocity     vector.Vector
	Acceleration vector.Vector
	Rotation     float32

	drawer Drawer
}

func NewObject(name string, drawer Drawer) (*Object, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty object name", ErrInvalidArgument)
	}
	return &Object{name: name, drawer: drawer}, nil
}

func (o *Object) Name() string {
	return o.name
}

// Update integrates one step of dt milliseconds with semi-implicit Euler.
// Velocity is per step, so position moves by the new velocity once.
func (o *Object) Update(dt float32) {
	o.Velocity = o.Velocity.Add(o.Acceleration.Mul(dt))
	o.Position = o.Position.Add(o.Velocity)
}

// Draw rotates c around its origin, delegates to the drawer and restores
// the previous transform. The rotation is applied on top of the caller's
// current transform, so callers translate to the object's position first.
func (o *Object) Draw(c Canvas) {
	c.Push()
	defer c.Pop()
	c.Rotate(float64(o.Rotation) * math.Pi / 180)
	if o.drawer != nil {
		o.drawer.Draw(c, o)
	}
}
