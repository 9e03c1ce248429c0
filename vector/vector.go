// Package vector provides a 2-dimensional Euclidean vector.
package vector

import (
	"fmt"
	"math"
)

type Vector struct {
	X, Y float32
}

var (
	Zero  = Vector{0, 0}
	Left  = Vector{-1, 0}
	Right = Vector{1, 0}
	Up    = Vector{0, -1}
	Down  = Vector{0, 1}
)

func New(x, y float32) Vector {
	return Vector{x, y}
}

func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y}
}

func (v Vector) Mul(s float32) Vector {
	return Vector{v.X * s, v.Y * s}
}

func (v Vector) Div(s float32) Vector {
	return Vector{v.X / s, v.Y / s}
}

func (v Vector) Dot(o Vector) float32 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vector) Magnitude() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Normalize returns the unit vector pointing in the same direction.
// The zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.Div(m)
}

// Reflect mirrors v across the line perpendicular to normal.
func (v Vector) Reflect(normal Vector) Vector {
	nn := normal.Dot(normal)
	if nn == 0 {
		return v
	}
	mult := 2 * v.Dot(normal) / nn
	return v.Sub(normal.Mul(mult))
}

// AngleBetween returns the unsigned angle between v and o in degrees.
func (v Vector) AngleBetween(o Vector) float32 {
	cos := float64(v.Normalize().Dot(o.Normalize()))
	cos = math.Max(-1, math.Min(1, cos))
	return float32(math.Acos(cos) * 180 / math.Pi)
}

func (v Vector) AngleRadians() float32 {
	return float32(math.Atan2(float64(v.Y), float64(v.X)))
}

func (v Vector) AngleDegrees() float32 {
	return v.AngleRadians() * 180 / math.Pi
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
