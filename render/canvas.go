// Package render implements a double-buffered software canvas with an affine
// transform stack.
//
// Drawing calls target the back buffer and belong to the render goroutine.
// Invalidate publishes the back buffer to the front buffer, which the UI
// goroutine reads through Present.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

var ErrInvalidSize = errors.New("invalid canvas size")

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

type Canvas struct {
	width, height int

	back   *image.RGBA
	matrix f64.Aff3
	stack  []f64.Aff3

	// Interpolator samples images drawn through DrawImage.
	Interpolator draw.Interpolator

	mtxFront sync.Mutex
	front    *image.RGBA
	dirty    bool
}

func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	rect := image.Rect(0, 0, width, height)
	return &Canvas{
		width:        width,
		height:       height,
		back:         image.NewRGBA(rect),
		front:        image.NewRGBA(rect),
		matrix:       identity,
		Interpolator: draw.ApproxBiLinear,
	}, nil
}

func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// Transform returns the current local-to-canvas transform.
func (c *Canvas) Transform() f64.Aff3 {
	return c.matrix
}

func (c *Canvas) Push() {
	c.stack = append(c.stack, c.matrix)
}

// Pop restores the transform saved by the matching Push. Popping an empty
// stack resets the transform to identity.
func (c *Canvas) Pop() {
	if len(c.stack) == 0 {
		c.matrix = identity
		return
	}
	c.matrix = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) Identity() {
	c.matrix = identity
}

func (c *Canvas) Translate(x, y float64) {
	c.matrix = mul(c.matrix, f64.Aff3{1, 0, x, 0, 1, y})
}

// Rotate rotates around the local origin by angle radians. Positive angles
// turn clockwise on screen.
func (c *Canvas) Rotate(angle float64) {
	sin, cos := math.Sincos(angle)
	c.matrix = mul(c.matrix, f64.Aff3{cos, -sin, 0, sin, cos, 0})
}

func (c *Canvas) Scale(x, y float64) {
	c.matrix = mul(c.matrix, f64.Aff3{x, 0, 0, 0, y, 0})
}

// Apply maps a local point to canvas coordinates.
func (c *Canvas) Apply(x, y float64) (float64, float64) {
	m := c.matrix
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Clear fills the whole back buffer, ignoring the transform.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.back, c.back.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	s2d := mul(c.matrix, f64.Aff3{w, 0, x, 0, h, y})
	draw.NearestNeighbor.Transform(c.back, s2d, image.NewUniform(col), image.Rect(0, 0, 1, 1), draw.Over, nil)
}

// DrawImage draws the sr part of src with its top-left corner at local (x, y).
// An empty sr draws the whole image.
func (c *Canvas) DrawImage(src image.Image, x, y float64, sr image.Rectangle) {
	if src == nil {
		return
	}
	if sr.Empty() {
		sr = src.Bounds()
	}
	s2d := mul(c.matrix, f64.Aff3{1, 0, x - float64(sr.Min.X), 0, 1, y - float64(sr.Min.Y)})
	if dp, ok := pixelOffset(s2d); ok {
		draw.Draw(c.back, sr.Add(dp), src, sr.Min, draw.Over)
		return
	}
	c.Interpolator.Transform(c.back, s2d, src, sr, draw.Over, nil)
}

// pixelOffset reports whether m only translates by whole pixels.
func pixelOffset(m f64.Aff3) (image.Point, bool) {
	if m[0] != 1 || m[1] != 0 || m[3] != 0 || m[4] != 1 {
		return image.Point{}, false
	}
	if m[2] != math.Trunc(m[2]) || m[5] != math.Trunc(m[5]) {
		return image.Point{}, false
	}
	return image.Pt(int(m[2]), int(m[5])), true
}

// Invalidate publishes the back buffer. It implements loop.Surface.
func (c *Canvas) Invalidate() {
	c.mtxFront.Lock()
	defer c.mtxFront.Unlock()
	copy(c.front.Pix, c.back.Pix)
	c.dirty = true
}

// Present calls fn with the front buffer if it changed since the last
// Present, and reports whether it did. fn must not retain the buffer.
func (c *Canvas) Present(fn func(frame *image.RGBA)) bool {
	c.mtxFront.Lock()
	defer c.mtxFront.Unlock()
	if !c.dirty {
		return false
	}
	fn(c.front)
	c.dirty = false
	return true
}

func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}
