package vector

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestArithmetic(t *testing.T) {
	a := New(1, 2)
	b := New(3, -4)

	if got := a.Add(b); got != (Vector{4, -2}) {
		t.Fatalf("Add: got %v", got)
	}
	if got := a.Sub(b); got != (Vector{-2, 6}) {
		t.Fatalf("Sub: got %v", got)
	}
	if got := a.Mul(3); got != (Vector{3, 6}) {
		t.Fatalf("Mul: got %v", got)
	}
	if got := b.Div(2); got != (Vector{1.5, -2}) {
		t.Fatalf("Div: got %v", got)
	}
	if got := a.Dot(b); got != -5 {
		t.Fatalf("Dot: got %v", got)
	}
	if got := b.Magnitude(); got != 5 {
		t.Fatalf("Magnitude: got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	n := New(3, 4).Normalize()
	if !near(n.X, 0.6) || !near(n.Y, 0.8) {
		t.Fatalf("Normalize: got %v", n)
	}
	if got := Zero.Normalize(); got != Zero {
		t.Fatalf("Normalize(zero): got %v", got)
	}
}

func TestReflect(t *testing.T) {
	table := []struct {
		v, normal, expected Vector
	}{
		{New(1, -1), New(0, 1), New(1, 1)},
		{New(2, 3), New(-1, 0), New(-2, 3)},
		{New(2, 3), Zero, New(2, 3)},
	}
	for _, entry := range table {
		got := entry.v.Reflect(entry.normal)
		if !near(got.X, entry.expected.X) || !near(got.Y, entry.expected.Y) {
			t.Fatalf("%v.Reflect(%v) = %v, expected %v", entry.v, entry.normal, got, entry.expected)
		}
	}
}

func TestAngles(t *testing.T) {
	if got := Right.AngleBetween(Down); !near(got, 90) {
		t.Fatalf("AngleBetween(right, down) = %v", got)
	}
	if got := Right.AngleBetween(Left); !near(got, 180) {
		t.Fatalf("AngleBetween(right, left) = %v", got)
	}
	if got := New(1, 1).AngleDegrees(); !near(got, 45) {
		t.Fatalf("AngleDegrees = %v", got)
	}
	if got := Up.AngleDegrees(); !near(got, -90) {
		t.Fatalf("AngleDegrees(up) = %v", got)
	}
}

func TestDirections(t *testing.T) {
	if Up.Add(Down) != Zero || Left.Add(Right) != Zero {
		t.Fatal("opposite directions do not cancel")
	}
	if got := New(1.5, -2).String(); got != "(1.5, -2)" {
		t.Fatalf("String = %q", got)
	}
}
