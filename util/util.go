package util

import "cmp"

// Clamp limits val to the closed range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return min(max(val, lo), hi)
}

// TickCounter reports a positive edge every time the accumulated ticks
// pass the target. The remainder is carried over.
type TickCounter struct {
	current, target int64
}

func NewTickCounter(target int64) *TickCounter {
	return &TickCounter{target: target}
}

func (tc *TickCounter) Tick(tick int64) bool {
	posedge := false
	tc.current += tick
	if tc.target > 0 && tc.current >= tc.target {
		tc.current %= tc.target
		posedge = true
	}
	return posedge
}
