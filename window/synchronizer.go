package window

import (
	"time"

	"github.com/ushitora-anqou/gameform/clock"
)

// maxLagFrames bounds how far behind the schedule may fall before it is
// re-anchored to the current time.
const maxLagFrames = 4

// TimeSynchronizer paces a loop to a target frame rate. The schedule advances
// by whole frames, so short oversleeps are absorbed by the next frames.
type TimeSynchronizer struct {
	clock    clock.Clock
	prev     clock.Tick
	perFrame clock.Tick
	sleep    func(time.Duration)
}

func NewTimeSynchronizer(c clock.Clock, targetFPS float64) *TimeSynchronizer {
	return &TimeSynchronizer{
		clock:    c,
		prev:     c.Now(),
		perFrame: max(clock.Tick(float64(c.Frequency())/targetFPS), 1),
		sleep:    time.Sleep,
	}
}

// MaySleep sleeps until the current frame's time slot ends.
func (ts *TimeSynchronizer) MaySleep() {
	cur := ts.clock.Now()
	if diff := ts.prev + ts.perFrame - cur; diff > 0 {
		ts.sleep(clock.Duration(diff, ts.clock.Frequency()))
	}
	ts.prev += ts.perFrame
	if cur-ts.prev > maxLagFrames*ts.perFrame {
		ts.prev = cur
	}
}
