// Package clock provides the daemon's single monotonic millisecond time
// source. The scheduler and the virtual-input protocol consult nothing
// else for "now".
package clock

import "time"

// Clock answers "now" in monotonic milliseconds.
type Clock struct {
	start time.Time
}

// New returns a Clock anchored at the current monotonic instant.
func New() *Clock {
	return &Clock{start: time.Now()}
}

// NowMillis returns the number of milliseconds elapsed since the Clock was
// created. Go's time.Since retains monotonic readings even across wall-clock
// adjustments, so this value never jumps backward.
func (c *Clock) NowMillis() int64 {
	return time.Since(c.start).Milliseconds()
}
