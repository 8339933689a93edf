package harness

import "sync/atomic"

// LogicalClock stamps records with strictly increasing seq values. It is
// used when recording into a store that may already hold flows, so it can
// resume after the highest seq written so far.
type LogicalClock struct {
	seq atomic.Int64
}

// NewLogicalClockAt returns a clock whose first Next is start+1.
func NewLogicalClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}
