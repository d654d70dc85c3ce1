package engine

import "sync/atomic"

// Clock is the monotonic revision counter for snapshots.
//
// Every recompute stamps the resulting snapshot with a strictly
// increasing revision from this clock. Revisions never use wall-clock
// time, so replaying the same mutation sequence numbers snapshots
// identically.
//
// Thread-safety: atomic operations make the clock safe for concurrent
// use, though the single-writer loop is the only caller of Next in
// practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific revision. Used when
// resuming from a persisted audit log.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next revision and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current revision without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
