package recorder

import "sync/atomic"

// Clock stamps recorded events with strictly increasing sequence numbers.
type Clock interface {
	Next() int64
}

// SeqClock is the default Clock: a logical counter, never wall time, so a
// replayed session produces the same seq values.
//
// Thread-safety: safe for concurrent use (atomic operations).
type SeqClock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *SeqClock {
	return &SeqClock{}
}

// NewClockAt creates a clock positioned at start, so the next Next returns
// start+1. Used to resume a stored session (see store.LastSeq).
func NewClockAt(start int64) *SeqClock {
	c := &SeqClock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *SeqClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, or the start position.
func (c *SeqClock) Current() int64 {
	return c.seq.Load()
}
