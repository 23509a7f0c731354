// Package timing provides the per-frame driver: a millisecond timeline, an
// event queue, repeating timers and the tickers that animate layers, all
// advanced from a single render goroutine.
package timing

import (
	"math"
	"sync"
	"time"
)

// VTimeInMs is a point on the driver timeline, in milliseconds since the
// driver clock started.
type VTimeInMs uint64

// EndOfTime is the last point on the timeline. Nothing scheduled there is
// ever reached.
const EndOfTime = VTimeInMs(math.MaxUint64)

// Add returns t+d, saturating at EndOfTime.
func (t VTimeInMs) Add(d VTimeInMs) VTimeInMs {
	if d > EndOfTime-t {
		return EndOfTime
	}

	return t + d
}

// Clock tells the driver how far the timeline should advance.
type Clock interface {
	Now() VTimeInMs
}

// MonotonicClock reads the process monotonic clock.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock creates a clock whose zero is the moment of creation.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now returns the milliseconds elapsed since the clock was created.
func (c *MonotonicClock) Now() VTimeInMs {
	return VTimeInMs(time.Since(c.start).Milliseconds())
}

// ManualClock only moves when told to. Tests and the headless simulator use
// it to get a deterministic timeline.
type ManualClock struct {
	mu  sync.RWMutex
	now VTimeInMs
}

// NewManualClock creates a manual clock starting at the given time.
func NewManualClock(start VTimeInMs) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() VTimeInMs {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.now
}

// Set moves the clock to t. Moving backwards is ignored.
func (c *ManualClock) Set(t VTimeInMs) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t > c.now {
		c.now = t
	}
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d VTimeInMs) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now += d
}
