// If you are AI: This file defines the monotonic millisecond clocks used by the scheduler.

package sched

import (
	"sync"
	"time"
)

// Clock returns monotonic time in milliseconds since an arbitrary origin.
type Clock interface {
	Now() float64
}

// SystemClock measures milliseconds since its creation.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock anchored at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns elapsed milliseconds with sub-millisecond precision.
func (c *SystemClock) Now() float64 {
	return float64(time.Since(c.start)) / float64(time.Millisecond)
}

// ManualClock is a clock moved explicitly, for tests and simulations.
type ManualClock struct {
	mu  sync.Mutex
	now float64
}

// Now returns the current manual time.
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to ms.
func (c *ManualClock) Set(ms float64) {
	c.mu.Lock()
	c.now = ms
	c.mu.Unlock()
}

// Advance moves the clock forward by ms and returns the new time.
func (c *ManualClock) Advance(ms float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
	return c.now
}
