package testutil

import (
	"sync"
	"time"
)

// DeterministicClock provides a thread-safe, manually advanced clock for tests.
//
// Unlike segment.SystemClock, it only moves when a test tells it to. This
// enables the same test scenario to run multiple times with identical
// rendered timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewDeterministicClock creates a clock pinned to start.
func NewDeterministicClock(start time.Time) *DeterministicClock {
	return &DeterministicClock{now: start}
}

// Now returns the current instant without advancing.
//
// Implements segment.Clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
//
// Thread-safe: uses mutex to protect now access.
func (c *DeterministicClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set pins the clock to t.
//
// Used for test reuse. Setting backwards is allowed; the clock makes no
// monotonicity promise.
func (c *DeterministicClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
