// Package debounce coalesces rapid repeated triggers (keystrokes, sort-header
// clicks) into one delayed execution. It is a coalescing mechanism only: no
// retries, no notion of failure.
package debounce

import (
	"sync"
	"time"
)

// Coordinator arms a timer per Schedule call; a new call before the timer
// fires cancels the previous one. Last-write-wins: earlier closures are
// discarded entirely, never queued.
type Coordinator struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	gen      uint64
	disposed bool
}

// New returns a Coordinator with the given delay.
func New(delay time.Duration) *Coordinator {
	return &Coordinator{delay: delay}
}

// Schedule arms the timer to run fn after the configured delay, cancelling
// any previously scheduled call.
func (c *Coordinator) Schedule(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.delay, func() {
		// The generation check closes the race where the timer fires while
		// Schedule or Dispose holds the lock: a stale callback must not run.
		c.mu.Lock()
		stale := c.disposed || gen != c.gen
		c.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Cancel drops any pending wake-up without disposing the coordinator.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

// Dispose cancels any pending timer and guarantees no callback fires
// afterward. Further Schedule calls are no-ops.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

// Delay returns the configured delay.
func (c *Coordinator) Delay() time.Duration {
	return c.delay
}
