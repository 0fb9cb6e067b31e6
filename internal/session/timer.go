package session

import (
	"sync"
	"time"
)

// Countdown is a 1-second-resolution countdown timer. It invokes onTick once
// per elapsed second with the remaining seconds, and onExpire exactly once
// when the count reaches zero. Stop is idempotent and safe to call after
// expiry; the owner must call it when the session's view is torn down so no
// callback outlives the session.
type Countdown struct {
	interval time.Duration
	seconds  int
	onTick   func(remaining int)
	onExpire func()

	stopOnce sync.Once
	done     chan struct{}
}

// NewCountdown creates a countdown over the given number of seconds. Callbacks
// may be nil. The countdown does not run until Start is called.
func NewCountdown(seconds int, onTick func(remaining int), onExpire func()) *Countdown {
	return newCountdown(seconds, time.Second, onTick, onExpire)
}

// newCountdown allows tests to shrink the tick interval.
func newCountdown(seconds int, interval time.Duration, onTick func(remaining int), onExpire func()) *Countdown {
	return &Countdown{
		interval: interval,
		seconds:  seconds,
		onTick:   onTick,
		onExpire: onExpire,
		done:     make(chan struct{}),
	}
}

// Start launches the countdown goroutine. A countdown over zero or negative
// seconds expires on the first tick.
func (c *Countdown) Start() {
	go c.run()
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	remaining := c.seconds
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			remaining--
			if remaining > 0 {
				if c.onTick != nil {
					c.onTick(remaining)
				}
				continue
			}
			if c.onTick != nil {
				c.onTick(0)
			}
			if c.onExpire != nil {
				c.onExpire()
			}
			return
		}
	}
}

// Stop cancels future ticks. Calling it multiple times, or after expiry, is a
// no-op.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}
