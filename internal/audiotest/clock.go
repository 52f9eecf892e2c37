// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync"
	"time"

	"github.com/ik5/karamix/mixer"
)

// Clock is a manual clock for auto-stop timers. Timers fire only when
// Advance moves time past their deadline.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*clockTimer
}

type clockTimer struct {
	clock    *Clock
	deadline time.Duration
	f        func()
	stopped  bool
	fired    bool
}

func (t *clockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true

	return active
}

// AfterFunc satisfies mixer.AfterFunc.
func (c *Clock) AfterFunc(d time.Duration, f func()) mixer.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &clockTimer{clock: c, deadline: c.now + d, f: f}
	c.timers = append(c.timers, t)

	return t
}

// Advance moves the clock forward and runs every timer that became due.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d

	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.deadline <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

// Pending counts timers that are armed and have not fired.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}

	return n
}

// Last returns the deadline of the most recently armed timer, measured
// from the clock's zero.
func (c *Clock) Last() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.timers) == 0 {
		return 0, false
	}

	return c.timers[len(c.timers)-1].deadline, true
}
