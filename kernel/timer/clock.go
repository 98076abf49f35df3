// Package timer turns the periodic timer interrupt into a monotonic
// millisecond clock with a table of one-shot timeouts.
package timer

import (
	"sync/atomic"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/sync"
)

// Clock counts timer interrupts. With the PIT programmed at
// DefaultFrequency, one tick equals one millisecond.
type Clock struct {
	ticks    atomic.Uint64
	timeouts Scheduler

	// waitFn is called between polls in Sleep.
	waitFn func()
}

// NewClock creates a Clock. Timeout slot allocation is protected by guard
// and Sleep calls wait between polls of the tick counter; a nil wait
// defaults to cpu.Halt.
func NewClock(guard sync.Guard, wait func()) *Clock {
	c := &Clock{}
	c.Init(guard, wait)
	return c
}

// Init resets the tick count and every timeout slot. It lets a Clock that
// is embedded in a statically allocated structure be set up in place.
func (c *Clock) Init(guard sync.Guard, wait func()) {
	if wait == nil {
		wait = cpu.Halt
	}
	c.ticks.Store(0)
	c.timeouts.Init(guard)
	c.waitFn = wait
}

// Tick advances the clock by one tick and fires any expired timeouts. It is
// the timer line handler and runs in interrupt context.
func (c *Clock) Tick() {
	c.timeouts.Advance(c.ticks.Add(1))
}

// Uptime returns the number of ticks since boot. The value may advance
// between two calls at any time.
func (c *Clock) Uptime() uint64 {
	return c.ticks.Load()
}

// Schedule arranges for cb to run delay ticks from now. It returns false if
// the request was dropped because all timeout slots are taken. Delays that
// would wrap the tick counter saturate at its largest value.
func (c *Clock) Schedule(cb Callback, delay uint64) bool {
	now := c.Uptime()
	target := now + delay
	if target < now {
		target = ^uint64(0)
	}
	return c.timeouts.Schedule(cb, target)
}

// Pending returns the number of armed timeouts.
func (c *Clock) Pending() int {
	return c.timeouts.Pending()
}

// Sleep blocks until at least ms ticks have elapsed. It must only be called
// outside interrupt context since it depends on timer interrupts being
// delivered. There is no way to wake a sleeper early.
func (c *Clock) Sleep(ms uint64) {
	start := c.Uptime()
	for c.Uptime()-start < ms {
		c.waitFn()
	}
}
