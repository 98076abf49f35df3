// Package keyboard models an i8042 keyboard controller with an attached
// keyboard that speaks scan code set 1, and translates text and key names to
// the byte sequences such a keyboard sends.
package keyboard

import (
	"sync"

	"github.com/Anonimek123-dev/COSMOS-C/device/ps2"
)

const (
	DataPort   = ps2.DataPort
	StatusPort = ps2.StatusPort

	// MaxQueued bounds the output queue. Bytes typed past it are dropped
	// as a real controller would on overrun.
	MaxQueued = 256

	replyACK = 0xfa
)

// Controller is the i8042 model. It raises IRQ 1 whenever a byte becomes
// available in the data register. It is safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	raise func(line uint8)

	queue     []uint8
	dropped   int
	leds      uint8
	expectLED bool
	busyPolls int
}

// New returns an empty controller that reports data through raise(1).
func New(raise func(line uint8)) *Controller {
	return &Controller{raise: raise}
}

// Type queues scan code bytes as if they were sent by the keyboard.
func (c *Controller) Type(codes ...uint8) {
	c.mu.Lock()
	wasEmpty := len(c.queue) == 0
	for _, code := range codes {
		if len(c.queue) >= MaxQueued {
			c.dropped++
			continue
		}
		c.queue = append(c.queue, code)
	}
	notify := wasEmpty && len(c.queue) != 0
	c.mu.Unlock()

	if notify {
		c.raise(1)
	}
}

// Pending returns the number of bytes not yet read by the CPU.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Dropped returns the number of bytes lost to queue overruns.
func (c *Controller) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// LEDs returns the last lock LED mask sent by the CPU.
func (c *Controller) LEDs() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leds
}

// SetBusy makes the next n status reads report a full input buffer.
func (c *Controller) SetBusy(n int) {
	c.mu.Lock()
	c.busyPolls = n
	c.mu.Unlock()
}

// In implements emulator.PortDevice.
func (c *Controller) In(port uint16) uint8 {
	c.mu.Lock()

	switch port {
	case StatusPort:
		var status uint8
		if len(c.queue) != 0 {
			status |= ps2.StatusOutputFull
		}
		if c.busyPolls > 0 {
			c.busyPolls--
			status |= ps2.StatusInputFull
		}
		c.mu.Unlock()
		return status
	case DataPort:
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return 0
		}
		b := c.queue[0]
		c.queue = c.queue[1:]
		more := len(c.queue) != 0
		c.mu.Unlock()

		if more {
			c.raise(1)
		}
		return b
	}

	c.mu.Unlock()
	return 0xff
}

// Out implements emulator.PortDevice. The keyboard acknowledges every byte
// written to the data port; the byte after a set-LEDs command is taken as
// the LED mask.
func (c *Controller) Out(port uint16, val uint8) {
	if port != DataPort {
		return
	}

	c.mu.Lock()
	switch {
	case c.expectLED:
		c.leds = val & 7
		c.expectLED = false
	case val == ps2.CmdSetLEDs:
		c.expectLED = true
	}
	c.mu.Unlock()

	c.Type(replyACK)
}
