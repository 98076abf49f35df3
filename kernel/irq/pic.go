// Package irq drives the cascaded 8259 interrupt controllers and routes
// interrupt vectors to their handlers.
package irq

import (
	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
)

// I/O ports of the primary and secondary controllers.
const (
	PrimaryCommandPort   = 0x20
	PrimaryDataPort      = 0x21
	SecondaryCommandPort = 0xa0
	SecondaryDataPort    = 0xa1
)

const (
	// icw1Init starts the initialization sequence and announces that ICW4
	// will follow.
	icw1Init = 0x11

	// icw3Primary tells the primary controller that the secondary is
	// attached to line 2; icw3Secondary tells the secondary its cascade
	// identity.
	icw3Primary   = 0x04
	icw3Secondary = 0x02

	// icw4Mode8086 selects 8086/88 mode.
	icw4Mode8086 = 0x01

	// cmdEOI is the non-specific end-of-interrupt command.
	cmdEOI = 0x20

	// minOffset is the first vector not reserved for CPU exceptions.
	minOffset = 32
)

// Lines that are always unmasked after a remap.
const (
	TimerLine    = 0
	KeyboardLine = 1
)

var (
	errOffsetOverlap = &kernel.Error{Module: "pic", Message: "vector offset overlaps CPU exceptions"}
	errOffsetAlign   = &kernel.Error{Module: "pic", Message: "vector offset must be a multiple of 8"}
)

// Controller drives a primary/secondary pair of 8259 interrupt controllers.
type Controller struct {
	bus              cpu.Bus
	offset1, offset2 uint8
}

// NewController returns a Controller that talks to the hardware via bus.
func NewController(bus cpu.Bus) *Controller {
	c := &Controller{}
	c.Init(bus)
	return c
}

// Init attaches c to bus without touching the hardware.
func (c *Controller) Init(bus cpu.Bus) {
	c.bus = bus
	c.offset1, c.offset2 = 0, 0
}

// Remap reprograms the vector offsets of both controllers so that lines 0-7
// map to offset1..offset1+7 and lines 8-15 to offset2..offset2+7. The mask
// registers are preserved except for the timer and keyboard lines which are
// always unmasked.
func (c *Controller) Remap(offset1, offset2 uint8) *kernel.Error {
	if offset1 < minOffset || offset2 < minOffset {
		return errOffsetOverlap
	}
	if offset1&7 != 0 || offset2&7 != 0 {
		return errOffsetAlign
	}

	mask1 := c.bus.ReadPort(PrimaryDataPort)
	mask2 := c.bus.ReadPort(SecondaryDataPort)

	// ICW1-ICW4, issued to both controllers in lock-step
	c.bus.WritePort(PrimaryCommandPort, icw1Init)
	c.bus.WritePort(SecondaryCommandPort, icw1Init)
	c.bus.WritePort(PrimaryDataPort, offset1)
	c.bus.WritePort(SecondaryDataPort, offset2)
	c.bus.WritePort(PrimaryDataPort, icw3Primary)
	c.bus.WritePort(SecondaryDataPort, icw3Secondary)
	c.bus.WritePort(PrimaryDataPort, icw4Mode8086)
	c.bus.WritePort(SecondaryDataPort, icw4Mode8086)

	mask1 &^= 1<<TimerLine | 1<<KeyboardLine
	c.bus.WritePort(PrimaryDataPort, mask1)
	c.bus.WritePort(SecondaryDataPort, mask2)

	c.offset1, c.offset2 = offset1, offset2
	return nil
}

// Offsets returns the vector offsets programmed by the last successful Remap.
func (c *Controller) Offsets() (uint8, uint8) {
	return c.offset1, c.offset2
}

// Mask returns the combined interrupt mask of both controllers; bit n is set
// if line n is masked.
func (c *Controller) Mask() uint16 {
	return uint16(c.bus.ReadPort(PrimaryDataPort)) | uint16(c.bus.ReadPort(SecondaryDataPort))<<8
}

// SendEOI acknowledges the interrupt currently serviced on line. Lines
// served by the secondary controller must be acknowledged on both chips.
// Every serviced hardware interrupt needs exactly one SendEOI call; a missing
// acknowledgment blocks that line and all lower priority lines.
func (c *Controller) SendEOI(line uint8) {
	if line >= 8 {
		c.bus.WritePort(SecondaryCommandPort, cmdEOI)
	}
	c.bus.WritePort(PrimaryCommandPort, cmdEOI)
}
