// Package pic models a cascaded pair of 8259A programmable interrupt
// controllers as wired in a PC: the secondary chip is attached to line 2 of
// the primary chip. Only the features the kernel uses are modelled: the ICW
// initialization sequence, the mask register, fixed priority and the
// non-specific EOI command.
package pic

import (
	"sync"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/irq"
)

const (
	PrimaryCommandPort   = irq.PrimaryCommandPort
	PrimaryDataPort      = irq.PrimaryDataPort
	SecondaryCommandPort = irq.SecondaryCommandPort
	SecondaryDataPort    = irq.SecondaryDataPort

	// CascadeLine is the primary line the secondary chip is attached to.
	CascadeLine = 2

	icw1Flag   = 0x10
	icw1NeedI4 = 0x01
	icw1Single = 0x02
	ocwEOIMask = 0xe0
	ocwEOI     = 0x20
)

type chip struct {
	imr, irr, isr uint8
	offset        uint8

	// step is the next expected ICW (2..4) or 0 once initialized.
	step     int
	needICW4 bool
	single   bool
	ready    bool
}

func (c *chip) command(val uint8) {
	switch {
	case val&icw1Flag != 0:
		*c = chip{
			step:     2,
			needICW4: val&icw1NeedI4 != 0,
			single:   val&icw1Single != 0,
		}
	case val&ocwEOIMask == ocwEOI:
		for line := uint8(0); line < 8; line++ {
			if bit := uint8(1) << line; c.isr&bit != 0 {
				c.isr &^= bit
				return
			}
		}
	}
}

func (c *chip) data(val uint8) {
	switch c.step {
	case 2:
		c.offset = val &^ 7
		c.step = 3
		if c.single {
			c.advanceFromICW3()
		}
	case 3:
		c.advanceFromICW3()
	case 4:
		c.step = 0
		c.ready = true
	default:
		c.imr = val
	}
}

func (c *chip) advanceFromICW3() {
	if c.needICW4 {
		c.step = 4
		return
	}
	c.step = 0
	c.ready = true
}

// next returns the highest priority unmasked pending line. A line in
// service blocks every line of equal or lower priority.
func (c *chip) next() (uint8, bool) {
	for line := uint8(0); line < 8; line++ {
		bit := uint8(1) << line
		if c.isr&bit != 0 {
			return 0, false
		}
		if c.irr&bit != 0 && c.imr&bit == 0 {
			return line, true
		}
	}
	return 0, false
}

// Pair is a primary/secondary controller pair. It is safe for concurrent
// use.
type Pair struct {
	mu                 sync.Mutex
	primary, secondary chip
}

// New returns an uninitialized pair with every line masked.
func New() *Pair {
	p := &Pair{}
	p.primary.imr = 0xff
	p.secondary.imr = 0xff
	return p
}

// In reads the mask register from a data port or the request register from
// a command port.
func (p *Pair) In(port uint16) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch port {
	case PrimaryCommandPort:
		return p.primary.irr
	case PrimaryDataPort:
		return p.primary.imr
	case SecondaryCommandPort:
		return p.secondary.irr
	case SecondaryDataPort:
		return p.secondary.imr
	}
	return 0xff
}

// Out writes a command or data byte.
func (p *Pair) Out(port uint16, val uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch port {
	case PrimaryCommandPort:
		p.primary.command(val)
	case PrimaryDataPort:
		p.primary.data(val)
	case SecondaryCommandPort:
		p.secondary.command(val)
		// requests that arrived while the secondary was in service
		// are forwarded again
		if p.secondary.irr != 0 {
			p.primary.irr |= 1 << CascadeLine
		}
	case SecondaryDataPort:
		p.secondary.data(val)
	}
}

// Request raises hardware line 0-15.
func (p *Pair) Request(line uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if line < 8 {
		p.primary.irr |= 1 << line
		return
	}

	p.secondary.irr |= 1 << (line & 7)
	p.primary.irr |= 1 << CascadeLine
}

// Acknowledge performs an interrupt acknowledge cycle. It returns the vector
// of the highest priority deliverable request and marks it in service, or
// false if nothing can be delivered.
func (p *Pair) Acknowledge() (uint8, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.primary.ready {
		return 0, false
	}

	line, ok := p.primary.next()
	if !ok {
		return 0, false
	}

	if line != CascadeLine {
		p.primary.irr &^= 1 << line
		p.primary.isr |= 1 << line
		return p.primary.offset + line, true
	}

	p.primary.irr &^= 1 << CascadeLine
	if !p.secondary.ready {
		return 0, false
	}
	sline, ok := p.secondary.next()
	if !ok {
		return 0, false
	}

	p.secondary.irr &^= 1 << sline
	p.secondary.isr |= 1 << sline
	p.primary.isr |= 1 << CascadeLine
	if p.secondary.irr&^p.secondary.imr != 0 {
		p.primary.irr |= 1 << CascadeLine
	}
	return p.secondary.offset + sline, true
}

// Offsets returns the vector offsets programmed by ICW2.
func (p *Pair) Offsets() (uint8, uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.primary.offset, p.secondary.offset
}

// InService returns the in-service registers of both chips, primary in the
// low byte.
func (p *Pair) InService() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return uint16(p.primary.isr) | uint16(p.secondary.isr)<<8
}

// Ready reports whether both chips completed their initialization sequence.
func (p *Pair) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.primary.ready && p.secondary.ready
}
