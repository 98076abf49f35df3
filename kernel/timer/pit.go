package timer

import (
	"io"

	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
)

const (
	// Channel0Port is the data port of PIT channel 0 (wired to IRQ0).
	Channel0Port = 0x40

	// CommandPort is the PIT mode/command register.
	CommandPort = 0x43

	// InputClockHz is the frequency of the oscillator feeding the PIT.
	InputClockHz = 1193182

	// DefaultFrequency gives one tick per millisecond.
	DefaultFrequency = 1000

	// cmdChannel0SquareWave selects channel 0, lobyte/hibyte access and
	// mode 3 (square wave generator).
	cmdChannel0SquareWave = 0x36
)

var errBadFrequency = &kernel.Error{Module: "pit", Message: "frequency out of range"}

// PIT drives channel 0 of the 8253/8254 programmable interval timer.
type PIT struct {
	bus       cpu.Bus
	frequency uint32
}

// NewPIT returns a PIT driver that will run at frequency Hz once
// initialized.
func NewPIT(bus cpu.Bus, frequency uint32) *PIT {
	p := &PIT{}
	p.Init(bus, frequency)
	return p
}

// Init sets up p in place without touching the hardware.
func (p *PIT) Init(bus cpu.Bus, frequency uint32) {
	p.bus = bus
	p.frequency = frequency
}

// Program sets channel 0 to fire at hz. Frequencies whose divisor does not
// fit in 16 bits are rejected.
func (p *PIT) Program(hz uint32) *kernel.Error {
	if hz == 0 || hz > InputClockHz {
		return errBadFrequency
	}

	divisor := InputClockHz / hz
	if divisor > 0xffff {
		return errBadFrequency
	}

	p.bus.WritePort(CommandPort, cmdChannel0SquareWave)
	p.bus.WritePort(Channel0Port, uint8(divisor))
	p.bus.WritePort(Channel0Port, uint8(divisor>>8))
	p.frequency = hz
	return nil
}

// Frequency returns the programmed interrupt rate in Hz.
func (p *PIT) Frequency() uint32 {
	return p.frequency
}

// DriverName returns the name of this driver.
func (p *PIT) DriverName() string {
	return "pit"
}

// DriverVersion returns the version of this driver.
func (p *PIT) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit programs channel 0 with the frequency passed to NewPIT.
func (p *PIT) DriverInit(w io.Writer) *kernel.Error {
	if err := p.Program(p.frequency); err != nil {
		return err
	}

	kfmt.Fprintf(w, "channel 0 at %d Hz\n", p.frequency)
	return nil
}
