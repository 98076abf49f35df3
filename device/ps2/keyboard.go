package ps2

import (
	"io"

	"github.com/Anonimek123-dev/COSMOS-C/device/input"
	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
)

const (
	// DataPort is the i8042 data register.
	DataPort = 0x60

	// StatusPort is the i8042 status register (read) and command
	// register (write).
	StatusPort = 0x64

	// StatusOutputFull is set while a byte is waiting in DataPort.
	StatusOutputFull = 1 << 0

	// StatusInputFull is set while the controller has not yet consumed
	// the last byte written to it.
	StatusInputFull = 1 << 1

	// CmdSetLEDs is the keyboard command that sets the lock LEDs. It is
	// followed by an LEDMask byte.
	CmdSetLEDs = 0xed

	// ledSpinLimit bounds the number of status polls before an LED
	// write is abandoned.
	ledSpinLimit = 100000

	// drainLimit bounds the number of stale bytes discarded at init.
	drainLimit = 64
)

var errControllerBusy = &kernel.Error{Module: "ps2", Message: "timed out waiting for controller input buffer"}

// Keyboard is the IRQ1 driver. Every byte read from the controller is fed to
// a Decoder and the resulting key events are pushed into a ring buffer that
// the main loop drains.
type Keyboard struct {
	bus     cpu.Bus
	ring    *input.Ring
	decoder Decoder
}

// NewKeyboard creates a keyboard driver that pushes events into ring.
// Diagnostics are written to report, or to the kfmt output sink if report is
// nil.
func NewKeyboard(bus cpu.Bus, ring *input.Ring, report io.Writer) *Keyboard {
	kb := &Keyboard{}
	kb.Init(bus, ring, report)
	return kb
}

// Init sets up kb in place without touching the hardware.
func (kb *Keyboard) Init(bus cpu.Bus, ring *input.Ring, report io.Writer) {
	kb.bus = bus
	kb.ring = ring
	kb.decoder.Init(report, kb)
}

// Decoder returns the scan code decoder used by the driver.
func (kb *Keyboard) Decoder() *Decoder {
	return &kb.decoder
}

// HandleIRQ reads one byte from the controller and queues the key event it
// completes, if any. It is the handler for IRQ1. Events are dropped if the
// ring is full.
func (kb *Keyboard) HandleIRQ() {
	b := kb.bus.ReadPort(DataPort)
	if k, ok := kb.decoder.Feed(b); ok {
		kb.ring.Push(k)
	}
}

// SetLEDs sends mask to the keyboard.
func (kb *Keyboard) SetLEDs(mask LEDMask) *kernel.Error {
	if err := kb.waitInputEmpty(); err != nil {
		return err
	}
	kb.bus.WritePort(DataPort, CmdSetLEDs)

	if err := kb.waitInputEmpty(); err != nil {
		return err
	}
	kb.bus.WritePort(DataPort, uint8(mask))
	return nil
}

func (kb *Keyboard) waitInputEmpty() *kernel.Error {
	for i := 0; i < ledSpinLimit; i++ {
		if kb.bus.ReadPort(StatusPort)&StatusInputFull == 0 {
			return nil
		}
	}
	return errControllerBusy
}

// DriverName returns the name of this driver.
func (kb *Keyboard) DriverName() string {
	return "ps2-keyboard"
}

// DriverVersion returns the version of this driver.
func (kb *Keyboard) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit discards any bytes left in the controller, resets the decoder
// and the event ring and synchronizes the keyboard LEDs with the initial
// lock state.
func (kb *Keyboard) DriverInit(w io.Writer) *kernel.Error {
	for i := 0; i < drainLimit && kb.bus.ReadPort(StatusPort)&StatusOutputFull != 0; i++ {
		kb.bus.ReadPort(DataPort)
	}

	kb.decoder.Reset()
	kb.ring.Reset()

	if err := kb.SetLEDs(kb.decoder.LEDs()); err != nil {
		return err
	}

	kfmt.Fprintf(w, "leds set to %x\n", uint8(kb.decoder.LEDs()))
	return nil
}
