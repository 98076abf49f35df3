// Package cpu exposes the privileged x86-64 instructions used by the kernel
// core: port I/O, interrupt flag control, HLT and LIDT.
package cpu

// Bus is implemented by objects that can perform single-byte transfers to
// and from the x86 I/O port address space. Drivers receive a Bus instead of
// calling the port instructions directly so they can be attached to emulated
// hardware.
type Bus interface {
	// ReadPort reads a byte from the requested port.
	ReadPort(port uint16) uint8

	// WritePort writes a byte to the requested port.
	WritePort(port uint16, val uint8)
}
