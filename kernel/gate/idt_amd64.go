package gate

import (
	"unsafe"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
)

const (
	// NumEntries is the number of descriptor slots in the IDT.
	NumEntries = 256

	// KernelCodeSelector is the GDT selector of the kernel code segment
	// that every gate switches to.
	KernelCodeSelector = 0x08

	// InterruptGate is the attribute byte of a present, ring-0, 64-bit
	// interrupt gate. Interrupt gates clear RFLAGS.IF on entry so the
	// handler is never re-entered on the same CPU.
	InterruptGate uint8 = 0x8e

	// descriptorSize is the size of a packed 64-bit gate descriptor.
	descriptorSize = 16

	// pointerSize is the size of the pseudo-descriptor loaded by LIDT.
	pointerSize = 10
)

var (
	// mocked by tests
	loadIDTFn = cpu.LoadIDT

	dispatchFn func(InterruptNumber)
)

// Descriptor is a 64-bit IDT gate descriptor. The field order and sizes match
// the packed layout expected by the CPU.
type Descriptor struct {
	OffsetLow  uint16
	Selector   uint16
	IST        uint8
	TypeAttr   uint8
	OffsetMid  uint16
	OffsetHigh uint32
	Reserved   uint32
}

// Handler returns the handler address stored in the descriptor.
func (d *Descriptor) Handler() uintptr {
	return uintptr(d.OffsetLow) | uintptr(d.OffsetMid)<<16 | uintptr(d.OffsetHigh)<<32
}

// Present returns true if the descriptor's present bit is set.
func (d *Descriptor) Present() bool {
	return d.TypeAttr&0x80 != 0
}

// Table is the interrupt descriptor table together with the pseudo
// descriptor used to load it. A Table must not be moved once loaded.
type Table struct {
	entries [NumEntries]Descriptor
	ptr     [pointerSize]byte
}

// SetGate points vector at handler. The gate always targets the kernel code
// segment and does not use the interrupt stack table.
func (t *Table) SetGate(vector InterruptNumber, handler uintptr, attr uint8) {
	d := &t.entries[vector]
	d.OffsetLow = uint16(handler)
	d.Selector = KernelCodeSelector
	d.IST = 0
	d.TypeAttr = attr
	d.OffsetMid = uint16(handler >> 16)
	d.OffsetHigh = uint32(uint64(handler) >> 32)
	d.Reserved = 0
}

// Gate returns a copy of the descriptor installed for vector.
func (t *Table) Gate(vector InterruptNumber) Descriptor {
	return t.entries[vector]
}

// Init clears every slot and installs the entry stubs for the CPU exception
// vectors (0-31) and the remapped hardware lines (32-47). The table must be
// activated with a call to Load.
func (t *Table) Init() {
	t.entries = [NumEntries]Descriptor{}

	for v := 0; v < StubCount; v++ {
		t.SetGate(InterruptNumber(v), stubAddress(uint8(v)), InterruptGate)
	}
}

// Pointer returns the pseudo-descriptor for this table: a 16-bit limit
// (size minus one) followed by the 64-bit base address, little-endian.
func (t *Table) Pointer() [pointerSize]byte {
	var (
		p     [pointerSize]byte
		limit = uint16(NumEntries*descriptorSize - 1)
		base  = uint64(uintptr(unsafe.Pointer(&t.entries[0])))
	)

	p[0], p[1] = byte(limit), byte(limit>>8)
	for i := 0; i < 8; i++ {
		p[2+i] = byte(base >> (8 * i))
	}
	return p
}

// Load installs the table into the CPU's IDT register.
func (t *Table) Load() {
	t.ptr = t.Pointer()
	loadIDTFn(uintptr(unsafe.Pointer(&t.ptr[0])))
}

// SetDispatcher registers the function that every entry stub forwards to.
// The stubs carry no other context so exactly one dispatcher exists.
func SetDispatcher(fn func(InterruptNumber)) {
	dispatchFn = fn
}

// Raise delivers vector to the registered dispatcher as if its entry stub had
// fired. Hosted machines use it to inject hardware interrupts.
func Raise(vector InterruptNumber) {
	dispatch(uint64(vector))
}

// dispatch is invoked by the common entry stub with the vector number pushed
// by the per-vector stub.
func dispatch(vector uint64) {
	if dispatchFn != nil {
		dispatchFn(InterruptNumber(vector))
	}
}

// stubAddress returns the address of the entry stub for vector. vector must
// be lower than StubCount.
func stubAddress(vector uint8) uintptr
