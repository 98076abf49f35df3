package cpu

var (
	cpuidFn = ID
)

// HardwareBus is a Bus backed by the IN/OUT instructions of the running CPU.
type HardwareBus struct{}

// ReadPort implements Bus.
func (HardwareBus) ReadPort(port uint16) uint8 { return PortReadByte(port) }

// WritePort implements Bus.
func (HardwareBus) WritePort(port uint16, val uint8) { PortWriteByte(port, val) }

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// SaveFlagsAndDisable returns the current RFLAGS value and disables
// interrupt handling. The returned value should be passed to RestoreFlags.
func SaveFlagsAndDisable() uint64

// RestoreFlags loads RFLAGS with a value previously obtained via
// SaveFlagsAndDisable. Interrupts are re-enabled only if they were enabled
// when the flags were saved.
func RestoreFlags(flags uint64)

// Halt stops instruction execution until the next interrupt arrives.
func Halt()

// LoadIDT loads the interrupt descriptor table register from the 10-byte
// pseudo-descriptor at address ptr.
func LoadIDT(ptr uintptr)

// ID returns information about the CPU and its features. It
// is implemented as a CPUID instruction with EAX=leaf and
// returns the values in EAX, EBX, ECX and EDX.
func ID(leaf uint32) (uint32, uint32, uint32, uint32)

// Vendor returns the 12-byte CPU vendor string reported by CPUID leaf 0.
func Vendor() [12]byte {
	var v [12]byte
	_, ebx, ecx, edx := cpuidFn(0)
	for i, reg := range [3]uint32{ebx, edx, ecx} {
		v[i*4] = byte(reg)
		v[i*4+1] = byte(reg >> 8)
		v[i*4+2] = byte(reg >> 16)
		v[i*4+3] = byte(reg >> 24)
	}
	return v
}

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8
