// Package emulator runs the kernel core as an ordinary process. A Machine
// routes port I/O to device models and delivers the interrupts they raise
// through an emulated interrupt controller pair, one at a time, so that the
// kernel observes the same single-CPU execution model it has on hardware.
package emulator

import (
	"sync"

	"github.com/Anonimek123-dev/COSMOS-C/emulator/pic"
)

// PortDevice is a device model attached to one or more I/O ports.
type PortDevice interface {
	// In reads a byte from port.
	In(port uint16) uint8

	// Out writes a byte to port.
	Out(port uint16, val uint8)
}

// Machine is an emulated single-CPU PC. It implements cpu.Bus.
//
// The CPU lock serializes main-context code (run through Step) and interrupt
// delivery. Interrupts are only delivered while no Step is running or while
// a Step is parked in Halt, which mirrors a CPU that takes interrupts between
// instructions and wakes from HLT.
type Machine struct {
	cpu  sync.Mutex
	wake *sync.Cond

	devices map[uint16]PortDevice
	pic     *pic.Pair
	deliver func(vector uint8)

	pending chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool

	delivered uint64
}

// New creates a machine with a cascaded interrupt controller pair installed
// on the standard ports. Every acknowledged interrupt is passed to deliver
// with the CPU lock held.
func New(deliver func(vector uint8)) *Machine {
	m := &Machine{
		devices: make(map[uint16]PortDevice),
		pic:     pic.New(),
		deliver: deliver,
		pending: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	m.wake = sync.NewCond(&m.cpu)
	m.Install(m.pic, pic.PrimaryCommandPort, pic.PrimaryDataPort, pic.SecondaryCommandPort, pic.SecondaryDataPort)
	return m
}

// Install attaches dev to ports, replacing any device previously attached.
func (m *Machine) Install(dev PortDevice, ports ...uint16) {
	for _, port := range ports {
		m.devices[port] = dev
	}
}

// PIC returns the interrupt controller model.
func (m *Machine) PIC() *pic.Pair {
	return m.pic
}

// ReadPort implements cpu.Bus. Unmapped ports float high.
func (m *Machine) ReadPort(port uint16) uint8 {
	if dev, ok := m.devices[port]; ok {
		return dev.In(port)
	}
	return 0xff
}

// WritePort implements cpu.Bus. Writes to unmapped ports are ignored.
func (m *Machine) WritePort(port uint16, val uint8) {
	if dev, ok := m.devices[port]; ok {
		dev.Out(port, val)
	}
}

// RaiseIRQ requests an interrupt on a hardware line. It may be called from
// any goroutine, including device models running inside an interrupt
// handler.
func (m *Machine) RaiseIRQ(line uint8) {
	m.pic.Request(line)
	select {
	case m.pending <- struct{}{}:
	default:
	}
}

// Start begins delivering interrupts.
func (m *Machine) Start() {
	m.wg.Add(1)
	go m.serve()
}

// Stop stops interrupt delivery and releases any Step parked in Halt.
func (m *Machine) Stop() {
	m.cpu.Lock()
	if m.stopped {
		m.cpu.Unlock()
		return
	}
	m.stopped = true
	close(m.done)
	m.wake.Broadcast()
	m.cpu.Unlock()

	m.wg.Wait()
}

// Step runs fn in main context with the CPU lock held.
func (m *Machine) Step(fn func()) {
	m.cpu.Lock()
	defer m.cpu.Unlock()
	fn()
}

// Halt parks the CPU until the next interrupt has been delivered. It must
// only be called from code running inside Step.
func (m *Machine) Halt() {
	if m.stopped {
		return
	}

	target := m.delivered + 1
	for m.delivered < target && !m.stopped {
		m.wake.Wait()
	}
}

// Delivered returns the number of interrupts delivered so far.
func (m *Machine) Delivered() uint64 {
	m.cpu.Lock()
	defer m.cpu.Unlock()
	return m.delivered
}

func (m *Machine) serve() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case <-m.pending:
		}

		m.cpu.Lock()
		for !m.stopped {
			vector, ok := m.pic.Acknowledge()
			if !ok {
				break
			}
			m.deliver(vector)
			m.delivered++
		}
		m.wake.Broadcast()
		m.cpu.Unlock()
	}
}
