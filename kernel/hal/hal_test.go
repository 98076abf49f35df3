package hal

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/Anonimek123-dev/COSMOS-C/device"
	"github.com/Anonimek123-dev/COSMOS-C/device/tty"
	"github.com/Anonimek123-dev/COSMOS-C/device/video/console"
	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
)

type mockConsole struct {
	cells map[[2]uint32]byte
}

func (c *mockConsole) Dimensions(console.Dimension) (uint32, uint32) { return 80, 25 }
func (c *mockConsole) DefaultColors() (uint8, uint8)                 { return 7, 0 }
func (c *mockConsole) Fill(_, _, _, _ uint32, _, _ uint8)            {}
func (c *mockConsole) Scroll(console.ScrollDir, uint32)              {}
func (c *mockConsole) DriverName() string                            { return "mock_console" }
func (c *mockConsole) DriverVersion() (uint16, uint16, uint16)       { return 1, 2, 3 }
func (c *mockConsole) DriverInit(w io.Writer) *kernel.Error {
	kfmt.Fprintf(w, "ready\n")
	return nil
}

func (c *mockConsole) Write(ch byte, _, _ uint8, x, y uint32) {
	if c.cells == nil {
		c.cells = make(map[[2]uint32]byte)
	}
	c.cells[[2]uint32{x, y}] = ch
}

// row returns the text on console row y.
func (c *mockConsole) row(y uint32) string {
	var sb strings.Builder
	for x := uint32(1); x <= 80; x++ {
		ch, ok := c.cells[[2]uint32{x, y}]
		if !ok {
			ch = ' '
		}
		sb.WriteByte(ch)
	}
	return strings.TrimRight(sb.String(), " ")
}

type failingDriver struct{}

func (failingDriver) DriverName() string                      { return "broken" }
func (failingDriver) DriverVersion() (uint16, uint16, uint16) { return 0, 0, 1 }
func (failingDriver) DriverInit(io.Writer) *kernel.Error {
	return &kernel.Error{Module: "broken", Message: "no such device"}
}

func TestProbe(t *testing.T) {
	defer kfmt.SetOutputSink(nil)

	var (
		devices Devices
		reg     device.Registry
		cons    = &mockConsole{}
		vt      = tty.NewVT(tty.DefaultTabWidth, 0)
	)

	// registration order differs from the detection order
	reg.Register(device.DetectOrderLast, failingDriver{})
	reg.Register(device.DetectOrderTerminal, vt)
	reg.Register(device.DetectOrderEarly, cons)

	devices.Probe(&reg)

	if devices.ActiveConsole() != cons {
		t.Fatal("expected mock console to become the active console")
	}
	if devices.ActiveTTY() != vt {
		t.Fatal("expected vt to become the active TTY")
	}
	if kfmt.GetOutputSink() != vt {
		t.Fatal("expected kfmt output to be routed to the active TTY")
	}

	active := devices.ActiveDrivers()
	if len(active) != 2 || active[0] != cons || active[1] != vt {
		t.Fatalf("expected console and vt to be active; got %v", active)
	}

	if vt.State() != tty.StateActive {
		t.Fatal("expected vt to be activated")
	}

	exp := []string{
		"[hal] mock_console(1.2.3): ready",
		"[hal] mock_console(1.2.3): initialized",
		"[hal] vt(0.0.1): initialized",
		"[hal] broken(0.0.1): init failed: no such device",
	}
	for i, line := range exp {
		if got := cons.row(uint32(i + 1)); got != line {
			t.Errorf("[row %d] expected %q; got %q", i+1, line, got)
		}
	}
}

func TestProbeKeepsFirstConsole(t *testing.T) {
	defer kfmt.SetOutputSink(nil)

	var (
		devices Devices
		reg     device.Registry
		first   = &mockConsole{}
		second  = &mockConsole{}
		vt      = tty.NewVT(tty.DefaultTabWidth, 0)
	)

	reg.Register(device.DetectOrderEarly, first)
	reg.Register(device.DetectOrderEarly, second)
	reg.Register(device.DetectOrderTerminal, vt)
	reg.Register(device.DetectOrderTerminal, tty.NewVT(tty.DefaultTabWidth, 0))

	devices.Probe(&reg)

	if devices.ActiveConsole() != first || devices.ActiveTTY() != vt {
		t.Fatal("expected the first console and terminal to stay active")
	}
	if got := len(devices.ActiveDrivers()); got != 4 {
		t.Fatalf("expected 4 initialized drivers; got %d", got)
	}
}

func TestPrefixBufTruncates(t *testing.T) {
	var b prefixBuf
	b.Write(bytes.Repeat([]byte{'x'}, 100))
	if got := len(b.bytes()); got != len(b.buf) {
		t.Fatalf("expected prefix to be truncated to %d bytes; got %d", len(b.buf), got)
	}
	b.reset()
	if len(b.bytes()) != 0 {
		t.Fatal("expected reset to empty the buffer")
	}
}
