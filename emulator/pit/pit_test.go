package pit

import (
	"math"
	"testing"
	"time"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/timer"
)

// portBus adapts a Timer to cpu.Bus so the kernel driver can program it.
type portBus struct {
	t *Timer
}

func (b portBus) ReadPort(port uint16) uint8       { return b.t.In(port) }
func (b portBus) WritePort(port uint16, val uint8) { b.t.Out(port, val) }

func TestProgramFromDriver(t *testing.T) {
	specs := []struct {
		hz    uint32
		expHz float64
	}{
		{1000, 1000.15},
		{100, 100.0},
		{19, 19.0},
	}

	for specIndex, spec := range specs {
		tm := New(func(uint8) {}, 1)
		if err := timer.NewPIT(portBus{tm}, spec.hz).Program(spec.hz); err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", specIndex, err)
		}

		if got := tm.Frequency(); math.Abs(got-spec.expHz) > 0.5 {
			t.Errorf("[spec %d] expected frequency ~%.2f Hz; got %.2f", specIndex, spec.expHz, got)
		}
		tm.Close()
	}
}

func TestUnprogrammed(t *testing.T) {
	tm := New(func(uint8) {}, 1)
	defer tm.Close()

	tm.Out(CommandPort, 0x36)
	tm.Out(Channel0Port, 0xa9)
	if got := tm.Frequency(); got != 0 {
		t.Fatalf("expected no output before the high byte; got %.2f Hz", got)
	}

	// channel 2 commands are ignored
	tm.Out(CommandPort, 0xb6)
	tm.Out(Channel0Port, 0x04)
	if got := tm.Frequency(); got < 1000 || got > 1001 {
		t.Fatalf("expected ~1000 Hz; got %.2f Hz", got)
	}
}

func TestTicksRaiseLineZero(t *testing.T) {
	lines := make(chan uint8, 16)
	tm := New(func(line uint8) {
		select {
		case lines <- line:
		default:
		}
	}, 10)
	defer tm.Close()

	if err := timer.NewPIT(portBus{tm}, 100).Program(100); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		select {
		case line := <-lines:
			if line != 0 {
				t.Fatalf("expected IRQ 0; got %d", line)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a timer tick")
		}
	}
}

func TestPeriodScaling(t *testing.T) {
	tm := New(nil, 2)
	tm.reload = 11932

	if got := tm.period(); got < 4900*time.Microsecond || got > 5100*time.Microsecond {
		t.Fatalf("expected a period of ~5ms at double speed; got %v", got)
	}

	tm.speed = 1e9
	if got := tm.period(); got != minPeriod {
		t.Fatalf("expected the period to be clamped to %v; got %v", minPeriod, got)
	}
}
