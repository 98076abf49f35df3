package pic

import (
	"testing"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/irq"
)

// portBus adapts a Pair to cpu.Bus so the kernel driver can program it.
type portBus struct {
	p *Pair
}

func (b portBus) ReadPort(port uint16) uint8       { return b.p.In(port) }
func (b portBus) WritePort(port uint16, val uint8) { b.p.Out(port, val) }

func remapped(t *testing.T) (*Pair, *irq.Controller) {
	p := New()
	ctrl := irq.NewController(portBus{p})
	if err := ctrl.Remap(0x20, 0x28); err != nil {
		t.Fatal(err)
	}
	return p, ctrl
}

func TestRemapProgramsOffsetsAndMask(t *testing.T) {
	p, ctrl := remapped(t)

	if !p.Ready() {
		t.Fatal("expected both chips to complete initialization")
	}
	if off1, off2 := p.Offsets(); off1 != 0x20 || off2 != 0x28 {
		t.Fatalf("expected offsets 0x20/0x28; got 0x%x/0x%x", off1, off2)
	}
	if exp, got := uint16(0xfffc), ctrl.Mask(); got != exp {
		t.Fatalf("expected mask 0x%x; got 0x%x", exp, got)
	}
}

func TestAcknowledgeBeforeInit(t *testing.T) {
	p := New()
	p.Request(0)
	if _, ok := p.Acknowledge(); ok {
		t.Fatal("expected no delivery before the ICW sequence")
	}
}

func TestPriorityAndEOI(t *testing.T) {
	p, ctrl := remapped(t)

	p.Request(1)
	p.Request(0)

	specs := []struct {
		expVector uint8
		expOK     bool
		eoi       bool
	}{
		{0x20, true, false},
		// line 0 in service blocks line 1
		{0, false, true},
		{0x21, true, true},
		{0, false, false},
	}

	for specIndex, spec := range specs {
		vector, ok := p.Acknowledge()
		if ok != spec.expOK || (ok && vector != spec.expVector) {
			t.Errorf("[spec %d] expected (0x%x, %t); got (0x%x, %t)", specIndex, spec.expVector, spec.expOK, vector, ok)
		}
		if spec.eoi {
			ctrl.SendEOI(0)
		}
	}

	if got := p.InService(); got != 0 {
		t.Fatalf("expected nothing in service; got 0x%x", got)
	}
}

func TestMaskedLinesStayPending(t *testing.T) {
	p, _ := remapped(t)

	p.Request(5)
	if _, ok := p.Acknowledge(); ok {
		t.Fatal("expected masked line 5 not to be delivered")
	}

	p.Out(PrimaryDataPort, 0xdc)
	if vector, ok := p.Acknowledge(); !ok || vector != 0x25 {
		t.Fatalf("expected vector 0x25 after unmasking; got (0x%x, %t)", vector, ok)
	}
}

func TestCascade(t *testing.T) {
	p, ctrl := remapped(t)
	p.Out(PrimaryDataPort, 0xf8)
	p.Out(SecondaryDataPort, 0xfe)

	p.Request(8)
	vector, ok := p.Acknowledge()
	if !ok || vector != 0x28 {
		t.Fatalf("expected vector 0x28; got (0x%x, %t)", vector, ok)
	}
	if exp, got := uint16(0x0104), p.InService(); got != exp {
		t.Fatalf("expected in-service 0x%x; got 0x%x", exp, got)
	}

	// a second request while the first is in service is held back and
	// forwarded after the EOI
	p.Request(8)
	if _, ok := p.Acknowledge(); ok {
		t.Fatal("expected the second request to wait for EOI")
	}

	ctrl.SendEOI(8)
	if vector, ok := p.Acknowledge(); !ok || vector != 0x28 {
		t.Fatalf("expected vector 0x28 after EOI; got (0x%x, %t)", vector, ok)
	}
}
