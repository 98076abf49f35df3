package gate

import (
	"testing"
	"unsafe"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
)

func TestDescriptorLayout(t *testing.T) {
	if got := unsafe.Sizeof(Descriptor{}); got != descriptorSize {
		t.Fatalf("expected descriptor size to be %d; got %d", descriptorSize, got)
	}

	if got := unsafe.Sizeof(Table{}.entries); got != NumEntries*descriptorSize {
		t.Fatalf("expected table size to be %d; got %d", NumEntries*descriptorSize, got)
	}
}

func TestSetGate(t *testing.T) {
	var tbl Table

	handler := uintptr(0x123456789abcdef0)
	tbl.SetGate(GPFException, handler, InterruptGate)

	d := tbl.Gate(GPFException)
	specs := []struct {
		name      string
		got, want uint64
	}{
		{"offset low", uint64(d.OffsetLow), 0xdef0},
		{"offset mid", uint64(d.OffsetMid), 0x9abc},
		{"offset high", uint64(d.OffsetHigh), 0x12345678},
		{"selector", uint64(d.Selector), KernelCodeSelector},
		{"ist", uint64(d.IST), 0},
		{"type/attr", uint64(d.TypeAttr), uint64(InterruptGate)},
		{"reserved", uint64(d.Reserved), 0},
	}

	for _, spec := range specs {
		if spec.got != spec.want {
			t.Errorf("expected %s to be 0x%x; got 0x%x", spec.name, spec.want, spec.got)
		}
	}

	if got := d.Handler(); got != handler {
		t.Fatalf("expected Handler() to return 0x%x; got 0x%x", handler, got)
	}

	if !d.Present() {
		t.Fatal("expected gate to be present")
	}
}

func TestInit(t *testing.T) {
	var tbl Table

	// dirty a slot outside the stub range; Init must clear it
	tbl.SetGate(0x80, 0xdead, InterruptGate)
	tbl.Init()

	seen := make(map[uintptr]int)
	for v := 0; v < NumEntries; v++ {
		d := tbl.Gate(InterruptNumber(v))
		if v >= StubCount {
			if d != (Descriptor{}) {
				t.Errorf("expected vector %d to be unused; got %+v", v, d)
			}
			continue
		}

		if !d.Present() || d.TypeAttr != InterruptGate {
			t.Errorf("expected vector %d to have an interrupt gate; got attr 0x%x", v, d.TypeAttr)
		}

		addr := d.Handler()
		if addr == 0 {
			t.Errorf("expected vector %d to point to a stub", v)
		}
		if prev, dup := seen[addr]; dup {
			t.Errorf("vectors %d and %d share stub address 0x%x", prev, v, addr)
		}
		seen[addr] = v
	}
}

func TestPointerAndLoad(t *testing.T) {
	defer func() {
		loadIDTFn = cpu.LoadIDT
	}()

	var (
		tbl    Table
		loaded uintptr
	)
	loadIDTFn = func(ptr uintptr) { loaded = ptr }

	tbl.Load()

	if exp := uintptr(unsafe.Pointer(&tbl.ptr[0])); loaded != exp {
		t.Fatalf("expected LoadIDT to receive 0x%x; got 0x%x", exp, loaded)
	}

	p := tbl.ptr
	if limit := uint16(p[0]) | uint16(p[1])<<8; limit != 4095 {
		t.Fatalf("expected limit 4095; got %d", limit)
	}

	var base uint64
	for i := 0; i < 8; i++ {
		base |= uint64(p[2+i]) << (8 * i)
	}
	if exp := uint64(uintptr(unsafe.Pointer(&tbl.entries[0]))); base != exp {
		t.Fatalf("expected base 0x%x; got 0x%x", exp, base)
	}
}

func TestDispatch(t *testing.T) {
	defer SetDispatcher(nil)

	// no dispatcher registered
	dispatch(33)

	var got []InterruptNumber
	SetDispatcher(func(n InterruptNumber) { got = append(got, n) })

	dispatch(0)
	dispatch(33)

	if len(got) != 2 || got[0] != DivideByZero || got[1] != 33 {
		t.Fatalf("expected dispatcher to receive [0 33]; got %v", got)
	}
}

func TestInterruptNumber(t *testing.T) {
	specs := []struct {
		n         InterruptNumber
		exception bool
		irq       bool
		errorCode bool
		expName   string
	}{
		{DivideByZero, true, false, false, "divide error"},
		{GPFException, true, false, true, "general protection fault"},
		{PageFaultException, true, false, true, "page fault"},
		{15, true, false, false, "reserved"},
		{32, false, true, false, "reserved"},
		{47, false, true, false, "reserved"},
		{48, false, false, false, "reserved"},
	}

	for specIndex, spec := range specs {
		if got := spec.n.IsException(); got != spec.exception {
			t.Errorf("[spec %d] expected IsException %t; got %t", specIndex, spec.exception, got)
		}
		if got := spec.n.IsIRQ(); got != spec.irq {
			t.Errorf("[spec %d] expected IsIRQ %t; got %t", specIndex, spec.irq, got)
		}
		if got := spec.n.HasErrorCode(); got != spec.errorCode {
			t.Errorf("[spec %d] expected HasErrorCode %t; got %t", specIndex, spec.errorCode, got)
		}
		if got := spec.n.Name(); got != spec.expName {
			t.Errorf("[spec %d] expected name %q; got %q", specIndex, spec.expName, got)
		}
	}
}
