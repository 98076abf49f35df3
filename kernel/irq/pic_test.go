package irq

import "testing"

type portWrite struct {
	port uint16
	val  uint8
}

type mockBus struct {
	regs   map[uint16]uint8
	writes []portWrite
}

func newMockBus() *mockBus {
	return &mockBus{regs: make(map[uint16]uint8)}
}

func (b *mockBus) ReadPort(port uint16) uint8 { return b.regs[port] }

func (b *mockBus) WritePort(port uint16, val uint8) {
	b.writes = append(b.writes, portWrite{port, val})
	b.regs[port] = val
}

func TestRemap(t *testing.T) {
	bus := newMockBus()
	bus.regs[PrimaryDataPort] = 0xff
	bus.regs[SecondaryDataPort] = 0xfb

	pic := NewController(bus)
	if err := pic.Remap(0x20, 0x28); err != nil {
		t.Fatal(err)
	}

	exp := []portWrite{
		{PrimaryCommandPort, 0x11},
		{SecondaryCommandPort, 0x11},
		{PrimaryDataPort, 0x20},
		{SecondaryDataPort, 0x28},
		{PrimaryDataPort, 0x04},
		{SecondaryDataPort, 0x02},
		{PrimaryDataPort, 0x01},
		{SecondaryDataPort, 0x01},
		// saved masks with timer + keyboard forced open
		{PrimaryDataPort, 0xfc},
		{SecondaryDataPort, 0xfb},
	}

	if len(bus.writes) != len(exp) {
		t.Fatalf("expected %d port writes; got %d: %v", len(exp), len(bus.writes), bus.writes)
	}

	for i, w := range exp {
		if bus.writes[i] != w {
			t.Errorf("[write %d] expected %#v; got %#v", i, w, bus.writes[i])
		}
	}

	if o1, o2 := pic.Offsets(); o1 != 0x20 || o2 != 0x28 {
		t.Fatalf("expected offsets 0x20/0x28; got 0x%x/0x%x", o1, o2)
	}

	if exp, got := uint16(0xfbfc), pic.Mask(); got != exp {
		t.Fatalf("expected mask 0x%x; got 0x%x", exp, got)
	}

	// only the timer and keyboard lines are forced open; the cascade line
	// keeps its saved mask bit
	for line := uint16(0); line < 8; line++ {
		expOpen := line == TimerLine || line == KeyboardLine
		if open := pic.Mask()&(1<<line) == 0; open != expOpen {
			t.Errorf("[line %d] expected unmasked to be %t; got %t", line, expOpen, open)
		}
	}
}

func TestRemapKeepsUnmaskedLines(t *testing.T) {
	bus := newMockBus()
	bus.regs[PrimaryDataPort] = 0x00

	if err := NewController(bus).Remap(0x30, 0x38); err != nil {
		t.Fatal(err)
	}

	if got := bus.regs[PrimaryDataPort]; got != 0x00 {
		t.Fatalf("expected primary mask to stay 0x00; got 0x%x", got)
	}
}

func TestRemapErrors(t *testing.T) {
	specs := []struct {
		offset1, offset2 uint8
		expErr           error
	}{
		{0x08, 0x70, errOffsetOverlap},
		{0x20, 0x10, errOffsetOverlap},
		{0x21, 0x28, errOffsetAlign},
		{0x20, 0x2c, errOffsetAlign},
	}

	for specIndex, spec := range specs {
		bus := newMockBus()
		err := NewController(bus).Remap(spec.offset1, spec.offset2)
		if err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}

		if len(bus.writes) != 0 {
			t.Errorf("[spec %d] expected no port writes after a rejected remap; got %v", specIndex, bus.writes)
		}
	}
}

func TestSendEOI(t *testing.T) {
	specs := []struct {
		line uint8
		exp  []portWrite
	}{
		{0, []portWrite{{PrimaryCommandPort, 0x20}}},
		{7, []portWrite{{PrimaryCommandPort, 0x20}}},
		{8, []portWrite{{SecondaryCommandPort, 0x20}, {PrimaryCommandPort, 0x20}}},
		{15, []portWrite{{SecondaryCommandPort, 0x20}, {PrimaryCommandPort, 0x20}}},
	}

	for specIndex, spec := range specs {
		bus := newMockBus()
		NewController(bus).SendEOI(spec.line)

		if len(bus.writes) != len(spec.exp) {
			t.Errorf("[spec %d] expected writes %v; got %v", specIndex, spec.exp, bus.writes)
			continue
		}
		for i := range spec.exp {
			if bus.writes[i] != spec.exp[i] {
				t.Errorf("[spec %d] expected writes %v; got %v", specIndex, spec.exp, bus.writes)
				break
			}
		}
	}
}
