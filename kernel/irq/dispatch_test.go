package irq

import (
	"bytes"
	"testing"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/gate"
)

type mockPIC struct {
	eois []uint8
}

func (p *mockPIC) SendEOI(line uint8) { p.eois = append(p.eois, line) }

func TestDispatcherHardwareLines(t *testing.T) {
	var (
		pic         mockPIC
		buf         bytes.Buffer
		d           = NewDispatcher(&pic, &buf)
		ticks, keys int
	)

	d.HandleLine(TimerLine, func() { ticks++ })
	d.HandleLine(KeyboardLine, func() { keys++ })

	d.Handle(gate.IRQBase + TimerLine)
	d.Handle(gate.IRQBase + TimerLine)
	d.Handle(gate.IRQBase + KeyboardLine)
	// unhandled lines are still acknowledged
	d.Handle(gate.IRQBase + 5)
	d.Handle(gate.IRQBase + 12)

	if ticks != 2 || keys != 1 {
		t.Fatalf("expected 2 timer and 1 keyboard calls; got %d and %d", ticks, keys)
	}

	exp := []uint8{0, 0, 1, 5, 12}
	if len(pic.eois) != len(exp) {
		t.Fatalf("expected EOIs %v; got %v", exp, pic.eois)
	}
	for i := range exp {
		if pic.eois[i] != exp[i] {
			t.Fatalf("expected EOIs %v; got %v", exp, pic.eois)
		}
	}

	if got := d.Count(TimerLine); got != 2 {
		t.Fatalf("expected timer count 2; got %d", got)
	}

	if got := d.Count(99); got != 0 {
		t.Fatalf("expected count for an invalid line to be 0; got %d", got)
	}

	if buf.Len() != 0 {
		t.Fatalf("expected no diagnostics; got %q", buf.String())
	}
}

func TestDispatcherUnregister(t *testing.T) {
	var (
		pic   mockPIC
		d     = NewDispatcher(&pic, &bytes.Buffer{})
		calls int
	)

	d.HandleLine(3, func() { calls++ })
	d.HandleLine(3, nil)
	d.HandleLine(200, func() { calls++ })
	d.Handle(gate.IRQBase + 3)

	if calls != 0 || len(pic.eois) != 1 {
		t.Fatalf("expected no handler calls and one EOI; got %d calls, EOIs %v", calls, pic.eois)
	}
}

func TestDispatcherReports(t *testing.T) {
	specs := []struct {
		vector gate.InterruptNumber
		exp    string
	}{
		{gate.GPFException, "[irq] exception 13 (general protection fault)\n"},
		{gate.DivideByZero, "[irq] exception 0 (divide error)\n"},
		{31, "[irq] exception 31 (reserved)\n"},
		{48, "[irq] unhandled vector 48\n"},
		{200, "[irq] unhandled vector 200\n"},
	}

	for specIndex, spec := range specs {
		var (
			pic mockPIC
			buf bytes.Buffer
		)

		NewDispatcher(&pic, &buf).Handle(spec.vector)

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected report %q; got %q", specIndex, spec.exp, got)
		}

		if len(pic.eois) != 0 {
			t.Errorf("[spec %d] expected no EOI for a non-hardware vector; got %v", specIndex, pic.eois)
		}
	}
}
