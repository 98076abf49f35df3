package irq

import (
	"io"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/gate"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
)

// EOISender is implemented by interrupt controllers that need an
// end-of-interrupt acknowledgment for every serviced line.
type EOISender interface {
	SendEOI(line uint8)
}

// LineHandler services a hardware interrupt line. Handlers run with
// interrupts disabled and must not block.
type LineHandler func()

// Dispatcher routes every interrupt vector raised by the entry stubs. CPU
// exceptions are reported and execution resumes; hardware lines are handed
// to their registered LineHandler and then acknowledged.
type Dispatcher struct {
	pic      EOISender
	handlers [gate.IRQCount]LineHandler
	counts   [gate.IRQCount]uint64

	// report receives diagnostics. If nil, the active kfmt sink is used.
	report io.Writer
}

// NewDispatcher creates a Dispatcher that acknowledges lines via pic and
// writes diagnostics to report.
func NewDispatcher(pic EOISender, report io.Writer) *Dispatcher {
	d := &Dispatcher{}
	d.Init(pic, report)
	return d
}

// Init resets d in place, dropping every line handler and counter.
func (d *Dispatcher) Init(pic EOISender, report io.Writer) {
	*d = Dispatcher{pic: pic, report: report}
}

// HandleLine registers fn as the handler for a hardware line. Passing a nil
// fn removes the handler; the line is still acknowledged when it fires.
func (d *Dispatcher) HandleLine(line uint8, fn LineHandler) {
	if line < gate.IRQCount {
		d.handlers[line] = fn
	}
}

// Handle services a single interrupt vector.
func (d *Dispatcher) Handle(vector gate.InterruptNumber) {
	switch {
	case vector.IsException():
		kfmt.Fprintf(d.writer(), "[irq] exception %d (%s)\n", uint8(vector), vector.Name())
	case vector.IsIRQ():
		line := uint8(vector - gate.IRQBase)
		d.counts[line]++
		if fn := d.handlers[line]; fn != nil {
			fn()
		}
		d.pic.SendEOI(line)
	default:
		kfmt.Fprintf(d.writer(), "[irq] unhandled vector %d\n", uint8(vector))
	}
}

// Count returns the number of interrupts serviced on line.
func (d *Dispatcher) Count(line uint8) uint64 {
	if line >= gate.IRQCount {
		return 0
	}
	return d.counts[line]
}

func (d *Dispatcher) writer() io.Writer {
	if d.report != nil {
		return d.report
	}
	return kfmt.GetOutputSink()
}
