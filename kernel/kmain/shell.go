package kmain

import (
	"sync/atomic"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/irq"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/timer"
)

const (
	maxReminders    = timer.MaxTimeouts
	maxReminderText = 64

	maxTicks = ^uint64(0)
)

// reminder is a timeout whose message is printed by the main loop.
type reminder struct {
	text [maxReminderText]byte
	len  int

	// armed is only touched by the main loop.
	armed bool

	// due is set from the timer interrupt.
	due atomic.Bool
}

// Fire implements timer.Callback. It runs in interrupt context so it only
// flags the reminder.
func (r *reminder) Fire() {
	r.due.Store(true)
}

// shell executes the lines submitted by the line editor.
type shell struct {
	k         *Kernel
	reminders [maxReminders]reminder
}

func (s *shell) init(k *Kernel) {
	s.k = k
	for i := range s.reminders {
		r := &s.reminders[i]
		r.len, r.armed = 0, false
		r.due.Store(false)
	}
}

// Execute implements lineedit.Executor.
func (s *shell) Execute(line []byte) {
	name, args := nextField(line)
	if len(name) == 0 {
		return
	}

	w := &s.k.vt
	switch string(name) {
	case "help":
		kfmt.Fprintf(w, "commands:\n")
		kfmt.Fprintf(w, "  help              show this list\n")
		kfmt.Fprintf(w, "  uptime            time since boot\n")
		kfmt.Fprintf(w, "  clear             clear the screen\n")
		kfmt.Fprintf(w, "  history           list previous commands\n")
		kfmt.Fprintf(w, "  echo <text>       print text\n")
		kfmt.Fprintf(w, "  sleep <ms>        block for ms milliseconds\n")
		kfmt.Fprintf(w, "  remind <ms> <text> print text after ms milliseconds\n")
		kfmt.Fprintf(w, "  irq               interrupt counters\n")
	case "uptime":
		kfmt.Fprintf(w, "up ")
		timer.Format(w, s.k.uptimeMillis())
		kfmt.Fprintf(w, "\n")
	case "clear":
		s.k.vt.Clear()
	case "history":
		for i := 0; i < s.k.editor.HistoryLen(); i++ {
			kfmt.Fprintf(w, "%3d  %s\n", i+1, s.k.editor.HistoryEntry(i))
		}
	case "echo":
		kfmt.Fprintf(w, "%s\n", trimSpace(args))
	case "sleep":
		ms, ok := parseUint(string(trimSpace(args)))
		if !ok {
			kfmt.Fprintf(w, "usage: sleep <ms>\n")
			return
		}
		s.k.clock.Sleep(s.k.ticksFor(ms))
	case "remind":
		s.remind(args)
	case "irq":
		kfmt.Fprintf(w, "irq%d (timer):    %d\n", irq.TimerLine, s.k.dispatcher.Count(irq.TimerLine))
		kfmt.Fprintf(w, "irq%d (keyboard): %d\n", irq.KeyboardLine, s.k.dispatcher.Count(irq.KeyboardLine))
	default:
		kfmt.Fprintf(w, "unknown command: %s\n", name)
	}
}

func (s *shell) remind(args []byte) {
	w := &s.k.vt

	delay, text := nextField(args)
	text = trimSpace(text)
	ms, ok := parseUint(string(delay))
	if !ok || len(text) == 0 {
		kfmt.Fprintf(w, "usage: remind <ms> <text>\n")
		return
	}

	var r *reminder
	for i := range s.reminders {
		if !s.reminders[i].armed {
			r = &s.reminders[i]
			break
		}
	}

	if r == nil {
		kfmt.Fprintf(w, "remind: no free timer slots\n")
		return
	}

	r.len = copy(r.text[:], text)
	r.due.Store(false)
	if !s.k.clock.Schedule(r, s.k.ticksFor(ms)) {
		kfmt.Fprintf(w, "remind: no free timer slots\n")
		return
	}

	r.armed = true
	kfmt.Fprintf(w, "reminder set for %d ms\n", ms)
}

// flushReminders prints every reminder whose timeout has fired. The line
// being edited is redrawn below the messages.
func (s *shell) flushReminders() {
	printed := false
	for i := range s.reminders {
		r := &s.reminders[i]
		if !r.armed || !r.due.Load() {
			continue
		}

		if !printed {
			s.k.editor.Detach()
			printed = true
		}

		r.armed = false
		r.due.Store(false)
		kfmt.Fprintf(&s.k.vt, "[remind] %s\n", r.text[:r.len])
	}

	if printed {
		s.k.editor.Redisplay()
	}
}

// uptimeMillis converts the tick count to milliseconds.
func (k *Kernel) uptimeMillis() uint64 {
	hz := uint64(k.pit.Frequency())
	if hz == 0 || hz == 1000 {
		return k.clock.Uptime()
	}
	return k.clock.Uptime() * 1000 / hz
}

// ticksFor converts a duration in milliseconds to timer ticks, rounding up.
// Durations too long to represent saturate at the largest tick count.
func (k *Kernel) ticksFor(ms uint64) uint64 {
	hz := uint64(k.pit.Frequency())
	if hz == 0 || hz == 1000 {
		return ms
	}

	secs, frac := ms/1000, (ms%1000*hz+999)/1000
	if secs > (maxTicks-frac)/hz {
		return maxTicks
	}
	return secs*hz + frac
}

// nextField splits off the first space separated word of line.
func nextField(line []byte) ([]byte, []byte) {
	line = trimSpace(line)
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			return line[:i], line[i+1:]
		}
	}
	return line, nil
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && b[0] == ' ' {
		b = b[1:]
	}
	for len(b) > 0 && b[len(b)-1] == ' ' {
		b = b[:len(b)-1]
	}
	return b
}
