package timer

import "github.com/Anonimek123-dev/COSMOS-C/kernel/sync"

// MaxTimeouts is the number of timeout slots available.
const MaxTimeouts = 16

// Callback is invoked when a timeout expires. Callbacks run inside the timer
// interrupt handler and delay the acknowledgment of the timer line, so they
// must be short and must never block.
type Callback interface {
	Fire()
}

// Func adapts an ordinary function to the Callback interface.
type Func func()

// Fire calls f.
func (f Func) Fire() {
	f()
}

type timeout struct {
	cb     Callback
	target uint64
	active bool
}

// Scheduler is a fixed-capacity table of one-shot timeouts. Once armed, a
// timeout cannot be cancelled; it fires exactly once when the tick count
// reaches its target.
type Scheduler struct {
	slots [MaxTimeouts]timeout

	// guard excludes Advance while Schedule fills in a slot.
	guard sync.Guard
}

// NewScheduler creates a Scheduler whose slot allocation is protected by
// guard. A nil guard is treated as sync.NopGuard.
func NewScheduler(guard sync.Guard) *Scheduler {
	s := &Scheduler{}
	s.Init(guard)
	return s
}

// Init discards all timeouts and sets the guard used by Schedule.
func (s *Scheduler) Init(guard sync.Guard) {
	if guard == nil {
		guard = sync.NopGuard{}
	}
	s.slots = [MaxTimeouts]timeout{}
	s.guard = guard
}

// Schedule arms the first free slot so that cb fires once the tick count
// reaches target. It returns false if cb is nil or if every slot is taken,
// in which case the request is dropped.
func (s *Scheduler) Schedule(cb Callback, target uint64) bool {
	if cb == nil {
		return false
	}

	s.guard.Acquire()
	defer s.guard.Release()

	for i := range s.slots {
		slot := &s.slots[i]
		if slot.active {
			continue
		}

		slot.cb = cb
		slot.target = target
		slot.active = true
		return true
	}

	return false
}

// Advance fires every active timeout whose target is less than or equal to
// now. Each slot is released before its callback runs so the callback may
// schedule a new timeout.
func (s *Scheduler) Advance(now uint64) {
	for i := range s.slots {
		slot := &s.slots[i]
		if !slot.active || now < slot.target {
			continue
		}

		slot.active = false
		cb := slot.cb
		slot.cb = nil
		cb.Fire()
	}
}

// Pending returns the number of armed timeouts.
func (s *Scheduler) Pending() int {
	var n int
	for i := range s.slots {
		if s.slots[i].active {
			n++
		}
	}
	return n
}
