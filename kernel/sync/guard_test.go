package sync

import (
	"testing"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
)

func TestIRQGuard(t *testing.T) {
	defer func() {
		saveFlagsFn = cpu.SaveFlagsAndDisable
		restoreFlagsFn = cpu.RestoreFlags
	}()

	var (
		ifSet    = true
		restored []uint64
	)

	saveFlagsFn = func() uint64 {
		flags := uint64(0x2)
		if ifSet {
			flags |= 0x200
		}
		ifSet = false
		return flags
	}
	restoreFlagsFn = func(flags uint64) {
		restored = append(restored, flags)
		ifSet = flags&0x200 != 0
	}

	var g Guard = &IRQGuard{}
	g.Acquire()
	if ifSet {
		t.Fatal("expected Acquire to disable interrupts")
	}
	g.Release()
	if !ifSet {
		t.Fatal("expected Release to re-enable interrupts")
	}

	// Interrupts disabled before Acquire must stay disabled after Release.
	ifSet = false
	g.Acquire()
	g.Release()
	if ifSet {
		t.Fatal("expected Release to keep interrupts disabled")
	}

	if exp := []uint64{0x202, 0x2}; len(restored) != 2 || restored[0] != exp[0] || restored[1] != exp[1] {
		t.Fatalf("expected restored flags %v; got %v", exp, restored)
	}
}

func TestNopGuard(t *testing.T) {
	var g Guard = NopGuard{}
	g.Acquire()
	g.Release()
}
