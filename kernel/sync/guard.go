// Package sync provides the critical section primitives used to protect
// state shared between the main loop and interrupt handlers.
package sync

import "github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"

var (
	// mocked by tests
	saveFlagsFn    = cpu.SaveFlagsAndDisable
	restoreFlagsFn = cpu.RestoreFlags
)

// Guard protects a critical section that may race with interrupt delivery.
type Guard interface {
	// Acquire enters the critical section.
	Acquire()

	// Release leaves the critical section.
	Release()
}

// IRQGuard is a Guard that masks interrupt delivery on the local CPU for the
// duration of the critical section. On a single-core machine this is enough
// to exclude every interrupt handler. Acquire/Release pairs may not be
// nested on the same IRQGuard.
type IRQGuard struct {
	flags uint64
}

// Acquire saves the interrupt flag and disables interrupts.
func (g *IRQGuard) Acquire() {
	g.flags = saveFlagsFn()
}

// Release restores the interrupt flag saved by Acquire.
func (g *IRQGuard) Release() {
	restoreFlagsFn(g.flags)
}

// NopGuard is a Guard that does nothing. It is used when the caller already
// runs with interrupt delivery serialized.
type NopGuard struct{}

// Acquire implements Guard.
func (NopGuard) Acquire() {}

// Release implements Guard.
func (NopGuard) Release() {}
