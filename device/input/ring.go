package input

import "sync/atomic"

// RingSize is the number of slots in a Ring. One slot is always kept empty
// to tell a full ring from an empty one.
const RingSize = 256

// Ring is a fixed-capacity FIFO of key events with exactly one producer (the
// keyboard interrupt handler) and exactly one consumer (the main loop).
//
// The producer is the only writer of head and the consumer the only writer of
// tail. A slot is written before head is published so the consumer never
// observes a half-written event.
type Ring struct {
	slots [RingSize]Key
	head  atomic.Uint32
	tail  atomic.Uint32
}

// Push appends k to the ring. If the ring is full the event is dropped and
// Push returns false.
func (r *Ring) Push(k Key) bool {
	head := r.head.Load()
	next := (head + 1) % RingSize
	if next == r.tail.Load() {
		return false
	}

	r.slots[head] = k
	r.head.Store(next)
	return true
}

// Pop removes the oldest event from the ring. The second return value is
// false if the ring was empty.
func (r *Ring) Pop() (Key, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return KeyNone, false
	}

	k := r.slots[tail]
	r.tail.Store((tail + 1) % RingSize)
	return k, true
}

// Len returns the number of queued events.
func (r *Ring) Len() int {
	return int((r.head.Load() + RingSize - r.tail.Load()) % RingSize)
}

// Reset discards all queued events. It must only be called while no producer
// is active, e.g. during driver initialization.
func (r *Ring) Reset() {
	r.head.Store(0)
	r.tail.Store(0)
}
