// Package pit models channel 0 of an Intel 8253/8254 programmable interval
// timer. The emulated output drives IRQ 0 from a wall-clock ticker whose
// period follows the programmed reload value.
package pit

import (
	"sync"
	"time"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/timer"
)

const (
	Channel0Port = timer.Channel0Port
	CommandPort  = timer.CommandPort

	// minPeriod bounds the host ticker rate.
	minPeriod = 100 * time.Microsecond
)

const (
	accessLatch = iota
	accessLowByte
	accessHighByte
	accessToggle
)

// Timer is the channel 0 model. Channels 1 and 2 are accepted on the
// command port and ignored.
type Timer struct {
	mu    sync.Mutex
	raise func(line uint8)
	speed float64

	access  uint8
	toggle  bool
	reload  uint16
	running bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a stopped timer that calls raise(0) on every period. speed
// scales the emulated clock; values <= 0 select real time.
func New(raise func(line uint8), speed float64) *Timer {
	if speed <= 0 {
		speed = 1
	}
	return &Timer{raise: raise, speed: speed}
}

// In implements emulator.PortDevice. Counter reads are not modelled.
func (t *Timer) In(uint16) uint8 {
	return 0
}

// Out implements emulator.PortDevice.
func (t *Timer) Out(port uint16, val uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch port {
	case CommandPort:
		if val>>6 != 0 {
			return
		}
		t.access = (val >> 4) & 3
		t.toggle = false
	case Channel0Port:
		switch {
		case t.access == accessLowByte || (t.access == accessToggle && !t.toggle):
			t.reload = t.reload&0xff00 | uint16(val)
		case t.access == accessHighByte || (t.access == accessToggle && t.toggle):
			t.reload = t.reload&0x00ff | uint16(val)<<8
		default:
			return
		}

		if t.access == accessToggle {
			t.toggle = !t.toggle
			if t.toggle {
				// wait for the high byte
				return
			}
		}
		t.restart()
	}
}

// Frequency returns the output frequency in emulated Hz or 0 if the channel
// was never programmed.
func (t *Timer) Frequency() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return 0
	}
	return timer.InputClockHz / float64(t.effective())
}

// Close stops the ticker goroutine.
func (t *Timer) Close() {
	t.mu.Lock()
	t.halt()
	t.mu.Unlock()
}

func (t *Timer) effective() uint32 {
	if t.reload == 0 {
		return 65536
	}
	return uint32(t.reload)
}

func (t *Timer) period() time.Duration {
	p := time.Duration(float64(time.Second) * float64(t.effective()) / timer.InputClockHz / t.speed)
	if p < minPeriod {
		p = minPeriod
	}
	return p
}

// restart replaces the running ticker. Called with mu held.
func (t *Timer) restart() {
	t.halt()

	t.running = true
	t.stop = make(chan struct{})
	t.wg.Add(1)
	go t.run(t.period(), t.stop)
}

// halt stops the ticker. Called with mu held.
func (t *Timer) halt() {
	if !t.running {
		return
	}
	close(t.stop)
	t.running = false
	t.wg.Wait()
}

func (t *Timer) run(period time.Duration, stop chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.raise(0)
		}
	}
}
