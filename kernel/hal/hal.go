// Package hal initializes device drivers and links the first console and
// terminal that come up into the kernel output path.
package hal

import (
	"github.com/Anonimek123-dev/COSMOS-C/device"
	"github.com/Anonimek123-dev/COSMOS-C/device/tty"
	"github.com/Anonimek123-dev/COSMOS-C/device/video/console"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
)

// Devices tracks the drivers brought up by Probe.
type Devices struct {
	activeConsole console.Device
	activeTTY     tty.Device

	// activeDrivers tracks all initialized device drivers.
	activeDrivers [device.MaxDrivers]device.Driver
	activeCount   int

	prefix prefixBuf
}

// ActiveConsole returns the console that kernel output is routed to.
func (d *Devices) ActiveConsole() console.Device {
	return d.activeConsole
}

// ActiveTTY returns the currently active TTY.
func (d *Devices) ActiveTTY() tty.Device {
	return d.activeTTY
}

// ActiveDrivers returns the drivers that were successfully initialized in
// initialization order.
func (d *Devices) ActiveDrivers() []device.Driver {
	return d.activeDrivers[:d.activeCount]
}

// Probe initializes every driver in reg by ascending detection order. Each
// driver logs through a kfmt.PrefixWriter tagged with its name and version.
// Drivers whose initialization fails are reported and skipped.
func (d *Devices) Probe(reg *device.Registry) {
	var w = kfmt.PrefixWriter{Sink: kfmt.Output()}

	for _, info := range reg.Sorted() {
		drv := info.Driver

		d.prefix.reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&d.prefix, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = d.prefix.bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		d.onDriverInit(drv)
		if d.activeCount < len(d.activeDrivers) {
			d.activeDrivers[d.activeCount] = drv
			d.activeCount++
		}
	}
}

// onDriverInit is invoked by Probe whenever a driver is successfully
// initialized.
func (d *Devices) onDriverInit(drv device.Driver) {
	switch drvImpl := drv.(type) {
	case console.Device:
		if d.activeConsole != nil {
			return
		}

		d.activeConsole = drvImpl
		if d.activeTTY != nil {
			d.linkTTYToConsole()
		}
	case tty.Device:
		if d.activeTTY != nil {
			return
		}

		d.activeTTY = drvImpl
		if d.activeConsole != nil {
			d.linkTTYToConsole()
		}
	}
}

// linkTTYToConsole connects the active TTY device to the active console device
// and syncs their contents. Any output buffered by kfmt so far is replayed
// onto the terminal.
func (d *Devices) linkTTYToConsole() {
	d.activeTTY.AttachTo(d.activeConsole)
	d.activeTTY.Clear()
	d.activeTTY.SetState(tty.StateActive)
	kfmt.SetOutputSink(d.activeTTY)
}

// prefixBuf is a fixed-size io.Writer used to render driver log prefixes.
// Output beyond its capacity is truncated.
type prefixBuf struct {
	buf [64]byte
	n   int
}

func (b *prefixBuf) Write(p []byte) (int, error) {
	n := copy(b.buf[b.n:], p)
	b.n += n
	return len(p), nil
}

func (b *prefixBuf) reset() {
	b.n = 0
}

func (b *prefixBuf) bytes() []byte {
	return b.buf[:b.n]
}
