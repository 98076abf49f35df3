// Package device defines the interface implemented by device drivers and the
// table that orders their initialization.
package device

import (
	"io"
	"sort"

	"github.com/Anonimek123-dev/COSMOS-C/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. If the driver init code
	// needs to log some output, it can use the supplied io.Writer in
	// conjunction with a call to kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// DetectOrder specifies when each driver is initialized relative to the
// others. Drivers with lower values are initialized first.
type DetectOrder int8

const (
	// DetectOrderEarly is used by drivers that other drivers depend on
	// for reporting, i.e. consoles.
	DetectOrderEarly = DetectOrder(-128)

	// DetectOrderTerminal is used by terminals that attach to a console.
	DetectOrderTerminal = DetectOrder(-64)

	// DetectOrderTimer is used by interval timers.
	DetectOrderTimer = DetectOrder(0)

	// DetectOrderInput is used by input devices.
	DetectOrderInput = DetectOrder(64)

	// DetectOrderLast is used by drivers that should be initialized last.
	DetectOrderLast = DetectOrder(127)
)

// MaxDrivers is the capacity of a Registry.
const MaxDrivers = 16

// DriverInfo pairs a driver with its initialization order.
type DriverInfo struct {
	// Order specifies at which stage the driver is initialized.
	Order DetectOrder

	// Driver is the driver instance.
	Driver Driver
}

// Registry is a fixed-capacity list of drivers. It implements sort.Interface
// so that drivers can be initialized by ascending DetectOrder; drivers with
// the same order keep their registration order.
type Registry struct {
	entries [MaxDrivers]DriverInfo
	count   int
}

// Register appends drv to the registry. It returns false if drv is nil or
// the registry is full.
func (r *Registry) Register(order DetectOrder, drv Driver) bool {
	if drv == nil || r.count == MaxDrivers {
		return false
	}

	r.entries[r.count] = DriverInfo{Order: order, Driver: drv}
	r.count++
	return true
}

// Sorted sorts the registered drivers by detection order and returns them.
// The returned slice aliases the registry storage.
func (r *Registry) Sorted() []DriverInfo {
	sort.Stable(r)
	return r.entries[:r.count]
}

// Len returns the number of registered drivers.
func (r *Registry) Len() int {
	return r.count
}

// Swap exchanges entries i and j.
func (r *Registry) Swap(i, j int) {
	r.entries[i], r.entries[j] = r.entries[j], r.entries[i]
}

// Less returns true if entry i must be initialized before entry j.
func (r *Registry) Less(i, j int) bool {
	return r.entries[i].Order < r.entries[j].Order
}
