package device

import (
	"io"
	"testing"

	"github.com/Anonimek123-dev/COSMOS-C/kernel"
)

type namedDriver string

func (d namedDriver) DriverName() string                      { return string(d) }
func (d namedDriver) DriverVersion() (uint16, uint16, uint16) { return 0, 0, 1 }
func (d namedDriver) DriverInit(_ io.Writer) *kernel.Error    { return nil }

func TestRegistrySorting(t *testing.T) {
	var r Registry

	origlist := []DriverInfo{
		{DetectOrderInput, namedDriver("ps2")},
		{DetectOrderLast, namedDriver("last")},
		{DetectOrderTerminal, namedDriver("vt")},
		{DetectOrderEarly, namedDriver("console")},
		{DetectOrderTimer, namedDriver("pit")},
		{DetectOrderInput, namedDriver("mouse")},
	}

	for _, info := range origlist {
		if !r.Register(info.Order, info.Driver) {
			t.Fatalf("expected %s to be registered", info.Driver.DriverName())
		}
	}

	list := r.Sorted()
	if exp, got := len(origlist), len(list); got != exp {
		t.Fatalf("expected Sorted() to return %d entries; got %d", exp, got)
	}

	expOrder := []string{"console", "vt", "pit", "ps2", "mouse", "last"}
	for i, exp := range expOrder {
		if got := list[i].Driver.DriverName(); got != exp {
			t.Errorf("expected sorted entry %d to be %q; got %q", i, exp, got)
		}
	}
}

func TestRegistryLimits(t *testing.T) {
	var r Registry

	if r.Register(DetectOrderEarly, nil) {
		t.Fatal("expected nil driver to be rejected")
	}

	for i := 0; i < MaxDrivers; i++ {
		if !r.Register(DetectOrderLast, namedDriver("drv")) {
			t.Fatalf("[driver %d] expected Register to succeed", i)
		}
	}

	if r.Register(DetectOrderLast, namedDriver("overflow")) {
		t.Fatal("expected Register to fail when the registry is full")
	}
}
