package kfmt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
)

func TestPanic(t *testing.T) {
	defer func() {
		cpuHaltFn = cpu.Halt
		cpuDisableInterruptsFn = cpu.DisableInterrupts
		outputSink = nil
	}()

	var cpuHaltCalled, cliCalled bool
	cpuHaltFn = func() {
		cpuHaltCalled = true
	}
	cpuDisableInterruptsFn = func() {
		cliCalled = true
	}

	specs := []struct {
		name   string
		arg    interface{}
		expMsg string
	}{
		{"with *kernel.Error", &kernel.Error{Module: "test", Message: "panic test"}, "[test] unrecoverable error: panic test\n"},
		{"with error", errors.New("go error"), "[rt] unrecoverable error: go error\n"},
		{"with string", "string error", "[rt] unrecoverable error: string error\n"},
		{"without error", nil, ""},
	}

	var buf bytes.Buffer
	SetOutputSink(&buf)

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			buf.Reset()
			cpuHaltCalled, cliCalled = false, false

			Panic(spec.arg)

			exp := "\n-----------------------------------\n" + spec.expMsg + "*** kernel panic: system halted ***\n-----------------------------------\n"
			if got := buf.String(); got != exp {
				t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
			}

			if !cpuHaltCalled || !cliCalled {
				t.Fatal("expected Panic to disable interrupts and halt the CPU")
			}
		})
	}
}
