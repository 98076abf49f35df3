package kfmt

import (
	"bytes"
	"testing"
)

func TestPrintf(t *testing.T) {
	defer func() {
		outputSink = nil
	}()

	// mute vet warnings about malformed printf formatting strings
	printfn := Printf

	specs := []struct {
		fn        func()
		expOutput string
	}{
		{
			func() { printfn("no args") },
			"no args",
		},
		{
			func() { printfn("%t %t", true, false) },
			"true false",
		},
		{
			func() { printfn("%s arg", "STRING") },
			"STRING arg",
		},
		{
			func() { printfn("%s arg", []byte("BYTE SLICE")) },
			"BYTE SLICE arg",
		},
		{
			func() { printfn("'%4s' arg with padding", "ABC") },
			"' ABC' arg with padding",
		},
		{
			func() { printfn("'%4s' arg longer than padding", "ABCDE") },
			"'ABCDE' arg longer than padding",
		},
		{
			func() { printfn("[%c%c]", byte('o'), 'k') },
			"[ok]",
		},
		{
			func() { printfn("vector: %d", uint8(13)) },
			"vector: 13",
		},
		{
			func() { printfn("%o", uint16(0777)) },
			"777",
		},
		{
			func() { printfn("0x%x", uint32(0xbadf00d)) },
			"0xbadf00d",
		},
		{
			func() { printfn("'%10d'", uint64(123)) },
			"'       123'",
		},
		{
			func() { printfn("%d:%02d:%02d.%03d", uint64(1), uint64(2), uint64(3), uint64(4)) },
			"1:02:03.004",
		},
		{
			func() { printfn("0x%10x", uintptr(0xb8000)) },
			"0x00000b8000",
		},
		{
			func() { printfn("'%5x'", int64(0xbadf00d)) },
			"'badf00d'",
		},
		{
			func() { printfn("%d", int8(-10)) },
			"-10",
		},
		{
			func() { printfn("%x", int32(-0xbadf00d)) },
			"-badf00d",
		},
		{
			func() { printfn("'%10d'", int64(-12345678)) },
			"' -12345678'",
		},
		{
			func() { printfn("'%05d'", -42) },
			"'-0042'",
		},
		{
			func() { printfn("'%10d'", int64(-1234567890)) },
			"'-1234567890'",
		},
		{
			func() { printfn("%d", 0) },
			"0",
		},
		{
			func() { printfn("100%%") },
			"100%",
		},
		{
			func() { printfn("%%%s%d%t", "foo", 123, true) },
			`%foo123true`,
		},
		{
			func() { printfn("more args", "foo", "bar") },
			`more args%!(EXTRA)%!(EXTRA)`,
		},
		{
			func() { printfn("missing args %s") },
			`missing args (MISSING)`,
		},
		{
			func() { printfn("bad verb %Q") },
			`bad verb %!(NOVERB)`,
		},
		{
			func() { printfn("trailing %") },
			`trailing %!(NOVERB)`,
		},
		{
			func() { printfn("not bool %t", "foo") },
			`not bool %!(WRONGTYPE)`,
		},
		{
			func() { printfn("not int %d", "foo") },
			`not int %!(WRONGTYPE)`,
		},
		{
			func() { printfn("not string %s", 123) },
			`not string %!(WRONGTYPE)`,
		},
		{
			func() { printfn("not char %c", "x") },
			`not char %!(WRONGTYPE)`,
		},
	}

	var buf bytes.Buffer
	SetOutputSink(&buf)

	for specIndex, spec := range specs {
		buf.Reset()
		spec.fn()

		if got := buf.String(); got != spec.expOutput {
			t.Errorf("[spec %d] expected to get\n%q\ngot:\n%q", specIndex, spec.expOutput, got)
		}
	}
}

func TestPrintfToRingBuffer(t *testing.T) {
	defer func() {
		outputSink = nil
	}()

	outputSink = nil
	exp := "[ps2] early output"
	Printf("[%s] early output", "ps2")

	var buf bytes.Buffer
	SetOutputSink(&buf)

	if got := buf.String(); got != exp {
		t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
	}

	if GetOutputSink() != &buf {
		t.Fatal("expected GetOutputSink to return the registered sink")
	}
}

func TestFprintf(t *testing.T) {
	var buf bytes.Buffer

	exp := "hello world"
	Fprintf(&buf, exp)

	if got := buf.String(); got != exp {
		t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
	}
}

func TestOutput(t *testing.T) {
	defer func() {
		outputSink = nil
	}()

	outputSink = nil
	w := Output()
	Fprintf(w, "buffered %d;", 1)

	var buf bytes.Buffer
	SetOutputSink(&buf)
	Fprintf(w, "direct %d", 2)

	if exp, got := "buffered 1;direct 2", buf.String(); got != exp {
		t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
	}
}
