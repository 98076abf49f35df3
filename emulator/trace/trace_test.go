package trace

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestParse(t *testing.T) {
	src := `# boot and say hi
type hi
line ok

key up enter
raw e0 0x4b
wait 250
`

	steps, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	specs := []struct {
		line  int
		codes []uint8
		wait  time.Duration
	}{
		{2, []uint8{0x23, 0xa3, 0x17, 0x97}, 0},
		{3, []uint8{0x18, 0x98, 0x25, 0xa5, 0x1c, 0x9c}, 0},
		{5, []uint8{0xe0, 0x48, 0xe0, 0xc8, 0x1c, 0x9c}, 0},
		{6, []uint8{0xe0, 0x4b}, 0},
		{7, nil, 250 * time.Millisecond},
	}

	if len(steps) != len(specs) {
		t.Fatalf("expected %d steps; got %d", len(specs), len(steps))
	}

	for specIndex, spec := range specs {
		got := steps[specIndex]
		if got.Line != spec.line || !bytes.Equal(got.Codes, spec.codes) || got.Wait != spec.wait {
			t.Errorf("[spec %d] expected {%d % x %v}; got {%d % x %v}", specIndex, spec.line, spec.codes, spec.wait, got.Line, got.Codes, got.Wait)
		}
	}
}

func TestParseErrors(t *testing.T) {
	specs := []struct {
		src    string
		expErr string
	}{
		{"jump 3", `line 1: unknown directive "jump"`},
		{"\nkey hyper", `line 2: unknown key "hyper"`},
		{"key", "line 1: key needs at least one name"},
		{"raw zz", `line 1: bad byte "zz"`},
		{"raw 100", `line 1: bad byte "100"`},
		{"wait soon", `line 1: bad wait "soon"`},
		{"type naïve", "line 1: 1 characters cannot be typed"},
	}

	for specIndex, spec := range specs {
		_, err := Parse(strings.NewReader(spec.src))
		if err == nil || err.Error() != spec.expErr {
			t.Errorf("[spec %d] expected error %q; got %v", specIndex, spec.expErr, err)
		}
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/traces/demo.txt", []byte("line help\nwait 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	steps, err := Load(fs, "/traces/demo.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps; got %d", len(steps))
	}

	if _, err := Load(fs, "/traces/missing.txt"); err == nil {
		t.Fatal("expected an error for a missing trace")
	}

	if err := afero.WriteFile(fs, "/traces/bad.txt", []byte("fly\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fs, "/traces/bad.txt"); err == nil || !strings.HasPrefix(err.Error(), "/traces/bad.txt: line 1") {
		t.Fatalf("expected the error to name the file and line; got %v", err)
	}
}

type recorder struct {
	events []string
}

func (r *recorder) Type(codes ...uint8) {
	r.events = append(r.events, "type")
}

func TestPlay(t *testing.T) {
	steps := []Step{
		{Codes: []uint8{0x1c, 0x9c}},
		{Wait: 5 * time.Millisecond},
	}

	rec := &recorder{}
	Play(steps, rec, func(d time.Duration) {
		rec.events = append(rec.events, "settle "+d.String())
	})

	exp := []string{"type", "settle 0s", "settle 5ms"}
	if strings.Join(rec.events, ",") != strings.Join(exp, ",") {
		t.Fatalf("expected events %v; got %v", exp, rec.events)
	}
}

type dumper string

func (d dumper) DumpTo(w io.Writer) error {
	if d == "" {
		return errors.New("nothing to dump")
	}
	_, err := io.WriteString(w, string(d))
	return err
}

func TestWriteDump(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := WriteDump(fs, "/out/screens/final.txt", dumper("> help\n")); err != nil {
		t.Fatal(err)
	}

	got, err := afero.ReadFile(fs, "/out/screens/final.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "> help\n" {
		t.Fatalf("expected dump contents %q; got %q", "> help\n", got)
	}

	if err := WriteDump(fs, "/out/empty.txt", dumper("")); err == nil {
		t.Fatal("expected the dumper error to be returned")
	}
}
