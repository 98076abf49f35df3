// Package trace loads scripted keyboard sessions and stores screen dumps.
//
// A trace is a text file with one directive per line:
//
//	# comment
//	type <text>        types text as is
//	line <text>        types text followed by Enter
//	key <name>...      presses and releases named keys (enter, up, f1, ...)
//	raw <hex>...       sends raw scan code bytes
//	wait <ms>          lets the machine run for ms milliseconds
//
// Blank lines are ignored.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Anonimek123-dev/COSMOS-C/emulator/keyboard"
	"github.com/spf13/afero"
)

// Step is one trace directive. Exactly one of Codes and Wait is set.
type Step struct {
	Line  int
	Codes []uint8
	Wait  time.Duration
}

// Typer receives scan codes.
type Typer interface {
	Type(codes ...uint8)
}

// Dumper writes a text rendering of a screen.
type Dumper interface {
	DumpTo(w io.Writer) error
}

// Load reads and parses the trace at path.
func Load(fs afero.Fs, path string) ([]Step, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	steps, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

// Parse reads a trace from r.
func Parse(r io.Reader) ([]Step, error) {
	var (
		steps  []Step
		lineNo int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		text := strings.TrimRight(sc.Text(), "\r")
		if trimmed := strings.TrimSpace(text); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		step, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		step.Line = lineNo
		steps = append(steps, step)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func parseLine(text string) (Step, error) {
	directive, arg := text, ""
	if i := strings.IndexByte(text, ' '); i >= 0 {
		directive, arg = text[:i], text[i+1:]
	}

	var step Step
	switch directive {
	case "type", "line":
		codes, skipped := keyboard.AppendText(nil, arg)
		if skipped != 0 {
			return step, fmt.Errorf("%d characters cannot be typed", skipped)
		}
		if directive == "line" {
			codes, _ = keyboard.AppendKey(codes, "enter")
		}
		step.Codes = codes
	case "key":
		names := strings.Fields(arg)
		if len(names) == 0 {
			return step, fmt.Errorf("key needs at least one name")
		}
		for _, name := range names {
			var ok bool
			if step.Codes, ok = keyboard.AppendKey(step.Codes, name); !ok {
				return step, fmt.Errorf("unknown key %q", name)
			}
		}
	case "raw":
		fields := strings.Fields(arg)
		if len(fields) == 0 {
			return step, fmt.Errorf("raw needs at least one byte")
		}
		for _, field := range fields {
			b, err := strconv.ParseUint(strings.TrimPrefix(field, "0x"), 16, 8)
			if err != nil {
				return step, fmt.Errorf("bad byte %q", field)
			}
			step.Codes = append(step.Codes, uint8(b))
		}
	case "wait":
		ms, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 32)
		if err != nil {
			return step, fmt.Errorf("bad wait %q", arg)
		}
		step.Wait = time.Duration(ms) * time.Millisecond
	default:
		return step, fmt.Errorf("unknown directive %q", directive)
	}
	return step, nil
}

// Play feeds steps to kb. settle is called after every step with the wait
// duration of the step (zero for input steps) and must return once the
// machine has processed the step.
func Play(steps []Step, kb Typer, settle func(time.Duration)) {
	for _, step := range steps {
		if len(step.Codes) != 0 {
			kb.Type(step.Codes...)
		}
		settle(step.Wait)
	}
}

// WriteDump stores the screen contents of d at path, creating parent
// directories as needed.
func WriteDump(fs afero.Fs, path string, d Dumper) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := fs.Create(path)
	if err != nil {
		return err
	}

	if err := d.DumpTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
