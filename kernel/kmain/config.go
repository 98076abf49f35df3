package kmain

import (
	"github.com/Anonimek123-dev/COSMOS-C/device/video/console"
	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/lineedit"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/timer"
)

// DefaultPrompt is printed in front of every input line.
const DefaultPrompt = "> "

var errBadCmdLine = &kernel.Error{Module: "kmain", Message: "invalid command line value"}

// Config holds the boot time settings of the kernel.
type Config struct {
	// TickRate is the PIT interrupt rate in Hz. At the default rate one
	// tick is one millisecond.
	TickRate uint32

	// Prompt is printed before each input line.
	Prompt string

	// Fg and Bg are the terminal colors used for the shell.
	Fg, Bg console.Color

	// BlinkThreshold is the number of idle polls between cursor blinks.
	BlinkThreshold uint32
}

// DefaultConfig returns the settings used when the boot command line does not
// override them.
func DefaultConfig() Config {
	return Config{
		TickRate:       timer.DefaultFrequency,
		Prompt:         DefaultPrompt,
		Fg:             console.White,
		Bg:             console.Black,
		BlinkThreshold: lineedit.DefaultBlinkThreshold,
	}
}

// ApplyCmdLine updates the config from a whitespace separated list of
// key=value pairs such as "tickrate=100 fg=green prompt=$". Unknown keys and
// tokens without a value are ignored. Invalid values leave the setting
// untouched; the remaining pairs are still applied and errBadCmdLine is
// returned.
func (c *Config) ApplyCmdLine(cmdLine string) *kernel.Error {
	var err *kernel.Error

	for pos := 0; pos < len(cmdLine); {
		for pos < len(cmdLine) && isSpace(cmdLine[pos]) {
			pos++
		}
		start := pos
		for pos < len(cmdLine) && !isSpace(cmdLine[pos]) {
			pos++
		}
		if start == pos {
			break
		}

		key, value, ok := splitPair(cmdLine[start:pos])
		if !ok {
			continue
		}

		if !c.apply(key, value) {
			err = errBadCmdLine
		}
	}

	return err
}

func (c *Config) apply(key, value string) bool {
	switch key {
	case "tickrate":
		hz, ok := parseUint(value)
		if !ok || hz == 0 || hz > timer.InputClockHz {
			return false
		}
		c.TickRate = uint32(hz)
	case "blink":
		n, ok := parseUint(value)
		if !ok || n == 0 || n > 0xffffffff {
			return false
		}
		c.BlinkThreshold = uint32(n)
	case "prompt":
		c.Prompt = value
	case "fg", "bg":
		color, ok := console.ColorByName(value)
		if !ok {
			return false
		}
		if key == "fg" {
			c.Fg = color
		} else {
			c.Bg = color
		}
	}
	return true
}

func splitPair(token string) (string, string, bool) {
	for i := 0; i < len(token); i++ {
		if token[i] == '=' {
			return token[:i], token[i+1:], true
		}
	}
	return "", "", false
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// parseUint parses an unsigned decimal number. Values that do not fit in 32
// bits are accepted; callers apply their own bounds.
func parseUint(s string) (uint64, bool) {
	if len(s) == 0 || len(s) > 19 {
		return 0, false
	}

	var v uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		v = v*10 + uint64(s[i]-'0')
	}
	return v, true
}
