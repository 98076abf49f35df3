// Package ps2 implements a driver for PS/2 keyboards attached to an i8042
// compatible controller that speaks scan code set 1.
package ps2

import (
	"io"

	"github.com/Anonimek123-dev/COSMOS-C/device/input"
	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
)

// State describes which part of a multi-byte sequence the decoder expects
// next.
type State uint8

// The decoder states.
const (
	// Idle is the state between complete sequences.
	Idle State = iota

	// ExtendedPrefix follows an 0xE0 byte.
	ExtendedPrefix

	// PauseSequence follows an 0xE1 byte.
	PauseSequence

	// PrintScreenFrame is entered once the first two bytes of a
	// PrintScreen press or release frame have been seen.
	PrintScreenFrame
)

// String implements fmt.Stringer for State.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ExtendedPrefix:
		return "extended"
	case PauseSequence:
		return "pause"
	case PrintScreenFrame:
		return "printscreen"
	default:
		return "unknown"
	}
}

// Modifiers is a bitmask of sticky modifier and lock keys.
type Modifiers uint8

// The modifier bits.
const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModCapsLock
	ModNumLock
	ModScrollLock
)

// LEDMask is the argument of the keyboard set-LEDs command.
type LEDMask uint8

// The LED bits.
const (
	LEDScrollLock LEDMask = 1 << 0
	LEDNumLock    LEDMask = 1 << 1
	LEDCapsLock   LEDMask = 1 << 2
)

// LEDWriter is implemented by devices that can display the lock state.
type LEDWriter interface {
	SetLEDs(LEDMask) *kernel.Error
}

// Decoder converts a stream of scan code set 1 bytes into key events. It
// keeps the sticky modifier state between calls and is meant to be fed from
// the keyboard interrupt handler only.
type Decoder struct {
	state State
	mods  Modifiers

	frame    [4]uint8
	frameLen int

	// report receives textual reports for keys that do not produce an
	// event (function keys, escape and modifier presses).
	report io.Writer

	// leds is updated whenever a lock key toggles.
	leds LEDWriter
}

// NewDecoder returns a Decoder with numlock enabled. Key reports and LED
// write failures are written to report (or the kfmt output sink if report is
// nil). If leds is not nil, it receives the new LED mask whenever a lock key
// toggles.
func NewDecoder(report io.Writer, leds LEDWriter) *Decoder {
	d := &Decoder{}
	d.Init(report, leds)
	return d
}

// Init sets up d in place. It is equivalent to NewDecoder.
func (d *Decoder) Init(report io.Writer, leds LEDWriter) {
	d.report = report
	d.leds = leds
	d.Reset()
}

// Reset returns the decoder to the Idle state with only numlock enabled.
func (d *Decoder) Reset() {
	d.state = Idle
	d.mods = ModNumLock
	d.frameLen = 0
}

// State returns the current decoder state.
func (d *Decoder) State() State {
	return d.state
}

// Modifiers returns the current modifier and lock state.
func (d *Decoder) Modifiers() Modifiers {
	return d.mods
}

// LEDs returns the LED mask matching the current lock state.
func (d *Decoder) LEDs() LEDMask {
	var mask LEDMask
	if d.mods&ModScrollLock != 0 {
		mask |= LEDScrollLock
	}
	if d.mods&ModNumLock != 0 {
		mask |= LEDNumLock
	}
	if d.mods&ModCapsLock != 0 {
		mask |= LEDCapsLock
	}
	return mask
}

// Feed processes one byte received from the keyboard. It returns the
// resulting key event and true if the byte completed one.
func (d *Decoder) Feed(b uint8) (input.Key, bool) {
	switch d.state {
	case PauseSequence:
		return d.feedPause(b)
	case PrintScreenFrame:
		return d.feedFrame(b)
	case ExtendedPrefix:
		return d.feedExtended(b)
	default:
		return d.feedIdle(b)
	}
}

// feedPause consumes the byte following 0xE1. The rest of the sequence is
// not validated: a full E1 1D 45 E1 9D C5 make reports two pause events and
// its 0x45 and 0xC5 bytes decode as a numlock press and release.
func (d *Decoder) feedPause(uint8) (input.Key, bool) {
	d.state = Idle
	return input.KeyPause, true
}

func (d *Decoder) feedIdle(b uint8) (input.Key, bool) {
	switch b {
	case prefixPause:
		d.state = PauseSequence
		return input.KeyNone, false
	case prefixExtended:
		d.state = ExtendedPrefix
		return input.KeyNone, false
	}

	return d.decode(b, false)
}

func (d *Decoder) feedExtended(b uint8) (input.Key, bool) {
	switch b {
	case prefixPause:
		d.state = PauseSequence
		return input.KeyNone, false
	case prefixExtended:
		return input.KeyNone, false
	case printScreenPress[1], printScreenRelease[1]:
		d.frame[0], d.frame[1] = prefixExtended, b
		d.frameLen = 2
		d.state = PrintScreenFrame
		return input.KeyNone, false
	}

	d.state = Idle
	return d.decode(b, true)
}

// feedFrame matches b against the PrintScreen frame selected by its second
// byte. A mismatching byte abandons the frame. It is decoded as an extended
// code if it directly follows the frame's second 0xE0 (keyboards wrap
// navigation keys in the same fake shift bytes) and as a plain byte
// otherwise.
func (d *Decoder) feedFrame(b uint8) (input.Key, bool) {
	expFrame := &printScreenPress
	if d.frame[1] == printScreenRelease[1] {
		expFrame = &printScreenRelease
	}

	if b != expFrame[d.frameLen] {
		afterPrefix := d.frame[d.frameLen-1] == prefixExtended
		d.frameLen = 0
		if afterPrefix {
			d.state = ExtendedPrefix
			return d.feedExtended(b)
		}
		d.state = Idle
		return d.feedIdle(b)
	}

	d.frame[d.frameLen] = b
	if d.frameLen++; d.frameLen < len(d.frame) {
		return input.KeyNone, false
	}

	d.frameLen = 0
	d.state = Idle
	if expFrame == &printScreenPress {
		return input.KeyPrintScreen, true
	}
	return input.KeyNone, false
}

// decode resolves a single make or break code.
func (d *Decoder) decode(b uint8, extended bool) (input.Key, bool) {
	released := b&releaseBit != 0
	code := b &^ releaseBit

	if !released {
		switch code {
		case codeSysRq:
			return input.KeySysRq, true
		case codeKPEqual:
			return input.KeyKPEqual, true
		}
	}

	switch code {
	case codeLeftShift, codeRightShift:
		// 0xE0 prefixed shifts are emitted around navigation keys and
		// do not reflect the state of a physical shift key.
		if !extended {
			d.setModifier(ModShift, !released)
		}
		return input.KeyNone, false
	case codeLeftCtrl:
		d.setModifier(ModCtrl, !released)
		if !released {
			d.print("[Ctrl]")
		}
		return input.KeyNone, false
	case codeLeftAlt:
		d.setModifier(ModAlt, !released)
		if !released {
			d.print("[Alt]")
		}
		return input.KeyNone, false
	case codeCapsLock:
		return d.toggleLock(ModCapsLock, released)
	case codeNumLock:
		return d.toggleLock(ModNumLock, released)
	case codeScrollLock:
		return d.toggleLock(ModScrollLock, released)
	}

	if released {
		return input.KeyNone, false
	}

	if extended {
		k := extendedTable[code]
		return k, k != input.KeyNone
	}

	if code == codeEscape {
		d.print("[Esc]")
		return input.KeyNone, false
	}

	if n := functionKeyNumber[code]; n != 0 {
		kfmt.Fprintf(d.out(), "[F%d]", n)
		return input.KeyNone, false
	}

	if np := numpadTable[code]; np.num != input.KeyNone {
		if d.mods&ModNumLock != 0 {
			return np.num, true
		}
		return np.nav, np.nav != input.KeyNone
	}

	table := &asciiTable
	if (d.mods&ModShift != 0) != (d.mods&ModCapsLock != 0) {
		table = &asciiShiftTable
	}

	k := table[code]
	return k, k != input.KeyNone
}

func (d *Decoder) setModifier(mod Modifiers, on bool) {
	if on {
		d.mods |= mod
	} else {
		d.mods &^= mod
	}
}

func (d *Decoder) toggleLock(lock Modifiers, released bool) (input.Key, bool) {
	if released {
		return input.KeyNone, false
	}

	d.mods ^= lock
	if d.leds == nil {
		return input.KeyNone, false
	}

	// nothing upstream can act on the failure so it is only reported
	if err := d.leds.SetLEDs(d.LEDs()); err != nil {
		kfmt.Fprintf(d.out(), "[%s] %s\n", err.Module, err.Message)
	}
	return input.KeyNone, false
}

func (d *Decoder) print(s string) {
	kfmt.Fprintf(d.out(), "%s", s)
}

func (d *Decoder) out() io.Writer {
	if d.report != nil {
		return d.report
	}
	return kfmt.GetOutputSink()
}
