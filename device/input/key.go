// Package input defines the key code space produced by keyboard drivers and
// the ring buffer that carries key events from interrupt context to the main
// loop.
package input

// Key is a decoded key event. Values below 0x80 are ASCII characters (with
// DEL standing in for the Delete key); values from 0x80 up are special keys.
type Key uint8

// Special key codes.
const (
	KeyNone      Key = 0x00
	KeyBackspace Key = 0x08
	KeyTab       Key = 0x09
	KeyEnter     Key = 0x0a
	KeyEscape    Key = 0x1b
	KeyDelete    Key = 0x7f

	KeyUp     Key = 0x80
	KeyDown   Key = 0x81
	KeyLeft   Key = 0x82
	KeyRight  Key = 0x83
	KeyHome   Key = 0x84
	KeyEnd    Key = 0x85
	KeyInsert Key = 0x86
	KeyPgUp   Key = 0x87
	KeyPgDn   Key = 0x88

	KeyF1  Key = 0x90
	KeyF12 Key = 0x9b

	KeyKP0     Key = 0xb0
	KeyKP9     Key = 0xb9
	KeyKPDot   Key = 0xba
	KeyKPEnter Key = 0xbb
	KeyKPPlus  Key = 0xbc
	KeyKPMinus Key = 0xbd
	KeyKPMul   Key = 0xbe
	KeyKPDiv   Key = 0xbf

	KeyPrintScreen Key = 0xc0
	KeyPause       Key = 0xc1
	KeyLWin        Key = 0xc2
	KeyRWin        Key = 0xc3
	KeyMenu        Key = 0xc4
	KeyPower       Key = 0xc5
	KeySleep       Key = 0xc6
	KeyWake        Key = 0xc7
	KeyMute        Key = 0xc8
	KeyVolumeUp    Key = 0xc9
	KeyVolumeDown  Key = 0xca
	KeyPlay        Key = 0xcb
	KeyStop        Key = 0xcc
	KeyNext        Key = 0xcd
	KeyPrev        Key = 0xce
	KeyMail        Key = 0xcf
	KeyWWW         Key = 0xd0

	KeyF13 Key = 0xf0
	KeyF24 Key = 0xfb

	KeyKPEqual Key = 0xfc
	KeySysRq   Key = 0xfd
)

var specialNames = [256]string{
	KeyUp:          "Up",
	KeyDown:        "Down",
	KeyLeft:        "Left",
	KeyRight:       "Right",
	KeyHome:        "Home",
	KeyEnd:         "End",
	KeyInsert:      "Insert",
	KeyPgUp:        "PgUp",
	KeyPgDn:        "PgDn",
	KeyKPDot:       "KP.",
	KeyKPEnter:     "KPEnter",
	KeyKPPlus:      "KP+",
	KeyKPMinus:     "KP-",
	KeyKPMul:       "KP*",
	KeyKPDiv:       "KP/",
	KeyPrintScreen: "PrtSc",
	KeyPause:       "Pause",
	KeyLWin:        "LWin",
	KeyRWin:        "RWin",
	KeyMenu:        "Menu",
	KeyPower:       "Power",
	KeySleep:       "Sleep",
	KeyWake:        "Wake",
	KeyMute:        "Mute",
	KeyVolumeUp:    "VolUp",
	KeyVolumeDown:  "VolDown",
	KeyPlay:        "Play",
	KeyStop:        "Stop",
	KeyNext:        "Next",
	KeyPrev:        "Prev",
	KeyMail:        "Mail",
	KeyWWW:         "WWW",
	KeyKPEqual:     "KP=",
	KeySysRq:       "SysRq",
}

var fkeyNames = [...]string{
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
	"F13", "F14", "F15", "F16", "F17", "F18", "F19", "F20", "F21", "F22", "F23", "F24",
}

var kpDigitNames = [...]string{
	"KP0", "KP1", "KP2", "KP3", "KP4", "KP5", "KP6", "KP7", "KP8", "KP9",
}

// FunctionKey returns the key code for function key n (1-24). It returns
// KeyNone for any other n.
func FunctionKey(n int) Key {
	switch {
	case n >= 1 && n <= 12:
		return KeyF1 + Key(n-1)
	case n >= 13 && n <= 24:
		return KeyF13 + Key(n-13)
	default:
		return KeyNone
	}
}

// IsPrintable returns true if k is a printable ASCII character.
func (k Key) IsPrintable() bool {
	return k >= 0x20 && k < 0x7f
}

// String returns a human readable name for k. The returned strings are
// constants so String can be used with kfmt from interrupt context.
func (k Key) String() string {
	switch {
	case k.IsPrintable():
		return printable[k-0x20 : k-0x20+1]
	case k == KeyBackspace:
		return "Backspace"
	case k == KeyTab:
		return "Tab"
	case k == KeyEnter:
		return "Enter"
	case k == KeyEscape:
		return "Esc"
	case k == KeyDelete:
		return "Delete"
	case k >= KeyF1 && k <= KeyF12:
		return fkeyNames[k-KeyF1]
	case k >= KeyF13 && k <= KeyF24:
		return fkeyNames[12+k-KeyF13]
	case k >= KeyKP0 && k <= KeyKP9:
		return kpDigitNames[k-KeyKP0]
	}

	if name := specialNames[k]; name != "" {
		return name
	}
	return "?"
}

// printable holds the printable ASCII range so String can return
// one-character substrings without allocating.
const printable = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"
