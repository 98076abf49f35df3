package ps2

import "github.com/Anonimek123-dev/COSMOS-C/device/input"

// Scan code set 1 make codes handled outside the ASCII tables.
const (
	codeEscape     = 0x01
	codeLeftCtrl   = 0x1d
	codeLeftShift  = 0x2a
	codeRightShift = 0x36
	codeKPMul      = 0x37
	codeLeftAlt    = 0x38
	codeCapsLock   = 0x3a
	codeNumLock    = 0x45
	codeScrollLock = 0x46
	codeSysRq      = 0x54
	codeKPEqual    = 0x59

	prefixExtended = 0xe0
	prefixPause    = 0xe1
	releaseBit     = 0x80
)

// asciiTable maps make codes to characters with neither shift nor capslock
// active. A zero entry produces no event.
var asciiTable = [128]input.Key{
	0, 27, '1', '2', '3', '4', '5', '6', '7', '8', '9', '0', '-', '=', '\b',
	'\t', 'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', '[', ']', '\n', 0,
	'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';', '\'', '`', 0, '\\',
	'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/', 0, '*', 0, ' ',
}

// asciiShiftTable is used when exactly one of shift and capslock is active.
var asciiShiftTable = [128]input.Key{
	0, 27, '!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '_', '+', '\b',
	'\t', 'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I', 'O', 'P', '{', '}', '\n', 0,
	'A', 'S', 'D', 'F', 'G', 'H', 'J', 'K', 'L', ':', '"', '~', 0, '|',
	'Z', 'X', 'C', 'V', 'B', 'N', 'M', '<', '>', '?', 0, '*', 0, ' ',
}

// extendedTable resolves make codes following an 0xE0 prefix.
var extendedTable = [128]input.Key{
	0x10: input.KeyPrev,
	0x19: input.KeyNext,
	0x1c: input.KeyEnter,
	0x20: input.KeyMute,
	0x22: input.KeyPlay,
	0x24: input.KeyStop,
	0x2e: input.KeyVolumeDown,
	0x30: input.KeyVolumeUp,
	0x32: input.KeyWWW,
	0x35: '/',
	0x37: input.KeyPrintScreen,
	0x47: input.KeyHome,
	0x48: input.KeyUp,
	0x49: input.KeyPgUp,
	0x4b: input.KeyLeft,
	0x4d: input.KeyRight,
	0x4f: input.KeyEnd,
	0x50: input.KeyDown,
	0x51: input.KeyPgDn,
	0x52: input.KeyInsert,
	0x53: input.KeyDelete,
	0x5b: input.KeyLWin,
	0x5c: input.KeyRWin,
	0x5d: input.KeyMenu,
	0x5e: input.KeyPower,
	0x5f: input.KeySleep,
	0x63: input.KeyWake,
	0x6c: input.KeyMail,
}

// numpadKey describes a keypad key that depends on the numlock state.
type numpadKey struct {
	num input.Key
	nav input.Key
}

// numpadTable is indexed by make code; entries with a zero num field are not
// keypad keys.
var numpadTable = [128]numpadKey{
	0x37: {'*', input.KeyKPMul},
	0x47: {'7', input.KeyHome},
	0x48: {'8', input.KeyUp},
	0x49: {'9', input.KeyPgUp},
	0x4a: {'-', input.KeyKPMinus},
	0x4b: {'4', input.KeyLeft},
	0x4c: {'5', input.KeyNone},
	0x4d: {'6', input.KeyRight},
	0x4e: {'+', input.KeyKPPlus},
	0x4f: {'1', input.KeyEnd},
	0x50: {'2', input.KeyDown},
	0x51: {'3', input.KeyPgDn},
	0x52: {'0', input.KeyInsert},
	0x53: {'.', input.KeyDelete},
}

// functionKeyNumber maps the make codes of F1-F24 to the key number. Zero
// entries are not function keys.
var functionKeyNumber = [128]uint8{
	0x3b: 1, 0x3c: 2, 0x3d: 3, 0x3e: 4, 0x3f: 5, 0x40: 6,
	0x41: 7, 0x42: 8, 0x43: 9, 0x44: 10, 0x57: 11, 0x58: 12,
	0x64: 13, 0x65: 14, 0x66: 15, 0x67: 16, 0x68: 17, 0x69: 18,
	0x6a: 19, 0x6b: 20, 0x6c: 21, 0x6d: 22, 0x6e: 23, 0x6f: 24,
}

// The two canonical PrintScreen frames.
var (
	printScreenPress   = [4]uint8{0xe0, 0x2a, 0xe0, 0x37}
	printScreenRelease = [4]uint8{0xe0, 0xb7, 0xe0, 0xaa}
)
