package keyboard

import "strings"

const (
	codeLeftShift = 0x2a
	releaseBit    = 0x80
	prefixExt     = 0xe0
)

type scanKey struct {
	code  uint8
	shift bool
}

// asciiScan maps printable ASCII to the make code of the key producing it
// on a US layout.
var asciiScan = buildASCIIScan()

func buildASCIIScan() [128]scanKey {
	var table [128]scanKey

	rows := []struct {
		first          uint8
		plain, shifted string
	}{
		{0x02, "1234567890-=", "!@#$%^&*()_+"},
		{0x10, "qwertyuiop[]", "QWERTYUIOP{}"},
		{0x1e, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
		{0x2b, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
	}

	for _, row := range rows {
		for i := 0; i < len(row.plain); i++ {
			table[row.plain[i]] = scanKey{code: row.first + uint8(i)}
			table[row.shifted[i]] = scanKey{code: row.first + uint8(i), shift: true}
		}
	}
	table[' '] = scanKey{code: 0x39}
	return table
}

// namedKeys maps key names to make codes. Codes above 0xff carry an 0xE0
// prefix in their high byte.
var namedKeys = map[string]uint16{
	"esc":        0x01,
	"backspace":  0x0e,
	"tab":        0x0f,
	"enter":      0x1c,
	"ctrl":       0x1d,
	"shift":      0x2a,
	"rshift":     0x36,
	"alt":        0x38,
	"space":      0x39,
	"capslock":   0x3a,
	"f1":         0x3b,
	"f2":         0x3c,
	"f3":         0x3d,
	"f4":         0x3e,
	"f5":         0x3f,
	"f6":         0x40,
	"f7":         0x41,
	"f8":         0x42,
	"f9":         0x43,
	"f10":        0x44,
	"numlock":    0x45,
	"scrolllock": 0x46,
	"kp7":        0x47,
	"kp8":        0x48,
	"kp9":        0x49,
	"kp-":        0x4a,
	"kp4":        0x4b,
	"kp5":        0x4c,
	"kp6":        0x4d,
	"kp+":        0x4e,
	"kp1":        0x4f,
	"kp2":        0x50,
	"kp3":        0x51,
	"kp0":        0x52,
	"kp.":        0x53,
	"kp*":        0x37,
	"f11":        0x57,
	"f12":        0x58,
	"kpenter":    0xe01c,
	"kp/":        0xe035,
	"home":       0xe047,
	"up":         0xe048,
	"pgup":       0xe049,
	"left":       0xe04b,
	"right":      0xe04d,
	"end":        0xe04f,
	"down":       0xe050,
	"pgdn":       0xe051,
	"insert":     0xe052,
	"delete":     0xe053,
}

var (
	printScreenPress   = []uint8{0xe0, 0x2a, 0xe0, 0x37}
	printScreenRelease = []uint8{0xe0, 0xb7, 0xe0, 0xaa}
	pauseSequence      = []uint8{0xe1, 0x1d, 0x45, 0xe1, 0x9d, 0xc5}
)

// AppendRune appends the bytes for pressing and releasing the key that
// types r, wrapped in left shift if needed. It returns false for runes that
// have no key on a US layout.
func AppendRune(dst []uint8, r rune) ([]uint8, bool) {
	switch r {
	case '\n', '\r':
		return AppendKey(dst, "enter")
	case '\t':
		return AppendKey(dst, "tab")
	case '\b':
		return AppendKey(dst, "backspace")
	}

	if r <= 0 || r >= 128 {
		return dst, false
	}
	sk := asciiScan[r]
	if sk.code == 0 {
		return dst, false
	}

	if sk.shift {
		dst = append(dst, codeLeftShift)
	}
	dst = append(dst, sk.code, sk.code|releaseBit)
	if sk.shift {
		dst = append(dst, codeLeftShift|releaseBit)
	}
	return dst, true
}

// AppendText appends the bytes for typing s. Characters without a key are
// skipped; the number of skipped characters is returned.
func AppendText(dst []uint8, s string) ([]uint8, int) {
	skipped := 0
	for _, r := range s {
		var ok bool
		if dst, ok = AppendRune(dst, r); !ok {
			skipped++
		}
	}
	return dst, skipped
}

// AppendKey appends the bytes for pressing and releasing the named key.
// Names are case insensitive; "printscreen" and "pause" produce their
// multi-byte sequences. It returns false for unknown names.
func AppendKey(dst []uint8, name string) ([]uint8, bool) {
	name = strings.ToLower(name)

	switch name {
	case "printscreen":
		dst = append(dst, printScreenPress...)
		return append(dst, printScreenRelease...), true
	case "pause":
		return append(dst, pauseSequence...), true
	}

	code, ok := namedKeys[name]
	if !ok {
		return dst, false
	}

	mk := uint8(code)
	if code>>8 == prefixExt {
		return append(dst, prefixExt, mk, prefixExt, mk|releaseBit), true
	}
	return append(dst, mk, mk|releaseBit), true
}

// AppendPress appends only the make code of the named key. It is used for
// modifiers held across other keys.
func AppendPress(dst []uint8, name string) ([]uint8, bool) {
	return appendHalf(dst, name, 0)
}

// AppendRelease appends only the break code of the named key.
func AppendRelease(dst []uint8, name string) ([]uint8, bool) {
	return appendHalf(dst, name, releaseBit)
}

func appendHalf(dst []uint8, name string, bit uint8) ([]uint8, bool) {
	code, ok := namedKeys[strings.ToLower(name)]
	if !ok {
		return dst, false
	}
	if code>>8 == prefixExt {
		dst = append(dst, prefixExt)
	}
	return append(dst, uint8(code)|bit), true
}
