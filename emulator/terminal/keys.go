package terminal

import (
	"github.com/Anonimek123-dev/COSMOS-C/emulator/keyboard"
	"github.com/gdamore/tcell"
)

var keyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "enter",
	tcell.KeyTab:        "tab",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyEscape:     "esc",
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyPgUp:       "pgup",
	tcell.KeyPgDn:       "pgdn",
	tcell.KeyInsert:     "insert",
	tcell.KeyDelete:     "delete",
	tcell.KeyPrint:      "printscreen",
	tcell.KeyPause:      "pause",
	tcell.KeyF1:         "f1",
	tcell.KeyF2:         "f2",
	tcell.KeyF3:         "f3",
	tcell.KeyF4:         "f4",
	tcell.KeyF5:         "f5",
	tcell.KeyF6:         "f6",
	tcell.KeyF7:         "f7",
	tcell.KeyF8:         "f8",
	tcell.KeyF9:         "f9",
	tcell.KeyF10:        "f10",
	tcell.KeyF11:        "f11",
}

// Scancodes appends the set 1 bytes a PC keyboard would send for ev. It
// returns false for keys that have no equivalent.
func Scancodes(dst []uint8, ev *tcell.EventKey) ([]uint8, bool) {
	if ev.Key() == tcell.KeyRune {
		return keyboard.AppendRune(dst, ev.Rune())
	}

	if name, ok := keyNames[ev.Key()]; ok {
		return keyboard.AppendKey(dst, name)
	}

	// remaining control keys are Ctrl+letter chords
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		dst, _ = keyboard.AppendPress(dst, "ctrl")
		dst, _ = keyboard.AppendRune(dst, rune('a'+int(k-tcell.KeyCtrlA)))
		dst, _ = keyboard.AppendRelease(dst, "ctrl")
		return dst, true
	}
	return dst, false
}
