package tty

import (
	"io"

	"github.com/Anonimek123-dev/COSMOS-C/device/video/console"
	"github.com/Anonimek123-dev/COSMOS-C/kernel"
)

const (
	// MaxColumns and MaxRows bound the console area a VT can drive.
	// Larger consoles are clipped.
	MaxColumns = 132
	MaxRows    = 60

	maxCells = MaxColumns * (MaxRows + DefaultScrollback)
)

// cell is a character together with its color attributes.
type cell struct {
	ch, fg, bg uint8
}

// VT implements a terminal supporting scrollback. The terminal interprets the
// following special characters:
//   - \r (carriage-return)
//   - \n (line-feed)
//   - \b (backspace; wraps to the end of the previous line)
//   - \t (tab; expanded to tabWidth spaces)
//
// The terminal contents live in a fixed array so a VT never allocates.
type VT struct {
	cons console.Device

	// cursor is set if the attached console can display a hardware cursor.
	cursor console.CursorSetter

	// Terminal dimensions
	termWidth      uint32
	termHeight     uint32
	viewportWidth  uint32
	viewportHeight uint32

	// The number of additional lines of output that are buffered by the
	// terminal to support scrolling up.
	scrollback uint32

	cells [maxCells]cell

	// Terminal state.
	tabWidth         uint8
	defaultFg, curFg uint8
	defaultBg, curBg uint8
	cursorX          uint32
	cursorY          uint32
	viewportY        uint32
	offset           uint32
	state            State
}

// NewVT creates a new virtual terminal device. The tabWidth parameter controls
// tab expansion whereas the scrollback parameter defines the line count that
// gets buffered by the terminal to provide scrolling beyond the console
// height.
func NewVT(tabWidth uint8, scrollback uint32) *VT {
	t := &VT{}
	t.Init(tabWidth, scrollback)
	return t
}

// Init sets up an unattached, inactive terminal in place.
func (t *VT) Init(tabWidth uint8, scrollback uint32) {
	t.cons, t.cursor = nil, nil
	t.termWidth, t.termHeight = 0, 0
	t.viewportWidth, t.viewportHeight = 0, 0
	t.tabWidth = tabWidth
	t.scrollback = scrollback
	t.cursorX, t.cursorY = 1, 1
	t.viewportY, t.offset = 0, 0
	t.state = StateInactive
}

// AttachTo connects a TTY to a console instance.
func (t *VT) AttachTo(cons console.Device) {
	if cons == nil {
		return
	}

	width, height := cons.Dimensions(console.Characters)
	if width == 0 || height == 0 {
		return
	}

	t.cons = cons
	t.cursor, _ = cons.(console.CursorSetter)
	t.viewportWidth, t.viewportHeight = min(width, MaxColumns), min(height, MaxRows)
	if maxScrollback := maxCells/t.viewportWidth - t.viewportHeight; t.scrollback > maxScrollback {
		t.scrollback = maxScrollback
	}

	t.viewportY = 0
	t.defaultFg, t.defaultBg = cons.DefaultColors()
	t.curFg, t.curBg = t.defaultFg, t.defaultBg
	t.termWidth, t.termHeight = t.viewportWidth, t.viewportHeight+t.scrollback
	t.cursorX, t.cursorY = 1, 1
	t.offset = 0

	t.blank(0, t.termWidth*t.termHeight, t.defaultFg, t.defaultBg)
}

// State returns the TTY's state.
func (t *VT) State() State {
	return t.state
}

// SetState updates the TTY's state.
func (t *VT) SetState(newState State) {
	if t.state == newState {
		return
	}

	t.state = newState

	// If the terminal became active, update the console with its contents
	if t.state == StateActive && t.cons != nil {
		for y := uint32(1); y <= t.viewportHeight; y++ {
			offset := (y - 1 + t.viewportY) * t.viewportWidth
			for x := uint32(1); x <= t.viewportWidth; x, offset = x+1, offset+1 {
				c := t.cells[offset]
				t.cons.Write(c.ch, c.fg, c.bg, x, y)
			}
		}
		t.syncCursor()
	}
}

// Dimensions returns the viewport width and height in characters.
func (t *VT) Dimensions() (uint32, uint32) {
	return t.viewportWidth, t.viewportHeight
}

// SetColors sets the colors used by subsequent writes.
func (t *VT) SetColors(fg, bg uint8) {
	t.curFg, t.curBg = fg, bg
}

// Colors returns the colors used by writes.
func (t *VT) Colors() (fg, bg uint8) {
	return t.curFg, t.curBg
}

// Clear blanks the terminal, including its scrollback, using the current
// colors and moves the cursor to (1,1).
func (t *VT) Clear() {
	if t.cons == nil {
		return
	}

	t.blank(0, t.termWidth*t.termHeight, t.curFg, t.curBg)
	t.viewportY = 0
	t.cursorX, t.cursorY = 1, 1
	t.updateOffset()

	if t.state == StateActive {
		t.cons.Fill(1, 1, t.viewportWidth, t.viewportHeight, t.curFg, t.curBg)
		t.syncCursor()
	}
}

// CursorPosition returns the current cursor position.
func (t *VT) CursorPosition() (uint32, uint32) {
	return t.cursorX, t.cursorY
}

// SetCursorPosition sets the current cursor position to (x,y).
func (t *VT) SetCursorPosition(x, y uint32) {
	if t.cons == nil {
		return
	}

	if x < 1 {
		x = 1
	} else if x > t.viewportWidth {
		x = t.viewportWidth
	}

	if y < 1 {
		y = 1
	} else if y > t.viewportHeight {
		y = t.viewportHeight
	}

	t.cursorX, t.cursorY = x, y
	t.updateOffset()
	t.syncCursor()
}

// SetCursorVisible shows or hides the console's hardware cursor, if it has
// one.
func (t *VT) SetCursorVisible(visible bool) {
	if t.cursor != nil && t.state == StateActive {
		t.cursor.SetCursorVisible(visible)
	}
}

// Write implements io.Writer.
func (t *VT) Write(data []byte) (int, error) {
	for count, b := range data {
		err := t.WriteByte(b)
		if err != nil {
			return count, err
		}
	}

	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (t *VT) WriteByte(b byte) error {
	if t.cons == nil {
		return io.ErrClosedPipe
	}

	switch b {
	case '\r':
		t.cr()
	case '\n':
		t.lf(true)
	case '\b':
		switch {
		case t.cursorX > 1:
			t.cursorX--
		case t.cursorY > 1:
			t.cursorX, t.cursorY = t.viewportWidth, t.cursorY-1
		default:
			return nil
		}
		t.updateOffset()
		t.doWrite(' ', false)
	case '\t':
		for i := uint8(0); i < t.tabWidth; i++ {
			t.doWrite(' ', true)
		}
	default:
		t.doWrite(b, true)
	}

	t.syncCursor()
	return nil
}

// DumpTo writes the visible contents of the terminal to w as text, one line
// per viewport row with trailing blanks removed.
func (t *VT) DumpTo(w io.Writer) error {
	line := make([]byte, 0, t.viewportWidth+1)
	for y := uint32(0); y < t.viewportHeight; y++ {
		offset := (t.viewportY + y) * t.viewportWidth
		line = line[:0]
		for x := uint32(0); x < t.viewportWidth; x++ {
			line = append(line, t.cells[offset+x].ch)
		}

		end := len(line)
		for end > 0 && line[end-1] == ' ' {
			end--
		}
		line = append(line[:end], '\n')

		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// doWrite writes the specified character together with the current fg/bg
// attributes at the current offset advancing the cursor position if
// advanceCursor is true. If the terminal is active, then doWrite also writes
// the character to the attached console.
func (t *VT) doWrite(b byte, advanceCursor bool) {
	if t.state == StateActive {
		t.cons.Write(b, t.curFg, t.curBg, t.cursorX, t.cursorY)
	}

	t.cells[t.offset] = cell{ch: b, fg: t.curFg, bg: t.curBg}

	if advanceCursor {
		// Advance x position and handle wrapping when the cursor reaches the
		// end of the current line
		t.offset++
		t.cursorX++
		if t.cursorX > t.viewportWidth {
			t.lf(true)
		}
	}
}

// cr resets the x coordinate of the terminal cursor to 1.
func (t *VT) cr() {
	t.cursorX = 1
	t.updateOffset()
}

// lf advances the y coordinate of the terminal cursor by one line scrolling
// the terminal contents if the end of the last terminal line is reached.
func (t *VT) lf(withCR bool) {
	if withCR {
		t.cursorX = 1
	}

	switch {
	// Cursor has not reached the end of the viewport
	case t.cursorY+1 <= t.viewportHeight:
		t.cursorY++
	default:
		// Check if the viewport can be scrolled down
		if t.viewportY+t.viewportHeight < t.termHeight {
			t.viewportY++
		} else {
			// We have reached the bottom of the terminal buffer.
			// We need to scroll its contents up and clear the last line
			var (
				stride      = t.viewportWidth
				startOffset = t.viewportY * stride
				endOffset   = (t.viewportY + t.viewportHeight - 1) * stride
			)

			copy(t.cells[startOffset:endOffset], t.cells[startOffset+stride:endOffset+stride])
			t.blank(endOffset, stride, t.defaultFg, t.defaultBg)
		}

		// Sync console
		if t.state == StateActive {
			t.cons.Scroll(console.ScrollDirUp, 1)
			t.cons.Fill(1, t.cursorY, t.termWidth, 1, t.defaultFg, t.defaultBg)
		}
	}

	t.updateOffset()
}

// blank resets count cells starting at offset to spaces.
func (t *VT) blank(offset, count uint32, fg, bg uint8) {
	for i := offset; i < offset+count; i++ {
		t.cells[i] = cell{ch: ' ', fg: fg, bg: bg}
	}
}

// syncCursor moves the console's hardware cursor to the terminal cursor.
func (t *VT) syncCursor() {
	if t.cursor != nil && t.state == StateActive {
		t.cursor.SetCursor(t.cursorX, t.cursorY)
	}
}

// updateOffset calculates the offset in the cell buffer taking into account
// the cursor position and the viewportY value.
func (t *VT) updateOffset() {
	t.offset = (t.viewportY+(t.cursorY-1))*t.viewportWidth + (t.cursorX - 1)
}

// DriverName returns the name of this driver.
func (t *VT) DriverName() string {
	return "vt"
}

// DriverVersion returns the version of this driver.
func (t *VT) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit initializes this driver.
func (t *VT) DriverInit(_ io.Writer) *kernel.Error { return nil }
