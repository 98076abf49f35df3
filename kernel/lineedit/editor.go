// Package lineedit implements the interactive line editor that sits between
// the key event ring and a terminal. It keeps one editable line with a
// cursor, a bounded command history and a poll-driven cursor blink, and
// expresses every change as cursor moves and character writes on a Surface.
package lineedit

import (
	"io"

	"github.com/Anonimek123-dev/COSMOS-C/device/input"
)

const (
	// LineSize is the size of the line buffer. One slot is reserved so
	// at most MaxLineLen characters can be entered.
	LineSize   = 128
	MaxLineLen = LineSize - 1

	// HistorySize is the number of submitted lines kept. Once full, the
	// oldest entry is overwritten.
	HistorySize = 16

	// TabWidth is the number of spaces inserted by the Tab key.
	TabWidth = 4

	// DefaultBlinkThreshold is the number of idle polls between cursor
	// blink toggles.
	DefaultBlinkThreshold = 20000

	noSelection = -1
)

// Surface is the output device the editor draws on. Cursor coordinates are
// 1-based and writes wrap and scroll like a terminal.
type Surface interface {
	io.ByteWriter

	// CursorPosition returns the current cursor position.
	CursorPosition() (uint32, uint32)

	// SetCursorPosition moves the cursor to (x, y).
	SetCursorPosition(x, y uint32)

	// Dimensions returns the surface width and height in characters.
	Dimensions() (uint32, uint32)
}

// cursorBlinker is implemented by surfaces that can show and hide their
// cursor.
type cursorBlinker interface {
	SetCursorVisible(bool)
}

// Executor receives submitted lines. The line slice is only valid for the
// duration of the call.
type Executor interface {
	Execute(line []byte)
}

type historyEntry struct {
	data [MaxLineLen]byte
	len  uint8
}

// Editor is a single-line editor with history.
type Editor struct {
	surface Surface
	blinker cursorBlinker
	exec    Executor
	prompt  string

	buf    [LineSize]byte
	length int
	cursor int

	// Surface position of the first line character. startY may drop
	// below 1 once a long line has scrolled off the top.
	startX uint32
	startY int

	history      [HistorySize]historyEntry
	historyHead  int
	historyCount int
	selected     int

	blinkThreshold uint32
	idlePolls      uint32
	blinkOn        bool
}

// New returns an editor drawing on surface and submitting lines to exec.
// A zero blinkThreshold selects DefaultBlinkThreshold.
func New(surface Surface, exec Executor, prompt string, blinkThreshold uint32) *Editor {
	e := &Editor{}
	e.Init(surface, exec, prompt, blinkThreshold)
	return e
}

// Init sets up the editor in place with an empty line and history.
func (e *Editor) Init(surface Surface, exec Executor, prompt string, blinkThreshold uint32) {
	if blinkThreshold == 0 {
		blinkThreshold = DefaultBlinkThreshold
	}

	*e = Editor{
		surface:        surface,
		exec:           exec,
		prompt:         prompt,
		selected:       noSelection,
		blinkThreshold: blinkThreshold,
		blinkOn:        true,
		startX:         1,
		startY:         1,
	}
	e.blinker, _ = surface.(cursorBlinker)
}

// Start prints the prompt and anchors the line at the resulting cursor
// position.
func (e *Editor) Start() {
	for i := 0; i < len(e.prompt); i++ {
		_ = e.surface.WriteByte(e.prompt[i])
	}

	x, y := e.surface.CursorPosition()
	e.startX, e.startY = x, int(y)
}

// Detach moves the surface cursor below the line so that other output can
// be written without clobbering it. The line stays intact and is drawn
// again by Redisplay.
func (e *Editor) Detach() {
	e.moveTo(e.length)
	_ = e.surface.WriteByte('\n')
}

// Redisplay prints the prompt and the current line at the surface cursor
// and restores the cursor offset.
func (e *Editor) Redisplay() {
	e.Start()
	e.redraw(0, 0)
}

// Poll handles at most one pending key event from ring. When no event is
// available the idle counter advances and the cursor blinks once it passes
// the blink threshold. Poll returns true if a key was handled.
func (e *Editor) Poll(ring *input.Ring) bool {
	key, ok := ring.Pop()
	if !ok {
		e.idle()
		return false
	}

	e.Handle(key)
	return true
}

// Handle applies a single key event to the line.
func (e *Editor) Handle(key input.Key) {
	switch key {
	case input.KeyEnter, input.KeyKPEnter:
		e.submit()
	case input.KeyBackspace:
		if e.cursor == 0 {
			return
		}
		e.cursor--
		e.remove(e.cursor)
	case input.KeyDelete:
		if e.cursor >= e.length {
			return
		}
		e.remove(e.cursor)
	case input.KeyLeft:
		if e.cursor > 0 {
			e.cursor--
		}
		e.moveTo(e.cursor)
	case input.KeyRight:
		if e.cursor < e.length {
			e.cursor++
		}
		e.moveTo(e.cursor)
	case input.KeyHome:
		e.cursor = 0
		e.moveTo(e.cursor)
	case input.KeyEnd:
		e.cursor = e.length
		e.moveTo(e.cursor)
	case input.KeyUp:
		e.historyUp()
	case input.KeyDown:
		e.historyDown()
	case input.KeyTab:
		e.tab()
	case input.KeyKPPlus:
		e.insert('+')
	case input.KeyKPMinus:
		e.insert('-')
	case input.KeyKPMul:
		e.insert('*')
	case input.KeyKPDiv:
		e.insert('/')
	default:
		if key.IsPrintable() {
			e.insert(byte(key))
		}
	}
}

// Line returns the current line contents. The slice aliases the editor
// buffer.
func (e *Editor) Line() []byte {
	return e.buf[:e.length]
}

// Cursor returns the cursor offset within the line.
func (e *Editor) Cursor() int {
	return e.cursor
}

// Selected returns the index of the selected history entry (0 is the oldest)
// or -1 if no entry is selected.
func (e *Editor) Selected() int {
	return e.selected
}

// HistoryLen returns the number of lines in the history.
func (e *Editor) HistoryLen() int {
	return e.historyCount
}

// HistoryEntry returns history entry i where 0 is the oldest entry. The
// slice aliases the history storage.
func (e *Editor) HistoryEntry(i int) []byte {
	if i < 0 || i >= e.historyCount {
		return nil
	}

	entry := &e.history[(e.historyHead+i)%HistorySize]
	return entry.data[:entry.len]
}

// BlinkOn reports the blink phase of the cursor.
func (e *Editor) BlinkOn() bool {
	return e.blinkOn
}

func (e *Editor) idle() {
	e.idlePolls++
	if e.idlePolls <= e.blinkThreshold {
		return
	}

	e.idlePolls = 0
	e.blinkOn = !e.blinkOn
	e.moveTo(e.cursor)
	if e.blinker != nil {
		e.blinker.SetCursorVisible(e.blinkOn)
	}
}

func (e *Editor) insert(ch byte) {
	if e.length >= MaxLineLen {
		return
	}

	copy(e.buf[e.cursor+1:e.length+1], e.buf[e.cursor:e.length])
	e.buf[e.cursor] = ch
	e.length++
	e.cursor++

	e.redraw(e.cursor-1, 0)
}

// remove deletes the character at index i and redraws the tail with one
// erasing space.
func (e *Editor) remove(i int) {
	copy(e.buf[i:e.length-1], e.buf[i+1:e.length])
	e.length--

	e.redraw(i, 1)
}

func (e *Editor) tab() {
	spaces := TabWidth
	if room := MaxLineLen - e.length; spaces > room {
		spaces = room
	}
	if spaces <= 0 {
		return
	}

	from := e.cursor
	copy(e.buf[from+spaces:e.length+spaces], e.buf[from:e.length])
	for i := 0; i < spaces; i++ {
		e.buf[from+i] = ' '
	}
	e.length += spaces
	e.cursor += spaces

	e.redraw(from, 0)
}

func (e *Editor) historyUp() {
	if e.historyCount == 0 {
		return
	}

	switch {
	case e.selected == noSelection:
		e.selected = e.historyCount - 1
	case e.selected > 0:
		e.selected--
	}
	e.loadSelected()
}

func (e *Editor) historyDown() {
	if e.selected == noSelection {
		return
	}

	if e.selected < e.historyCount-1 {
		e.selected++
	} else {
		e.selected = noSelection
	}
	e.loadSelected()
}

// loadSelected replaces the line with the selected history entry (or an
// empty line if nothing is selected) and redraws it over the old contents.
func (e *Editor) loadSelected() {
	oldLen := e.length

	e.length = copy(e.buf[:MaxLineLen], e.HistoryEntry(e.selected))
	e.cursor = e.length

	erase := 0
	if oldLen > e.length {
		erase = oldLen - e.length
	}
	e.redraw(0, erase)
}

func (e *Editor) submit() {
	e.moveTo(e.length)
	_ = e.surface.WriteByte('\n')

	if e.length > 0 {
		e.addHistory(e.buf[:e.length])
	}
	e.selected = noSelection

	if e.exec != nil {
		e.exec.Execute(e.buf[:e.length])
	}

	e.length, e.cursor = 0, 0
	e.Start()
}

func (e *Editor) addHistory(line []byte) {
	var slot int
	if e.historyCount < HistorySize {
		slot = (e.historyHead + e.historyCount) % HistorySize
		e.historyCount++
	} else {
		slot = e.historyHead
		e.historyHead = (e.historyHead + 1) % HistorySize
	}

	entry := &e.history[slot]
	entry.len = uint8(copy(entry.data[:], line))
}

// redraw writes the line from index from to its end followed by erase
// blanks and puts the cursor back at its line offset. If the writes
// scrolled the surface, the line anchor moves up accordingly.
func (e *Editor) redraw(from, erase int) {
	e.moveTo(from)
	for i := from; i < e.length; i++ {
		_ = e.surface.WriteByte(e.buf[i])
	}
	for i := 0; i < erase; i++ {
		_ = e.surface.WriteByte(' ')
	}

	_, expY := e.position(e.length + erase)
	if _, y := e.surface.CursorPosition(); int(y) < expY {
		e.startY -= expY - int(y)
	}

	e.moveTo(e.cursor)
}

// moveTo places the surface cursor over line offset i.
func (e *Editor) moveTo(i int) {
	x, y := e.position(i)
	if y < 1 {
		y = 1
	}
	e.surface.SetCursorPosition(x, uint32(y))
}

// position maps line offset i to surface coordinates.
func (e *Editor) position(i int) (uint32, int) {
	width, _ := e.surface.Dimensions()
	if width == 0 {
		width = 1
	}

	linear := int(e.startX-1) + i
	return uint32(linear%int(width)) + 1, e.startY + linear/int(width)
}
