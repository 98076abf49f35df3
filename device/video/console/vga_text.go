package console

import (
	"io"
	"unsafe"

	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
)

const (
	// TextBufferAddr is the physical address of the color text mode
	// framebuffer. The boot code identity-maps the first megabyte so the
	// address can be used as is.
	TextBufferAddr = 0xb8000

	// CRTCIndexPort and CRTCDataPort select and access the CRT
	// controller registers.
	CRTCIndexPort = 0x3d4
	CRTCDataPort  = 0x3d5

	crtcCursorStart   = 0x0a
	crtcCursorEnd     = 0x0b
	crtcCursorHigh    = 0x0e
	crtcCursorLow     = 0x0f
	cursorDisableBit  = 0x20
	cursorStartLine   = 14
	cursorEndLine     = 15
	cursorStartKeep   = 0xc0
	cursorEndKeep     = 0xe0
	maxTextBufferSize = 80 * 50
)

var (
	// mocked by tests
	framebufferFn = textFramebuffer

	errBadDimensions = &kernel.Error{Module: "vga_text", Message: "console dimensions exceed the text buffer"}
)

// VgaTextConsole implements an EGA-compatible text console using VGA mode
// 0x3.
//
// Each character in the console framebuffer is represented using two bytes,
// a byte for the character ASCII code and a byte that encodes the foreground
// and background colors (4 bits for each).
//
// The default settings for the console are:
//   - light gray text (color 7) on black background (color 0).
//   - space as the clear character
type VgaTextConsole struct {
	width  uint32
	height uint32

	fb  []uint16
	bus cpu.Bus

	defaultFg uint8
	defaultBg uint8
	clearChar uint16
}

// NewVgaTextConsole creates a new vga text console that programs the CRT
// controller through bus.
func NewVgaTextConsole(columns, rows uint32, bus cpu.Bus) *VgaTextConsole {
	cons := &VgaTextConsole{}
	cons.Init(columns, rows, bus)
	return cons
}

// Init sets up cons in place. The framebuffer is attached by DriverInit.
func (cons *VgaTextConsole) Init(columns, rows uint32, bus cpu.Bus) {
	*cons = VgaTextConsole{
		width:     columns,
		height:    rows,
		bus:       bus,
		clearChar: uint16(' '),
		defaultFg: uint8(LightGray),
		defaultBg: uint8(Black),
	}
}

// Dimensions returns the console width and height in the specified dimension.
func (cons *VgaTextConsole) Dimensions(dim Dimension) (uint32, uint32) {
	switch dim {
	case Characters:
		return cons.width, cons.height
	default:
		return cons.width * 8, cons.height * 16
	}
}

// DefaultColors returns the default foreground and background colors
// used by this console.
func (cons *VgaTextConsole) DefaultColors() (fg uint8, bg uint8) {
	return cons.defaultFg, cons.defaultBg
}

// Fill sets the contents of the specified rectangular region to the requested
// color. Both x and y coordinates are 1-based.
func (cons *VgaTextConsole) Fill(x, y, width, height uint32, fg, bg uint8) {
	var (
		clr                  = attr(fg, bg) | cons.clearChar
		rowOffset, colOffset uint32
	)

	// clip rectangle
	if x == 0 {
		x = 1
	} else if x >= cons.width {
		x = cons.width
	}

	if y == 0 {
		y = 1
	} else if y >= cons.height {
		y = cons.height
	}

	if x+width-1 > cons.width {
		width = cons.width - x + 1
	}

	if y+height-1 > cons.height {
		height = cons.height - y + 1
	}

	rowOffset = ((y - 1) * cons.width) + (x - 1)
	for ; height > 0; height, rowOffset = height-1, rowOffset+cons.width {
		for colOffset = rowOffset; colOffset < rowOffset+width; colOffset++ {
			cons.fb[colOffset] = clr
		}
	}
}

// Scroll the console contents to the specified direction. The caller
// is responsible for updating (e.g. clear or replace) the contents of
// the region that was scrolled.
func (cons *VgaTextConsole) Scroll(dir ScrollDir, lines uint32) {
	if lines == 0 || lines > cons.height {
		return
	}

	offset := lines * cons.width
	switch dir {
	case ScrollDirUp:
		copy(cons.fb, cons.fb[offset:cons.height*cons.width])
	case ScrollDirDown:
		copy(cons.fb[offset:cons.height*cons.width], cons.fb)
	}
}

// Write a char to the specified location. If fg or bg exceed the supported
// colors for this console, they will be set to their default value. Both x and
// y coordinates are 1-based
func (cons *VgaTextConsole) Write(ch byte, fg, bg uint8, x, y uint32) {
	if x < 1 || x > cons.width || y < 1 || y > cons.height {
		return
	}

	if fg >= uint8(NumColors) {
		fg = cons.defaultFg
	}
	if bg >= uint8(NumColors) {
		bg = cons.defaultBg
	}

	cons.fb[((y-1)*cons.width)+(x-1)] = attr(fg, bg) | uint16(ch)
}

// SetCursor moves the hardware cursor to (x, y). Both coordinates are
// 1-based; out of range coordinates are ignored.
func (cons *VgaTextConsole) SetCursor(x, y uint32) {
	if x < 1 || x > cons.width || y < 1 || y > cons.height {
		return
	}

	pos := uint16((y-1)*cons.width + (x - 1))
	cons.bus.WritePort(CRTCIndexPort, crtcCursorLow)
	cons.bus.WritePort(CRTCDataPort, uint8(pos))
	cons.bus.WritePort(CRTCIndexPort, crtcCursorHigh)
	cons.bus.WritePort(CRTCDataPort, uint8(pos>>8))
}

// SetCursorVisible shows the hardware cursor as an underline or hides it.
func (cons *VgaTextConsole) SetCursorVisible(visible bool) {
	if !visible {
		cons.bus.WritePort(CRTCIndexPort, crtcCursorStart)
		cons.bus.WritePort(CRTCDataPort, cursorDisableBit)
		return
	}

	cons.bus.WritePort(CRTCIndexPort, crtcCursorStart)
	cons.bus.WritePort(CRTCDataPort, cons.bus.ReadPort(CRTCDataPort)&cursorStartKeep|cursorStartLine)
	cons.bus.WritePort(CRTCIndexPort, crtcCursorEnd)
	cons.bus.WritePort(CRTCDataPort, cons.bus.ReadPort(CRTCDataPort)&cursorEndKeep|cursorEndLine)
}

// DriverName returns the name of this driver.
func (cons *VgaTextConsole) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (cons *VgaTextConsole) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit attaches the text mode framebuffer.
func (cons *VgaTextConsole) DriverInit(w io.Writer) *kernel.Error {
	cells := cons.width * cons.height
	if cells == 0 || cells > maxTextBufferSize {
		return errBadDimensions
	}

	cons.fb = framebufferFn(int(cells))
	kfmt.Fprintf(w, "%dx%d text buffer at 0x%x\n", cons.width, cons.height, uintptr(TextBufferAddr))
	return nil
}

// attr encodes a color pair into the high byte of a framebuffer cell.
func attr(fg, bg uint8) uint16 {
	return ((uint16(bg&0xf) << 4) | uint16(fg&0xf)) << 8
}

// textFramebuffer returns a slice over the identity-mapped text buffer.
func textFramebuffer(cells int) []uint16 {
	return unsafe.Slice((*uint16)(unsafe.Pointer(uintptr(TextBufferAddr))), cells)
}
