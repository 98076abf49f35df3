// Package terminal renders the kernel console on a host terminal through
// tcell and turns host key presses into keyboard scan codes.
package terminal

import (
	"io"
	"sync"

	"github.com/Anonimek123-dev/COSMOS-C/device/video/console"
	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
	"github.com/gdamore/tcell"
	"golang.org/x/text/encoding/charmap"
)

const (
	// DefaultWidth and DefaultHeight match the VGA text mode the kernel
	// boots in.
	DefaultWidth  = 80
	DefaultHeight = 25

	// glyph size reported for the Pixels dimension
	cellWidth  = 8
	cellHeight = 16
)

var egaPalette = [console.NumColors]tcell.Color{
	tcell.ColorBlack,
	tcell.ColorNavy,
	tcell.ColorGreen,
	tcell.ColorTeal,
	tcell.ColorMaroon,
	tcell.ColorPurple,
	tcell.ColorOlive,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlue,
	tcell.ColorLime,
	tcell.ColorAqua,
	tcell.ColorRed,
	tcell.ColorFuchsia,
	tcell.ColorYellow,
	tcell.ColorWhite,
}

// Console is a console.Device backed by a tcell screen. Changes become
// visible on the next call to Show.
type Console struct {
	mu     sync.Mutex
	screen tcell.Screen

	width, height uint32

	cursorX, cursorY uint32
	cursorVisible    bool
}

// New returns a console of width x height cells drawn on an initialized
// screen. A zero dimension selects the VGA default.
func New(screen tcell.Screen, width, height uint32) *Console {
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}

	return &Console{
		screen:        screen,
		width:         width,
		height:        height,
		cursorX:       1,
		cursorY:       1,
		cursorVisible: true,
	}
}

// Dimensions implements console.Device.
func (c *Console) Dimensions(dim console.Dimension) (uint32, uint32) {
	if dim == console.Pixels {
		return c.width * cellWidth, c.height * cellHeight
	}
	return c.width, c.height
}

// DefaultColors implements console.Device.
func (c *Console) DefaultColors() (uint8, uint8) {
	return uint8(console.LightGray), uint8(console.Black)
}

// Fill implements console.Device.
func (c *Console) Fill(x, y, width, height uint32, fg, bg uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if x == 0 || y == 0 || x > c.width || y > c.height {
		return
	}
	if x+width-1 > c.width {
		width = c.width - x + 1
	}
	if y+height-1 > c.height {
		height = c.height - y + 1
	}

	st := style(fg, bg)
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			c.screen.SetContent(int(col-1), int(row-1), ' ', nil, st)
		}
	}
}

// Scroll implements console.Device by copying screen cells.
func (c *Console) Scroll(dir console.ScrollDir, lines uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lines == 0 || lines >= c.height {
		return
	}

	w, h, n := int(c.width), int(c.height), int(lines)
	switch dir {
	case console.ScrollDirUp:
		for y := 0; y < h-n; y++ {
			c.copyRow(y+n, y, w)
		}
	case console.ScrollDirDown:
		for y := h - 1; y >= n; y-- {
			c.copyRow(y-n, y, w)
		}
	}
}

func (c *Console) copyRow(from, to, width int) {
	for x := 0; x < width; x++ {
		mainc, combc, st, _ := c.screen.GetContent(x, from)
		c.screen.SetContent(x, to, mainc, combc, st)
	}
}

// Write implements console.Device. Bytes are interpreted as code page 437
// like the VGA font does.
func (c *Console) Write(ch byte, fg, bg uint8, x, y uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if x == 0 || y == 0 || x > c.width || y > c.height {
		return
	}
	c.screen.SetContent(int(x-1), int(y-1), glyph(ch), nil, style(fg, bg))
}

// SetCursor implements console.CursorSetter.
func (c *Console) SetCursor(x, y uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cursorX, c.cursorY = x, y
	c.updateCursor()
}

// SetCursorVisible implements console.CursorSetter.
func (c *Console) SetCursorVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cursorVisible = visible
	c.updateCursor()
}

func (c *Console) updateCursor() {
	if !c.cursorVisible {
		c.screen.HideCursor()
		return
	}
	c.screen.ShowCursor(int(c.cursorX)-1, int(c.cursorY)-1)
}

// Show pushes pending changes to the host terminal.
func (c *Console) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen.Show()
}

// DriverName returns the name of this driver.
func (c *Console) DriverName() string {
	return "tcell-console"
}

// DriverVersion returns the version of this driver.
func (c *Console) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit clears the screen.
func (c *Console) DriverInit(w io.Writer) *kernel.Error {
	fg, bg := c.DefaultColors()
	c.Fill(1, 1, c.width, c.height, fg, bg)
	kfmt.Fprintf(w, "%dx%d cells\n", c.width, c.height)
	return nil
}

func style(fg, bg uint8) tcell.Style {
	return tcell.StyleDefault.
		Foreground(egaPalette[fg&0xf]).
		Background(egaPalette[bg&0xf])
}

func glyph(ch byte) rune {
	if ch >= 0x20 && ch < 0x7f {
		return rune(ch)
	}
	if ch == 0 {
		return ' '
	}
	return charmap.CodePage437.DecodeByte(ch)
}
