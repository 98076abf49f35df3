// Package console contains the output devices that can back a terminal.
package console

// ScrollDir defines a scroll direction.
type ScrollDir uint8

// The supported list of scroll directions for the console Scroll() calls.
const (
	ScrollDirUp ScrollDir = iota
	ScrollDirDown
)

// Dimension defines the types of dimensions that can be queried off a device.
type Dimension uint8

const (
	// Characters describes the number of characters in the console.
	Characters Dimension = iota

	// Pixels describes the number of pixels that the console text
	// occupies on screen.
	Pixels
)

// Color is an index into the 16 color EGA palette.
type Color uint8

// The EGA palette.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White

	// NumColors is the number of palette entries.
	NumColors
)

var colorNames = [NumColors]string{
	"black", "blue", "green", "cyan", "red", "magenta", "brown", "lightgray",
	"darkgray", "lightblue", "lightgreen", "lightcyan", "lightred", "lightmagenta", "yellow", "white",
}

// String returns the lowercase name of c.
func (c Color) String() string {
	if c >= NumColors {
		return "invalid"
	}
	return colorNames[c]
}

// ColorByName looks up a palette entry by its lowercase name.
func ColorByName(name string) (Color, bool) {
	for i, n := range colorNames {
		if n == name {
			return Color(i), true
		}
	}
	return 0, false
}

// The Device interface is implemented by objects that can function as system
// consoles.
type Device interface {
	// Dimensions returns the width and height of the console
	// using a particular dimension.
	Dimensions(Dimension) (uint32, uint32)

	// DefaultColors returns the default foreground and background colors
	// used by this console.
	DefaultColors() (fg, bg uint8)

	// Fill sets the contents of the specified rectangular region to the
	// requested color. Both x and y coordinates are 1-based (top-left
	// corner has coordinates 1,1).
	Fill(x, y, width, height uint32, fg, bg uint8)

	// Scroll the console contents to the specified direction. The caller
	// is responsible for updating (e.g. clear or replace) the contents of
	// the region that was scrolled.
	Scroll(dir ScrollDir, lines uint32)

	// Write a char to the specified location. Both x and y coordinates are
	// 1-based (top-left corner has coordinates 1,1).
	Write(ch byte, fg, bg uint8, x, y uint32)
}

// CursorSetter is implemented by consoles that can display a hardware text
// cursor.
type CursorSetter interface {
	// SetCursor moves the cursor to (x, y). Both coordinates are 1-based.
	SetCursor(x, y uint32)

	// SetCursorVisible shows or hides the cursor.
	SetCursorVisible(visible bool)
}
