package timer

import (
	"io"

	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
)

// Time is a millisecond count split into its clock components.
type Time struct {
	Hours        uint64
	Minutes      uint64
	Seconds      uint64
	Milliseconds uint64
}

// Convert splits ms into hours, minutes, seconds and milliseconds.
func Convert(ms uint64) Time {
	secs := ms / 1000
	mins := secs / 60
	return Time{
		Hours:        mins / 60,
		Minutes:      mins % 60,
		Seconds:      secs % 60,
		Milliseconds: ms % 1000,
	}
}

// Format writes ms to w as H:MM:SS.mmm.
func Format(w io.Writer, ms uint64) {
	t := Convert(ms)
	kfmt.Fprintf(w, "%d:%02d:%02d.%03d", t.Hours, t.Minutes, t.Seconds, t.Milliseconds)
}
