package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf [maxBufSize]byte

	// singleByte is used as a shared buffer for passing single characters
	// to doWrite.
	singleByte = []byte(" ")

	// earlyPrintBuffer is a ring buffer that stores Printf output before the
	// console and TTYs are initialized.
	earlyPrintBuffer ringBuffer

	// outputSink is a io.Writer where Printf will send its output. If set
	// to nil, then the output will be redirected to the earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the default target for calls to Printf to w and copies
// any data accumulated in the earlyPrintBuffer to it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the current target for calls to Printf.
func GetOutputSink() io.Writer {
	return outputSink
}

// outputWriter forwards writes to whatever sink is current at write time.
type outputWriter struct{}

func (outputWriter) Write(p []byte) (int, error) {
	doWrite(outputSink, p)
	return len(p), nil
}

// Output returns an io.Writer that behaves like Printf: data goes to the
// sink registered via SetOutputSink, or to the early ring buffer while no
// sink is registered.
func Output() io.Writer {
	return outputWriter{}
}

// Printf is an allocation-free subset of fmt.Printf that is safe to call from
// interrupt handlers and before a heap exists. The supported verbs are:
//
//	%d %o %x  integers in base 10, 8 and 16
//	%s        strings and byte slices
//	%c        a single byte
//	%t        booleans
//	%%        a literal percent sign
//
// A decimal width may precede the verb; a leading 0 pads numbers with zeroes
// instead of spaces. Hex and octal values are always zero-padded.
//
// Output is sent to the sink registered via SetOutputSink. While no sink is
// registered, output is captured by a ring buffer and replayed once a sink
// becomes available.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		width    int
		zeroPad  bool
		ch       byte
	)

	for i := 0; i < len(format); i++ {
		if ch = format[i]; ch != '%' {
			writeByte(w, ch)
			continue
		}

		width, zeroPad = 0, false
		for i++; i < len(format); i++ {
			ch = format[i]
			if ch == '0' && width == 0 {
				zeroPad = true
				continue
			}
			if ch < '0' || ch > '9' {
				break
			}
			width = width*10 + int(ch-'0')
		}

		if i == len(format) {
			doWrite(w, errNoVerb)
			break
		}

		if ch == '%' {
			writeByte(w, '%')
			continue
		}

		if !isVerb(ch) {
			doWrite(w, errNoVerb)
			continue
		}

		if argIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}

		arg := args[argIndex]
		argIndex++
		switch ch {
		case 'd':
			fmtInt(w, arg, 10, width, zeroPad)
		case 'o':
			fmtInt(w, arg, 8, width, true)
		case 'x':
			fmtInt(w, arg, 16, width, true)
		case 's':
			fmtString(w, arg, width)
		case 'c':
			fmtChar(w, arg)
		case 't':
			fmtBool(w, arg)
		}
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, errExtraArg)
	}
}

func isVerb(ch byte) bool {
	switch ch {
	case 'd', 'o', 'x', 's', 'c', 't':
		return true
	}
	return false
}

func fmtBool(w io.Writer, v interface{}) {
	b, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errWrongArgType)
	case b:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

func fmtChar(w io.Writer, v interface{}) {
	switch c := v.(type) {
	case byte:
		writeByte(w, c)
	case rune:
		writeByte(w, byte(c))
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtString writes a string or []byte value, left-padded with spaces up to
// width.
func fmtString(w io.Writer, v interface{}, width int) {
	switch s := v.(type) {
	case string:
		fmtRepeat(w, ' ', width-len(s))
		// converting the string to a byte slice would allocate
		for i := 0; i < len(s); i++ {
			writeByte(w, s[i])
		}
	case []byte:
		fmtRepeat(w, ' ', width-len(s))
		doWrite(w, s)
	default:
		doWrite(w, errWrongArgType)
	}
}

func fmtRepeat(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		writeByte(w, ch)
	}
}

// fmtInt writes v in the requested base. All built-in integer types are
// supported.
func fmtInt(w io.Writer, v interface{}, base uint64, width int, zeroPad bool) {
	var (
		uval uint64
		neg  bool
	)

	switch n := v.(type) {
	case uint8:
		uval = uint64(n)
	case uint16:
		uval = uint64(n)
	case uint32:
		uval = uint64(n)
	case uint64:
		uval = n
	case uint:
		uval = uint64(n)
	case uintptr:
		uval = uint64(n)
	case int8:
		uval, neg = abs(int64(n))
	case int16:
		uval, neg = abs(int64(n))
	case int32:
		uval, neg = abs(int64(n))
	case int64:
		uval, neg = abs(n)
	case int:
		uval, neg = abs(int64(n))
	default:
		doWrite(w, errWrongArgType)
		return
	}

	if width >= maxBufSize {
		width = maxBufSize - 1
	}

	// Digits are generated right to left.
	pos := maxBufSize
	for {
		pos--
		digit := uval % base
		if digit < 10 {
			numFmtBuf[pos] = byte(digit) + '0'
		} else {
			numFmtBuf[pos] = byte(digit-10) + 'a'
		}
		if uval /= base; uval == 0 {
			break
		}
	}

	padCh := byte(' ')
	if zeroPad {
		padCh = '0'
	}

	signWidth := 0
	if neg {
		signWidth = 1
	}

	if zeroPad {
		for maxBufSize-pos+signWidth < width {
			pos--
			numFmtBuf[pos] = padCh
		}
		if neg {
			pos--
			numFmtBuf[pos] = '-'
		}
	} else {
		if neg {
			pos--
			numFmtBuf[pos] = '-'
		}
		for maxBufSize-pos < width {
			pos--
			numFmtBuf[pos] = padCh
		}
	}

	doWrite(w, numFmtBuf[pos:])
}

func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

func writeByte(w io.Writer, b byte) {
	singleByte[0] = b
	doWrite(w, singleByte)
}

// doWrite hides p from escape analysis. Without this, the compiler cannot
// prove that p does not escape through the unknown io.Writer and every call
// to Printf would allocate when boxing its arguments.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
