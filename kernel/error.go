package kernel

// Error describes a kernel error. All kernel errors are defined as global
// variables that point to an Error value; the core runs before any allocator
// exists so errors.New is not an option.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// String returns the error prefixed with its module, e.g. "[pic] bad offset".
func (e *Error) String() string {
	return "[" + e.Module + "] " + e.Message
}
