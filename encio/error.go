package encio

import (
	"errors"
	"fmt"
	"runtime"
)

// Error handling in datapack is designed to provide an easy way to distinguish io errors and bad data from internal encoding errors,
// and to reuse a small set of common error kinds for as many errors as possible, with extra information wrapped as applicable.
// Panics are only used when there is a clear misuse of the library; programmer error.
// To this end, all error cases are grouped into two error wrappers; IOError and Error, the idea being that
// IOError errors indicate a bad io.Reader/io.Writer, and the caller should stop using it, and
// Error errors indicate a caller should stop using a stream, or use it in a different way.
//
// In this way, errors can be checked with
//
//	var encErr Error
//	var ioErr IOError
//	if errors.As(err, &encErr) {
//		//handle encoding error
//	} else if errors.As(err, &ioErr) {
//		//handle io error
//	}
//
// These errors will be wrapped by IOError or Error.
var (
	// ErrMalformed is returned when the read data is impossible to decode.
	ErrMalformed = errors.New("malformed")

	// ErrBadType is returned when a type, where possible to detect, is wrong, unresolvable or inappropriate.
	ErrBadType = errors.New("bad type")

	// ErrNilPointer is returned if a pointer that should not be nil is nil.
	ErrNilPointer = errors.New("nil pointer")

	// ErrBadConfig is returned when the config cannot be used.
	// i.e. a non-positive cache size, or two factories sharing a name.
	ErrBadConfig = errors.New("bad config")

	// ErrUnknownType is returned when no factory can serialize a type, or a stream names a factory that is not known.
	ErrUnknownType = errors.New("unknown type")

	// ErrClosed is returned when a closed stream is used.
	ErrClosed = errors.New("closed")
)

// NewIOError returns an IOError wrapping err with the given message.
// err is typically the error returned from the io.Reader/io.Writer, or another error describing why the reader isn't operating correctly.
// rw is the io.Reader or io.Writer in question; its type is included in the message.
// If message is empty, it is filled with the name of the function depth frames above the caller.
func NewIOError(err error, rw interface{}, message string, depth int) error {
	if err == nil {
		return NewError(errors.New("unknown error"), "trying to create new IOError", 0)
	}
	if message == "" {
		message = "in " + GetCaller(depth+1)
	}
	if rw != nil {
		message = fmt.Sprintf("%T: %v", rw, message)
	}

	return IOError{
		Err:     err,
		Message: message,
	}
}

// IOError is returned when io errors occour, or when read data is truncated.
type IOError struct {
	Err     error
	Message string
}

// Error implements error
func (e IOError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap implements errors's Unwrap()
func (e IOError) Unwrap() error {
	return e.Err
}

// NewError returns an Error wrapping err with message and the name of the function depth frames above the caller.
func NewError(err error, message string, depth int) error {
	return Error{
		Err:     err,
		Message: message,
		Caller:  GetCaller(depth + 1),
	}
}

// Error is returned when an internal error is encountered while encoding.
type Error struct {
	Err     error
	Message string
	Caller  string
}

// Error implements error
func (e Error) Error() (str string) {
	if e.Caller != "" {
		str = e.Caller + ": "
	}

	str += e.Err.Error()

	if e.Message != "" {
		str += " (" + e.Message + ")"
	}

	return str
}

// Unwrap implements errors's Unwrap()
func (e Error) Unwrap() error {
	return e.Err
}

// GetCaller returns the name of the calling function, skipping skip functions.
// i.e. 0 writes the calling function, 1 the function calling that etc...
func GetCaller(skip int) string {
	pcs := make([]uintptr, 1)
	n := runtime.Callers(2+skip, pcs)
	if n != 1 {
		return "Unknown Function"
	}

	frames := runtime.CallersFrames(pcs)
	frame, _ := frames.Next()
	return frame.Function
}
