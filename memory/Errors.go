package memory

import "errors"

// Error implements errors unique to a replay memory. Op names the
// operation that failed and Err is the underlying cause, usually one
// of the sentinel errors of this package.
type Error struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error so that errors.Is and errors.As
// see through an *Error
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrInsufficientData reports that a retrieval was requested before
// enough valid data was stored in the memory.
var ErrInsufficientData = errors.New("insufficient data in memory")

// ErrConfiguration reports an invalid memory configuration or an
// invalid retrieval argument.
var ErrConfiguration = errors.New("invalid configuration")

// ErrOverwritten reports that requested data has already been
// overwritten by newer writes. It always wraps ErrInsufficientData.
var ErrOverwritten error = &wrapped{
	msg: "data overwritten",
	err: ErrInsufficientData,
}

type wrapped struct {
	msg string
	err error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

// IsInsufficientData returns whether or not an error reports that
// there is not enough valid data in the memory to satisfy a retrieval.
// The caller is expected to store more experience and try again later.
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

// IsConfiguration returns whether or not an error reports an invalid
// configuration or retrieval argument
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func insufficient(op string, detail string) error {
	return &Error{Op: op, Err: &wrapped{msg: detail, err: ErrInsufficientData}}
}

func misconfigured(op string, detail string) error {
	return &Error{Op: op, Err: &wrapped{msg: detail, err: ErrConfiguration}}
}
