// Package resultcode defines the stable result-kind vocabulary shared by the
// map build pipeline, the runtime query engine and the C ABI surface.
package resultcode

import "errors"

// Code is an 8-bit result kind, stable over the wire (returned verbatim by
// the C ABI and embedded in the sentinel errors below).
type Code uint8

const (
	Ok Code = iota
	NotFound
	Truncated
	Corrupt
	OutOfRange
	NotLoaded
	TooSmall
	Internal
)

func (c Code) String() string {
	switch c {
	case Ok:
		return "ok"
	case NotFound:
		return "not found"
	case Truncated:
		return "truncated"
	case Corrupt:
		return "corrupt"
	case OutOfRange:
		return "out of range"
	case NotLoaded:
		return "not loaded"
	case TooSmall:
		return "buffer too small"
	case Internal:
		return "internal error"
	default:
		return "unknown result code"
	}
}

// codedError pairs a Code with a descriptive message. errors.Is matches it
// against the package sentinels by Code, not by pointer identity, so wrapped
// and annotated errors still resolve to the right Code at the ABI boundary.
type codedError struct {
	code Code
	msg  string
}

func (e *codedError) Error() string { return e.msg }

func (e *codedError) Is(target error) bool {
	t, ok := target.(*codedError)
	if !ok {
		return false
	}
	return e.code == t.code
}

var (
	ErrNotFound   = &codedError{NotFound, "not found"}
	ErrTruncated  = &codedError{Truncated, "truncated"}
	ErrCorrupt    = &codedError{Corrupt, "corrupt"}
	ErrOutOfRange = &codedError{OutOfRange, "out of range"}
	ErrNotLoaded  = &codedError{NotLoaded, "not loaded"}
	ErrTooSmall   = &codedError{TooSmall, "buffer too small"}
	ErrInternal   = &codedError{Internal, "internal error"}
)

// Wrap annotates err with msg while preserving its Code for errors.Is.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrapped{msg: msg, err: err}
}

type wrapped struct {
	msg string
	err error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

// CodeOf maps err to its stable Code, defaulting to Internal for anything
// that doesn't carry one of the sentinels above. nil maps to Ok.
func CodeOf(err error) Code {
	if err == nil {
		return Ok
	}
	for _, c := range []struct {
		code Code
		err  error
	}{
		{NotFound, ErrNotFound},
		{Truncated, ErrTruncated},
		{Corrupt, ErrCorrupt},
		{OutOfRange, ErrOutOfRange},
		{NotLoaded, ErrNotLoaded},
		{TooSmall, ErrTooSmall},
	} {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return Internal
}
