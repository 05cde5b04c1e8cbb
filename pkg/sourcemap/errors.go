package sourcemap

import (
	"errors"
	"fmt"
)

// ErrorType classifies every failure the engine can produce.
type ErrorType int

const (
	// ErrVlqInvalid indicates a non-base64 byte inside a VLQ field.
	ErrVlqInvalid ErrorType = iota
	// ErrVlqOverflow indicates a decoded magnitude beyond 32-bit signed bounds.
	ErrVlqOverflow
	// ErrVlqUnexpectedEOF indicates input ended while a VLQ group was continuing.
	ErrVlqUnexpectedEOF
	// ErrUnexpectedNegativeNumber indicates a running counter or shifted
	// coordinate went negative.
	ErrUnexpectedNegativeNumber
	// ErrSourceOutOfRange indicates a source index outside the sources table.
	ErrSourceOutOfRange
	// ErrNameOutOfRange indicates a name index outside the names table.
	ErrNameOutOfRange
	// ErrIO indicates the output sink passed to WriteVLQ failed.
	ErrIO
	// ErrBufferInvalid indicates a corrupt or truncated binary dump.
	ErrBufferInvalid
)

func (t ErrorType) String() string {
	switch t {
	case ErrVlqInvalid:
		return "invalid VLQ byte"
	case ErrVlqOverflow:
		return "VLQ value overflow"
	case ErrVlqUnexpectedEOF:
		return "unexpected end of VLQ input"
	case ErrUnexpectedNegativeNumber:
		return "unexpected negative number"
	case ErrSourceOutOfRange:
		return "source index out of range"
	case ErrNameOutOfRange:
		return "name index out of range"
	case ErrIO:
		return "write to output failed"
	case ErrBufferInvalid:
		return "invalid map buffer"
	default:
		return "unknown source map error"
	}
}

// Error is the single error type returned by this package. It carries the
// failure kind, an optional message, and, for codec failures, the byte
// offset into the mappings input that produced the error (-1 otherwise).
type Error struct {
	Type   ErrorType
	Msg    string
	Offset int

	wrapped error
}

func newError(t ErrorType, msg string) *Error {
	return &Error{Type: t, Msg: msg, Offset: -1}
}

func newErrorAt(t ErrorType, offset int) *Error {
	return &Error{Type: t, Offset: offset}
}

func wrapIOError(err error) *Error {
	return &Error{Type: ErrIO, Offset: -1, wrapped: err}
}

func (e *Error) Error() string {
	msg := e.Type.String()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.wrapped)
	}
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (at offset %d)", msg, e.Offset)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is reports whether target is an *Error of the same type, so callers can
// match on kind with errors.Is(err, &Error{Type: ErrVlqInvalid}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsType reports whether err is (or wraps) a source map error of the given kind.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == t
}
