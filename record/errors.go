package record

import (
	"errors"
	"fmt"
)

// ErrRecordRejected is matched by every per-record error. A rejected record
// is skipped and the run continues.
var ErrRecordRejected = errors.New("record rejected")

// MissingFieldError reports a required field that is absent or null.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d: missing field %q", e.Index, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrRecordRejected
}

// MalformedValueError reports a field present with the wrong shape. Field is
// empty when the record itself is not a JSON object.
type MalformedValueError struct {
	Index int
	Field string
	Err   error
}

func (e *MalformedValueError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: malformed record: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d: malformed field %q: %v", e.Index, e.Field, e.Err)
}

func (e *MalformedValueError) Unwrap() error {
	return e.Err
}

func (e *MalformedValueError) Is(target error) bool {
	return target == ErrRecordRejected
}

// StreamCorruptError reports a truncated or invalid input token stream. It is
// fatal: no further records can be read from the source.
type StreamCorruptError struct {
	// Index is the position of the element being read when the stream broke.
	Index int
	Err   error
}

func (e *StreamCorruptError) Error() string {
	return fmt.Sprintf("input stream corrupt at record %d: %v", e.Index, e.Err)
}

func (e *StreamCorruptError) Unwrap() error {
	return e.Err
}

// IsRecoverable returns true for per-record errors that skip one record.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrRecordRejected)
}

// IsStreamCorrupt returns true if err is or wraps a StreamCorruptError.
func IsStreamCorrupt(err error) bool {
	var corrupt *StreamCorruptError
	return errors.As(err, &corrupt)
}
