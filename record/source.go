package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

const readBufferSize = 64 * 1024

// Source streams the elements of a top-level JSON array one at a time. Only
// the current element is held in memory. A Source is a single forward pass.
type Source struct {
	iter    *jsoniter.Iterator
	closer  io.Closer
	index   int
	started bool
	done    bool
	err     error
}

// NewSource creates a Source reading from r.
func NewSource(r io.Reader) *Source {
	return &Source{
		iter: jsoniter.Parse(jsoniter.ConfigCompatibleWithStandardLibrary, r, readBufferSize),
	}
}

// Open creates a Source over the file at path. Close releases the file.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	s := NewSource(f)
	s.closer = f
	return s, nil
}

// Next returns the next element of the array. It returns io.EOF once the
// closing bracket has been read and nothing but whitespace follows it. A *MalformedValueError is returned for an
// element that is not a JSON object; the caller may keep reading. A
// *StreamCorruptError is fatal and is returned by every later call.
func (s *Source) Next() (Raw, error) {
	if s.err != nil {
		return Raw{}, s.err
	}
	if s.done {
		return Raw{}, io.EOF
	}

	if !s.started {
		s.started = true
		if next := s.iter.WhatIsNext(); next != jsoniter.ArrayValue {
			return Raw{}, s.corrupt(errors.New("top-level value is not an array"))
		}
	}

	if !s.iter.ReadArray() {
		if s.iter.Error != nil {
			return Raw{}, s.corrupt(s.iter.Error)
		}
		if err := s.checkEnd(); err != nil {
			return Raw{}, s.corrupt(err)
		}
		s.done = true
		return Raw{}, io.EOF
	}

	index := s.index
	data := s.iter.SkipAndReturnBytes()
	if s.iter.Error != nil {
		return Raw{}, s.corrupt(s.iter.Error)
	}
	s.index++

	var fields map[string]json.RawMessage
	if err := jsonAPI.Unmarshal(data, &fields); err != nil {
		return Raw{Index: index}, &MalformedValueError{Index: index, Err: errors.New("element is not an object")}
	}
	if fields == nil {
		return Raw{Index: index}, &MalformedValueError{Index: index, Err: errors.New("element is null")}
	}
	return Raw{Index: index, Fields: fields}, nil
}

// Index returns the number of elements read so far.
func (s *Source) Index() int {
	return s.index
}

// Close releases the underlying file, if the Source owns one.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// checkEnd reports an error unless only whitespace follows the closing
// bracket of the top-level array.
func (s *Source) checkEnd() error {
	s.iter.WhatIsNext()
	switch {
	case errors.Is(s.iter.Error, io.EOF):
		return nil
	case s.iter.Error != nil:
		return s.iter.Error
	default:
		return errors.New("unexpected data after top-level array")
	}
}

func (s *Source) corrupt(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	s.err = &StreamCorruptError{Index: s.index, Err: err}
	return s.err
}
