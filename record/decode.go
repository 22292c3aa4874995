package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Raw is one undecoded element of the input array.
type Raw struct {
	// Index is the zero-based position of the element in the input array.
	Index  int
	Fields map[string]json.RawMessage
}

// DecodeFile decodes a filesystem entry record. A missing size_in_bytes
// defaults to zero; every other field is required.
func DecodeFile(raw Raw) (FileRecord, error) {
	var rec FileRecord
	var err error

	if rec.Filename, err = raw.requireString(FieldFilename); err != nil {
		return FileRecord{}, err
	}
	if rec.Filepath, err = raw.requireString(FieldFilepath); err != nil {
		return FileRecord{}, err
	}
	if rec.WriteTime, err = raw.requireString(FieldWriteTime); err != nil {
		return FileRecord{}, err
	}
	if rec.ContentHash, err = raw.requireString(FieldSHA256Hash); err != nil {
		return FileRecord{}, err
	}
	if raw.has(FieldSizeInBytes) {
		if rec.SizeInBytes, err = raw.requireSize(FieldSizeInBytes); err != nil {
			return FileRecord{}, err
		}
	}
	return rec, nil
}

// DecodeEmail decodes an email observable record. All fields are required.
func DecodeEmail(raw Raw) (EmailRecord, error) {
	var rec EmailRecord
	var err error

	if rec.Email, err = raw.requireString(FieldEmail); err != nil {
		return EmailRecord{}, err
	}
	order, err := raw.requireString(FieldByteOrder)
	if err != nil {
		return EmailRecord{}, err
	}
	switch ByteOrder(strings.ToLower(order)) {
	case BigEndian:
		rec.ByteOrder = BigEndian
	case LittleEndian:
		rec.ByteOrder = LittleEndian
	default:
		return EmailRecord{}, &MalformedValueError{
			Index: raw.Index,
			Field: FieldByteOrder,
			Err:   fmt.Errorf("unknown byte order %q (valid: big-endian, little-endian)", order),
		}
	}
	if rec.SizeInBytes, err = raw.requireSize(FieldSizeInBytes); err != nil {
		return EmailRecord{}, err
	}
	if rec.HashMethod, err = raw.requireString(FieldHashMethod); err != nil {
		return EmailRecord{}, err
	}
	if rec.HashValue, err = raw.requireString(FieldHashValue); err != nil {
		return EmailRecord{}, err
	}
	return rec, nil
}

var null = []byte("null")

// has reports whether field is present with a non-null value.
func (r Raw) has(field string) bool {
	v, ok := r.Fields[field]
	return ok && !bytes.Equal(bytes.TrimSpace(v), null)
}

func (r Raw) requireString(field string) (string, error) {
	if !r.has(field) {
		return "", &MissingFieldError{Index: r.Index, Field: field}
	}
	var s string
	if err := jsonAPI.Unmarshal(r.Fields[field], &s); err != nil {
		return "", &MalformedValueError{Index: r.Index, Field: field, Err: errors.New("expected a string")}
	}
	return s, nil
}

func (r Raw) requireSize(field string) (int64, error) {
	if !r.has(field) {
		return 0, &MissingFieldError{Index: r.Index, Field: field}
	}
	var n int64
	if err := jsonAPI.Unmarshal(r.Fields[field], &n); err != nil {
		return 0, &MalformedValueError{Index: r.Index, Field: field, Err: errors.New("expected an integer")}
	}
	if n < 0 {
		return 0, &MalformedValueError{Index: r.Index, Field: field, Err: fmt.Errorf("negative size %d", n)}
	}
	return n, nil
}
