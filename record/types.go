// Package record provides the flat input records consumed by the graph
// builder and the streaming source that reads them.
package record

import (
	"fmt"
	"strings"
)

// Mode selects the input schema for a run. Every record in a run is decoded
// with the same schema.
type Mode string

const (
	// ModeFile reads filesystem entry records.
	ModeFile Mode = "file"

	// ModeEmail reads email observable records.
	ModeEmail Mode = "email"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFile, "":
		return ModeFile, nil
	case ModeEmail:
		return ModeEmail, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s (valid: file, email)", s)
	}
}

// Input field names for file entry records.
const (
	FieldFilename    = "filename"
	FieldFilepath    = "filepath"
	FieldWriteTime   = "write_time"
	FieldSHA256Hash  = "sha256_hash"
	FieldSizeInBytes = "size_in_bytes"
)

// Input field names for email records.
const (
	FieldEmail      = "email"
	FieldByteOrder  = "byte_order"
	FieldHashMethod = "hash_method"
	FieldHashValue  = "hash_value"
)

// FileRecord is one filesystem entry.
type FileRecord struct {
	Filename string
	Filepath string
	// WriteTime is the ISO-8601 write time exactly as given in the input.
	WriteTime string
	// ContentHash is the SHA-256 digest as given in the input.
	ContentHash string
	SizeInBytes int64
}

// ByteOrder is the endianness of an email payload.
type ByteOrder string

const (
	BigEndian    ByteOrder = "big-endian"
	LittleEndian ByteOrder = "little-endian"
)

// EmailRecord is one email address observable.
type EmailRecord struct {
	Email       string
	ByteOrder   ByteOrder
	SizeInBytes int64
	HashMethod  string
	HashValue   string
}
