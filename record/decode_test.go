package record

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFrom(t *testing.T, index int, doc string) Raw {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(doc), &fields))
	return Raw{Index: index, Fields: fields}
}

func TestDecodeFile(t *testing.T) {
	raw := rawFrom(t, 0, `{
		"filename": "q1.xlsx",
		"filepath": "C:\\a\\q1.xlsx",
		"write_time": "2021-05-01T00:00:00",
		"sha256_hash": "ab12...",
		"size_in_bytes": 42
	}`)

	rec, err := DecodeFile(raw)
	require.NoError(t, err)
	assert.Equal(t, FileRecord{
		Filename:    "q1.xlsx",
		Filepath:    `C:\a\q1.xlsx`,
		WriteTime:   "2021-05-01T00:00:00",
		ContentHash: "ab12...",
		SizeInBytes: 42,
	}, rec)
}

func TestDecodeFile_SizeDefaultsToZero(t *testing.T) {
	for _, doc := range []string{
		`{"filename":"a","filepath":"/a","write_time":"t","sha256_hash":"00"}`,
		`{"filename":"a","filepath":"/a","write_time":"t","sha256_hash":"00","size_in_bytes":null}`,
	} {
		rec, err := DecodeFile(rawFrom(t, 0, doc))
		require.NoError(t, err)
		assert.Equal(t, int64(0), rec.SizeInBytes)
	}
}

func TestDecodeFile_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		field     string
		malformed bool
	}{
		{"missing filepath", `{"filename":"a","write_time":"t","sha256_hash":"00"}`, FieldFilepath, false},
		{"null filename", `{"filename":null,"filepath":"/a","write_time":"t","sha256_hash":"00"}`, FieldFilename, false},
		{"missing hash", `{"filename":"a","filepath":"/a","write_time":"t"}`, FieldSHA256Hash, false},
		{"numeric filename", `{"filename":7,"filepath":"/a","write_time":"t","sha256_hash":"00"}`, FieldFilename, true},
		{"string size", `{"filename":"a","filepath":"/a","write_time":"t","sha256_hash":"00","size_in_bytes":"big"}`, FieldSizeInBytes, true},
		{"fractional size", `{"filename":"a","filepath":"/a","write_time":"t","sha256_hash":"00","size_in_bytes":1.5}`, FieldSizeInBytes, true},
		{"negative size", `{"filename":"a","filepath":"/a","write_time":"t","sha256_hash":"00","size_in_bytes":-1}`, FieldSizeInBytes, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFile(rawFrom(t, 3, tt.doc))
			require.Error(t, err)
			assert.True(t, IsRecoverable(err))
			assert.True(t, errors.Is(err, ErrRecordRejected))

			if tt.malformed {
				var malformed *MalformedValueError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, tt.field, malformed.Field)
				assert.Equal(t, 3, malformed.Index)
			} else {
				var missing *MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, tt.field, missing.Field)
				assert.Equal(t, 3, missing.Index)
			}
		})
	}
}

func TestDecodeEmail(t *testing.T) {
	raw := rawFrom(t, 0, `{
		"email": "Alice@Example.com",
		"byte_order": "Little-Endian",
		"size_in_bytes": 17,
		"hash_method": "MD5",
		"hash_value": "D41D8CD98F00B204E9800998ECF8427E"
	}`)

	rec, err := DecodeEmail(raw)
	require.NoError(t, err)
	assert.Equal(t, EmailRecord{
		Email:       "Alice@Example.com",
		ByteOrder:   LittleEndian,
		SizeInBytes: 17,
		HashMethod:  "MD5",
		HashValue:   "D41D8CD98F00B204E9800998ECF8427E",
	}, rec)
}

func TestDecodeEmail_Errors(t *testing.T) {
	base := `"email":"a@b.c","byte_order":"big-endian","hash_method":"SHA256","hash_value":"00"`

	_, err := DecodeEmail(rawFrom(t, 1, `{`+base+`}`))
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, FieldSizeInBytes, missing.Field)

	_, err = DecodeEmail(rawFrom(t, 1, `{"email":"a@b.c","byte_order":"middle","size_in_bytes":1,"hash_method":"x","hash_value":"00"}`))
	var malformed *MalformedValueError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, FieldByteOrder, malformed.Field)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFile, m)

	m, err = ParseMode("EMAIL")
	require.NoError(t, err)
	assert.Equal(t, ModeEmail, m)

	_, err = ParseMode("archive")
	assert.Error(t, err)
}
