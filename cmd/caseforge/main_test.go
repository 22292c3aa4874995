package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/caseforge/record"
)

// execute runs the root command in an isolated home and working directory.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_SingleRecordBatch(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "records.json",
		`[{"filename":"q1.xlsx","filepath":"C:\\a\\q1.xlsx","write_time":"2021-05-01T00:00:00","sha256_hash":"ab12","size_in_bytes":42}]`)
	output := filepath.Join(dir, "case_output.jsonld")

	stdout, _, err := execute(t, "--input", input, "--output", output, "--batch_size", "1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, "Flushes:         1") {
		t.Errorf("summary missing flush count:\n%s", stdout)
	}

	lines := readLines(t, output)
	if len(lines) != 1 {
		t.Fatalf("expected 1 document, got %d", len(lines))
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &doc); err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if !strings.Contains(lines[0], `"uco-observable:sizeInBytes":42`) {
		t.Errorf("expected sizeInBytes 42 in %s", lines[0])
	}
	if !strings.Contains(lines[0], `"@value":"ab12"`) {
		t.Errorf("expected hash value ab12 in %s", lines[0])
	}
}

func TestRootCommand_SkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	content := `[
		{"email":"a@example.org","byte_order":"big-endian","size_in_bytes":1,"hash_method":"SHA256","hash_value":"00"},
		{"email":"b@example.org","byte_order":"middle-endian","size_in_bytes":1,"hash_method":"SHA256","hash_value":"00"},
		{"email":"c@example.org","size_in_bytes":1,"hash_method":"SHA256","hash_value":"00"}
	]`
	input := writeInput(t, dir, "emails.json", content)
	output := filepath.Join(dir, "emails.ttl")

	stdout, _, err := execute(t, "--input", input, "--output", output, "--mode", "email", "--format", "turtle")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, "Records skipped: 2 (missing field: 1, malformed: 1)") {
		t.Errorf("unexpected summary:\n%s", stdout)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if got := strings.Count(string(data), "uco-observable:EmailAddress"); got != 1 {
		t.Errorf("expected 1 EmailAddress, got %d", got)
	}
}

func TestRootCommand_CorruptInputFails(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "broken.json", strings.TrimSuffix(fileRecords(2, 0), "]")+`,{"filename"`)
	output := filepath.Join(dir, "out.jsonld")

	stdout, _, err := execute(t, "--input", input, "--output", output)
	if !record.IsStreamCorrupt(err) {
		t.Fatalf("expected stream corrupt error, got %v", err)
	}
	if !strings.Contains(stdout, "Records mapped:  2") {
		t.Errorf("summary not printed on failure:\n%s", stdout)
	}
	if lines := readLines(t, output); len(lines) != 1 {
		t.Errorf("expected accumulated records flushed, got %d documents", len(lines))
	}
}

func TestRootCommand_ConcatenatedArraysFail(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "concat.json", fileRecords(2, 0)+fileRecords(1, 2))
	output := filepath.Join(dir, "out.jsonld")

	stdout, _, err := execute(t, "--input", input, "--output", output)
	if !record.IsStreamCorrupt(err) {
		t.Fatalf("expected stream corrupt error, got %v", err)
	}
	if !strings.Contains(stdout, "Records mapped:  2") {
		t.Errorf("unexpected summary:\n%s", stdout)
	}
}

func TestRootCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "records.json", fileRecords(3, 0))
	output := filepath.Join(dir, "out.nt")
	configPath := writeInput(t, dir, "caseforge.yaml",
		"input: "+input+"\noutput: "+output+"\nformat: ntriples\nbatch_size: 2\n")

	if _, _, err := execute(t, "--config", configPath); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	lines := readLines(t, output)
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "<http://example.org/kb/file_entry-") {
		t.Errorf("expected N-Triples output, got %v", lines)
	}
}

func TestRootCommand_InvalidArguments(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "records.json", "[]")

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing input", args: []string{}},
		{name: "zero batch size", args: []string{"--input", input, "--batch_size", "0"}},
		{name: "negative batch size", args: []string{"--input", input, "--batch_size", "-3"}},
		{name: "unknown mode", args: []string{"--input", input, "--mode", "registry"}},
		{name: "unknown log level", args: []string{"--input", input, "--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, "caseforge version "+Version) {
		t.Errorf("unexpected version output: %s", stdout)
	}
}

func TestFormatsCommand(t *testing.T) {
	stdout, _, err := execute(t, "formats")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"jsonld", "ntriples", "turtle", "application/n-triples"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("formats output missing %q:\n%s", want, stdout)
		}
	}
}

func TestFrameCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "records.json", fileRecords(2, 0))
	data := filepath.Join(dir, "case_output.jsonld")
	if _, _, err := execute(t, "--input", input, "--output", data, "--batch_size", "1"); err != nil {
		t.Fatalf("convert: %v", err)
	}

	frame := writeInput(t, dir, "frame.jsonld",
		`{"@context":{"uco-observable":"https://ontology.unifiedcyberontology.org/uco/observable/"},"@type":"uco-observable:File"}`)
	framed := filepath.Join(dir, "framed.jsonld")

	if _, _, err := execute(t, "frame", framed, frame, data); err != nil {
		t.Fatalf("frame: %v", err)
	}
	out, err := os.ReadFile(framed)
	if err != nil {
		t.Fatalf("framed output missing: %v", err)
	}
	if !json.Valid(out) {
		t.Errorf("framed output is not JSON: %s", out)
	}

	if _, _, err := execute(t, "frame", framed, frame); err == nil {
		t.Error("expected error with two arguments")
	}
}
