package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/caseforge/config"
	"github.com/c360studio/caseforge/export"
	"github.com/c360studio/caseforge/record"
)

func fileRecords(n int, start int) string {
	var parts []string
	for i := start; i < start+n; i++ {
		parts = append(parts, fmt.Sprintf(
			`{"filename":"f%d.bin","filepath":"/evidence/f%d.bin","write_time":"2021-05-01T00:00:00","sha256_hash":"%064x","size_in_bytes":%d}`,
			i, i, i, i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return lines
}

func testConfig(dir, input string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Input = input
	cfg.Output = filepath.Join(dir, "out", "case_output.jsonld")
	return cfg
}

func TestAppRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeInput(t, dir, "records.json", fileRecords(5, 0)))
	cfg.BatchSize = 2
	cfg.Metrics.Textfile = filepath.Join(dir, "caseforge.prom")

	app, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	summary, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if summary.Mapped != 5 || summary.Flushes != 3 {
		t.Errorf("expected 5 mapped in 3 flushes, got %+v", summary)
	}

	lines := readLines(t, cfg.Output)
	if len(lines) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(lines))
	}
	files := 0
	for i, line := range lines {
		var doc struct {
			Context map[string]any   `json:"@context"`
			Graph   []map[string]any `json:"@graph"`
		}
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			t.Fatalf("document %d does not parse: %v", i, err)
		}
		if doc.Context["kb"] != "http://example.org/kb/" {
			t.Errorf("document %d: unexpected kb binding %v", i, doc.Context["kb"])
		}
		files += len(doc.Graph)
	}
	if files != 5 {
		t.Errorf("expected 5 file nodes, got %d", files)
	}

	metrics, err := os.ReadFile(cfg.Metrics.Textfile)
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	if !strings.Contains(string(metrics), "caseforge_flushes_total 3") {
		t.Errorf("unexpected metrics:\n%s", metrics)
	}
}

func TestAppRunTracing(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeInput(t, dir, "records.json", fileRecords(3, 0)))
	cfg.BatchSize = 2
	cfg.Tracing.File = filepath.Join(dir, "spans.json")

	app, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	spans, err := os.ReadFile(cfg.Tracing.File)
	if err != nil {
		t.Fatalf("trace file not written: %v", err)
	}
	if got := strings.Count(string(spans), `"Name":"pipeline.flush"`); got != 2 {
		t.Errorf("expected 2 flush spans, got %d", got)
	}
	if !strings.Contains(string(spans), `"Name":"pipeline.consume"`) {
		t.Error("expected a consume span")
	}
}

func TestAppRunGlobInputs(t *testing.T) {
	dir := t.TempDir()
	inputs := filepath.Join(dir, "in")
	if err := os.MkdirAll(filepath.Join(inputs, "day2"), 0755); err != nil {
		t.Fatal(err)
	}
	writeInput(t, inputs, "day1.json", fileRecords(3, 0))
	writeInput(t, filepath.Join(inputs, "day2"), "more.json", fileRecords(2, 3))
	writeInput(t, inputs, "notes.txt", "ignored")

	cfg := testConfig(dir, filepath.Join(inputs, "**", "*.json"))
	cfg.BatchSize = 4
	cfg.Format = "ntriples"
	cfg.Output = filepath.Join(dir, "out.nt")

	app, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer app.Shutdown()

	summary, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Inputs != 2 || summary.Mapped != 5 {
		t.Errorf("expected 5 records from 2 inputs, got %+v", summary)
	}
	if summary.Flushes != 2 {
		t.Errorf("expected 2 flushes, got %d", summary.Flushes)
	}
}

func TestAppRunCorruptInput(t *testing.T) {
	dir := t.TempDir()
	content := strings.TrimSuffix(fileRecords(3, 0), "]") + `,{"filename":`
	cfg := testConfig(dir, writeInput(t, dir, "broken.json", content))

	app, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer app.Shutdown()

	summary, err := app.Run(context.Background())
	if !record.IsStreamCorrupt(err) {
		t.Fatalf("expected stream corrupt error, got %v", err)
	}
	if summary.Mapped != 3 || summary.Flushes != 1 {
		t.Errorf("expected accumulated records flushed, got %+v", summary)
	}
	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if lines := readLines(t, cfg.Output); len(lines) != 1 {
		t.Errorf("expected 1 document, got %d", len(lines))
	}
}

func TestNewAppErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "records.json", "[]")

	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{name: "missing input", modify: func(c *config.Config) { c.Input = filepath.Join(dir, "nope.json") }},
		{name: "glob without matches", modify: func(c *config.Config) { c.Input = filepath.Join(dir, "*.xml") }},
		{name: "bad mode", modify: func(c *config.Config) { c.Mode = "registry" }},
		{name: "bad format", modify: func(c *config.Config) { c.Format = "rdfxml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(dir, input)
			tt.modify(cfg)
			if _, err := NewApp(cfg, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAppRunBeforeStart(t *testing.T) {
	dir := t.TempDir()
	app, err := NewApp(testConfig(dir, writeInput(t, dir, "records.json", "[]")), nil)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if _, err := app.Run(context.Background()); err == nil {
		t.Error("expected error when running before Start")
	}
}

func TestAppRunSinkFailureSkipsFinalFlush(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeInput(t, dir, "records.json", fileRecords(5, 0)))
	cfg.BatchSize = 2

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	app, err := NewApp(cfg, logger)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer app.Shutdown()

	// Every append fails once the output file is closed.
	if err := app.fileSink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	summary, err := app.Run(context.Background())
	if !export.IsSinkWriteFailure(err) {
		t.Fatalf("Run() error = %v, want sink write failure", err)
	}
	if summary.Read != 2 || summary.Mapped != 2 {
		t.Errorf("read/mapped = %d/%d, want 2/2", summary.Read, summary.Mapped)
	}
	if summary.Flushes != 0 {
		t.Errorf("Flushes = %d, want 0", summary.Flushes)
	}
	if got := strings.Count(logs.String(), "Flush failed"); got != 1 {
		t.Errorf("flush attempts = %d, want 1 (no final flush after sink failure)\n%s", got, logs.String())
	}
}
