package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/caseforge/graph"
)

// FileSink writes encoded batches to a single output file. The file is
// truncated when the sink is created; each batch is written with one Write
// followed by Sync.
type FileSink struct {
	path    string
	file    *os.File
	encoder Encoder
	logger  *slog.Logger
	written int64
}

// NewFileSink creates the output file at path.
func NewFileSink(path string, encoder Encoder, logger *slog.Logger) (*FileSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &SinkWriteError{Sink: "file", Err: fmt.Errorf("create output directory: %w", err)}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, &SinkWriteError{Sink: "file", Err: fmt.Errorf("create output: %w", err)}
	}
	return &FileSink{path: path, file: f, encoder: encoder, logger: logger}, nil
}

// Append implements graph.Sink.
func (s *FileSink) Append(ctx context.Context, batch graph.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.file == nil {
		return &SinkWriteError{Sink: "file", Batch: batch.Seq, Err: os.ErrClosed}
	}

	data, err := s.encoder.Encode(batch)
	if err != nil {
		return &SinkWriteError{Sink: "file", Batch: batch.Seq, Err: err}
	}
	n, err := s.file.Write(data)
	s.written += int64(n)
	if err != nil {
		return &SinkWriteError{Sink: "file", Batch: batch.Seq, Err: err}
	}
	if err := s.file.Sync(); err != nil {
		return &SinkWriteError{Sink: "file", Batch: batch.Seq, Err: err}
	}

	s.logger.Debug("Wrote batch",
		"path", s.path,
		"batch", batch.Seq,
		"bytes", n)
	return nil
}

// Path returns the output file path.
func (s *FileSink) Path() string {
	return s.path
}

// BytesWritten returns the total bytes written so far.
func (s *FileSink) BytesWritten() int64 {
	return s.written
}

// Close closes the output file.
func (s *FileSink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Tee returns a sink that appends each batch to every sink in order and
// stops at the first failure.
func Tee(sinks ...graph.Sink) graph.Sink {
	return teeSink(sinks)
}

type teeSink []graph.Sink

func (t teeSink) Append(ctx context.Context, batch graph.Batch) error {
	for _, s := range t {
		if err := s.Append(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}
