package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Summary counts what a run did.
type Summary struct {
	Inputs int
	// Read is the number of array elements pulled from the inputs.
	Read   int
	Mapped int
	// Skipped is the number of rejected records; MissingField and
	// MalformedValue break it down.
	Skipped        int
	MissingField   int
	MalformedValue int
	Flushes        int
	Nodes          int
	Elapsed        time.Duration
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("inputs", s.Inputs),
		slog.Int("read", s.Read),
		slog.Int("mapped", s.Mapped),
		slog.Int("skipped", s.Skipped),
		slog.Int("missing_field", s.MissingField),
		slog.Int("malformed_value", s.MalformedValue),
		slog.Int("flushes", s.Flushes),
		slog.Int("nodes", s.Nodes),
		slog.Duration("elapsed", s.Elapsed),
	)
}

// Print writes a human-readable summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Inputs:          %d\n", s.Inputs)
	fmt.Fprintf(w, "Records read:    %d\n", s.Read)
	fmt.Fprintf(w, "Records mapped:  %d\n", s.Mapped)
	fmt.Fprintf(w, "Records skipped: %d (missing field: %d, malformed: %d)\n",
		s.Skipped, s.MissingField, s.MalformedValue)
	fmt.Fprintf(w, "Flushes:         %d\n", s.Flushes)
	fmt.Fprintf(w, "Nodes emitted:   %d\n", s.Nodes)
	fmt.Fprintf(w, "Elapsed:         %s\n", s.Elapsed.Round(time.Millisecond))
}
