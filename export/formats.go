// Package export serializes flushed graph batches and writes them to durable
// sinks.
//
// Every format writes a batch as a self-contained unit that concatenates
// with the units before it:
//   - jsonld: one complete JSON-LD document per line
//   - ntriples: one statement per line
//   - turtle: one block per batch with its own prefix header
package export

import (
	"fmt"
	"sort"
	"strings"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatJSONLD produces one JSON-LD document per flushed batch, one per line.
	FormatJSONLD Format = "jsonld"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - one document per flushed batch, one per line",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat converts a configuration string into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatJSONLD, nil
	}
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unsupported format: %s (valid: jsonld, ntriples, turtle)", s)
	}
	return f, nil
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a new Turtle writer with the given prefixes.
func NewTurtleWriter(prefixes map[string]string) *TurtleWriter {
	w := &TurtleWriter{prefixes: make(map[string]string, len(prefixes))}
	for k, v := range prefixes {
		w.prefixes[k] = v
	}
	return w
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	// Sort prefixes for consistent output
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, w.prefixes[prefix]))
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(term string) {
	w.sb.WriteString(w.name(term) + "\n")
}

// WriteType writes a type assertion.
func (w *TurtleWriter) WriteType(class string, last bool) {
	w.sb.WriteString(fmt.Sprintf("    a %s%s\n", w.name(class), terminator(last)))
}

// WritePredicate writes a predicate-object pair. The object must already be
// rendered.
func (w *TurtleWriter) WritePredicate(predicate, object string, last bool) {
	w.sb.WriteString(fmt.Sprintf("    %s %s%s\n", w.name(predicate), object, terminator(last)))
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

// name renders a term as a prefixed name when its prefix is declared and as
// an IRI reference otherwise.
func (w *TurtleWriter) name(term string) string {
	if prefix, _, ok := strings.Cut(term, ":"); ok {
		if _, declared := w.prefixes[prefix]; declared {
			return term
		}
	}
	return "<" + term + ">"
}

func terminator(last bool) string {
	if last {
		return " ."
	}
	return " ;"
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple. Subject and predicate are absolute
// IRIs; the object must already be rendered.
func (w *NTriplesWriter) WriteTriple(subject, predicate, object string) {
	w.sb.WriteString(fmt.Sprintf("<%s> <%s> %s .\n", subject, predicate, object))
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

// escapeString escapes a string for an N-Triples or Turtle literal. Control
// characters without a short escape are written as \uXXXX.
func escapeString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04X`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
