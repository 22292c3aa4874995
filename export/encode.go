package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/c360studio/caseforge/graph"
	"github.com/c360studio/caseforge/vocabulary/uco"
)

// Encoder renders one batch as a self-contained chunk of output.
type Encoder interface {
	Encode(batch graph.Batch) ([]byte, error)
}

// Namespace binds the knowledge-base prefix used by minted identifiers.
type Namespace struct {
	Prefix string
	IRI    string
}

// NewEncoder returns the encoder for format.
func NewEncoder(format Format, ns Namespace) (Encoder, error) {
	switch format {
	case FormatJSONLD:
		return &JSONLDEncoder{Context: uco.Context(ns.Prefix, ns.IRI)}, nil
	case FormatNTriples:
		return &NTriplesEncoder{Prefixes: uco.Prefixes(ns.Prefix, ns.IRI)}, nil
	case FormatTurtle:
		return &TurtleEncoder{Prefixes: uco.Prefixes(ns.Prefix, ns.IRI)}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Document is a JSON-LD document with a shared context and a node graph.
type Document struct {
	Context map[string]any `json:"@context"`
	Graph   []*graph.Node  `json:"@graph"`
}

// JSONLDEncoder writes each batch as one JSON-LD document on a single line.
type JSONLDEncoder struct {
	Context map[string]any
}

// Encode implements Encoder.
func (e *JSONLDEncoder) Encode(batch graph.Batch) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Document{Context: e.Context, Graph: batch.Nodes}); err != nil {
		return nil, fmt.Errorf("encode json-ld: %w", err)
	}
	return buf.Bytes(), nil
}

// NTriplesEncoder writes each batch as N-Triples with absolute IRIs.
type NTriplesEncoder struct {
	Prefixes map[string]string
}

// Encode implements Encoder.
func (e *NTriplesEncoder) Encode(batch graph.Batch) ([]byte, error) {
	w := NewNTriplesWriter()
	for _, t := range graph.Triples(batch.Nodes) {
		predicate := t.Predicate
		if predicate != uco.RDFType {
			predicate = uco.PredicateIRI(predicate)
		}
		object, err := e.object(t.Predicate, t.Object)
		if err != nil {
			return nil, fmt.Errorf("encode n-triples for %s: %w", t.Subject, err)
		}
		w.WriteTriple(uco.ExpandWith(e.Prefixes, t.Subject), predicate, object)
	}
	return []byte(w.String()), nil
}

func (e *NTriplesEncoder) object(predicate string, v graph.Value) (string, error) {
	switch o := v.(type) {
	case graph.Ref:
		return "<" + uco.ExpandWith(e.Prefixes, o.ID) + ">", nil
	case graph.Literal:
		lexical, datatype, err := lexicalForm(predicate, o)
		if err != nil {
			return "", err
		}
		if datatype == "" {
			return `"` + escapeString(lexical) + `"`, nil
		}
		return fmt.Sprintf(`"%s"^^<%s>`, escapeString(lexical), uco.ExpandWith(e.Prefixes, datatype)), nil
	default:
		return "", fmt.Errorf("unsupported object %T", v)
	}
}

// TurtleEncoder writes each batch as a Turtle block with its own prefix
// header. Repeated prefix declarations across blocks are legal Turtle.
type TurtleEncoder struct {
	Prefixes map[string]string
}

// Encode implements Encoder.
func (e *TurtleEncoder) Encode(batch graph.Batch) ([]byte, error) {
	w := NewTurtleWriter(e.Prefixes)
	w.WritePrefixes()

	for _, root := range batch.Nodes {
		var err error
		root.Walk(func(_ *graph.Node, _ string, n *graph.Node) {
			if err == nil {
				err = e.writeNode(w, n)
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return []byte(w.String()), nil
}

func (e *TurtleEncoder) writeNode(w *TurtleWriter, n *graph.Node) error {
	type pair struct{ predicate, object string }
	var pairs []pair
	for _, p := range n.Props {
		switch o := p.Object.(type) {
		case graph.Embedded:
			for _, child := range o {
				pairs = append(pairs, pair{p.Predicate, w.name(child.ID)})
			}
		case graph.Ref:
			pairs = append(pairs, pair{p.Predicate, w.name(o.ID)})
		case graph.Literal:
			lexical, datatype, err := lexicalForm(p.Predicate, o)
			if err != nil {
				return fmt.Errorf("encode turtle for %s: %w", n.ID, err)
			}
			object := `"` + escapeString(lexical) + `"`
			if datatype != "" {
				object += "^^" + w.name(datatype)
			}
			pairs = append(pairs, pair{p.Predicate, object})
		}
	}

	w.WriteSubject(n.ID)
	if n.Type != "" {
		w.WriteType(n.Type, len(pairs) == 0)
	}
	for i, p := range pairs {
		w.WritePredicate(p.predicate, p.object, i == len(pairs)-1)
	}
	w.WriteBlank()
	return nil
}

// lexicalForm returns the lexical form of a literal and its datatype. A
// literal without a declared datatype takes the one registered for its
// predicate; native integers and booleans fall back to their XSD type.
func lexicalForm(predicate string, l graph.Literal) (string, string, error) {
	datatype := orDefault(l.Datatype, uco.PredicateDatatype(predicate))
	switch v := l.Value.(type) {
	case string:
		return v, datatype, nil
	case int, int32, int64:
		return fmt.Sprintf("%d", v), orDefault(datatype, uco.TypeInteger), nil
	case bool:
		return fmt.Sprintf("%t", v), orDefault(datatype, uco.TypeBoolean), nil
	default:
		return "", "", fmt.Errorf("unsupported literal %T", l.Value)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
