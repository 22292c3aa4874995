// Package graph holds the in-memory CASE/UCO graph: nodes with compact-IRI
// identifiers, the literal and reference values they carry, and the
// accumulator that buffers mapped records between flushes.
package graph

import (
	"encoding/json"

	"github.com/c360studio/caseforge/vocabulary/uco"
)

// Value is the object of a node property.
type Value interface {
	value()
}

// Literal is a literal value. A Literal with an empty Datatype is written
// as a native JSON value; otherwise it is written as a typed value object.
type Literal struct {
	Value    any
	Datatype string
}

// Ref is a reference to another node by identifier.
type Ref struct {
	ID string
}

// Embedded is a list of nodes owned by the enclosing node and written
// inline beneath it.
type Embedded []*Node

func (Literal) value()  {}
func (Ref) value()      {}
func (Embedded) value() {}

// Property is one predicate-object pair.
type Property struct {
	Predicate string
	Object    Value
}

// Node is one graph entity.
type Node struct {
	ID    string
	Type  string
	Props []Property
}

// NewNode creates a node with the given identifier and class.
func NewNode(id, class string) *Node {
	return &Node{ID: id, Type: class}
}

// Set appends a property and returns the node for chaining.
func (n *Node) Set(predicate string, object Value) *Node {
	n.Props = append(n.Props, Property{Predicate: predicate, Object: object})
	return n
}

// Get returns the first object for predicate.
func (n *Node) Get(predicate string) (Value, bool) {
	for _, p := range n.Props {
		if p.Predicate == predicate {
			return p.Object, true
		}
	}
	return nil, false
}

// Children returns the nodes embedded under predicate.
func (n *Node) Children(predicate string) []*Node {
	var out []*Node
	for _, p := range n.Props {
		if p.Predicate != predicate {
			continue
		}
		if e, ok := p.Object.(Embedded); ok {
			out = append(out, e...)
		}
	}
	return out
}

// Facets returns the facet nodes owned by n.
func (n *Node) Facets() []*Node {
	return n.Children(uco.HasFacet)
}

// Walk visits n and every node embedded beneath it, depth first. The parent
// and predicate are empty for n itself.
func (n *Node) Walk(fn func(parent *Node, predicate string, node *Node)) {
	n.walk(nil, "", fn)
}

func (n *Node) walk(parent *Node, predicate string, fn func(*Node, string, *Node)) {
	fn(parent, predicate, n)
	for _, p := range n.Props {
		if e, ok := p.Object.(Embedded); ok {
			for _, child := range e {
				child.walk(n, p.Predicate, fn)
			}
		}
	}
}

// Count returns the number of nodes in n's tree, n included.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, string, *Node) { count++ })
	return count
}

// MarshalJSON writes the node as a JSON-LD node object with embedded nodes
// inline.
func (n *Node) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Props)+2)
	m["@id"] = n.ID
	if n.Type != "" {
		m["@type"] = n.Type
	}
	for _, p := range n.Props {
		m[p.Predicate] = jsonValue(p.Object)
	}
	return json.Marshal(m)
}

func jsonValue(v Value) any {
	switch o := v.(type) {
	case Literal:
		if o.Datatype == "" {
			return o.Value
		}
		return map[string]any{"@type": o.Datatype, "@value": o.Value}
	case Ref:
		return map[string]any{"@id": o.ID}
	case Embedded:
		nodes := make([]*Node, len(o))
		copy(nodes, o)
		return nodes
	default:
		return nil
	}
}
