package graph

import "github.com/c360studio/caseforge/vocabulary/uco"

// Triple is one subject-predicate-object statement. Subject and Predicate
// are compact IRIs; Object is a Literal or a Ref.
type Triple struct {
	Subject   string
	Predicate string
	Object    Value
}

// Triples flattens nodes into statements. Every node contributes an rdf:type
// statement; an embedded node is linked to its owner by reference.
func Triples(nodes []*Node) []Triple {
	var out []Triple
	for _, root := range nodes {
		root.Walk(func(_ *Node, _ string, n *Node) {
			if n.Type != "" {
				out = append(out, Triple{Subject: n.ID, Predicate: uco.RDFType, Object: Ref{ID: n.Type}})
			}
			for _, p := range n.Props {
				switch o := p.Object.(type) {
				case Embedded:
					for _, child := range o {
						out = append(out, Triple{Subject: n.ID, Predicate: p.Predicate, Object: Ref{ID: child.ID}})
					}
				default:
					out = append(out, Triple{Subject: n.ID, Predicate: p.Predicate, Object: o})
				}
			}
		})
	}
	return out
}
