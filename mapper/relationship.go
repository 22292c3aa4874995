package mapper

import (
	"github.com/c360studio/caseforge/graph"
	"github.com/c360studio/caseforge/identity"
	"github.com/c360studio/caseforge/vocabulary/uco"
)

// RelationshipSpec describes an explicit link between two observables.
type RelationshipSpec struct {
	Source      string
	Target      string
	Kind        string
	Directional bool
	RangeOffset int64
	RangeSize   int64
}

// NewRelationshipSpec returns a directional Contained_Within link from
// source to target with an empty data range.
func NewRelationshipSpec(source, target string) RelationshipSpec {
	return RelationshipSpec{
		Source:      source,
		Target:      target,
		Kind:        uco.RelationshipContainedWithin,
		Directional: true,
	}
}

// NewRelationship builds an ObservableRelationship node with one
// DataRangeFacet.
func NewRelationship(spec RelationshipSpec, mint identity.MintFunc) *graph.Node {
	kind := spec.Kind
	if kind == "" {
		kind = uco.RelationshipContainedWithin
	}

	rel := graph.NewNode(mint(identity.Relationship), uco.ClassObservableRelationship)
	facet := graph.NewNode(mint(identity.DataRangeFacet), uco.ClassDataRangeFacet).
		Set(uco.RangeOffset, graph.Literal{Value: spec.RangeOffset, Datatype: uco.TypeInteger}).
		Set(uco.RangeSize, graph.Literal{Value: spec.RangeSize, Datatype: uco.TypeInteger})

	return rel.
		Set(uco.Source, graph.Ref{ID: spec.Source}).
		Set(uco.Target, graph.Ref{ID: spec.Target}).
		Set(uco.KindOfRelationship, graph.Literal{Value: kind}).
		Set(uco.IsDirectional, graph.Literal{Value: spec.Directional}).
		Set(uco.HasFacet, graph.Embedded{facet})
}
