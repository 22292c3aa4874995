// Package uco provides the CASE/UCO vocabulary used by the caseforge graph
// builder.
//
// The package is a static term dictionary. It holds the ontology namespaces,
// the compact class and predicate terms emitted into JSON-LD documents, the
// JSON-LD @context that binds the compact prefixes, and the controlled
// vocabulary values (hash method names, endianness, relationship kinds).
//
// # Semstreams Integration
//
// This package follows semstreams vocabulary patterns:
//   - Predicates use three-level dotted notation (uco.category.property)
//   - Predicates are registered in init() using vocabulary.Register()
//   - IRI mappings use vocabulary.WithIRI() for RDF export compatibility
//
// # Compact Terms
//
// Graph nodes carry compact IRIs such as "uco-observable:fileName". Use
// Expand to obtain the absolute IRI and PredicateKey to obtain the dotted
// registry key:
//
//	uco.Expand(uco.FileName)       // https://ontology.unifiedcyberontology.org/uco/observable/fileName
//	uco.PredicateKey(uco.FileName) // uco.observable.fileName
package uco
