package uco

import (
	"strings"

	"github.com/c360studio/semstreams/vocabulary"
)

// Core predicates.
const (
	// HasFacet links an observable to each facet it owns.
	HasFacet = "uco-core:hasFacet"

	// Source is the origin observable of a relationship.
	Source = "uco-core:source"

	// Target is the destination observable of a relationship.
	Target = "uco-core:target"

	// KindOfRelationship names the relationship kind.
	KindOfRelationship = "uco-core:kindOfRelationship"

	// IsDirectional marks a relationship as directed.
	IsDirectional = "uco-core:isDirectional"
)

// Observable predicates.
const (
	FileName              = "uco-observable:fileName"
	FilePath              = "uco-observable:filePath"
	SizeInBytes           = "uco-observable:sizeInBytes"
	ObservableCreatedTime = "uco-observable:observableCreatedTime"
	Hash                  = "uco-observable:hash"
	ByteOrder             = "uco-observable:byteOrder"
	DataPayload           = "uco-observable:dataPayload"
	RangeOffset           = "uco-observable:rangeOffset"
	RangeSize             = "uco-observable:rangeSize"
)

// Types predicates.
const (
	HashMethod = "uco-types:hashMethod"
	HashValue  = "uco-types:hashValue"
)

// PredicateKey converts a compact predicate term into its dotted registry
// key, e.g. "uco-observable:fileName" becomes "uco.observable.fileName".
func PredicateKey(term string) string {
	prefix, local, ok := strings.Cut(term, ":")
	if !ok {
		return term
	}
	return strings.Replace(prefix, "-", ".", 1) + "." + local
}

// PredicateIRI returns the absolute IRI for a compact predicate term. The
// registered IRI wins; unregistered terms are expanded from their prefix.
func PredicateIRI(term string) string {
	if meta := vocabulary.GetPredicateMetadata(PredicateKey(term)); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	return Expand(term)
}

// Registry data types. PredicateDatatype maps them onto XSD terms.
const (
	dataTypeEntity   = "entity_id"
	dataTypeString   = "string"
	dataTypeInt      = "int"
	dataTypeBool     = "bool"
	dataTypeDateTime = "datetime"
)

var xsdByDataType = map[string]string{
	dataTypeInt:      TypeInteger,
	dataTypeBool:     TypeBoolean,
	dataTypeDateTime: TypeDateTime,
}

// PredicateDatatype returns the compact XSD datatype registered for a
// predicate, or "" for plain strings, references and unknown terms.
func PredicateDatatype(term string) string {
	meta := vocabulary.GetPredicateMetadata(PredicateKey(term))
	if meta == nil {
		return ""
	}
	return xsdByDataType[meta.DataType]
}

type predicateDef struct {
	term        string
	description string
	dataType    string
}

var predicateDefs = []predicateDef{
	{HasFacet, "Facet owned by an observable", dataTypeEntity},
	{Source, "Origin observable of a relationship", dataTypeEntity},
	{Target, "Destination observable of a relationship", dataTypeEntity},
	{KindOfRelationship, "Relationship kind", dataTypeString},
	{IsDirectional, "Whether the relationship is directed", dataTypeBool},
	{FileName, "Name of the file", dataTypeString},
	{FilePath, "Full path of the file", dataTypeString},
	{SizeInBytes, "Size of the content in bytes", dataTypeInt},
	{ObservableCreatedTime, "Creation or last write time of the observable", dataTypeDateTime},
	{Hash, "Hash of the content", dataTypeEntity},
	{ByteOrder, "Byte order of the content", dataTypeString},
	{DataPayload, "Raw content payload", dataTypeString},
	{RangeOffset, "Offset of the range within the target", dataTypeInt},
	{RangeSize, "Size of the range within the target", dataTypeInt},
	{HashMethod, "Hash algorithm name", dataTypeString},
	{HashValue, "Hash digest as hex", dataTypeString},
}

func init() {
	for _, def := range predicateDefs {
		vocabulary.Register(PredicateKey(def.term),
			vocabulary.WithDescription(def.description),
			vocabulary.WithDataType(def.dataType),
			vocabulary.WithIRI(Expand(def.term)))
	}
}
