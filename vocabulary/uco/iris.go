package uco

import "strings"

// Ontology namespaces.
const (
	CoreNamespace       = "https://ontology.unifiedcyberontology.org/uco/core/"
	IdentityNamespace   = "https://ontology.unifiedcyberontology.org/uco/identity/"
	ObservableNamespace = "https://ontology.unifiedcyberontology.org/uco/observable/"
	TypesNamespace      = "https://ontology.unifiedcyberontology.org/uco/types/"
	VocabularyNamespace = "https://ontology.unifiedcyberontology.org/uco/vocabulary/"
	XSDNamespace        = "http://www.w3.org/2001/XMLSchema#"
	RDFNamespace        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// DefaultKBNamespace is the knowledge-base namespace for minted node IRIs.
	DefaultKBNamespace = "http://example.org/kb/"

	// DefaultKBPrefix is the compact prefix bound to the knowledge-base namespace.
	DefaultKBPrefix = "kb"

	// LocalVocab is the @vocab fallback for terms without a prefix.
	LocalVocab = "http://example.org/local#"

	// RDFType is the absolute rdf:type predicate.
	RDFType = RDFNamespace + "type"
)

// Compact prefixes.
const (
	PrefixCore       = "uco-core"
	PrefixIdentity   = "uco-identity"
	PrefixObservable = "uco-observable"
	PrefixTypes      = "uco-types"
	PrefixVocabulary = "uco-vocabulary"
	PrefixXSD        = "xsd"
)

// Class terms.
const (
	ClassFile                   = "uco-observable:File"
	ClassEmailAddress           = "uco-observable:EmailAddress"
	ClassContentDataFacet       = "uco-observable:ContentDataFacet"
	ClassObservableRelationship = "uco-observable:ObservableRelationship"
	ClassDataRangeFacet         = "uco-observable:DataRangeFacet"
	ClassHash                   = "uco-types:Hash"
)

// Literal datatypes.
const (
	TypeDateTime        = "xsd:dateTime"
	TypeHexBinary       = "xsd:hexBinary"
	TypeInteger         = "xsd:integer"
	TypeBoolean         = "xsd:boolean"
	TypeHashNameVocab   = "uco-vocabulary:HashNameVocab"
	TypeEndiannessVocab = "uco-vocabulary:EndiannessTypeVocab"
)

// Controlled vocabulary values.
const (
	HashSHA256 = "SHA256"

	EndianBig    = "Big-endian"
	EndianLittle = "Little-endian"

	// RelationshipContainedWithin is the default kindOfRelationship.
	RelationshipContainedWithin = "Contained_Within"
)

// Prefixes returns the compact prefix bindings for a knowledge-base prefix
// and namespace.
func Prefixes(kbPrefix, kbNamespace string) map[string]string {
	if kbPrefix == "" {
		kbPrefix = DefaultKBPrefix
	}
	if kbNamespace == "" {
		kbNamespace = DefaultKBNamespace
	}
	return map[string]string{
		kbPrefix:         kbNamespace,
		PrefixCore:       CoreNamespace,
		PrefixIdentity:   IdentityNamespace,
		PrefixObservable: ObservableNamespace,
		PrefixTypes:      TypesNamespace,
		PrefixVocabulary: VocabularyNamespace,
		PrefixXSD:        XSDNamespace,
	}
}

// Context returns the JSON-LD @context for documents produced with the given
// knowledge-base prefix and namespace.
func Context(kbPrefix, kbNamespace string) map[string]any {
	ctx := map[string]any{"@vocab": LocalVocab}
	for k, v := range Prefixes(kbPrefix, kbNamespace) {
		ctx[k] = v
	}
	return ctx
}

// ExpandWith resolves a compact IRI against the given prefix bindings.
// Absolute IRIs and unknown prefixes are returned unchanged.
func ExpandWith(prefixes map[string]string, term string) string {
	prefix, local, ok := strings.Cut(term, ":")
	if !ok || strings.HasPrefix(local, "//") {
		return term
	}
	if ns, found := prefixes[prefix]; found {
		return ns + local
	}
	return term
}

// Expand resolves a compact IRI against the default prefix bindings.
func Expand(term string) string {
	return ExpandWith(defaultPrefixes, term)
}

var defaultPrefixes = Prefixes(DefaultKBPrefix, DefaultKBNamespace)
