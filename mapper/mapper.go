// Package mapper maps flat input records onto CASE/UCO graph nodes.
//
// Mapping is a pure function of the record and the identifier supplier:
// the only side effect is minting. A record that fails to decode produces
// no nodes at all.
package mapper

import (
	"fmt"

	"github.com/c360studio/caseforge/graph"
	"github.com/c360studio/caseforge/identity"
	"github.com/c360studio/caseforge/record"
	"github.com/c360studio/caseforge/vocabulary/uco"
)

// Mapper converts one raw input element into graph nodes.
type Mapper interface {
	Map(raw record.Raw, mint identity.MintFunc) ([]*graph.Node, error)
}

// Options configures the mapper selected for a run.
type Options struct {
	// ContainerID, when set in file mode, links every File observable to
	// this observable with an ObservableRelationship.
	ContainerID string
	// RelationshipKind overrides the kind used for container links.
	RelationshipKind string
	// RangeOffset and RangeSize populate the DataRangeFacet of container
	// links.
	RangeOffset int64
	RangeSize   int64
}

// New returns the mapper for mode.
func New(mode record.Mode, opts Options) (Mapper, error) {
	switch mode {
	case record.ModeFile:
		return &FileMapper{
			ContainerID:      opts.ContainerID,
			RelationshipKind: opts.RelationshipKind,
			RangeOffset:      opts.RangeOffset,
			RangeSize:        opts.RangeSize,
		}, nil
	case record.ModeEmail:
		return &EmailMapper{}, nil
	default:
		return nil, fmt.Errorf("unsupported mode: %s", mode)
	}
}

// FileMapper maps filesystem entry records.
type FileMapper struct {
	ContainerID      string
	RelationshipKind string
	RangeOffset      int64
	RangeSize        int64
}

// Map implements Mapper.
func (m *FileMapper) Map(raw record.Raw, mint identity.MintFunc) ([]*graph.Node, error) {
	rec, err := record.DecodeFile(raw)
	if err != nil {
		return nil, err
	}
	file := MapFile(rec, mint)
	if m.ContainerID == "" {
		return []*graph.Node{file}, nil
	}

	spec := NewRelationshipSpec(file.ID, m.ContainerID)
	if m.RelationshipKind != "" {
		spec.Kind = m.RelationshipKind
	}
	spec.RangeOffset = m.RangeOffset
	spec.RangeSize = m.RangeSize
	return []*graph.Node{file, NewRelationship(spec, mint)}, nil
}

// EmailMapper maps email observable records.
type EmailMapper struct{}

// Map implements Mapper.
func (m *EmailMapper) Map(raw record.Raw, mint identity.MintFunc) ([]*graph.Node, error) {
	rec, err := record.DecodeEmail(raw)
	if err != nil {
		return nil, err
	}
	return []*graph.Node{MapEmail(rec, mint)}, nil
}

// MapFile builds a File observable with one ContentDataFacet carrying the
// file attributes and one SHA256 Hash.
func MapFile(rec record.FileRecord, mint identity.MintFunc) *graph.Node {
	file := graph.NewNode(mint(identity.FileEntry), uco.ClassFile)
	facet := graph.NewNode(mint(identity.ContentDataFacet), uco.ClassContentDataFacet)
	hash := graph.NewNode(mint(identity.Hash), uco.ClassHash).
		Set(uco.HashMethod, graph.Literal{Value: uco.HashSHA256, Datatype: uco.TypeHashNameVocab}).
		Set(uco.HashValue, graph.Literal{Value: rec.ContentHash, Datatype: uco.TypeHexBinary})

	facet.
		Set(uco.FileName, graph.Literal{Value: rec.Filename}).
		Set(uco.FilePath, graph.Literal{Value: rec.Filepath}).
		Set(uco.SizeInBytes, graph.Literal{Value: rec.SizeInBytes}).
		Set(uco.ObservableCreatedTime, graph.Literal{Value: rec.WriteTime, Datatype: uco.TypeDateTime}).
		Set(uco.Hash, graph.Embedded{hash})

	return file.Set(uco.HasFacet, graph.Embedded{facet})
}

// MapEmail builds an EmailAddress observable with one ContentDataFacet
// carrying the payload and the hash given in the record.
func MapEmail(rec record.EmailRecord, mint identity.MintFunc) *graph.Node {
	email := graph.NewNode(mint(identity.EmailAddress), uco.ClassEmailAddress)
	facet := graph.NewNode(mint(identity.ContentDataFacet), uco.ClassContentDataFacet)
	hash := graph.NewNode(mint(identity.Hash), uco.ClassHash).
		Set(uco.HashMethod, graph.Literal{Value: rec.HashMethod, Datatype: uco.TypeHashNameVocab}).
		Set(uco.HashValue, graph.Literal{Value: rec.HashValue, Datatype: uco.TypeHexBinary})

	facet.
		Set(uco.ByteOrder, graph.Literal{Value: byteOrderVocab(rec.ByteOrder), Datatype: uco.TypeEndiannessVocab}).
		Set(uco.SizeInBytes, graph.Literal{Value: rec.SizeInBytes, Datatype: uco.TypeInteger}).
		Set(uco.DataPayload, graph.Literal{Value: rec.Email}).
		Set(uco.Hash, graph.Embedded{hash})

	return email.Set(uco.HasFacet, graph.Embedded{facet})
}

func byteOrderVocab(order record.ByteOrder) string {
	if order == record.LittleEndian {
		return uco.EndianLittle
	}
	return uco.EndianBig
}
