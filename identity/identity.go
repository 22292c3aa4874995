// Package identity mints node identifiers for the CASE/UCO graph.
//
// Minting is a capability passed to the mapper at call time rather than a
// process-wide singleton, so tests can substitute deterministic identifiers.
package identity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Namespace segments prepended to minted identifiers.
const (
	FileEntry        = "file_entry"
	EmailAddress     = "email-address"
	ContentDataFacet = "content-data-facet"
	Hash             = "hash"
	Relationship     = "relationship"
	DataRangeFacet   = "data-range-facet"
)

// MintFunc returns a new identifier for the given namespace segment. A
// MintFunc never fails and never returns the same value twice in a run.
type MintFunc func(namespace string) string

// NewMinter returns a MintFunc producing compact IRIs of the form
// "<prefix>:<namespace>-<uuid>" from random 128-bit values.
func NewMinter(prefix string) MintFunc {
	return func(namespace string) string {
		return fmt.Sprintf("%s:%s-%s", prefix, namespace, uuid.New().String())
	}
}

// Sequence is a deterministic minter for tests. Identifiers are
// "<prefix>:<namespace>-<n>" with n counting from 1 across all namespaces.
type Sequence struct {
	prefix string
	mu     sync.Mutex
	n      int
}

// NewSequence creates a deterministic minter with the given compact prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Mint implements MintFunc.
func (s *Sequence) Mint(namespace string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s:%s-%d", s.prefix, namespace, s.n)
}

// Count reports how many identifiers have been minted.
func (s *Sequence) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
