package graph

import (
	"context"
	"fmt"
)

// Batch is the unit handed to a Sink: everything accumulated between two
// flushes.
type Batch struct {
	// Seq numbers flushes from 1 within a run.
	Seq int
	// Records is the number of mapped records in the batch.
	Records int
	// Nodes holds the top-level nodes in the order they were added.
	Nodes []*Node
}

// NodeCount returns the number of nodes in the batch, embedded nodes included.
func (b Batch) NodeCount() int {
	count := 0
	for _, n := range b.Nodes {
		count += n.Count()
	}
	return count
}

// Sink is the durable serialization target for flushed batches. Append
// writes one batch as an independently parseable unit.
type Sink interface {
	Append(ctx context.Context, batch Batch) error
}

// Accumulator holds the nodes mapped since the last flush. It is not safe
// for concurrent use.
type Accumulator struct {
	nodes   []*Node
	records int
	flushes int
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends the nodes produced by one mapped record.
func (a *Accumulator) Add(nodes []*Node) {
	a.nodes = append(a.nodes, nodes...)
	a.records++
}

// Size returns the number of records accumulated since the last flush.
func (a *Accumulator) Size() int {
	return a.records
}

// Flushes returns the number of successful flushes.
func (a *Accumulator) Flushes() int {
	return a.flushes
}

// Flush writes the current batch to sink and clears it. An empty batch is
// not written. On a sink error the batch is kept and the error returned.
func (a *Accumulator) Flush(ctx context.Context, sink Sink) (Batch, error) {
	if a.records == 0 && len(a.nodes) == 0 {
		return Batch{}, nil
	}

	batch := Batch{
		Seq:     a.flushes + 1,
		Records: a.records,
		Nodes:   a.nodes,
	}
	if err := sink.Append(ctx, batch); err != nil {
		return batch, fmt.Errorf("flush batch %d: %w", batch.Seq, err)
	}

	a.flushes++
	a.nodes = nil
	a.records = 0
	return batch, nil
}
