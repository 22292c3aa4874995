package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	batches []Batch
	err     error
}

func (s *recordingSink) Append(_ context.Context, batch Batch) error {
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, batch)
	return nil
}

func TestAccumulator_Flush(t *testing.T) {
	ctx := context.Background()
	acc := NewAccumulator()
	sink := &recordingSink{}

	acc.Add([]*Node{sampleFile()})
	acc.Add([]*Node{sampleFile(), NewNode("kb:relationship-9", "")})
	assert.Equal(t, 2, acc.Size())

	batch, err := acc.Flush(ctx, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Seq)
	assert.Equal(t, 2, batch.Records)
	assert.Len(t, batch.Nodes, 3)
	assert.Equal(t, 7, batch.NodeCount())

	assert.Equal(t, 0, acc.Size())
	assert.Equal(t, 1, acc.Flushes())
	require.Len(t, sink.batches, 1)

	acc.Add([]*Node{sampleFile()})
	batch, err = acc.Flush(ctx, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Seq)
}

func TestAccumulator_EmptyFlushIsNoop(t *testing.T) {
	acc := NewAccumulator()
	sink := &recordingSink{}

	batch, err := acc.Flush(context.Background(), sink)
	require.NoError(t, err)
	assert.Zero(t, batch.Seq)
	assert.Empty(t, sink.batches)
	assert.Zero(t, acc.Flushes())
}

func TestAccumulator_SinkErrorKeepsBatch(t *testing.T) {
	acc := NewAccumulator()
	sink := &recordingSink{err: errors.New("disk full")}

	acc.Add([]*Node{sampleFile()})
	_, err := acc.Flush(context.Background(), sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, sink.err)
	assert.Equal(t, 1, acc.Size())
	assert.Zero(t, acc.Flushes())
}
