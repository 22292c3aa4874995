package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/c360studio/caseforge/graph"
	"github.com/c360studio/caseforge/identity"
	"github.com/c360studio/caseforge/mapper"
	"github.com/c360studio/caseforge/record"
	"github.com/c360studio/caseforge/vocabulary/uco"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/c360studio/caseforge/pipeline"

// DefaultBatchSize is the number of mapped records per flush when none is
// configured.
const DefaultBatchSize = 1000

// RecordSource yields raw records until io.EOF.
type RecordSource interface {
	Next() (record.Raw, error)
}

// Options configures a Driver.
type Options struct {
	// BatchSize is the number of mapped records per flush. Must be positive.
	BatchSize int

	// Mint supplies node identifiers. Defaults to random kb: identifiers.
	Mint identity.MintFunc

	Logger  *slog.Logger
	Metrics *Metrics

	// Tracer records one span per input and per flush. Defaults to the
	// global tracer provider.
	Tracer trace.Tracer
}

// Driver runs one conversion. Inputs are consumed in order into the same
// accumulator, so a batch may span two input files.
type Driver struct {
	mapper  mapper.Mapper
	acc     *graph.Accumulator
	sink    graph.Sink
	size    int
	mint    identity.MintFunc
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	summary Summary
	started time.Time
}

// NewDriver creates a driver writing to sink.
func NewDriver(m mapper.Mapper, acc *graph.Accumulator, sink graph.Sink, opts Options) (*Driver, error) {
	if m == nil {
		return nil, errors.New("mapper is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if acc == nil {
		acc = graph.NewAccumulator()
	}
	if opts.Mint == nil {
		opts.Mint = identity.NewMinter(uco.DefaultKBPrefix)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}

	return &Driver{
		mapper:  m,
		acc:     acc,
		sink:    sink,
		size:    opts.BatchSize,
		mint:    opts.Mint,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
		started: time.Now(),
	}, nil
}

// Consume reads src to exhaustion. It returns nil at end of stream, a
// *record.StreamCorruptError if the input breaks, a sink error if a flush
// fails, or the context error if ctx is canceled between records. Records
// still accumulated on return are written by Finish.
func (d *Driver) Consume(ctx context.Context, input string, src RecordSource) (err error) {
	d.summary.Inputs++
	logger := d.logger.With("input", input)

	ctx, span := d.tracer.Start(ctx, "pipeline.consume",
		trace.WithAttributes(attribute.String("caseforge.input", input)))
	defer func() {
		endSpan(span, err)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			logger.Debug("Input exhausted", "records", d.summary.Read)
			return nil
		}
		if err != nil {
			if record.IsRecoverable(err) {
				d.summary.Read++
				d.reject(logger, err)
				continue
			}
			logger.Error("Input stream failed", "error", err)
			return err
		}
		d.summary.Read++

		nodes, err := d.mapper.Map(raw, d.mint)
		if err != nil {
			d.reject(logger, err)
			continue
		}

		d.acc.Add(nodes)
		d.summary.Mapped++
		d.metrics.recordMapped()

		if d.acc.Size() >= d.size {
			if err := d.flush(ctx); err != nil {
				return err
			}
		}
	}
}

// Finish flushes whatever is still accumulated. It runs even when ctx has
// been canceled so that no mapped record is dropped.
func (d *Driver) Finish(ctx context.Context) error {
	return d.flush(context.WithoutCancel(ctx))
}

// Summary returns the run counters so far.
func (d *Driver) Summary() Summary {
	s := d.summary
	s.Elapsed = time.Since(d.started)
	return s
}

func (d *Driver) flush(ctx context.Context) (err error) {
	if d.acc.Size() == 0 {
		return nil
	}

	ctx, span := d.tracer.Start(ctx, "pipeline.flush")
	defer func() {
		endSpan(span, err)
	}()

	batch, err := d.acc.Flush(ctx, d.sink)
	span.SetAttributes(
		attribute.Int("caseforge.batch", batch.Seq),
		attribute.Int("caseforge.records", batch.Records))
	if err != nil {
		d.logger.Error("Flush failed", "batch", batch.Seq, "records", batch.Records, "error", err)
		return err
	}

	nodes := batch.NodeCount()
	d.summary.Flushes++
	d.summary.Nodes += nodes
	d.metrics.recordFlush(batch.Records, nodes)

	d.logger.Info("Flushed batch",
		"batch", batch.Seq,
		"records", batch.Records,
		"nodes", nodes)
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (d *Driver) reject(logger *slog.Logger, err error) {
	d.summary.Skipped++

	var missing *record.MissingFieldError
	var malformed *record.MalformedValueError
	switch {
	case errors.As(err, &missing):
		d.summary.MissingField++
		d.metrics.recordRejected(outcomeMissingField)
		logger.Warn("Skipping record", "index", missing.Index, "field", missing.Field, "error", err)
	case errors.As(err, &malformed):
		d.summary.MalformedValue++
		d.metrics.recordRejected(outcomeMalformedValue)
		logger.Warn("Skipping record", "index", malformed.Index, "field", malformed.Field, "error", err)
	default:
		d.metrics.recordRejected(outcomeOther)
		logger.Warn("Skipping record", "error", err)
	}
}

// Run converts a single source: it consumes src and then performs the final
// flush, including after a corrupt stream. The returned error is the first
// fatal error, joined with a failed final flush if both occur.
func Run(ctx context.Context, src RecordSource, m mapper.Mapper, acc *graph.Accumulator, sink graph.Sink, opts Options) (Summary, error) {
	d, err := NewDriver(m, acc, sink, opts)
	if err != nil {
		return Summary{}, err
	}

	err = d.Consume(ctx, "", src)
	if !Flushable(err) {
		return d.Summary(), err
	}
	if ferr := d.Finish(ctx); ferr != nil {
		return d.Summary(), errors.Join(err, ferr)
	}
	return d.Summary(), err
}

// Flushable reports whether records still accumulated should be written
// after Consume returned err. A failed sink is not retried.
func Flushable(err error) bool {
	return err == nil ||
		record.IsStreamCorrupt(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
