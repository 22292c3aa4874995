package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/caseforge/graph"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject flushed batches are published to.
const DefaultSubject = "case.graph.batch"

// Publisher is the subset of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

// NATSSink publishes each encoded batch as one NATS message.
type NATSSink struct {
	conn    Publisher
	subject string
	encoder Encoder
	timeout time.Duration
	logger  *slog.Logger
}

// NewNATSSink creates a sink publishing to subject on conn.
func NewNATSSink(conn Publisher, subject string, encoder Encoder, logger *slog.Logger) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSSink{
		conn:    conn,
		subject: subject,
		encoder: encoder,
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

// Append implements graph.Sink. The publish is flushed to the server before
// returning so a failed write surfaces on the batch that caused it.
func (s *NATSSink) Append(ctx context.Context, batch graph.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.encoder.Encode(batch)
	if err != nil {
		return &SinkWriteError{Sink: "nats", Batch: batch.Seq, Err: err}
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return &SinkWriteError{Sink: "nats", Batch: batch.Seq, Err: err}
	}
	if err := s.conn.FlushTimeout(s.timeout); err != nil {
		return &SinkWriteError{Sink: "nats", Batch: batch.Seq, Err: err}
	}

	s.logger.Debug("Published batch",
		"subject", s.subject,
		"batch", batch.Seq,
		"bytes", len(data))
	return nil
}

// ConnectNATS opens a NATS connection for the batch sink.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.Timeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("NATS connection failed: %w", err)
	}
	return conn, nil
}
