package export

import (
	"errors"
	"fmt"
)

// SinkWriteError reports that a batch could not be written to durable
// output. It is fatal to the run.
type SinkWriteError struct {
	Sink  string
	Batch int
	Err   error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("%s sink: write batch %d: %v", e.Sink, e.Batch, e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

// IsSinkWriteFailure returns true if err is or wraps a SinkWriteError.
func IsSinkWriteFailure(err error) bool {
	var sinkErr *SinkWriteError
	return errors.As(err, &sinkErr)
}
