package ports

import (
	"context"
	"time"
)

// SourceMessage is one raw payload pulled from the stream, tagged with its
// per-partition position for the idempotency check.
type SourceMessage struct {
	Payload   []byte
	Partition int
	Offset    int64
}

// EventSource abstracts the pull-based queue consumer.
//
// Poll blocks for at most timeout; ok=false with a nil error means the
// timeout elapsed with nothing to read, which is not a failure. A non-nil
// error is a transport error: recoverable, the caller logs and re-polls.
//
// Ack advances the underlying read cursor past msg. Callers ack only after
// the message's effect is durably committed (or deliberately skipped), so
// unacked messages may be redelivered; the ingest loop's watermark check
// absorbs those redeliveries.
type EventSource interface {
	Poll(ctx context.Context, timeout time.Duration) (msg SourceMessage, ok bool, err error)
	Ack(ctx context.Context, msg SourceMessage) error
	Close() error
}
