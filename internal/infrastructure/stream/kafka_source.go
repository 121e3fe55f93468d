package stream

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Savit10/streamsense/internal/bootstrap/config"
	"github.com/Savit10/streamsense/internal/errs"
	"github.com/Savit10/streamsense/internal/ports"
)

// KafkaSource adapts a kafka-go consumer-group reader to ports.EventSource.
// Offsets are committed explicitly in Ack, never auto-committed, so the
// group cursor only moves past messages whose effect is already durable.
type KafkaSource struct {
	reader *kafka.Reader
	topic  string
}

var _ ports.EventSource = (*KafkaSource)(nil)

func NewKafkaSource(cfg config.KafkaConfig) *KafkaSource {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  250 * time.Millisecond,
		// CommitInterval zero keeps CommitMessages synchronous.
	})

	return &KafkaSource{
		reader: reader,
		topic:  cfg.Topic,
	}
}

func (s *KafkaSource) Poll(ctx context.Context, timeout time.Duration) (ports.SourceMessage, bool, error) {
	if ctx == nil {
		return ports.SourceMessage{}, false, errors.New("context is required")
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := s.reader.FetchMessage(pollCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			// Quiet interval, not a failure.
			return ports.SourceMessage{}, false, nil
		}
		if ctx.Err() != nil {
			return ports.SourceMessage{}, false, ctx.Err()
		}
		return ports.SourceMessage{}, false, errs.Wrap(err, "fetch message")
	}

	return ports.SourceMessage{
		Payload:   msg.Value,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}, true, nil
}

func (s *KafkaSource) Ack(ctx context.Context, msg ports.SourceMessage) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	// CommitMessages only reads topic/partition/offset from the message.
	err := s.reader.CommitMessages(ctx, kafka.Message{
		Topic:     s.topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	})
	if err != nil {
		return errs.Wrap(err, "commit message offset")
	}
	return nil
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
