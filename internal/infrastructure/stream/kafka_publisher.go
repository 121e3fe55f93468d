package stream

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Savit10/streamsense/internal/bootstrap/config"
	"github.com/Savit10/streamsense/internal/errs"
)

// KafkaPublisher writes synthetic event payloads to the stream. Keys are the
// user id, so one user's events land on one partition and arrive in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key []byte, payload []byte, headers map[string]string) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	msg := kafka.Message{
		Key:   key,
		Value: payload,
	}
	for name, value := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: name, Value: []byte(value)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Wrap(err, "write message")
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
