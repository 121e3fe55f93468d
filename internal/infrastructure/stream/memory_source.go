package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Savit10/streamsense/internal/ports"
)

// MemorySource is a channel-backed EventSource for tests and local runs
// without a broker. Offsets are assigned per partition at Push time.
type MemorySource struct {
	mu      sync.Mutex
	queue   chan ports.SourceMessage
	offsets map[int]int64
	acked   map[int]int64
	closed  bool
}

var _ ports.EventSource = (*MemorySource)(nil)

func NewMemorySource(buffer int) *MemorySource {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemorySource{
		queue:   make(chan ports.SourceMessage, buffer),
		offsets: make(map[int]int64),
		acked:   make(map[int]int64),
	}
}

// Push enqueues a payload on partition and returns its assigned offset.
func (s *MemorySource) Push(partition int, payload []byte) int64 {
	s.mu.Lock()
	offset := s.offsets[partition]
	s.offsets[partition] = offset + 1
	s.mu.Unlock()

	s.queue <- ports.SourceMessage{
		Payload:   payload,
		Partition: partition,
		Offset:    offset,
	}
	return offset
}

// Redeliver re-enqueues a message as the transport would after a missed ack.
func (s *MemorySource) Redeliver(msg ports.SourceMessage) {
	s.queue <- msg
}

func (s *MemorySource) Poll(ctx context.Context, timeout time.Duration) (ports.SourceMessage, bool, error) {
	if ctx == nil {
		return ports.SourceMessage{}, false, errors.New("context is required")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg, ok := <-s.queue:
		if !ok {
			return ports.SourceMessage{}, false, errors.New("source closed")
		}
		return msg, true, nil
	case <-timer.C:
		return ports.SourceMessage{}, false, nil
	case <-ctx.Done():
		return ports.SourceMessage{}, false, ctx.Err()
	}
}

func (s *MemorySource) Ack(_ context.Context, msg ports.SourceMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.acked[msg.Partition]; !ok || msg.Offset > current {
		s.acked[msg.Partition] = msg.Offset
	}
	return nil
}

// AckedOffset reports the highest acknowledged offset for a partition.
func (s *MemorySource) AckedOffset(partition int) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset, ok := s.acked[partition]
	return offset, ok
}

func (s *MemorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	return nil
}
