package stream

import (
	"context"
	"testing"
	"time"
)

func TestMemorySourcePollTimeoutIsNotAnError(t *testing.T) {
	source := NewMemorySource(4)
	defer source.Close()

	_, ok, err := source.Poll(context.Background(), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if ok {
		t.Fatal("Poll() ok = true on empty source")
	}
}

func TestMemorySourceOffsetsPerPartition(t *testing.T) {
	source := NewMemorySource(4)
	defer source.Close()

	if offset := source.Push(0, []byte("a")); offset != 0 {
		t.Fatalf("first offset on partition 0 = %d, want 0", offset)
	}
	if offset := source.Push(0, []byte("b")); offset != 1 {
		t.Fatalf("second offset on partition 0 = %d, want 1", offset)
	}
	if offset := source.Push(1, []byte("c")); offset != 0 {
		t.Fatalf("first offset on partition 1 = %d, want 0", offset)
	}
}

func TestMemorySourcePollAckRedeliver(t *testing.T) {
	source := NewMemorySource(4)
	defer source.Close()
	ctx := context.Background()

	source.Push(0, []byte("a"))

	msg, ok, err := source.Poll(ctx, time.Second)
	if err != nil || !ok {
		t.Fatalf("Poll() = %v/%v", ok, err)
	}
	if string(msg.Payload) != "a" {
		t.Fatalf("payload = %q", msg.Payload)
	}

	if _, acked := source.AckedOffset(0); acked {
		t.Fatal("offset acked before Ack")
	}

	if err := source.Ack(ctx, msg); err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
	if acked, ok := source.AckedOffset(0); !ok || acked != 0 {
		t.Fatalf("acked = %d/%v, want 0/true", acked, ok)
	}

	source.Redeliver(msg)
	again, ok, err := source.Poll(ctx, time.Second)
	if err != nil || !ok {
		t.Fatalf("Poll() after redeliver = %v/%v", ok, err)
	}
	if again.Offset != msg.Offset || again.Partition != msg.Partition {
		t.Fatalf("redelivered message = %+v, want %+v", again, msg)
	}
}

func TestMemorySourcePollHonorsContext(t *testing.T) {
	source := NewMemorySource(4)
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := source.Poll(ctx, time.Second); err == nil {
		t.Fatal("Poll() expected error for canceled context")
	}
}
