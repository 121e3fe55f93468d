package feature

import (
	"fmt"
	"time"
)

// EventType is the fixed interaction vocabulary consumed from the stream.
type EventType string

const (
	EventView      EventType = "view"
	EventClick     EventType = "click"
	EventAddToCart EventType = "add_to_cart"
	EventPurchase  EventType = "purchase"
)

// ParseEventType validates a raw type string against the vocabulary.
func ParseEventType(raw string) (EventType, error) {
	switch EventType(raw) {
	case EventView, EventClick, EventAddToCart, EventPurchase:
		return EventType(raw), nil
	default:
		return "", fmt.Errorf("unknown event type %q", raw)
	}
}

// Event is one normalized user interaction, immutable once parsed.
// Partition and Offset identify its position in the source stream; offsets
// are only comparable within one partition.
type Event struct {
	UserID    uint64
	ItemID    *int64
	Type      EventType
	Timestamp time.Time
	Partition int
	Offset    int64
}
