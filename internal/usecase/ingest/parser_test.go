package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/Savit10/streamsense/internal/domain/feature"
)

func TestParseCanonicalDialect(t *testing.T) {
	parser := NewParser(nil)

	event, err := parser.Parse([]byte(`{"user_id": 7, "timestamp": "2026-08-01T10:00:00Z", "item_id": 42, "event_type": "purchase"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if event.UserID != 7 {
		t.Fatalf("UserID = %d, want 7", event.UserID)
	}
	if event.Type != feature.EventPurchase {
		t.Fatalf("Type = %s, want purchase", event.Type)
	}
	if event.ItemID == nil || *event.ItemID != 42 {
		t.Fatalf("ItemID = %v, want 42", event.ItemID)
	}
	want := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if !event.Timestamp.Equal(want) {
		t.Fatalf("Timestamp = %v, want %v", event.Timestamp, want)
	}
}

func TestParseActionDialect(t *testing.T) {
	parser := NewParser(nil)

	event, err := parser.Parse([]byte(`{"user_id": 3, "timestamp": "2026-08-01T10:00:00.123456", "page": "/cart", "action": "add_to_cart"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if event.UserID != 3 {
		t.Fatalf("UserID = %d, want 3", event.UserID)
	}
	if event.Type != feature.EventAddToCart {
		t.Fatalf("Type = %s, want add_to_cart", event.Type)
	}
	if event.ItemID != nil {
		t.Fatalf("ItemID = %v, want nil for action dialect", event.ItemID)
	}
}

func TestParseItemIDOptional(t *testing.T) {
	parser := NewParser(nil)

	event, err := parser.Parse([]byte(`{"user_id": 1, "timestamp": "2026-08-01T10:00:00Z", "event_type": "view"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if event.ItemID != nil {
		t.Fatalf("ItemID = %v, want nil when omitted", event.ItemID)
	}
}

func TestParseErrors(t *testing.T) {
	parser := NewParser(nil)

	cases := []struct {
		name    string
		payload string
		want    error
	}{
		{"not json", `not-json`, ErrMalformedPayload},
		{"no dialect", `{"user_id": 1, "timestamp": "2026-08-01T10:00:00Z"}`, ErrInvalidEvent},
		{"unknown type", `{"user_id": 1, "timestamp": "2026-08-01T10:00:00Z", "event_type": "checkout"}`, ErrInvalidEvent},
		{"missing user", `{"timestamp": "2026-08-01T10:00:00Z", "event_type": "view"}`, ErrInvalidEvent},
		{"missing timestamp", `{"user_id": 1, "event_type": "view"}`, ErrInvalidEvent},
		{"bad timestamp", `{"user_id": 1, "timestamp": "yesterday", "event_type": "view"}`, ErrMalformedPayload},
		{"user wrong type", `{"user_id": "seven", "timestamp": "2026-08-01T10:00:00Z", "event_type": "view"}`, ErrMalformedPayload},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parser.Parse([]byte(tc.payload)); !errors.Is(err, tc.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseCustomDialect(t *testing.T) {
	parser := NewParser([]Dialect{{
		Name:      "alt",
		TypeField: "kind",
		UserField: "uid",
		TimeField: "at",
	}})

	event, err := parser.Parse([]byte(`{"uid": 9, "at": "2026-08-01T10:00:00Z", "kind": "click"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if event.UserID != 9 || event.Type != feature.EventClick {
		t.Fatalf("event = %+v", event)
	}
}

func TestLoadDialectsDefaults(t *testing.T) {
	dialects, err := LoadDialects("")
	if err != nil {
		t.Fatalf("LoadDialects() error = %v", err)
	}
	if len(dialects) != 2 {
		t.Fatalf("LoadDialects() len = %d, want 2", len(dialects))
	}
}
