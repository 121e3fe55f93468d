package feature

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func TestApplyFirstEvent(t *testing.T) {
	ts := mustTime(t, "2026-08-01T10:00:00Z")

	next := Apply(nil, Event{UserID: 1, Type: EventView, Timestamp: ts})

	if next.EventCount != 1 {
		t.Fatalf("EventCount = %d, want 1", next.EventCount)
	}
	if next.AddToCartCount != 0 || next.PurchaseCount != 0 {
		t.Fatalf("counters = %d/%d, want 0/0", next.AddToCartCount, next.PurchaseCount)
	}
	if !next.LastEventTS.Equal(ts) {
		t.Fatalf("LastEventTS = %v, want %v", next.LastEventTS, ts)
	}
}

func TestApplyFirstEventCountsType(t *testing.T) {
	ts := mustTime(t, "2026-08-01T10:00:00Z")

	cart := Apply(nil, Event{UserID: 1, Type: EventAddToCart, Timestamp: ts})
	if cart.AddToCartCount != 1 || cart.PurchaseCount != 0 {
		t.Fatalf("add_to_cart counters = %d/%d, want 1/0", cart.AddToCartCount, cart.PurchaseCount)
	}

	purchase := Apply(nil, Event{UserID: 1, Type: EventPurchase, Timestamp: ts})
	if purchase.AddToCartCount != 0 || purchase.PurchaseCount != 1 {
		t.Fatalf("purchase counters = %d/%d, want 0/1", purchase.AddToCartCount, purchase.PurchaseCount)
	}
}

func TestApplyIncrementsPrior(t *testing.T) {
	t0 := mustTime(t, "2026-08-01T10:00:00Z")
	t1 := mustTime(t, "2026-08-01T10:05:00Z")

	prior := State{EventCount: 3, AddToCartCount: 1, PurchaseCount: 0, LastEventTS: t0}
	next := Apply(&prior, Event{UserID: 1, Type: EventPurchase, Timestamp: t1})

	if next.EventCount != 4 {
		t.Fatalf("EventCount = %d, want 4", next.EventCount)
	}
	if next.AddToCartCount != 1 {
		t.Fatalf("AddToCartCount = %d, want 1", next.AddToCartCount)
	}
	if next.PurchaseCount != 1 {
		t.Fatalf("PurchaseCount = %d, want 1", next.PurchaseCount)
	}
	if !next.LastEventTS.Equal(t1) {
		t.Fatalf("LastEventTS = %v, want %v", next.LastEventTS, t1)
	}
}

func TestApplyKeepsMaxTimestamp(t *testing.T) {
	t0 := mustTime(t, "2026-08-01T10:05:00Z")
	older := mustTime(t, "2026-08-01T10:00:00Z")

	prior := State{EventCount: 1, LastEventTS: t0}
	next := Apply(&prior, Event{UserID: 1, Type: EventClick, Timestamp: older})

	if !next.LastEventTS.Equal(t0) {
		t.Fatalf("LastEventTS moved backwards to %v", next.LastEventTS)
	}
	if next.EventCount != 2 {
		t.Fatalf("EventCount = %d, want 2", next.EventCount)
	}
}

func TestApplyDoesNotMutatePrior(t *testing.T) {
	ts := mustTime(t, "2026-08-01T10:00:00Z")
	prior := State{EventCount: 5, LastEventTS: ts}

	_ = Apply(&prior, Event{UserID: 1, Type: EventView, Timestamp: ts.Add(time.Minute)})

	if prior.EventCount != 5 || !prior.LastEventTS.Equal(ts) {
		t.Fatalf("prior mutated: %+v", prior)
	}
}

func TestParseEventType(t *testing.T) {
	for _, valid := range []string{"view", "click", "add_to_cart", "purchase"} {
		if _, err := ParseEventType(valid); err != nil {
			t.Fatalf("ParseEventType(%q) error = %v", valid, err)
		}
	}

	if _, err := ParseEventType("checkout"); err == nil {
		t.Fatal("ParseEventType(checkout) expected error")
	}
}
