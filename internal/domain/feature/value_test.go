package feature

import "testing"

func TestDefaultValuePolicy(t *testing.T) {
	policy := DefaultValuePolicy()

	want := map[EventType]float64{
		EventView:      1.0,
		EventClick:     0.8,
		EventAddToCart: 0.5,
		EventPurchase:  0.2,
	}
	for eventType, weight := range want {
		if got := policy.Value(eventType); got != weight {
			t.Fatalf("Value(%s) = %v, want %v", eventType, got, weight)
		}
	}
}

func TestValuePolicyFromConfig(t *testing.T) {
	policy := ValuePolicyFromConfig(map[string]float64{
		"purchase": 5.0,
		"bogus":    9.9,
	})

	if got := policy.Value(EventPurchase); got != 5.0 {
		t.Fatalf("Value(purchase) = %v, want 5.0", got)
	}
	// Untouched types keep defaults; unknown names are ignored.
	if got := policy.Value(EventView); got != 1.0 {
		t.Fatalf("Value(view) = %v, want 1.0", got)
	}
}

func TestValuePolicyUnknownType(t *testing.T) {
	if got := DefaultValuePolicy().Value(EventType("bogus")); got != 0 {
		t.Fatalf("Value(bogus) = %v, want 0", got)
	}
}
