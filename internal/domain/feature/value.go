package feature

// ValuePolicy assigns the event_value weight written to the event log for
// each event type. Downstream consumers read it as a proxy signal strength.
type ValuePolicy map[EventType]float64

// DefaultValuePolicy mirrors the upstream producer's mapping as-is. It
// weighs views above purchases; whether that inversion is intentional is an
// upstream question, so the mapping stays a policy knob instead of a fix.
func DefaultValuePolicy() ValuePolicy {
	return ValuePolicy{
		EventView:      1.0,
		EventClick:     0.8,
		EventAddToCart: 0.5,
		EventPurchase:  0.2,
	}
}

// ValuePolicyFromConfig builds a policy from raw config keys, falling back
// to the default weight for any type the config leaves out.
func ValuePolicyFromConfig(raw map[string]float64) ValuePolicy {
	policy := DefaultValuePolicy()
	for name, weight := range raw {
		if t, err := ParseEventType(name); err == nil {
			policy[t] = weight
		}
	}
	return policy
}

// Value returns the weight for an event type, zero for anything outside the
// vocabulary.
func (p ValuePolicy) Value(t EventType) float64 {
	return p[t]
}
