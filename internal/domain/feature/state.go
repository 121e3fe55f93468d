package feature

import "time"

// State is the materialized per-user aggregate. Counters only ever grow.
type State struct {
	LastEventTS    time.Time
	EventCount     uint64
	AddToCartCount uint64
	PurchaseCount  uint64
}

// Apply folds one event into the prior aggregate and returns the next one.
// A nil prior means this is the user's first event. Pure: no I/O, no clock.
//
// LastEventTS keeps max-seen semantics rather than arrival order, so an
// older event redelivered from a lagging partition cannot move it backwards.
func Apply(prior *State, ev Event) State {
	next := State{
		EventCount:  1,
		LastEventTS: ev.Timestamp,
	}
	if prior != nil {
		next = *prior
		next.EventCount++
		if ev.Timestamp.After(prior.LastEventTS) {
			next.LastEventTS = ev.Timestamp
		}
	}

	switch ev.Type {
	case EventAddToCart:
		next.AddToCartCount++
	case EventPurchase:
		next.PurchaseCount++
	}

	return next
}
