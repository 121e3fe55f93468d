package ports

import (
	"context"
	"errors"
)

var ErrFeatureNotFound = errors.New("user feature not found")

// UserFeature is one materialized aggregate row, keyed by UserID.
// Timestamps travel as RFC3339Nano UTC strings at this boundary.
type UserFeature struct {
	UserID         uint64
	LastEventTS    string
	EventCount     uint64
	AddToCartCount uint64
	PurchaseCount  uint64
}

// EventLogEntry is one applied event as persisted in the append-only log.
// EventID is assigned by the store at append time and never reused.
type EventLogEntry struct {
	EventID    uint64
	UserID     uint64
	ItemID     *int64
	EventType  string
	EventValue float64
	EventTS    string
}

// EventLogAppend is the input for one log append; EventID is store-assigned.
type EventLogAppend struct {
	UserID     uint64
	ItemID     *int64
	EventType  string
	EventValue float64
	EventTS    string
}

type FeatureReadRepository interface {
	GetFeature(ctx context.Context, userID uint64) (UserFeature, error)
	ListFeatures(ctx context.Context, limit int) ([]UserFeature, error)
	ListRecentEvents(ctx context.Context, n int) ([]EventLogEntry, error)
}

// FeatureRepository is the ingest-side store surface. Mutations called
// inside a UnitOfWork transaction share its atomicity; the ingest loop
// relies on that for the paired upsert + append + watermark advance.
type FeatureRepository interface {
	FeatureReadRepository
	UpsertFeature(ctx context.Context, row UserFeature) error
	AppendEvent(ctx context.Context, input EventLogAppend) error
	GetWatermark(ctx context.Context, partition int) (offset int64, found bool, err error)
	SetWatermark(ctx context.Context, partition int, offset int64) error
}
