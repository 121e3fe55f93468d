package query

import (
	"context"
	"errors"

	"github.com/Savit10/streamsense/internal/ports"
)

// SampleLimit caps the sample_users listing.
const SampleLimit = 10

// FeatureView is the read-model shape served to external callers.
type FeatureView struct {
	UserID         uint64 `json:"user_id"`
	LastEventTS    string `json:"last_event_ts"`
	EventCount     uint64 `json:"event_count"`
	AddToCartCount uint64 `json:"add_to_cart_count"`
	PurchaseCount  uint64 `json:"purchase_count"`
}

type EventView struct {
	EventID    uint64  `json:"event_id"`
	UserID     uint64  `json:"user_id"`
	ItemID     *int64  `json:"item_id"`
	EventType  string  `json:"event_type"`
	EventValue float64 `json:"event_value"`
	EventTS    string  `json:"event_ts"`
}

// Service is the read-only surface over the store. It never mutates and
// only ever observes committed rows; the ingest loop is free to keep
// writing underneath it.
type Service struct {
	repo  ports.FeatureReadRepository
	cache ports.Cache
}

func NewService(repo ports.FeatureReadRepository, cache ports.Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// GetFeature returns the user's aggregate. An unknown user is a typed
// not-found result (found=false), never an error.
func (s *Service) GetFeature(ctx context.Context, userID uint64) (FeatureView, bool, error) {
	if ctx == nil {
		return FeatureView{}, false, errors.New("context is required")
	}

	row, err := s.repo.GetFeature(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrFeatureNotFound) {
			return FeatureView{}, false, nil
		}
		return FeatureView{}, false, err
	}

	return mapFeature(row), true, nil
}

// ListSample returns up to limit feature rows in storage order. The order
// carries no contract beyond "some subset".
func (s *Service) ListSample(ctx context.Context, limit int) ([]FeatureView, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if limit <= 0 || limit > SampleLimit {
		limit = SampleLimit
	}

	rows, err := s.repo.ListFeatures(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]FeatureView, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapFeature(row))
	}
	return items, nil
}

// ListRecentEvents returns the n newest log entries, newest first.
// event_id is assigned monotonically at append time, so descending id
// stands in for recency.
func (s *Service) ListRecentEvents(ctx context.Context, n int) ([]EventView, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if n <= 0 {
		return []EventView{}, nil
	}

	rows, err := s.repo.ListRecentEvents(ctx, n)
	if err != nil {
		return nil, err
	}

	items := make([]EventView, 0, len(rows))
	for _, row := range rows {
		items = append(items, EventView{
			EventID:    row.EventID,
			UserID:     row.UserID,
			ItemID:     row.ItemID,
			EventType:  row.EventType,
			EventValue: row.EventValue,
			EventTS:    row.EventTS,
		})
	}
	return items, nil
}

// StatsSnapshot returns the last persisted ingest counter snapshot as raw
// JSON, or found=false when the loop has not written one yet.
func (s *Service) StatsSnapshot(ctx context.Context, statsKey string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if s.cache == nil {
		return "", false, nil
	}
	return s.cache.Get(ctx, statsKey)
}

func mapFeature(row ports.UserFeature) FeatureView {
	return FeatureView{
		UserID:         row.UserID,
		LastEventTS:    row.LastEventTS,
		EventCount:     row.EventCount,
		AddToCartCount: row.AddToCartCount,
		PurchaseCount:  row.PurchaseCount,
	}
}
