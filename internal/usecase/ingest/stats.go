package ingest

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/Savit10/streamsense/internal/ports"
)

// StatsKey is the cache key the loop snapshots its counters under.
const StatsKey = "ingest.stats"

// Stats tracks loop counters. Safe for concurrent reads while the loop runs.
type Stats struct {
	applied         atomic.Uint64
	duplicates      atomic.Uint64
	parseFailures   atomic.Uint64
	commitFailures  atomic.Uint64
	transportErrors atomic.Uint64
}

type StatsSnapshot struct {
	Applied         uint64 `json:"applied"`
	Duplicates      uint64 `json:"duplicates"`
	ParseFailures   uint64 `json:"parse_failures"`
	CommitFailures  uint64 `json:"commit_failures"`
	TransportErrors uint64 `json:"transport_errors"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Applied:         s.applied.Load(),
		Duplicates:      s.duplicates.Load(),
		ParseFailures:   s.parseFailures.Load(),
		CommitFailures:  s.commitFailures.Load(),
		TransportErrors: s.transportErrors.Load(),
	}
}

// persist writes the snapshot to the KV cache. Best effort: a failed write
// never disturbs the ingest path.
func (s *Stats) persist(ctx context.Context, cache ports.Cache) {
	if cache == nil {
		return
	}

	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		return
	}
	_ = cache.Set(ctx, StatsKey, string(raw), 0)
}
