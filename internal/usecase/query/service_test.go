package query

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Savit10/streamsense/internal/infrastructure/cache"
	"github.com/Savit10/streamsense/internal/infrastructure/persistence/sqlite/model"
	"github.com/Savit10/streamsense/internal/infrastructure/persistence/sqlite/repository"
	"github.com/Savit10/streamsense/internal/ports"
)

func setupQueryService(t *testing.T) (*Service, *repository.FeatureRepository, *cache.SQLiteCache) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "streamsense.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.UserFeature{}, &model.Event{}, &model.OffsetWatermark{}, &model.IngestKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewFeatureRepository(db)
	kv := cache.NewSQLiteCache(db)
	return NewService(repo, kv), repo, kv
}

func TestGetFeatureTypedNotFound(t *testing.T) {
	svc, _, _ := setupQueryService(t)

	_, found, err := svc.GetFeature(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetFeature() error = %v", err)
	}
	if found {
		t.Fatal("GetFeature() found = true for unknown user")
	}
}

func TestGetFeatureReturnsRow(t *testing.T) {
	svc, repo, _ := setupQueryService(t)
	ctx := context.Background()

	if err := repo.UpsertFeature(ctx, ports.UserFeature{
		UserID:         1,
		LastEventTS:    "2026-08-01T10:02:00Z",
		EventCount:     3,
		AddToCartCount: 1,
		PurchaseCount:  1,
	}); err != nil {
		t.Fatalf("UpsertFeature() error = %v", err)
	}

	view, found, err := svc.GetFeature(ctx, 1)
	if err != nil {
		t.Fatalf("GetFeature() error = %v", err)
	}
	if !found {
		t.Fatal("GetFeature() found = false")
	}
	if view.EventCount != 3 || view.AddToCartCount != 1 || view.PurchaseCount != 1 {
		t.Fatalf("view = %+v", view)
	}
}

func TestListSampleCapped(t *testing.T) {
	svc, repo, _ := setupQueryService(t)
	ctx := context.Background()

	for userID := uint64(1); userID <= 15; userID++ {
		if err := repo.UpsertFeature(ctx, ports.UserFeature{
			UserID:      userID,
			LastEventTS: "2026-08-01T10:00:00Z",
			EventCount:  1,
		}); err != nil {
			t.Fatalf("UpsertFeature(%d) error = %v", userID, err)
		}
	}

	items, err := svc.ListSample(ctx, 100)
	if err != nil {
		t.Fatalf("ListSample() error = %v", err)
	}
	if len(items) != SampleLimit {
		t.Fatalf("ListSample() len = %d, want %d", len(items), SampleLimit)
	}
}

func TestListRecentEventsNewestFirst(t *testing.T) {
	svc, repo, _ := setupQueryService(t)
	ctx := context.Background()

	for _, eventType := range []string{"view", "click", "purchase"} {
		if err := repo.AppendEvent(ctx, ports.EventLogAppend{
			UserID:     1,
			EventType:  eventType,
			EventValue: 1.0,
			EventTS:    "2026-08-01T10:00:00Z",
		}); err != nil {
			t.Fatalf("AppendEvent(%s) error = %v", eventType, err)
		}
	}

	items, err := svc.ListRecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentEvents() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListRecentEvents() len = %d, want 2", len(items))
	}
	if items[0].EventType != "purchase" {
		t.Fatalf("newest event = %s, want purchase", items[0].EventType)
	}
}

func TestStatsSnapshotMissing(t *testing.T) {
	svc, _, kv := setupQueryService(t)
	ctx := context.Background()

	if _, found, err := svc.StatsSnapshot(ctx, "ingest.stats"); err != nil || found {
		t.Fatalf("StatsSnapshot() = found %v, err %v, want absent", found, err)
	}

	if err := kv.Set(ctx, "ingest.stats", `{"applied":1}`, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	raw, found, err := svc.StatsSnapshot(ctx, "ingest.stats")
	if err != nil {
		t.Fatalf("StatsSnapshot() error = %v", err)
	}
	if !found || raw != `{"applied":1}` {
		t.Fatalf("StatsSnapshot() = %q/%v", raw, found)
	}
}
