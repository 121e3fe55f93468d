package cache

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Savit10/streamsense/internal/infrastructure/persistence/sqlite/model"
)

func setupCache(t *testing.T) *SQLiteCache {
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
	if err := db.AutoMigrate(&model.IngestKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewSQLiteCache(db)
}

func TestCacheSetGetDelete(t *testing.T) {
	kv := setupCache(t)
	ctx := context.Background()

	if _, found, err := kv.Get(ctx, "k"); err != nil || found {
		t.Fatalf("Get() before set = found %v, err %v", found, err)
	}

	if err := kv.Set(ctx, "k", "v1", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := kv.Set(ctx, "k", "v2", 0); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	value, found, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != "v2" {
		t.Fatalf("Get() = %q/%v, want v2/true", value, found)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, err := kv.Get(ctx, "k"); err != nil || found {
		t.Fatalf("Get() after delete = found %v, err %v", found, err)
	}
}

func TestCacheRejectsEmptyKey(t *testing.T) {
	kv := setupCache(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "  ", "v", 0); err == nil {
		t.Fatal("Set() expected error for blank key")
	}
	if _, _, err := kv.Get(ctx, ""); err == nil {
		t.Fatal("Get() expected error for empty key")
	}
}
