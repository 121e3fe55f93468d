package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDialectsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialects.toml")
	content := `
[[dialect]]
name = "alt"
type_field = "kind"
user_field = "uid"
time_field = "at"
item_field = "sku"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dialects file: %v", err)
	}

	dialects, err := LoadDialects(path)
	if err != nil {
		t.Fatalf("LoadDialects() error = %v", err)
	}
	if len(dialects) != 1 {
		t.Fatalf("LoadDialects() len = %d, want 1", len(dialects))
	}
	if dialects[0].Name != "alt" || dialects[0].ItemField != "sku" {
		t.Fatalf("LoadDialects() = %+v", dialects[0])
	}
}

func TestLoadDialectsRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialects.toml")
	content := `
[[dialect]]
name = "broken"
type_field = "kind"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dialects file: %v", err)
	}

	if _, err := LoadDialects(path); err == nil {
		t.Fatal("LoadDialects() expected error for incomplete dialect")
	}
}

func TestLoadDialectsMissingFile(t *testing.T) {
	if _, err := LoadDialects(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("LoadDialects() expected error for missing file")
	}
}
