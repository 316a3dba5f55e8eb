package cache

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.InitSchema(); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	return db
}

func TestUpsertAndGet(t *testing.T) {
	db := openTestDB(t)

	data := map[string]any{"rating": float64(5), "tag": "sunset"}
	if err := db.UpsertSidecar("/photos", "photo.jpg", "tags.json", data); err != nil {
		t.Fatalf("UpsertSidecar failed: %v", err)
	}

	got, err := db.GetSidecar("/photos", "photo.jpg", "tags.json")
	if err != nil {
		t.Fatalf("GetSidecar failed: %v", err)
	}
	if got["rating"] != float64(5) {
		t.Errorf("expected rating 5, got %v", got["rating"])
	}
	if got["tag"] != "sunset" {
		t.Errorf("expected tag sunset, got %v", got["tag"])
	}
}

func TestGetAbsent(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetSidecar("/photos", "photo.jpg", "tags.json")
	if err != nil {
		t.Fatalf("GetSidecar failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for absent row, got %v", got)
	}
}

func TestUpsertReplaces(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertSidecar("/d", "f", "m.json", map[string]any{"n": 1}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := db.UpsertSidecar("/d", "f", "m.json", map[string]any{"n": 2}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := db.GetSidecar("/d", "f", "m.json")
	if err != nil {
		t.Fatalf("GetSidecar failed: %v", err)
	}
	if got["n"] != float64(2) {
		t.Errorf("expected n=2 after replace, got %v", got["n"])
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after replace, got %d", count)
	}
}

func TestDelete(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertSidecar("/d", "f", "m.json", map[string]any{"n": 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := db.DeleteSidecar("/d", "f", "m.json"); err != nil {
		t.Fatalf("DeleteSidecar failed: %v", err)
	}

	got, err := db.GetSidecar("/d", "f", "m.json")
	if err != nil {
		t.Fatalf("GetSidecar failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %v", got)
	}

	// Deleting an absent row is not an error
	if err := db.DeleteSidecar("/d", "f", "m.json"); err != nil {
		t.Errorf("deleting absent row failed: %v", err)
	}
}

func TestListByIdentifier(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertSidecar("/d", "b.txt", "meta.json", map[string]any{"n": 2}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := db.UpsertSidecar("/d", "a.txt", "meta.json", map[string]any{"n": 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := db.UpsertSidecar("/d", "a.txt", "other.json", map[string]any{"n": 3}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	rows, err := db.ListByIdentifier("meta.json")
	if err != nil {
		t.Fatalf("ListByIdentifier failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Primary != "a.txt" || rows[1].Primary != "b.txt" {
		t.Errorf("expected rows ordered by primary, got %s, %s", rows[0].Primary, rows[1].Primary)
	}
	if rows[0].Data["n"] != float64(1) {
		t.Errorf("expected first row n=1, got %v", rows[0].Data["n"])
	}
}

func TestCloseIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
