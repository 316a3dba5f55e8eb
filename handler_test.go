package sidecar

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sidecarkit/sidecar/codec"
)

func TestHandlerDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.jpg", "image data")
	writeFile(t, dir, "photo.jpg---tags.json", `{"tags": ["sunset"]}`)
	writeFile(t, dir, "photo.jpg---exif.yaml", "iso: 200\n")
	writeFile(t, dir, "other.jpg", "image data")
	writeFile(t, dir, "other.jpg---tags.json", "{}")

	handler, err := NewHandler(filepath.Join(dir, "photo.jpg"))
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}

	identifiers, err := handler.Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	want := []string{"exif.yaml", "tags.json"}
	if !reflect.DeepEqual(identifiers, want) {
		t.Errorf("expected identifiers %v, got %v", want, identifiers)
	}
}

func TestHandlerDiscoverIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.pdf", "data")
	writeFile(t, dir, "doc.pdf---summary.json", "{}")
	writeFile(t, dir, "doc.pdf---ocr.json", "{}")

	handler := NewHandlerLazy(filepath.Join(dir, "doc.pdf"))

	first, err := handler.Discover()
	if err != nil {
		t.Fatalf("first Discover failed: %v", err)
	}
	second, err := handler.Discover()
	if err != nil {
		t.Fatalf("second Discover failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Discover not idempotent: %v vs %v", first, second)
	}
}

func TestHandlerDiscoverCollisionGuard(t *testing.T) {
	// A primary whose own name contains the separator must still get
	// its sidecars attributed correctly.
	dir := t.TempDir()
	writeFile(t, dir, "x---y", "data")
	writeFile(t, dir, "x---y---meta.json", "{}")

	handler := NewHandlerLazy(filepath.Join(dir, "x---y"))
	identifiers, err := handler.Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if !reflect.DeepEqual(identifiers, []string{"meta.json"}) {
		t.Errorf("expected identifiers [meta.json], got %v", identifiers)
	}
}

func TestHandlerGet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.jpg", "image data")

	path := filepath.Join(dir, "photo.jpg---tags.json")
	if err := codec.Store(path, map[string]any{"rating": 5}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	handler := NewHandlerLazy(filepath.Join(dir, "photo.jpg"))
	rec, err := handler.Get("tags.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if rec["rating"] != float64(5) {
		t.Errorf("expected rating 5, got %v", rec["rating"])
	}
}

func TestHandlerGetAbsent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.jpg", "image data")

	handler := NewHandlerLazy(filepath.Join(dir, "photo.jpg"))
	rec, err := handler.Get("missing.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for absent sidecar, got %v", rec)
	}
}

func TestHandlerGetAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.jpg", "image data")

	if err := codec.Store(filepath.Join(dir, "photo.jpg---tags.json"), map[string]any{"tag": "sky"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := codec.Store(filepath.Join(dir, "photo.jpg---exif.json"), map[string]any{"iso": 100}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	handler := NewHandlerLazy(filepath.Join(dir, "photo.jpg"))
	all, err := handler.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	if all["tags.json"]["tag"] != "sky" {
		t.Errorf("expected tag sky, got %v", all["tags.json"]["tag"])
	}
	if all["exif.json"]["iso"] != float64(100) {
		t.Errorf("expected iso 100, got %v", all["exif.json"]["iso"])
	}
}

func TestHandlerSidecarPath(t *testing.T) {
	// The sidecar path is derived from the primary's own directory,
	// never from the caller's working directory.
	handler := NewHandlerLazy(filepath.Join("some", "place", "photo.jpg"))
	got := handler.SidecarPath("tags.json")
	want := filepath.Join("some", "place", "photo.jpg---tags.json")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
