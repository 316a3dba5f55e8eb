package codec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRoundTripJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg---tags.json")

	in := map[string]any{"rating": float64(5), "tag": "sunset", "flagged": true}
	if err := Store(path, in); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if out["rating"] != float64(5) {
		t.Errorf("expected rating 5, got %v", out["rating"])
	}
	if out["tag"] != "sunset" {
		t.Errorf("expected tag sunset, got %v", out["tag"])
	}
	if out["flagged"] != true {
		t.Errorf("expected flagged true, got %v", out["flagged"])
	}
}

func TestRoundTripYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf---meta.yaml")

	in := map[string]any{"pages": 12, "author": "anon"}
	if err := Store(path, in); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if out["pages"] != 12 {
		t.Errorf("expected pages 12, got %v (%T)", out["pages"], out["pages"])
	}
	if out["author"] != "anon" {
		t.Errorf("expected author anon, got %v", out["author"])
	}
}

func TestRoundTripTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac---info.toml")

	in := map[string]any{"title": "interlude", "bpm": int64(96)}
	if err := Store(path, in); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if out["title"] != "interlude" {
		t.Errorf("expected title interlude, got %v", out["title"])
	}
	if out["bpm"] != int64(96) {
		t.Errorf("expected bpm 96, got %v (%T)", out["bpm"], out["bpm"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	rec, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("expected nil error for missing file, got %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for missing file, got %v", rec)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("  \n"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("expected nil error for empty file, got %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for empty file, got %v", rec)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed content")
	}
}

func TestUnknownExtensionFallsBackToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin---state")

	if err := Store(path, map[string]any{"k": "v"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Errorf("expected JSON content, got %q", data)
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec["k"] != "v" {
		t.Errorf("expected k=v, got %v", rec["k"])
	}
}

func TestStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file---state.json")

	if err := Store(path, map[string]any{"n": 1}); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	if err := Store(path, map[string]any{"n": 2}); err != nil {
		t.Fatalf("second Store failed: %v", err)
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec["n"] != float64(2) {
		t.Errorf("expected n=2 after overwrite, got %v", rec["n"])
	}

	// Atomic write must not leave the temp file behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be gone after Store")
	}
}
