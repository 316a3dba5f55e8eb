// Package codec serializes and deserializes string-keyed metadata
// mappings for sidecar files.
//
// The format is inferred from the file extension, which for a sidecar
// file is the extension of its identifier suffix ("photo.jpg---tags.json"
// is JSON). Supported: .json, .yaml, .yml, .toml. Anything else is
// treated as JSON.
//
// Format notes carried over from the original tooling: JSON is the
// default, YAML and TOML are fine for hand-edited metadata, and large
// blobs do not belong in any of them.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

// Load reads the metadata mapping stored at path. A missing or empty
// file is not an error: it yields (nil, nil), and the caller decides
// what absence means. Malformed content is a real error.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var rec map[string]any
	switch formatFor(path) {
	case formatYAML:
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case formatTOML:
		if err := toml.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("invalid TOML in %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
	}
	return rec, nil
}

// Store writes the metadata mapping to path, creating or overwriting
// the file. The write is atomic: data goes to a temp file first and is
// renamed into place, so readers never observe a half-written sidecar.
func Store(path string, rec map[string]any) error {
	var data []byte
	var err error

	switch formatFor(path) {
	case formatYAML:
		data, err = yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case formatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(rec); err != nil {
			return fmt.Errorf("failed to marshal TOML: %w", err)
		}
		data = buf.Bytes()
	default:
		data, err = json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
