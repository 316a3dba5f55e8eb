package sidecar

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sidecarkit/sidecar/codec"
)

// Handler is a per-file facade over the naming scheme and the codec for
// one primary file. It discovers the file's sidecars and loads one or
// all of them. Handlers are ephemeral: construct one per primary file,
// use it, drop it. Reads never create sidecar files.
type Handler struct {
	path     string
	dir      string
	baseName string

	identifiers []string
	discovered  bool
}

// NewHandler creates a Handler for the primary file at path and eagerly
// discovers its sidecars.
func NewHandler(path string) (*Handler, error) {
	h := NewHandlerLazy(path)
	if _, err := h.Discover(); err != nil {
		return nil, err
	}
	return h, nil
}

// NewHandlerLazy creates a Handler without scanning the containing
// directory. Batch code that already knows which identifier it wants
// uses this to skip the listing.
func NewHandlerLazy(path string) *Handler {
	dir, baseName := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return &Handler{
		path:     path,
		dir:      filepath.Clean(dir),
		baseName: baseName,
	}
}

// Path returns the primary file's path as given at construction.
func (h *Handler) Path() string {
	return h.path
}

// SidecarPath returns the path a sidecar with the given identifier
// would have, whether or not it exists. The path is always derived from
// the primary's own directory.
func (h *Handler) SidecarPath(identifier string) string {
	return filepath.Join(h.dir, Name(h.baseName, identifier))
}

// Discover scans the primary's containing directory and returns the
// identifiers of its sidecar files, sorted. The scan goes through the
// same membership-checked classification as ListDirectory, so a primary
// whose own name contains the separator is never misattributed.
//
// The result is cached; calling Discover again re-reads the directory.
func (h *Handler) Discover() ([]string, error) {
	_, sidecars, err := ListDirectory(h.dir)
	if err != nil {
		return nil, err
	}

	var identifiers []string
	for _, entry := range sidecars[h.baseName] {
		identifiers = append(identifiers, strings.TrimPrefix(entry, h.baseName+Separator))
	}

	h.identifiers = identifiers
	h.discovered = true
	return identifiers, nil
}

// Get loads the metadata record from the sidecar with the given
// identifier. A missing or empty sidecar yields (nil, nil); the caller
// decides what absence means.
func (h *Handler) Get(identifier string) (Record, error) {
	rec, err := codec.Load(h.SidecarPath(identifier))
	if err != nil {
		return nil, fmt.Errorf("failed to load sidecar %s: %w", h.SidecarPath(identifier), err)
	}
	return rec, nil
}

// GetAll loads the records of every discovered sidecar, keyed by
// identifier. Triggers discovery if it has not happened yet.
func (h *Handler) GetAll() (map[string]Record, error) {
	if !h.discovered {
		if _, err := h.Discover(); err != nil {
			return nil, err
		}
	}

	all := make(map[string]Record, len(h.identifiers))
	for _, identifier := range h.identifiers {
		rec, err := h.Get(identifier)
		if err != nil {
			return nil, err
		}
		all[identifier] = rec
	}
	return all, nil
}
