package syncer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sidecarkit/sidecar"
	"github.com/sidecarkit/sidecar/codec"
	"github.com/sidecarkit/sidecar/internal/cache"
)

// syncer implements the Syncer interface.
type syncer struct {
	db     *cache.DB
	logger *log.Logger
}

// New creates a new Syncer instance.
//
// The database connection must be initialized and have schema created
// before passing to this function. If logger is nil, a default logger
// writing to stderr is used.
func New(db *cache.DB, logger *log.Logger) Syncer {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &syncer{
		db:     db,
		logger: logger,
	}
}

// FullSync implements Syncer.FullSync.
func (s *syncer) FullSync(dir string) (*Result, error) {
	s.logger.Printf("Starting full sync from %s", dir)

	_, sidecars, err := sidecar.ListDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	result := &Result{}
	for primary, entries := range sidecars {
		for _, entry := range entries {
			_, identifier, ok := sidecar.Split(entry)
			if !ok {
				continue
			}

			rec, err := codec.Load(filepath.Join(dir, entry))
			if err != nil {
				s.logger.Printf("Failed to read %s: %v", entry, err)
				result.Failed++
				continue
			}
			if len(rec) == 0 {
				result.Skipped++
				continue
			}

			if err := s.db.UpsertSidecar(dir, primary, identifier, rec); err != nil {
				s.logger.Printf("Failed to cache %s: %v", entry, err)
				result.Failed++
				continue
			}
			result.Synced++
		}
	}

	s.logger.Printf("Full sync complete: %d synced, %d skipped, %d failed",
		result.Synced, result.Skipped, result.Failed)
	return result, nil
}

// SyncFile implements Syncer.SyncFile.
func (s *syncer) SyncFile(path string) error {
	dir, primary, identifier, ok := splitSidecarPath(path)
	if !ok {
		return nil
	}

	rec, err := codec.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read sidecar file: %w", err)
	}

	// An emptied sidecar means the metadata is gone
	if len(rec) == 0 {
		if err := s.db.DeleteSidecar(dir, primary, identifier); err != nil {
			return fmt.Errorf("failed to drop cached sidecar: %w", err)
		}
		s.logger.Printf("Dropped empty sidecar: %s", path)
		return nil
	}

	if err := s.db.UpsertSidecar(dir, primary, identifier, rec); err != nil {
		return fmt.Errorf("failed to cache sidecar: %w", err)
	}

	s.logger.Printf("Synced sidecar: %s (%s)", primary, identifier)
	return nil
}

// DeleteFile implements Syncer.DeleteFile.
func (s *syncer) DeleteFile(path string) error {
	dir, primary, identifier, ok := splitSidecarPath(path)
	if !ok {
		return nil
	}

	if err := s.db.DeleteSidecar(dir, primary, identifier); err != nil {
		return fmt.Errorf("failed to delete cached sidecar: %w", err)
	}

	s.logger.Printf("Deleted sidecar: %s (%s)", primary, identifier)
	return nil
}

// splitSidecarPath decomposes a sidecar file path into its directory,
// primary file name and identifier. ok is false when the base name has
// no separator; the membership guard against primaries whose own name
// contains the separator is the caller's concern (the daemon's event
// filter applies it).
func splitSidecarPath(path string) (dir, primary, identifier string, ok bool) {
	dir = filepath.Dir(path)
	primary, identifier, ok = sidecar.Split(filepath.Base(path))
	return dir, primary, identifier, ok
}
