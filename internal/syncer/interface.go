// Package syncer mirrors a directory's sidecar files into the SQLite
// cache. It is used by the sync command for one-shot full syncs and by
// the watch daemon for incremental updates.
package syncer

// Result holds statistics for a full sync.
type Result struct {
	Synced  int // sidecar files read and upserted
	Skipped int // sidecar files with absent or empty metadata
	Failed  int // sidecar files that could not be read or cached
}

// Syncer keeps the cache consistent with the sidecar files on disk.
type Syncer interface {
	// FullSync classifies dir and upserts every sidecar's metadata
	// into the cache. Individual file failures are counted, not fatal.
	FullSync(dir string) (*Result, error)

	// SyncFile upserts the cache row for one sidecar file path. Paths
	// that do not name a sidecar are ignored.
	SyncFile(path string) error

	// DeleteFile removes the cache row for one sidecar file path.
	DeleteFile(path string) error
}
