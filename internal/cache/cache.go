// Package cache provides an embedded SQLite mirror of a directory's
// sidecar metadata.
//
// The cache exists for fast queries over many sidecar files without
// re-reading and re-decoding them on every lookup. It is populated by
// the syncer (full sync) and kept fresh by the watch daemon. The
// filesystem stays the source of truth: rows here are derived data and
// can be rebuilt from scratch at any time.
//
// The database runs in embedded mode with WAL for concurrent readers.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps the SQLite connection with sidecar-cache functionality.
type DB struct {
	conn *sql.DB
	path string
}

// Row is one cached sidecar record.
type Row struct {
	Directory  string
	Primary    string
	Identifier string
	Data       map[string]any
	UpdatedAt  time.Time
}

// Open creates a database connection at the specified path, creating
// the parent directory if needed. The caller must Close() when done.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn, path: path}

	// WAL for concurrent reads while the daemon writes
	if _, err := db.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Close closes the connection after checkpointing the WAL.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.conn = nil
	return nil
}

// InitSchema creates the schema if it does not exist. Idempotent.
func (db *DB) InitSchema() error {
	return db.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (db *DB) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sidecars (
		directory TEXT NOT NULL,
		primary_file TEXT NOT NULL,
		identifier TEXT NOT NULL,
		data TEXT NOT NULL,  -- JSON object
		updated_at TEXT NOT NULL,
		PRIMARY KEY (directory, primary_file, identifier)
	);

	CREATE INDEX IF NOT EXISTS idx_sidecars_identifier ON sidecars(identifier);
	CREATE INDEX IF NOT EXISTS idx_sidecars_primary ON sidecars(directory, primary_file);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// UpsertSidecar inserts or replaces one sidecar record.
func (db *DB) UpsertSidecar(dir, primary, identifier string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO sidecars (directory, primary_file, identifier, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (directory, primary_file, identifier)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		dir, primary, identifier, string(encoded), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert sidecar: %w", err)
	}
	return nil
}

// DeleteSidecar removes one cached record. Deleting a record that is
// not cached is not an error.
func (db *DB) DeleteSidecar(dir, primary, identifier string) error {
	_, err := db.conn.Exec(
		"DELETE FROM sidecars WHERE directory = ? AND primary_file = ? AND identifier = ?",
		dir, primary, identifier)
	if err != nil {
		return fmt.Errorf("failed to delete sidecar: %w", err)
	}
	return nil
}

// GetSidecar returns one cached record, or (nil, nil) when absent.
func (db *DB) GetSidecar(dir, primary, identifier string) (map[string]any, error) {
	var encoded string
	err := db.conn.QueryRow(
		"SELECT data FROM sidecars WHERE directory = ? AND primary_file = ? AND identifier = ?",
		dir, primary, identifier).Scan(&encoded)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sidecar: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(encoded), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached metadata: %w", err)
	}
	return data, nil
}

// ListByIdentifier returns every cached record for one identifier,
// ordered by directory and primary file name.
func (db *DB) ListByIdentifier(identifier string) ([]Row, error) {
	rows, err := db.conn.Query(`
		SELECT directory, primary_file, identifier, data, updated_at
		FROM sidecars WHERE identifier = ?
		ORDER BY directory, primary_file`, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to query sidecars: %w", err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var row Row
		var encoded, updated string
		if err := rows.Scan(&row.Directory, &row.Primary, &row.Identifier, &encoded, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &row.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached metadata: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			row.UpdatedAt = t
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Count returns the number of cached sidecar records.
func (db *DB) Count() (int, error) {
	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM sidecars").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sidecars: %w", err)
	}
	return count, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}
