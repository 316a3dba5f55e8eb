package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/sidecarkit/sidecar/internal/cache"
	"github.com/sidecarkit/sidecar/internal/syncer"
)

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long to wait before processing file
	// changes. This batches rapid successive writes to the same
	// sidecar (the update driver rewrites on every checkpoint).
	DebounceInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 100 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// pendingChange is a queued, not-yet-synced file event.
type pendingChange struct {
	op EventOp
	at time.Time
}

// Daemon orchestrates file watching and cache synchronization for one
// directory:
//  1. Performs an initial full sync
//  2. Watches the directory for sidecar file changes
//  3. Syncs debounced changes into the cache
//  4. Handles graceful shutdown
type Daemon struct {
	dir    string
	sync   syncer.Syncer
	config *Config

	watcher       *Watcher
	changeQueue   map[string]pendingChange
	changeQueueMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Daemon instance syncing dir into db.
// Use Start() to begin watching and syncing.
func New(db *cache.DB, dir string) (*Daemon, error) {
	return NewWithConfig(db, dir, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(db *cache.DB, dir string, config *Config) (*Daemon, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if dir == "" {
		return nil, fmt.Errorf("dir cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		dir:         dir,
		sync:        syncer.New(db, config.Logger),
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]pendingChange),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins the daemon's operation: initial full sync, then watch
// and incremental sync. Blocks until ctx is cancelled or an error
// occurs.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	if _, err := d.sync.FullSync(d.dir); err != nil {
		return fmt.Errorf("initial sync failed: %w", err)
	}

	if err := d.watcher.Start(d.dir); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	d.config.Logger.Printf("Watching: %s", d.dir)

	d.wg.Add(2)
	go d.watchFileEvents()
	go d.processChangeQueue()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	d.cancel()

	if err := d.watcher.Stop(); err != nil {
		d.config.Logger.Printf("Error stopping watcher: %v", err)
	}

	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// watchFileEvents queues sidecar file events for debounced processing.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events():
			if !ok {
				return
			}

			// Primary file churn does not touch the cache
			if event.Kind != KindSidecar {
				continue
			}

			d.changeQueueMu.Lock()
			d.changeQueue[event.Path] = pendingChange{op: event.Op, at: time.Now()}
			d.changeQueueMu.Unlock()

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// processChangeQueue periodically drains changes older than the
// debounce interval and syncs them.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.drainChangeQueue()
			return

		case <-ticker.C:
			d.syncReadyChanges(time.Now().Add(-d.config.DebounceInterval))
		}
	}
}

// syncReadyChanges syncs every queued change recorded before cutoff.
func (d *Daemon) syncReadyChanges(cutoff time.Time) {
	d.changeQueueMu.Lock()
	ready := make(map[string]pendingChange)
	for path, change := range d.changeQueue {
		if change.at.Before(cutoff) {
			ready[path] = change
			delete(d.changeQueue, path)
		}
	}
	d.changeQueueMu.Unlock()

	for path, change := range ready {
		d.applyChange(path, change.op)
	}
}

// drainChangeQueue flushes everything still queued at shutdown.
func (d *Daemon) drainChangeQueue() {
	d.changeQueueMu.Lock()
	remaining := d.changeQueue
	d.changeQueue = make(map[string]pendingChange)
	d.changeQueueMu.Unlock()

	for path, change := range remaining {
		d.applyChange(path, change.op)
	}
}

func (d *Daemon) applyChange(path string, op EventOp) {
	var err error
	switch op {
	case OpDelete:
		err = d.sync.DeleteFile(path)
	default:
		err = d.sync.SyncFile(path)
	}
	if err != nil {
		d.config.Logger.Printf("Failed to sync %s: %v", path, err)
	}
}
