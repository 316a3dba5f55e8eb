// Package daemon provides file system watching and the foreground sync
// daemon that keeps the sidecar cache fresh.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/sidecarkit/sidecar"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	// OpCreate indicates a new file was created.
	OpCreate EventOp = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file was deleted.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op EventOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FileKind represents whether the event is for a primary or a sidecar file.
type FileKind int

const (
	// KindPrimary indicates a primary data file.
	KindPrimary FileKind = iota
	// KindSidecar indicates a sidecar metadata file.
	KindSidecar
)

// String returns a human-readable representation of the file kind.
func (fk FileKind) String() string {
	switch fk {
	case KindPrimary:
		return "primary"
	case KindSidecar:
		return "sidecar"
	default:
		return "unknown"
	}
}

// FileEvent represents a file system event for one watched file.
type FileEvent struct {
	// Path is the path to the file that changed.
	Path string
	// Kind indicates whether this is a primary or a sidecar file.
	Kind FileKind
	// Op is the operation that occurred (create, modify, delete).
	Op EventOp
}

// Watcher watches one directory for sidecar and primary file changes.
// It uses fsnotify for cross-platform file system event monitoring.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan FileEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	dir     string
}

// NewWatcher creates a new Watcher instance. The watcher must be
// started with Start() before it will emit events.
func NewWatcher() (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: watcher,
		events:  make(chan FileEvent, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching dir for changes.
func (w *Watcher) Start(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	w.dir = dir
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop stops watching for file system events and cleans up resources.
// It blocks until the event processing goroutine has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)

	// Closing the underlying watcher unblocks the event loop
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.wg.Wait()

	close(w.events)
	close(w.errors)

	return nil
}

// Events returns the channel that emits FileEvent notifications.
// This channel is closed when the watcher is stopped.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Errors returns the channel that emits error notifications.
// This channel is closed when the watcher is stopped.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// processEvents is the main event loop that converts fsnotify events to
// FileEvent notifications.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if fileEvent, ok := convertEvent(event); ok {
				select {
				case w.events <- fileEvent:
				case <-w.done:
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// convertEvent converts an fsnotify event to a FileEvent. Returns
// (FileEvent, true) if the event should be processed, or
// (FileEvent{}, false) if the event should be ignored.
func convertEvent(event fsnotify.Event) (FileEvent, bool) {
	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		// The new name will trigger its own create event
		op = OpDelete
	default:
		// Ignore chmod and other events
		return FileEvent{}, false
	}

	// Codec temp files are renamed into place momentarily; skip them
	if filepath.Ext(event.Name) == ".tmp" {
		return FileEvent{}, false
	}

	return FileEvent{
		Path: event.Name,
		Kind: classifyPath(event.Name, op),
		Op:   op,
	}, true
}

// classifyPath decides whether a changed path names a sidecar or a
// primary file, applying the same membership guard as the directory
// classifier: the candidate primary must actually exist next to it.
// For delete events the primary may already be gone, in which case the
// name shape alone decides.
func classifyPath(path string, op EventOp) FileKind {
	primary, _, ok := sidecar.Split(filepath.Base(path))
	if !ok {
		return KindPrimary
	}

	if op == OpDelete {
		return KindSidecar
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(path), primary)); err != nil {
		return KindPrimary
	}
	return KindSidecar
}
