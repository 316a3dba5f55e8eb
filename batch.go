package sidecar

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/sidecarkit/sidecar/codec"
)

// ProcessFunc is the caller contract for Process. It receives the
// primary file's path and the path its sidecar for the targeted
// identifier would have. The function owns all sidecar I/O, including
// checking whether the sidecar exists or is complete.
type ProcessFunc func(primaryPath, sidecarPath string) error

// UpdateFunc is the caller contract for UpdateAndStore. Given a primary
// file and the sidecar's current state, it returns a lazy, finite
// sequence of successive replacement states (complete mappings, not
// diffs). The driver pulls the sequence single-pass and checkpoints it
// incrementally, so a long-running computation never has to hold all
// its results in memory.
type UpdateFunc func(primaryPath string, initial Record) iter.Seq[Record]

// UpdateOptions configures UpdateAndStore.
type UpdateOptions struct {
	// SaveInterval controls how often produced states are persisted:
	// every SaveInterval-th state is written to the sidecar file.
	// Defaults to 10.
	SaveInterval int

	// Progress is invoked once per primary file before it is processed,
	// with its 1-based position and the total primary count. Nil means
	// a default printer writing "[index/total] name" to stderr.
	Progress func(index, total int, primary string)
}

func (o *UpdateOptions) withDefaults() UpdateOptions {
	opts := UpdateOptions{}
	if o != nil {
		opts = *o
	}
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = 10
	}
	if opts.Progress == nil {
		opts.Progress = func(index, total int, primary string) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", index, total, primary)
		}
	}
	return opts
}

// Process invokes fn for every primary file in dir, passing the path
// the sidecar for identifier would have. The sidecar may or may not
// exist; Process performs no I/O on it. The first error returned by fn
// aborts the traversal.
func Process(dir, identifier string, fn ProcessFunc) error {
	primaries, _, err := ListDirectory(dir)
	if err != nil {
		return err
	}

	for _, name := range primaries {
		primaryPath := filepath.Join(dir, name)
		sidecarPath := filepath.Join(dir, Name(name, identifier))
		if err := fn(primaryPath, sidecarPath); err != nil {
			return err
		}
	}
	return nil
}

// UpdateAndStore runs fn for every primary file in dir and persists the
// states it produces to the file's sidecar for identifier.
//
// Per primary: the sidecar's current state is loaded (empty record when
// absent), fn is invoked with it, and the produced sequence is consumed
// incrementally. Every SaveInterval-th state is written to the sidecar
// path, overwriting it; after exhaustion the final state is written
// once more if the count did not land on an interval boundary, so no
// work is lost. A function producing zero states leaves the sidecar
// untouched.
//
// Errors from fn's sequence are not caught here: a panic or an error
// surfaced through the produced states aborts the whole batch, keeping
// whatever checkpoints were already persisted. A crash therefore loses
// at most SaveInterval-1 produced states for the in-flight primary.
func UpdateAndStore(dir, identifier string, fn UpdateFunc, opts *UpdateOptions) error {
	options := opts.withDefaults()

	primaries, _, err := ListDirectory(dir)
	if err != nil {
		return err
	}

	total := len(primaries)
	for index, name := range primaries {
		options.Progress(index+1, total, name)

		primaryPath := filepath.Join(dir, name)
		handler := NewHandlerLazy(primaryPath)

		state, err := handler.Get(identifier)
		if err != nil {
			return err
		}
		if state == nil {
			state = Record{}
		}

		sidecarPath := handler.SidecarPath(identifier)

		count := 0
		var last Record
		for updated := range fn(primaryPath, state) {
			count++
			last = updated
			if count%options.SaveInterval == 0 {
				if err := codec.Store(sidecarPath, updated); err != nil {
					return fmt.Errorf("failed to store sidecar %s: %w", sidecarPath, err)
				}
			}
		}

		if count%options.SaveInterval != 0 {
			if err := codec.Store(sidecarPath, last); err != nil {
				return fmt.Errorf("failed to store sidecar %s: %w", sidecarPath, err)
			}
		}
	}
	return nil
}
