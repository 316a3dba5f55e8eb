package sidecar

import (
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrNotDirectory is returned when a batch entry point is given a path
// that does not name a directory.
var ErrNotDirectory = errors.New("not a directory")

// ListDirectory partitions the entries of dir into primary files and
// sidecar files, without recursing into subdirectories.
//
// An entry containing the separator is split on its last occurrence; if
// the candidate primary name is itself present in the listing, the
// entry is recorded as a sidecar of that primary. Otherwise the
// separator is incidental and the entry is a primary in its own right.
// Entries without the separator are always primary. Every file entry is
// classified exactly once; subdirectories are ignored.
//
// Known convention cost: a file named exactly "X---Y" that exists next
// to a file named "X" is classified as a sidecar of "X" even if it was
// meant to be standalone.
//
// primaries and each sidecar list are sorted.
func ListDirectory(dir string) (primaries []string, sidecars map[string][]string, err error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names[entry.Name()] = true
	}

	sidecars = make(map[string][]string)
	for name := range names {
		if primary, _, ok := Split(name); ok && names[primary] {
			sidecars[primary] = append(sidecars[primary], name)
			continue
		}
		primaries = append(primaries, name)
	}

	sort.Strings(primaries)
	for _, list := range sidecars {
		sort.Strings(list)
	}

	return primaries, sidecars, nil
}
