// Package sidecar implements a naming convention for associating
// auxiliary metadata files ("sidecar files") with primary data files in
// a directory, without modifying the primary files themselves.
//
// A sidecar file lives next to its primary and is named
// {primary}---{identifier}, where the identifier is an opaque string
// that conventionally carries a serialization extension (for example
// "tags.json" or "exif.yaml") so the codec can pick a format.
//
// The package provides the naming scheme, a directory classifier that
// partitions entries into primaries and their sidecars, a per-file
// Handler for discovery and reads, and two batch drivers that apply a
// caller-supplied function to every primary file in a directory.
package sidecar

import "strings"

// Separator joins a primary file name and a sidecar identifier.
// The partition always happens on the LAST occurrence, so identifiers
// may themselves contain the separator.
const Separator = "---"

// Record is a string-keyed metadata mapping, the decoded content of one
// sidecar file.
type Record = map[string]any

// Name returns the sidecar file name for the given primary base name
// and identifier: {baseName}---{identifier}.
func Name(baseName, identifier string) string {
	return baseName + Separator + identifier
}

// Split partitions a directory entry name on the last occurrence of the
// separator. The left part is a candidate primary name, the right part
// is the identifier. ok is false when the entry contains no separator.
//
// Split is pure string arithmetic: whether the candidate primary
// actually exists (and therefore whether the entry really is a sidecar)
// is decided by ListDirectory's membership check.
func Split(entry string) (primary, identifier string, ok bool) {
	idx := strings.LastIndex(entry, Separator)
	if idx < 0 {
		return "", "", false
	}
	return entry[:idx], entry[idx+len(Separator):], true
}
