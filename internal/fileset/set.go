// Package fileset computes the authoritative list of files shipped in
// each archive kind.
package fileset

import (
	"fmt"
	"sort"

	werrors "github.com/wheelhouse/cli/internal/errors"
)

// Kind classifies a file entry.
type Kind int

const (
	// KindRegular is a file taken from the project tree.
	KindRegular Kind = iota

	// KindGenerated is a file produced by a build task rather than
	// tracked project source.
	KindGenerated
)

// Entry maps an archive-relative path to its source on disk.
type Entry struct {
	// ArchivePath is the slash-separated path inside the archive,
	// relative to the archive's package root.
	ArchivePath string

	// SourcePath is the absolute path of the file on disk.
	SourcePath string

	Kind Kind
}

// Set is a collection of entries with unique archive paths. Iteration
// order is always lexicographic by archive path, keeping archive bytes
// reproducible across runs.
type Set struct {
	entries map[string]Entry
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{entries: map[string]Entry{}}
}

// Add inserts an entry. Re-adding an identical entry is a no-op; a path
// collision between different sources is a configuration error, never a
// silent overwrite.
func (s *Set) Add(e Entry) error {
	if existing, ok := s.entries[e.ArchivePath]; ok {
		if existing == e {
			return nil
		}
		return werrors.NewConfigError(
			fmt.Sprintf("duplicate archive path %q (from %q and %q)",
				e.ArchivePath, existing.SourcePath, e.SourcePath),
			"", "adjust include/exclude patterns so each archive path maps to one file")
	}
	s.entries[e.ArchivePath] = e
	return nil
}

// Remove drops the entry at an archive path, if present.
func (s *Set) Remove(archivePath string) {
	delete(s.entries, archivePath)
}

// Contains reports whether an archive path is present.
func (s *Set) Contains(archivePath string) bool {
	_, ok := s.entries[archivePath]
	return ok
}

// Len returns the number of entries.
func (s *Set) Len() int {
	return len(s.entries)
}

// Entries returns all entries sorted by archive path.
func (s *Set) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArchivePath < out[j].ArchivePath })
	return out
}

// Result holds the computed file sets for both archive kinds.
type Result struct {
	// Sdist contains project-root-relative source files.
	Sdist *Set

	// Wheel contains importable package files, relative to the resolved
	// source root.
	Wheel *Set
}
