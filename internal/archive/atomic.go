// Package archive assembles the source and binary distribution archives.
//
// Archive bytes are a function of the resolved metadata and file set
// alone: entry order, compression parameters and manifest field order are
// fixed, and entry timestamps come from SOURCE_DATE_EPOCH (or a fixed
// default), so two builds from the same state are byte-identical.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeAtomic writes an archive through fn into a temporary file in dir
// and renames it to filename only on success. A failed build never leaves
// a partial archive in the output location.
func writeAtomic(dir, filename string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary archive: %w", err)
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := fn(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}

	name := tmp.Name()
	tmp = nil
	if err := os.Rename(name, filepath.Join(dir, filename)); err != nil {
		os.Remove(name)
		return fmt.Errorf("publishing archive: %w", err)
	}
	return nil
}
