// Package jtfile writes output files atomically: the rendered text lands in
// a temp file in the target directory, is synced, and is renamed over the
// destination. A failed write leaves no partial file at the target path.
//
// Atomicity holds on local POSIX filesystems when temp and target share a
// mount.
package jtfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to path via temp file + rename. On failure the
// temp file is removed and the target path is untouched.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".jtree-*.tmp")
	if err != nil {
		return fmt.Errorf("jtfile: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("jtfile: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("jtfile: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jtfile: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("jtfile: rename temp to target: %w", err)
	}
	committed = true

	// Directory sync is best effort; the rename already happened.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}
