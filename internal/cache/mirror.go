package cache

import (
	"path/filepath"

	"resbuild/internal/failure"
	"resbuild/internal/fsx"
)

// Record copies compiled inputs into the mirror rooted at root, one
// directory per type, preserving modification times. It is the only way
// the mirror gains entries, and callers run it after a successful compile.
func Record(fsys fsx.FS, root string, files []ResourceFile) error {
	if err := fsys.MkdirAll(root); err != nil {
		return failure.IO("create fingerprint root", root, err)
	}
	made := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Join(root, f.Type)
		if !made[dir] {
			if err := fsys.MkdirAll(dir); err != nil {
				return failure.IO("create fingerprint bucket", dir, err)
			}
			made[dir] = true
		}
		if err := fsys.CopyFile(f.Path, dir); err != nil {
			if fsx.IsPathTypeConflict(err) {
				// Report the blocking path rather than the source.
				return failure.IO("fingerprint path is not a regular file", filepath.Join(dir, f.Name), err)
			}
			return failure.IO("copy fingerprint", f.Path, err)
		}
	}
	return nil
}
