package cache

import (
	"path/filepath"
	"sort"

	"resbuild/internal/failure"
	"resbuild/internal/fsx"
	"resbuild/internal/sortutil"
)

// DetectOptions tunes Detect.
type DetectOptions struct {
	// OnModified, if set, is called for each modified file before its old
	// fingerprint is deleted, while both copies are still readable.
	OnModified func(old, cur ResourceFile)
}

// Detect compares the current inputs with the fingerprint mirror and returns
// what must be compiled. It also deletes from the mirror every fingerprint
// that is stale (modified) or orphaned (input removed), so that copying the
// compiled inputs back afterwards leaves the mirror equal to current.
func Detect(fsys fsx.FS, current, old Set, opts DetectOptions) (Delta, error) {
	d := Delta{ToCompile: make(map[string][]ResourceFile)}

	for _, typ := range current.Types() {
		files := current[typ]
		prev, ok := old[typ]
		if !ok {
			if len(files) > 0 {
				d.ToCompile[typ] = append([]ResourceFile(nil), files...)
			}
			continue
		}
		if err := d.compareType(fsys, typ, files, prev, opts); err != nil {
			return Delta{}, err
		}
	}

	for _, typ := range old.Types() {
		if _, ok := current[typ]; ok {
			continue
		}
		if err := d.dropType(fsys, old[typ]); err != nil {
			return Delta{}, err
		}
		if len(old[typ]) > 0 {
			// Empty bucket directories are cosmetic; a leftover is harmless.
			_ = fsys.Remove(filepath.Dir(old[typ][0].Path))
		}
	}

	sortFiles(d.Modified)
	sortFiles(d.Removed)
	return d, nil
}

func (d *Delta) compareType(fsys fsx.FS, typ string, files, prev []ResourceFile, opts DetectOptions) error {
	remaining := make(map[string]ResourceFile, len(prev))
	for _, f := range prev {
		remaining[f.Name] = f
	}

	var queued []ResourceFile
	for _, cur := range files {
		was, ok := remaining[cur.Name]
		if !ok {
			queued = append(queued, cur)
			continue
		}
		delete(remaining, cur.Name)
		if !cur.Modified(was) {
			continue
		}
		if opts.OnModified != nil {
			opts.OnModified(was, cur)
		}
		if err := removeFingerprint(fsys, was); err != nil {
			return err
		}
		queued = append(queued, cur)
		d.Modified = append(d.Modified, cur)
	}
	if len(queued) > 0 {
		d.ToCompile[typ] = queued
	}

	for _, name := range sortutil.SortedKeys(remaining) {
		f := remaining[name]
		if err := removeFingerprint(fsys, f); err != nil {
			return err
		}
		d.Removed = append(d.Removed, f)
	}
	return nil
}

func (d *Delta) dropType(fsys fsx.FS, files []ResourceFile) error {
	for _, f := range files {
		if err := removeFingerprint(fsys, f); err != nil {
			return err
		}
		d.Removed = append(d.Removed, f)
	}
	return nil
}

func removeFingerprint(fsys fsx.FS, f ResourceFile) error {
	if err := fsys.Remove(f.Path); err != nil {
		return failure.IO("delete fingerprint", f.Path, err)
	}
	return nil
}

func sortFiles(files []ResourceFile) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].Type != files[j].Type {
			return files[i].Type < files[j].Type
		}
		return files[i].Name < files[j].Name
	})
}
