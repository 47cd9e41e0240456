// Package library selects which third-party library resource directories
// need compiling into bundles.
package library

import (
	"io/fs"
	"path/filepath"

	"resbuild/internal/failure"
	"resbuild/internal/fsx"
)

// Entry is a library whose res directory must be compiled.
type Entry struct {
	Name   string // simple name of the library directory, the bundle key
	Dir    string // library directory (parent of the marker path)
	ResDir string // <Dir>/res
	Bundle string // <bundleDir>/<Name>.zip
}

// BundlePath returns where the compiled bundle of the library at dir lives.
func BundlePath(bundleDir, dir string) string {
	return filepath.Join(bundleDir, filepath.Base(dir)+".zip")
}

// Scan walks the library marker paths and returns those to recompile.
//
// A library is skipped when its directory has no res subdirectory (a plain
// file named res does not count), or when bundleDir already holds <name>.zip
// from an earlier build. A library whose directory does not exist is an I/O
// error.
func Scan(fsys fsx.FS, libraries []string, bundleDir string) ([]Entry, error) {
	var out []Entry
	for _, marker := range libraries {
		dir := filepath.Dir(filepath.Clean(marker))
		isDir, err := fsx.IsDir(fsys, dir)
		if err != nil {
			return nil, failure.IO("stat library", dir, err)
		}
		if !isDir {
			return nil, failure.IO("library directory missing", dir, fs.ErrNotExist)
		}

		res := filepath.Join(dir, "res")
		ok, err := fsx.IsDir(fsys, res)
		if err != nil {
			return nil, failure.IO("stat library res", res, err)
		}
		if !ok {
			continue
		}

		bundle := BundlePath(bundleDir, dir)
		cached, err := fsx.Exists(fsys, bundle)
		if err != nil {
			return nil, failure.IO("stat library bundle", bundle, err)
		}
		if cached {
			continue
		}
		out = append(out, Entry{
			Name:   filepath.Base(dir),
			Dir:    dir,
			ResDir: res,
			Bundle: bundle,
		})
	}
	return out, nil
}
