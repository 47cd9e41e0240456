// Package fsx is the filesystem handle injected into the resource build.
//
// The build never touches the os package directly; every listing, copy and
// delete goes through FS so callers can substitute their own file manager.
package fsx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the subset of filesystem operations the build performs.
type FS interface {
	ReadDir(name string) ([]fs.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	MkdirAll(name string) error
	// Remove deletes a file or an empty directory.
	Remove(name string) error
	// CopyFile copies src into dstDir under the same base name, preserving
	// the modification time. An existing destination is replaced.
	CopyFile(src, dstDir string) error
	// CreateEmpty truncates or creates name as an empty regular file.
	CreateEmpty(name string) error
}

// PathTypeConflictError reports a path that exists with the wrong type,
// e.g. a directory where a regular file is expected.
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("path type conflict: %q (want %s, got %s)", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// Exists reports whether name exists. Errors other than not-exist are returned.
func Exists(fsys FS, name string) (bool, error) {
	_, err := fsys.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether name exists and is a directory.
func IsDir(fsys FS, name string) (bool, error) {
	fi, err := fsys.Stat(name)
	if err == nil {
		return fi.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// TempPrefix starts the name of the temp file CopyFile writes before
// renaming it into place. A crash can leave one behind.
const TempPrefix = ".tmp-"

// OS implements FS on the host filesystem.
type OS struct{}

var _ FS = OS{}

func (OS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }
func (OS) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }
func (OS) ReadFile(name string) ([]byte, error)       { return os.ReadFile(name) }
func (OS) MkdirAll(name string) error                 { return os.MkdirAll(name, 0o755) }
func (OS) Remove(name string) error                   { return os.Remove(name) }

func (OS) CreateEmpty(name string) error {
	if fi, err := os.Lstat(name); err == nil && fi.IsDir() {
		return &PathTypeConflictError{Path: name, Want: "file", Got: "dir"}
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// CopyFile writes into a temp file next to the destination and renames it
// into place, so a reader never observes a half-copied fingerprint.
func (OS) CopyFile(src, dstDir string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	st, err := in.Stat()
	if err != nil {
		return err
	}
	if !st.Mode().IsRegular() {
		return &PathTypeConflictError{Path: src, Want: "regular file", Got: st.Mode().Type().String()}
	}

	name := filepath.Base(src)
	dst := filepath.Join(dstDir, name)
	if fi, err := os.Lstat(dst); err == nil && fi.IsDir() {
		return &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
	}

	tmp, err := os.CreateTemp(dstDir, TempPrefix+name+"-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return err
	}
	if err := tmp.Chmod(st.Mode().Perm()); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	mt := st.ModTime()
	if err := os.Chtimes(tmpName, mt, mt); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}
