// Package project describes the Android project the resource build reads
// from and writes into.
package project

import (
	"path/filepath"

	"resbuild/internal/failure"
	"resbuild/internal/fsx"
)

// Project resolves the paths and SDK levels of one Android module.
type Project interface {
	ResourceDir() string
	BuildDir() string
	MinSdk() int
	TargetSdk() int
	// Libraries returns marker paths (usually classes.jar) whose parent
	// directory may hold a res directory.
	Libraries() []string
	// MergedManifest is produced upstream, before the resource build.
	MergedManifest() string
}

// AssetProvider exposes the framework reference archive passed to link -I.
type AssetProvider interface {
	FrameworkJar() (string, error)
}

// Static is a Project backed by plain values.
type Static struct {
	Res      string
	Build    string
	Min      int
	Target   int
	Libs     []string
	Manifest string // defaults to <Build>/bin/AndroidManifest.xml
}

var _ Project = Static{}

func (s Static) ResourceDir() string { return s.Res }
func (s Static) BuildDir() string    { return s.Build }
func (s Static) MinSdk() int         { return s.Min }
func (s Static) TargetSdk() int      { return s.Target }
func (s Static) Libraries() []string { return append([]string(nil), s.Libs...) }

func (s Static) MergedManifest() string {
	if s.Manifest != "" {
		return s.Manifest
	}
	return filepath.Join(s.Build, "bin", "AndroidManifest.xml")
}

// JarFile is an AssetProvider for a framework jar at a fixed path. It
// checks that the file exists through FS (fsx.OS when nil).
type JarFile struct {
	Path string
	FS   fsx.FS
}

func (j JarFile) FrameworkJar() (string, error) {
	if j.Path == "" {
		return "", failure.Precondition("framework jar not configured", "")
	}
	fsys := j.FS
	if fsys == nil {
		fsys = fsx.OS{}
	}
	ok, err := fsx.Exists(fsys, j.Path)
	if err != nil {
		return "", failure.IO("stat framework jar", j.Path, err)
	}
	if !ok {
		return "", failure.Precondition("framework jar missing", j.Path)
	}
	return j.Path, nil
}
