// Package cache holds the fingerprint mirror of the last compiled resource
// inputs and the change detection run against it.
package cache

import (
	"time"

	"github.com/rs/zerolog"

	"resbuild/internal/sortutil"
)

// ResourceFile identifies one resource input.
//
// Type is the simple name of the parent directory (values-v21, drawable-hdpi)
// and is never interpreted. Identity is (Type, Name); Size and ModTime only
// take part in the modification test.
type ResourceFile struct {
	Type    string
	Name    string
	Path    string
	Size    int64
	ModTime time.Time // whole milliseconds
}

// Key is the identity of a ResourceFile inside one input set.
type Key struct {
	Type string
	Name string
}

func (f ResourceFile) Key() Key { return Key{Type: f.Type, Name: f.Name} }

// Modified reports whether f changed relative to its previous fingerprint:
// the length differs, or f is strictly newer. An older mtime with the same
// length counts as unchanged.
func (f ResourceFile) Modified(old ResourceFile) bool {
	if f.Size != old.Size {
		return true
	}
	return f.ModTime.After(old.ModTime)
}

func (f ResourceFile) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", f.Type).
		Str("name", f.Name).
		Int64("size", f.Size).
		Int64("mtime_ms", f.ModTime.UnixMilli())
}

// Set maps resource type to its files, each bucket sorted by name.
type Set map[string][]ResourceFile

// Types returns the resource types in lexical order.
func (s Set) Types() []string {
	return sortutil.SortedKeys(s)
}

// Len counts files across all types.
func (s Set) Len() int {
	n := 0
	for _, files := range s {
		n += len(files)
	}
	return n
}

// Lookup finds a file by identity.
func (s Set) Lookup(k Key) (ResourceFile, bool) {
	for _, f := range s[k.Type] {
		if f.Name == k.Name {
			return f, true
		}
	}
	return ResourceFile{}, false
}

// Delta is the outcome of comparing current inputs with the mirror.
//
//   - ToCompile: files to hand to the compiler, by type
//   - Modified: the subset of ToCompile that replaced an existing fingerprint
//   - Removed: fingerprints deleted because their input no longer exists
type Delta struct {
	ToCompile map[string][]ResourceFile
	Modified  []ResourceFile
	Removed   []ResourceFile
}

// Files flattens ToCompile ordered by type, then name.
func (d Delta) Files() []ResourceFile {
	var out []ResourceFile
	for _, typ := range sortutil.SortedKeys(d.ToCompile) {
		out = append(out, d.ToCompile[typ]...)
	}
	return out
}

// Empty reports whether nothing needs compiling.
func (d Delta) Empty() bool {
	for _, files := range d.ToCompile {
		if len(files) > 0 {
			return false
		}
	}
	return true
}

type fileArray []ResourceFile

func (a fileArray) MarshalZerologArray(arr *zerolog.Array) {
	for _, f := range a {
		arr.Object(f)
	}
}

// MarshalZerologObject logs the delta as structured arrays.
func (d Delta) MarshalZerologObject(e *zerolog.Event) {
	e.Array("compile", fileArray(d.Files())).
		Array("modified", fileArray(d.Modified)).
		Array("removed", fileArray(d.Removed))
}
