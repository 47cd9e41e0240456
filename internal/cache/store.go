package cache

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"resbuild/internal/failure"
	"resbuild/internal/fsx"
)

// Load reads a resource tree one level deep: every subdirectory of root is a
// type bucket and every regular file inside it a ResourceFile. Symlinks are
// followed. Top-level files, nested directories and copy leftovers
// (fsx.TempPrefix) are ignored.
//
// The same layout is used for the project's res directory and for the
// fingerprint mirror, so Load serves both. A missing root yields an empty
// set, which is what the first build sees.
func Load(fsys fsx.FS, root string) (Set, error) {
	entries, err := fsys.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Set{}, nil
		}
		return nil, failure.IO("list resource root", root, err)
	}

	set := make(Set, len(entries))
	for _, e := range entries {
		typ := e.Name()
		dir := filepath.Join(root, typ)
		isDir, err := fsx.IsDir(fsys, dir)
		if err != nil {
			return nil, failure.IO("stat resource type", dir, err)
		}
		if !isDir {
			continue
		}
		files, err := loadBucket(fsys, dir, typ)
		if err != nil {
			return nil, err
		}
		set[typ] = files
	}
	return set, nil
}

func loadBucket(fsys fsx.FS, dir, typ string) ([]ResourceFile, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, failure.IO("list resource type", dir, err)
	}
	files := make([]ResourceFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), fsx.TempPrefix) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		fi, err := fsys.Stat(p)
		if err != nil {
			return nil, failure.IO("stat resource", p, err)
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, fromInfo(typ, p, fi))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func fromInfo(typ, path string, fi fs.FileInfo) ResourceFile {
	return ResourceFile{
		Type:    typ,
		Name:    fi.Name(),
		Path:    path,
		Size:    fi.Size(),
		ModTime: time.UnixMilli(fi.ModTime().UnixMilli()),
	}
}
