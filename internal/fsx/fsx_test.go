package fsx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFilePreservesContentAndMtime(t *testing.T) {
	src := filepath.Join(t.TempDir(), "strings.xml")
	require.NoError(t, os.WriteFile(src, []byte("<resources/>"), 0o644))
	mt := time.Date(2024, 3, 1, 12, 0, 0, 123_000_000, time.UTC)
	require.NoError(t, os.Chtimes(src, mt, mt))

	dst := t.TempDir()
	require.NoError(t, OS{}.CopyFile(src, dst))

	got, err := os.ReadFile(filepath.Join(dst, "strings.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<resources/>", string(got))

	fi, err := os.Stat(filepath.Join(dst, "strings.xml"))
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(mt), "mtime %v != %v", fi.ModTime(), mt)

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestCopyFileReplacesExisting(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("new content"), 0o644))
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dst, "a.txt"), []byte("old"), 0o644))

	require.NoError(t, OS{}.CopyFile(src, dst))
	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new content", string(got))
}

func TestCopyFileDirectoryConflict(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	dst := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dst, "a.txt"), 0o755))

	err := OS{}.CopyFile(src, dst)
	assert.True(t, IsPathTypeConflict(err), "got %v", err)
}

func TestCreateEmptyTruncates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "R.txt")
	require.NoError(t, os.WriteFile(p, []byte("int id foo 0x7f010000"), 0o644))
	require.NoError(t, OS{}.CreateEmpty(p))
	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.Zero(t, fi.Size())
}

func TestExistsAndIsDir(t *testing.T) {
	dir := t.TempDir()
	ok, err := Exists(OS{}, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsDir(OS{}, dir)
	require.NoError(t, err)
	assert.True(t, ok)

	f := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	ok, err = IsDir(OS{}, f)
	require.NoError(t, err)
	assert.False(t, ok)
}
