package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resbuild/internal/failure"
	"resbuild/internal/fsx"
)

func mkLib(t *testing.T, root, name string, withRes bool) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	marker := filepath.Join(dir, "classes.jar")
	require.NoError(t, os.WriteFile(marker, []byte("jar"), 0o644))
	if withRes {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "res", "values"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "res", "values", "x.xml"), []byte("<r/>"), 0o644))
	}
	return marker
}

func TestScanSelectsUncompiledLibraries(t *testing.T) {
	libs := t.TempDir()
	bundles := t.TempDir()
	foo := mkLib(t, libs, "libfoo", true)
	bar := mkLib(t, libs, "libbar", false)
	baz := mkLib(t, libs, "libbaz", true)
	require.NoError(t, os.WriteFile(filepath.Join(bundles, "libbaz.zip"), []byte("PK"), 0o644))

	got, err := Scan(fsx.OS{}, []string{foo, bar, baz}, bundles)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Entry{
		Name:   "libfoo",
		Dir:    filepath.Join(libs, "libfoo"),
		ResDir: filepath.Join(libs, "libfoo", "res"),
		Bundle: filepath.Join(bundles, "libfoo.zip"),
	}, got[0])
}

func TestScanEmptyBundleStillCountsAsCached(t *testing.T) {
	libs := t.TempDir()
	bundles := t.TempDir()
	foo := mkLib(t, libs, "libfoo", true)
	require.NoError(t, os.WriteFile(filepath.Join(bundles, "libfoo.zip"), nil, 0o644))

	got, err := Scan(fsx.OS{}, []string{foo}, bundles)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScanMissingLibraryDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", "classes.jar")
	_, err := Scan(fsx.OS{}, []string{missing}, t.TempDir())
	require.ErrorIs(t, err, failure.ErrIO)
}

func TestScanIgnoresResFile(t *testing.T) {
	libs := t.TempDir()
	foo := mkLib(t, libs, "libfoo", false)
	require.NoError(t, os.WriteFile(filepath.Join(libs, "libfoo", "res"), []byte("not a dir"), 0o644))

	got, err := Scan(fsx.OS{}, []string{foo}, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBundlePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/b/bin/res", "appcompat.zip"), BundlePath("/b/bin/res", "/libs/appcompat"))
}
