package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resbuild/internal/config"
	"resbuild/internal/failure"
)

func TestParseFlagsBasic(t *testing.T) {
	args := []string{"-res", "r", "-lib", "a/classes.jar", "-lib", "b/classes.jar", "-min-sdk", "24", "-diff-bytes", "4096", "-debug", "proj/"}
	f, err := parseFlags(args)
	require.NoError(t, err)
	assert.Equal(t, "proj", f.ProjectDir)
	assert.Equal(t, "r", f.Res)
	assert.Equal(t, []string{"a/classes.jar", "b/classes.jar"}, f.Libs)
	assert.Equal(t, 24, f.MinSdk)
	assert.Zero(t, f.TargetSdk)
	assert.EqualValues(t, 4096, f.DiffBytes)
	assert.True(t, f.Debug)
	assert.Equal(t, ".env", f.EnvFile)
}

func TestParseFlagsMissingProjectDir(t *testing.T) {
	_, err := parseFlags([]string{"-debug"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"a", "b"})
	assert.Error(t, err)
}

func TestParseFlagsHelp(t *testing.T) {
	_, err := parseFlags([]string{"-h"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(&config.Error{Code: config.ErrCodeInvalid}))
	assert.Equal(t, 1, exitCode(failure.Tool("link", "error: bad token")))
	assert.Equal(t, 1, exitCode(failure.NoInputs("/b/bin/res/compiled")))
}

func TestUsageListsFlags(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf)
	for _, name := range []string{"-android-jar", "-aapt2", "-lib", "-min-sdk", "-diff-bytes", "-env"} {
		assert.Contains(t, buf.String(), name)
	}
}

// fakeCompiler writes a shell script that behaves like the resource
// compiler closely enough for a full run: it creates one flat per input,
// and the archive and symbol table on link.
func fakeCompiler(t *testing.T, dir string) string {
	t.Helper()
	script := `#!/bin/sh
cmd=$1; shift
case "$cmd" in
compile)
  out=""; prev=""
  for a in "$@"; do
    [ "$prev" = "-o" ] && out=$a
    prev=$a
  done
  for a in "$@"; do
    case "$a" in
    -o|"$out") ;;
    *) t=$(basename "$(dirname "$a")"); n=$(basename "$a" .xml); echo flat > "$out/${t}_${n}.arsc.flat" ;;
    esac
  done
  ;;
link)
  prev=""
  for a in "$@"; do
    [ "$prev" = "-o" ] && echo archive > "$a"
    [ "$prev" = "--output-text-symbols" ] && echo "int string app_name 0x7f010000" > "$a"
    prev=$a
  done
  ;;
esac
`
	p := filepath.Join(dir, "aapt2")
	require.NoError(t, os.WriteFile(p, []byte(script), 0o755))
	return p
}

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	res := filepath.Join(root, "src", "main", "res", "values")
	require.NoError(t, os.MkdirAll(res, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(res, "strings.xml"), []byte("<resources/>"), 0o644))
	manifest := filepath.Join(root, "build", "bin", "AndroidManifest.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(manifest), 0o755))
	require.NoError(t, os.WriteFile(manifest, []byte("<manifest/>"), 0o644))
	jar := filepath.Join(root, "android.jar")
	require.NoError(t, os.WriteFile(jar, []byte("PK"), 0o644))

	f := config.Flags{
		ProjectDir: root,
		AndroidJar: jar,
		Aapt2:      fakeCompiler(t, t.TempDir()),
		Debug:      true,
	}
	var stderr bytes.Buffer
	code := run(context.Background(), f, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "Resources linked")
	assert.FileExists(t, filepath.Join(root, "build", "bin", "generated.apk.res"))
	assert.FileExists(t, filepath.Join(root, "build", "intermediate", "resources", "values", "strings.xml"))

	stderr.Reset()
	code = run(context.Background(), f, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "Project resources are up to date")
}

func TestRunFailures(t *testing.T) {
	var stderr bytes.Buffer
	code := run(context.Background(), config.Flags{ProjectDir: filepath.Join(t.TempDir(), "nope")}, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "ERROR:")

	root := t.TempDir()
	stderr.Reset()
	code = run(context.Background(), config.Flags{ProjectDir: root, Aapt2: filepath.Join(root, "no-aapt2")}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "precondition")
}
