package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"resbuild/internal/aapt2"
	"resbuild/internal/failure"
	"resbuild/internal/fsx"
	"resbuild/internal/logx"
	"resbuild/internal/ziputil"
)

// link runs the linker over every flat in compiled/ and every bundle in
// bin/res, producing the resource archive and a fresh symbol table.
func (o *Orchestrator) link(ctx context.Context, res *Result) error {
	o.log.Debug("Linking resources")

	manifest := o.project.MergedManifest()
	ok, err := fsx.Exists(o.fs, manifest)
	if err != nil {
		return failure.IO("stat merged manifest", manifest, err)
	}
	if !ok {
		return failure.Precondition("merged manifest missing", manifest)
	}
	if o.assets == nil {
		return failure.Precondition("framework jar not configured", "")
	}
	jar, err := o.assets.FrameworkJar()
	if err != nil {
		return failure.IO("resolve framework jar", "", err)
	}

	flats, err := o.collectFlats()
	if err != nil {
		return err
	}
	bundles, err := o.collectBundles()
	if err != nil {
		return err
	}

	gen := o.layout.Gen()
	if err := o.fs.MkdirAll(gen); err != nil {
		return failure.IO("create gen directory", gen, err)
	}
	symbols := o.layout.Symbols()
	if err := o.fs.Remove(symbols); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return failure.IO("delete symbol table", symbols, err)
	}
	if err := o.fs.CreateEmpty(symbols); err != nil {
		return failure.IO("create symbol table", symbols, err)
	}

	args := aapt2.LinkArgs{
		FrameworkJar: jar,
		Flats:        flats,
		MinSdk:       o.project.MinSdk(),
		TargetSdk:    o.project.TargetSdk(),
		Bundles:      bundles,
		GenDir:       gen,
		Manifest:     manifest,
		Output:       o.layout.Archive(),
		Symbols:      symbols,
	}
	logx.Debugf(o.log, "Linking %d flat(s) and %d bundle(s)", len(flats), len(bundles))
	if err := o.tool.Link(ctx, args); err != nil {
		return err
	}
	res.Archive = args.Output
	res.Symbols = symbols
	return nil
}

// collectFlats lists compiled/*.flat. Anything else is reported and left
// out; finding no flat at all means there is nothing to link.
func (o *Orchestrator) collectFlats() ([]string, error) {
	dir := o.layout.Compiled()
	entries, err := o.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.NoInputs(dir)
		}
		return nil, failure.IO("list compiled directory", dir, err)
	}
	var flats []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".flat") {
			logx.Warnf(o.log, "Unrecognized file %s at compiled directory", e.Name())
			continue
		}
		flats = append(flats, filepath.Join(dir, e.Name()))
	}
	if len(flats) == 0 {
		return nil, failure.NoInputs(dir)
	}
	return flats, nil
}

// collectBundles lists the library bundles in bin/res. Directories are
// skipped quietly; every other non-zip file is reported and skipped,
// including the R.txt a previous link left there. Empty bundles are
// reported but still passed on.
func (o *Orchestrator) collectBundles() ([]string, error) {
	dir := o.layout.BinRes()
	entries, err := o.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, failure.IO("list resource output directory", dir, err)
	}
	var bundles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".zip") {
			logx.Warnf(o.log, "Unrecognized file %s", e.Name())
			continue
		}
		p := filepath.Join(dir, e.Name())
		o.inspectBundle(p)
		bundles = append(bundles, p)
	}
	return bundles, nil
}

func (o *Orchestrator) inspectBundle(p string) {
	name := filepath.Base(p)
	data, err := o.fs.ReadFile(p)
	if err != nil {
		logx.Warnf(o.log, "Unable to read zip file %s: %v", name, err)
		return
	}
	if len(data) == 0 {
		logx.Warnf(o.log, "Empty zip file %s", name)
		return
	}
	n, err := ziputil.Count(bytes.NewReader(data), int64(len(data)))
	switch {
	case err != nil:
		logx.Warnf(o.log, "Unreadable zip file %s: %v", name, err)
	case n == 0:
		logx.Warnf(o.log, "Empty zip file %s", name)
	}
}
