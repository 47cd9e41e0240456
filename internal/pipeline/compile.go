package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"resbuild/internal/cache"
	"resbuild/internal/diff"
	"resbuild/internal/failure"
	"resbuild/internal/library"
	"resbuild/internal/logx"
)

// compileProject recompiles the project resources that changed since the
// last successful compile and then records them in the fingerprint mirror.
// The mirror is only written after the compiler accepted the batch.
func (o *Orchestrator) compileProject(ctx context.Context, res *Result) error {
	o.log.Debug("Compiling project resources")

	mirror := o.layout.Fingerprints()
	if err := o.fs.MkdirAll(mirror); err != nil {
		return failure.IO("create fingerprint root", mirror, err)
	}
	current, err := cache.Load(o.fs, o.project.ResourceDir())
	if err != nil {
		return err
	}
	old, err := cache.Load(o.fs, mirror)
	if err != nil {
		return err
	}
	d, err := cache.Detect(o.fs, current, old, cache.DetectOptions{OnModified: o.diffHook()})
	if err != nil {
		return err
	}
	res.Delta = d

	out := o.layout.Compiled()
	if err := o.fs.MkdirAll(out); err != nil {
		return failure.IO("create compiled directory", out, err)
	}
	if err := o.pruneFlats(d.Removed); err != nil {
		return err
	}

	files := d.Files()
	if len(files) == 0 {
		o.log.Debug("Project resources are up to date")
		return nil
	}
	inputs := make([]string, 0, len(files))
	for _, f := range files {
		inputs = append(inputs, f.Path)
	}
	logx.Debugf(o.log, "Compiling %d project resource file(s)", len(inputs))
	if err := o.tool.CompileBatch(ctx, inputs, out); err != nil {
		return err
	}
	if err := cache.Record(o.fs, mirror, files); err != nil {
		return err
	}
	res.Compiled = files
	return nil
}

// pruneFlats deletes the flats of resources whose source is gone, so they
// do not reach the linker.
func (o *Orchestrator) pruneFlats(removed []cache.ResourceFile) error {
	for _, f := range removed {
		p := filepath.Join(o.layout.Compiled(), FlatName(f))
		if err := o.fs.Remove(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return failure.IO("delete stale flat", p, err)
		}
		logx.Debugf(o.log, "Removed stale flat %s", filepath.Base(p))
	}
	return nil
}

// compileLibraries compiles each library res directory without a bundle
// into bin/res/<name>.zip, one at a time. The first failure stops the phase.
func (o *Orchestrator) compileLibraries(ctx context.Context, res *Result) error {
	o.log.Debug("Compiling libraries.")

	binRes := o.layout.BinRes()
	if err := o.fs.MkdirAll(binRes); err != nil {
		return failure.IO("create resource output directory", binRes, err)
	}
	libs, err := library.Scan(o.fs, o.project.Libraries(), binRes)
	if err != nil {
		return err
	}
	for _, lib := range libs {
		logx.Debugf(o.log, "Compiling library %s", lib.Name)
		if err := o.tool.CompileDir(ctx, lib.ResDir, lib.Bundle); err != nil {
			if errors.Is(err, failure.ErrToolFailure) {
				// A leftover bundle would be taken for a cache hit next run.
				if rmErr := o.fs.Remove(lib.Bundle); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
					logx.Warnf(o.log, "Unable to remove partial bundle %s: %v", lib.Bundle, rmErr)
				}
			}
			return err
		}
		res.Libraries = append(res.Libraries, lib)
	}
	return nil
}

func (o *Orchestrator) diffHook() func(old, cur cache.ResourceFile) {
	if o.diffBytes <= 0 {
		return nil
	}
	return func(old, cur cache.ResourceFile) {
		a, err := o.fs.ReadFile(old.Path)
		if err != nil {
			return
		}
		b, err := o.fs.ReadFile(cur.Path)
		if err != nil {
			return
		}
		rel := cur.Type + "/" + cur.Name
		body, _ := diff.Unified("a/"+rel, "b/"+rel, a, b, diff.Options{MaxBytes: int(o.diffBytes)})
		logx.Debugf(o.log, "Modified %s\n%s", rel, body)
	}
}
