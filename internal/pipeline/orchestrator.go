// Package pipeline runs the incremental resource build: compile the
// project resources that changed, compile libraries that have no bundle
// yet, then link everything into the resource archive.
package pipeline

import (
	"context"

	"resbuild/internal/aapt2"
	"resbuild/internal/cache"
	"resbuild/internal/failure"
	"resbuild/internal/fsx"
	"resbuild/internal/library"
	"resbuild/internal/logx"
	"resbuild/internal/project"
)

// Orchestrator owns one build of one project. It is not safe to run two
// orchestrators over the same build directory at once.
type Orchestrator struct {
	project   project.Project
	assets    project.AssetProvider
	fs        fsx.FS
	log       logx.Logger
	tool      *aapt2.Tool
	layout    Layout
	diffBytes int64
	binary    string
	runner    aapt2.ProcessRunner
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFS replaces the filesystem (fsx.OS by default).
func WithFS(fsys fsx.FS) Option { return func(o *Orchestrator) { o.fs = fsys } }

// WithRunner replaces the process runner used for the compiler.
func WithRunner(r aapt2.ProcessRunner) Option { return func(o *Orchestrator) { o.runner = r } }

// WithLogger sets the log sink (discarded by default).
func WithLogger(l logx.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// WithBinary sets the compiler binary, a name on PATH or a path.
func WithBinary(bin string) Option { return func(o *Orchestrator) { o.binary = bin } }

// WithDiffs logs a unified diff of every modified resource at debug level.
// Files larger than maxBytes are summarized instead.
func WithDiffs(maxBytes int64) Option { return func(o *Orchestrator) { o.diffBytes = maxBytes } }

// New prepares a build of p. Nothing touches the disk until Run.
func New(p project.Project, assets project.AssetProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		project: p,
		assets:  assets,
		fs:      fsx.OS{},
		log:     logx.Nop,
		binary:  aapt2.DefaultBinary,
	}
	for _, opt := range opts {
		opt(o)
	}
	if p != nil {
		o.layout = Layout{Build: p.BuildDir()}
	}
	o.tool = aapt2.New(o.binary, o.runner)
	return o
}

// Result reports what a successful Run did.
type Result struct {
	// Delta is the project change set that was detected.
	Delta cache.Delta
	// Compiled lists the project files handed to the compiler, empty when
	// the project was up to date.
	Compiled []cache.ResourceFile
	// Libraries lists the libraries compiled into new bundles.
	Libraries []library.Entry
	Archive   string
	Symbols   string
}

// Run executes compile project, compile libraries and link in that order.
// The first error stops the build and is returned as a *failure.Error.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	if o.project == nil {
		return nil, failure.Precondition("project not configured", "")
	}
	if err := o.tool.Check(); err != nil {
		return nil, err
	}
	res := &Result{}
	steps := []struct {
		name string
		fn   func(context.Context, *Result) error
	}{
		{"compile project", o.compileProject},
		{"compile libraries", o.compileLibraries},
		{"link", o.link},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.fn(ctx, res); err != nil {
			logx.Debugf(o.log, "Step %s failed: %v", s.name, err)
			return nil, err
		}
	}
	return res, nil
}
