// Package main provides the resbuild CLI that compiles and links the Android
// resources of one project incrementally.
//
// Usage:
//
//	resbuild [flags] <project_dir>
//
// Only resource files changed since the last successful build are handed to
// the compiler. Libraries are compiled once into bin/res/<name>.zip, and every
// run ends with a link producing bin/generated.apk.res and bin/res/R.txt.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"resbuild/internal/config"
	"resbuild/internal/failure"
	"resbuild/internal/logx"
	"resbuild/internal/pipeline"
	"resbuild/internal/project"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	if v == "" {
		return errors.New("empty value")
	}
	*s = append(*s, v)
	return nil
}

// newFlagSet registers every flag of the CLI, writing into f and libs.
func newFlagSet(f *config.Flags, libs *stringList) *flag.FlagSet {
	fs := flag.NewFlagSet("resbuild", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&f.Res, "res", "", "resource directory (default <project_dir>/src/main/res)")
	fs.StringVar(&f.Build, "build", "", "build directory (default <project_dir>/build)")
	fs.StringVar(&f.Manifest, "manifest", "", "merged manifest (default <build>/bin/AndroidManifest.xml)")
	fs.StringVar(&f.AndroidJar, "android-jar", "", "framework android.jar (env "+config.EnvAndroidJar+")")
	fs.StringVar(&f.Aapt2, "aapt2", "", "resource compiler binary (env "+config.EnvAapt2+", default aapt2 on PATH)")
	fs.Var(libs, "lib", "library marker path such as <lib>/classes.jar (repeatable)")
	fs.IntVar(&f.MinSdk, "min-sdk", 0, "minimum SDK level (default: detected, else 21)")
	fs.IntVar(&f.TargetSdk, "target-sdk", 0, "target SDK level (default: detected, else 33)")
	fs.Int64Var(&f.DiffBytes, "diff-bytes", 0, "log diffs of modified resources up to this size at debug level (0 = off)")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&f.EnvFile, "env", ".env", "env file to load before reading RESBUILD_* variables")
	return fs
}

func parseFlags(args []string) (config.Flags, error) {
	var f config.Flags
	var libs stringList
	fs := newFlagSet(&f, &libs)
	if err := fs.Parse(args); err != nil {
		return config.Flags{}, err
	}
	if fs.NArg() != 1 {
		return config.Flags{}, errors.New("expected exactly one <project_dir>")
	}
	f.ProjectDir = filepath.Clean(fs.Arg(0))
	f.Libs = libs
	return f, nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n  %s [flags] <project_dir>\n\nFlags:\n", filepath.Base(os.Args[0]))
	var f config.Flags
	var libs stringList
	fs := newFlagSet(&f, &libs)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()
}

// exitCode maps a build error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case config.Code(err) != "":
		return 2
	default:
		return 1
	}
}

func run(ctx context.Context, f config.Flags, stderr io.Writer) int {
	eff, err := config.Load(f)
	if err != nil {
		fmt.Fprintln(stderr, "ERROR:", err)
		return exitCode(err)
	}

	z := newLogger(stderr, eff.Debug)
	if eff.SdkSource != "" {
		z.Debug().Str("source", eff.SdkSource).Int("min", eff.MinSdk).Int("target", eff.TargetSdk).Msg("Detected SDK levels")
	}

	opts := []pipeline.Option{pipeline.WithLogger(logx.New(z))}
	if eff.Aapt2 != "" {
		opts = append(opts, pipeline.WithBinary(eff.Aapt2))
	}
	if eff.DiffBytes > 0 {
		opts = append(opts, pipeline.WithDiffs(eff.DiffBytes))
	}
	o := pipeline.New(eff.Project(), project.JarFile{Path: eff.AndroidJar}, opts...)

	start := time.Now()
	res, err := o.Run(ctx)
	if err != nil {
		z.Error().Str("kind", failure.Name(err)).Msg("Resource build failed")
		fmt.Fprintln(stderr, "ERROR:", err)
		return exitCode(err)
	}
	z.Debug().Object("delta", res.Delta).Msg("Project delta")
	z.Info().
		Int("compiled", len(res.Compiled)).
		Int("removed", len(res.Delta.Removed)).
		Int("libraries", len(res.Libraries)).
		Str("archive", res.Archive).
		Dur("took", time.Since(start)).
		Msg("Resources linked")
	return 0
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(os.Stdout)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, f, os.Stderr)
	stop()
	os.Exit(code)
}
