// Package aapt2 is a typed front end to the external resource compiler.
//
// Each sub-command maps to one method that builds the argument vector,
// blocks until the process exits and judges the result by stderr: empty
// (after trimming ASCII whitespace) means success, anything else is a
// ToolFailure carrying the full text.
package aapt2

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"

	"resbuild/internal/failure"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "aapt2"

// lookPath is replaceable so tests can run without a real binary.
var lookPath = exec.LookPath

// Tool invokes one resource compiler binary through Runner.
type Tool struct {
	Binary string
	Runner ProcessRunner
}

// New returns a Tool for binary run through r. A nil r means ExecRunner.
func New(binary string, r ProcessRunner) *Tool {
	if binary == "" {
		binary = DefaultBinary
	}
	if r == nil {
		r = ExecRunner{}
	}
	return &Tool{Binary: binary, Runner: r}
}

// Check verifies the binary can be found and resolves it to a path.
func (t *Tool) Check() error {
	p, err := lookPath(t.Binary)
	if err != nil {
		return failure.Precondition("resource compiler binary not found", t.Binary)
	}
	t.Binary = p
	return nil
}

// CompileBatch compiles individual resource files into flats in outputDir.
// One process handles every file regardless of resource type.
func (t *Tool) CompileBatch(ctx context.Context, inputs []string, outputDir string) error {
	return t.run(ctx, "compile", CompileBatchArgs(inputs, outputDir))
}

// CompileDir compiles a whole res directory into one bundle zip.
func (t *Tool) CompileDir(ctx context.Context, inputDir, outputZip string) error {
	return t.run(ctx, "compile --dir", CompileDirArgs(inputDir, outputZip))
}

// Link links flats and bundles into the final archive and symbol table.
func (t *Tool) Link(ctx context.Context, args LinkArgs) error {
	return t.run(ctx, "link", args.Argv())
}

func (t *Tool) run(ctx context.Context, op string, args []string) error {
	argv := append([]string{t.Binary}, args...)
	stderr, err := t.Runner.Run(ctx, argv)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return failure.Precondition("resource compiler binary not found", t.Binary)
		}
		if ctx.Err() != nil {
			return err
		}
		return failure.IO("run "+op, t.Binary, err)
	}
	if !Succeeded(stderr) {
		return failure.Tool(op, stderr)
	}
	return nil
}

// Succeeded applies the stderr oracle.
func Succeeded(stderr string) bool {
	return strings.Trim(stderr, " \t\n\r\v\f") == ""
}

// CompileBatchArgs returns: compile <input>* -o <outputDir>.
func CompileBatchArgs(inputs []string, outputDir string) []string {
	args := make([]string, 0, len(inputs)+3)
	args = append(args, "compile")
	args = append(args, inputs...)
	return append(args, "-o", outputDir)
}

// CompileDirArgs returns: compile --dir <inputDir> -o <outputZip>.
func CompileDirArgs(inputDir, outputZip string) []string {
	return []string{"compile", "--dir", inputDir, "-o", outputZip}
}

// LinkArgs are the inputs of a link invocation.
type LinkArgs struct {
	FrameworkJar string
	Flats        []string
	MinSdk       int
	TargetSdk    int
	Bundles      []string
	GenDir       string
	Manifest     string
	Output       string
	Symbols      string
}

// Argv lays the arguments out in the order the linker expects. The tool is
// position sensitive for repeated -R/-I and the output options, so the
// order here is fixed.
func (a LinkArgs) Argv() []string {
	args := []string{"link", "-I", a.FrameworkJar}
	args = append(args, a.Flats...)
	args = append(args,
		"--allow-reserved-package-id",
		"--no-version-vectors",
		"--no-version-transitions",
		"--auto-add-overlay",
		"--min-sdk-version", strconv.Itoa(a.MinSdk),
		"--target-sdk-version", strconv.Itoa(a.TargetSdk),
	)
	for _, b := range a.Bundles {
		args = append(args, "-R", b)
	}
	return append(args,
		"--java", a.GenDir,
		"--manifest", a.Manifest,
		"-o", a.Output,
		"--output-text-symbols", a.Symbols,
	)
}
