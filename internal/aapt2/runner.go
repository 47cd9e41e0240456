package aapt2

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// ProcessRunner spawns argv[0] with argv[1:] and returns everything the
// process wrote to stderr once it has exited. The exit status is not
// reported: the resource compiler signals failure through stderr alone.
//
// Separating the process from argument handling lets tests substitute a
// fake that records argv and fabricates outputs.
type ProcessRunner interface {
	Run(ctx context.Context, argv []string) (stderr string, err error)
}

// ExecRunner runs the binary with os/exec, inheriting the working directory
// and environment. Stdout is discarded.
type ExecRunner struct{}

var _ ProcessRunner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("aapt2: empty argv")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	errorBuf := bytes.Buffer{}
	cmd.Stderr = &errorBuf
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errorBuf.String(), ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return errorBuf.String(), nil
		}
		return errorBuf.String(), err
	}
	return errorBuf.String(), nil
}
