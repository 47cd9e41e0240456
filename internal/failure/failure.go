// Package failure classifies errors surfaced by the resource build into the
// four kinds callers branch on: missing preconditions, filesystem failures,
// tool failures and missing link inputs.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPrecondition = errors.New("precondition failed")
	ErrIO           = errors.New("i/o failure")
	ErrToolFailure  = errors.New("resource compiler failed")
	ErrNoInputs     = errors.New("no compiled resources to link")
)

// Error carries the kind plus the operation and path that produced it.
// Stderr is set only for ErrToolFailure and holds the tool's full output.
type Error struct {
	Kind   error
	Op     string
	Path   string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(":\n")
		b.WriteString(s)
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Precondition(what, path string) error {
	return &Error{Kind: ErrPrecondition, Op: what, Path: path}
}

// IO wraps a filesystem error. Errors that are already classified pass
// through unchanged so a kind is never rewritten on the way up.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != nil {
		return err
	}
	return &Error{Kind: ErrIO, Op: op, Path: path, Err: err}
}

func Tool(op, stderr string) error {
	return &Error{Kind: ErrToolFailure, Op: op, Stderr: stderr}
}

func NoInputs(dir string) error {
	return &Error{Kind: ErrNoInputs, Op: "link", Path: dir}
}

// KindOf returns the kind sentinel of err, or nil for unclassified errors.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

// StderrOf returns the captured tool output of a ToolFailure, if any.
func StderrOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stderr
	}
	return ""
}

// Name is a short label for the kind, used in CLI output.
func Name(err error) string {
	switch KindOf(err) {
	case ErrPrecondition:
		return "precondition"
	case ErrIO:
		return "io"
	case ErrToolFailure:
		return "tool_failure"
	case ErrNoInputs:
		return "no_inputs"
	default:
		return "unknown"
	}
}
